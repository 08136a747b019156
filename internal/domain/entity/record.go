package entity

// Record is a flat row destined for a single table.
// Columns and Values are index-aligned and every value is a string,
// never nil, so a missing XML field is stored as an empty string.
type Record interface {
	Columns() []string
	Values() []any
}

// Table names of the three sanctions destination tables.
const (
	TableOFACSDN                = "ofac_sdn"
	TableUNConsolidated         = "un_consolidated"
	TableUNConsolidatedEntities = "un_consolidated_entities"
)

// SameColumns reports whether two column lists are identical in name and order.
func SameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
