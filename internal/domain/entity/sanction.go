package entity

// SdnEntry is one sdnEntry element of the OFAC Specially Designated Nationals list.
type SdnEntry struct {
	UID       string
	FirstName string
	LastName  string
}

var sdnEntryColumns = []string{"uid", "firstName", "lastName"}

// Columns returns the ofac_sdn column names.
func (e SdnEntry) Columns() []string { return sdnEntryColumns }

// Values returns the field values in Columns order.
func (e SdnEntry) Values() []any { return []any{e.UID, e.FirstName, e.LastName} }

// ConsolidatedIndividual is one INDIVIDUAL element of the UN Security Council Consolidated list.
//
// DataID is kept exactly as published, surrounding whitespace included,
// while the name parts are trimmed.
type ConsolidatedIndividual struct {
	DataID     string
	FirstName  string
	SecondName string
	ThirdName  string
	FourthName string
}

var consolidatedIndividualColumns = []string{"dataid", "firstname", "secondname", "thirdname", "fourthname"}

// Columns returns the un_consolidated column names.
func (c ConsolidatedIndividual) Columns() []string { return consolidatedIndividualColumns }

// Values returns the field values in Columns order.
func (c ConsolidatedIndividual) Values() []any {
	return []any{c.DataID, c.FirstName, c.SecondName, c.ThirdName, c.FourthName}
}

// ConsolidatedEntity is one ENTITY element of the UN Security Council Consolidated list.
// City and Country come from the first ENTITY_ADDRESS that carries them.
type ConsolidatedEntity struct {
	DataID     string
	FirstName  string
	UNListType string
	ListedOn   string
	Comments1  string
	City       string
	Country    string
}

var consolidatedEntityColumns = []string{"dataid", "firstname", "un_list_type", "listed_on", "comments1", "city", "country"}

// Columns returns the un_consolidated_entities column names.
func (c ConsolidatedEntity) Columns() []string { return consolidatedEntityColumns }

// Values returns the field values in Columns order.
func (c ConsolidatedEntity) Values() []any {
	return []any{c.DataID, c.FirstName, c.UNListType, c.ListedOn, c.Comments1, c.City, c.Country}
}

// SdnRecords converts entries to Records preserving order.
func SdnRecords(entries []SdnEntry) []Record {
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out
}

// IndividualRecords converts individuals to Records preserving order.
func IndividualRecords(individuals []ConsolidatedIndividual) []Record {
	out := make([]Record, len(individuals))
	for i, c := range individuals {
		out[i] = c
	}
	return out
}

// EntityRecords converts entities to Records preserving order.
func EntityRecords(entities []ConsolidatedEntity) []Record {
	out := make([]Record, len(entities))
	for i, c := range entities {
		out[i] = c
	}
	return out
}
