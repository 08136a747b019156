package sanctions

import (
	"errors"
	"fmt"
	"time"
)

// Dataset names one parsed record set.
type Dataset string

const (
	DatasetOFACSDN       Dataset = "ofac_sdn"
	DatasetUNIndividuals Dataset = "un_individuals"
	DatasetUNEntities    Dataset = "un_entities"
)

// Outcome classifies what a dataset yielded before it reached the database.
type Outcome int

const (
	// OutcomeLoaded means the source parsed into at least one record.
	OutcomeLoaded Outcome = iota
	// OutcomeEmpty means the document parsed but held no matching records.
	OutcomeEmpty
	// OutcomeFailed means the download or the parse failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Mode is the load strategy of a run.
type Mode string

const (
	// ModeProtected replaces a table only when its dataset was Loaded.
	ModeProtected Mode = "protected"
	// ModeLegacy truncates every table up front and inserts whatever was parsed.
	ModeLegacy Mode = "legacy"
)

// DatasetStats describes one dataset in a run.
type DatasetStats struct {
	Dataset    Dataset
	Table      string
	Downloaded bool
	Outcome    Outcome
	Parsed     int
	Loaded     int
	// Skipped is set when protected mode left the table untouched.
	Skipped bool
	// Err is the download or parse failure.
	Err error
	// LoadErr is the truncate or insert failure.
	LoadErr error
}

// RunStats is the result of one Run.
type RunStats struct {
	RunID    string
	Mode     Mode
	Datasets []DatasetStats
	Duration time.Duration
}

// Dataset returns the stats for d, or nil when d was not part of the run.
func (r *RunStats) Dataset(d Dataset) *DatasetStats {
	for i := range r.Datasets {
		if r.Datasets[i].Dataset == d {
			return &r.Datasets[i]
		}
	}
	return nil
}

// TablesLoaded counts tables whose load committed at least one row.
func (r *RunStats) TablesLoaded() int {
	n := 0
	for _, ds := range r.Datasets {
		if ds.LoadErr == nil && ds.Loaded > 0 {
			n++
		}
	}
	return n
}

// Err joins every dataset failure, or returns nil for a clean run.
func (r *RunStats) Err() error {
	var errs []error
	for _, ds := range r.Datasets {
		if ds.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ds.Dataset, ds.Err))
		}
		if ds.LoadErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ds.Table, ds.LoadErr))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIncompleteRun, errors.Join(errs...))
}
