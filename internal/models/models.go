package models

import (
	"database/sql"
)

// Record is one forest cover observation as read from the dataset.
// Null fields model values that were absent or failed numeric coercion.
type Record struct {
	Year        sql.NullInt64
	Region      string
	ForestCover sql.NullFloat64

	// Extra holds pass-through values for columns beyond the canonical
	// three, aligned with Table.ExtraColumns.
	Extra []string
}

// Table is an ordered collection of records plus the names of any
// non-canonical columns carried through from the input file.
type Table struct {
	ExtraColumns []string
	Records      []Record
}

// Clone returns a deep copy so transformations never alias their input.
func (t Table) Clone() Table {
	out := Table{
		ExtraColumns: append([]string(nil), t.ExtraColumns...),
		Records:      make([]Record, len(t.Records)),
	}
	for i, r := range t.Records {
		r.Extra = append([]string(nil), r.Extra...)
		out.Records[i] = r
	}
	return out
}

// TrendPoint is one row of the derived global trend: summed cover for a
// year and its percentage change against the immediately preceding year.
type TrendPoint struct {
	Year       int
	TotalCover float64
	YoYChange  float64
}

// CleanSummary tallies what the cleaner did to a table. Observability
// only, not part of the data contract.
type CleanSummary struct {
	RowsIn              int
	RowsOut             int
	MissingYearIn       int
	MissingCoverIn      int
	DroppedMissingYear  int
	DroppedBlankRegion  int
	ImputedGroupMedian  int
	ImputedRegionMedian int
	MissingCoverOut     int
}
