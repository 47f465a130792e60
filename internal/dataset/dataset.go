// Package dataset reads and writes the delimited forest cover tables.
//
// Two readers exist on purpose: ReadRaw is lenient and hands the cleaner
// whatever the file contains, while Load is the strict reader used by the
// reporter, which refuses files missing the canonical columns.
package dataset

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lox/forestwatch/internal/models"
)

// Canonical column names of the forest cover schema.
const (
	ColYear   = "Year"
	ColRegion = "Region"
	ColCover  = "Forest_Cover_ha"
)

// ErrMissingColumn reports a table without one of the canonical columns.
var ErrMissingColumn = errors.New("required column missing")

// Raw is an uncoerced table: the header row plus string cells.
type Raw struct {
	Header []string
	Rows   [][]string
}

// ReadRaw reads a delimited file without interpreting any values.
// Short rows are padded so every row has a cell per header column.
func ReadRaw(path string) (Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return Raw{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Raw{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return Raw{}, nil
	}

	raw := Raw{Header: records[0]}
	for _, row := range records[1:] {
		for len(row) < len(raw.Header) {
			row = append(row, "")
		}
		raw.Rows = append(raw.Rows, row[:len(raw.Header)])
	}
	return raw, nil
}

// columnIndex maps the canonical columns (any order) and collects the
// positions of extra columns in their original order.
type columnIndex struct {
	year, region, cover int
	extra               []int
}

func indexColumns(header []string) (columnIndex, error) {
	idx := columnIndex{year: -1, region: -1, cover: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColYear:
			idx.year = i
		case ColRegion:
			idx.region = i
		case ColCover:
			idx.cover = i
		default:
			idx.extra = append(idx.extra, i)
		}
	}
	for _, c := range []struct {
		name string
		pos  int
	}{{ColYear, idx.year}, {ColRegion, idx.region}, {ColCover, idx.cover}} {
		if c.pos < 0 {
			return idx, fmt.Errorf("%w: %q", ErrMissingColumn, c.name)
		}
	}
	return idx, nil
}

// Coerce converts a raw table into typed records. Cells that fail
// numeric coercion become null rather than erroring; Region is kept as
// its string form unconditionally. Extra columns pass through untouched.
func Coerce(raw Raw) (models.Table, error) {
	if len(raw.Header) == 0 {
		return models.Table{}, nil
	}
	idx, err := indexColumns(raw.Header)
	if err != nil {
		return models.Table{}, err
	}

	table := models.Table{}
	for _, i := range idx.extra {
		table.ExtraColumns = append(table.ExtraColumns, raw.Header[i])
	}

	for _, row := range raw.Rows {
		rec := models.Record{Region: row[idx.region]}
		// NaN and Inf parse successfully but are still missing values.
		if y, err := strconv.ParseFloat(strings.TrimSpace(row[idx.year]), 64); err == nil && !math.IsNaN(y) && !math.IsInf(y, 0) {
			rec.Year = nullInt(int64(y))
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx.cover]), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			rec.ForestCover = nullFloat(v)
		}
		for _, i := range idx.extra {
			rec.Extra = append(rec.Extra, row[i])
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// Load is the strict reader for cleaned files. A missing file surfaces
// the underlying fs.ErrNotExist; a missing canonical column or an
// unparseable Year surfaces ErrMissingColumn or a format error. Empty
// ForestCover cells are kept as null (the cleaner leaves them only when
// no imputation tier had data).
func Load(path string) (models.Table, error) {
	raw, err := ReadRaw(path)
	if err != nil {
		return models.Table{}, err
	}
	if len(raw.Header) == 0 {
		return models.Table{}, nil
	}
	idx, err := indexColumns(raw.Header)
	if err != nil {
		return models.Table{}, fmt.Errorf("load %s: %w", path, err)
	}

	table := models.Table{}
	for _, i := range idx.extra {
		table.ExtraColumns = append(table.ExtraColumns, raw.Header[i])
	}

	for n, row := range raw.Rows {
		rec := models.Record{Region: row[idx.region]}

		y, err := strconv.ParseFloat(strings.TrimSpace(row[idx.year]), 64)
		if err != nil {
			return models.Table{}, fmt.Errorf("load %s: row %d: bad Year %q", path, n+2, row[idx.year])
		}
		rec.Year = nullInt(int64(y))

		if cell := strings.TrimSpace(row[idx.cover]); cell != "" {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return models.Table{}, fmt.Errorf("load %s: row %d: bad %s %q", path, n+2, ColCover, cell)
			}
			rec.ForestCover = nullFloat(v)
		}
		for _, i := range idx.extra {
			rec.Extra = append(rec.Extra, row[i])
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// Write serializes a table with a header row and no index column,
// canonical columns first, then any extra columns. Overwrites path.
func Write(table models.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := append([]string{ColYear, ColRegion, ColCover}, table.ExtraColumns...)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range table.Records {
		row := make([]string, 0, len(header))
		row = append(row, formatYear(rec.Year), rec.Region, formatCover(rec.ForestCover))
		row = append(row, rec.Extra...)
		for len(row) < len(header) {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func formatYear(y sql.NullInt64) string {
	if !y.Valid {
		return ""
	}
	return strconv.FormatInt(y.Int64, 10)
}

func formatCover(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

func nullInt(v int64) sql.NullInt64       { return sql.NullInt64{Int64: v, Valid: true} }
func nullFloat(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
