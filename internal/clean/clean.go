// Package clean turns a raw forest cover table into the cleaned table
// contract: typed, imputed, filtered of invalid rows, and sorted.
package clean

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lox/forestwatch/internal/dataset"
	"github.com/lox/forestwatch/internal/models"
)

type Cleaner struct {
	log        *slog.Logger
	strategies []Strategy
}

func New(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{log: logger, strategies: DefaultStrategies()}
}

// Clean applies the full pipeline: drop rows with missing Year, impute
// missing cover values tier by tier, drop blank regions, sort. The input
// table is never mutated.
func (c *Cleaner) Clean(table models.Table) (models.Table, models.CleanSummary) {
	sum := models.CleanSummary{RowsIn: len(table.Records)}
	for _, rec := range table.Records {
		if !rec.Year.Valid {
			sum.MissingYearIn++
		}
		if !rec.ForestCover.Valid {
			sum.MissingCoverIn++
		}
	}

	t := DropMissingYear(table)
	sum.DroppedMissingYear = len(table.Records) - len(t.Records)

	for _, s := range c.strategies {
		var filled int
		t, filled = s.Fill(t)
		switch s.Name {
		case "group-median":
			sum.ImputedGroupMedian = filled
		case "region-median":
			sum.ImputedRegionMedian = filled
		}
		if filled > 0 {
			c.log.Info("imputed missing values", "strategy", s.Name, "filled", filled)
		}
	}

	before := len(t.Records)
	t = FilterValid(t)
	sum.DroppedBlankRegion = before - len(t.Records)

	t = Normalize(t)

	sum.RowsOut = len(t.Records)
	for _, rec := range t.Records {
		if !rec.ForestCover.Valid {
			sum.MissingCoverOut++
		}
	}
	return t, sum
}

// CleanFile reads, cleans and writes a dataset in one pass, logging the
// summary, and returns the cleaned table for further handoff.
func (c *Cleaner) CleanFile(inPath, outPath string) (models.Table, models.CleanSummary, error) {
	raw, err := dataset.ReadRaw(inPath)
	if err != nil {
		return models.Table{}, models.CleanSummary{}, err
	}
	table, err := dataset.Coerce(raw)
	if err != nil {
		return models.Table{}, models.CleanSummary{}, fmt.Errorf("coerce %s: %w", inPath, err)
	}
	c.log.Info("loaded raw dataset",
		"path", inPath,
		"rows", len(table.Records),
		"columns", 3+len(table.ExtraColumns))

	cleaned, sum := c.Clean(table)

	if err := dataset.Write(cleaned, outPath); err != nil {
		return models.Table{}, sum, err
	}
	c.log.Info("wrote cleaned dataset",
		"path", outPath,
		"rows_in", sum.RowsIn,
		"rows_out", sum.RowsOut,
		"missing_cover_in", sum.MissingCoverIn,
		"missing_cover_out", sum.MissingCoverOut,
		"dropped_missing_year", sum.DroppedMissingYear,
		"dropped_blank_region", sum.DroppedBlankRegion)
	if sum.MissingCoverOut > 0 {
		c.log.Warn("cover values remain missing after all imputation tiers",
			"count", sum.MissingCoverOut)
	}
	return cleaned, sum, nil
}

// DropMissingYear removes rows whose Year failed coercion. Year is
// required and never imputed.
func DropMissingYear(t models.Table) models.Table {
	out := models.Table{ExtraColumns: append([]string(nil), t.ExtraColumns...)}
	for _, rec := range t.Records {
		if rec.Year.Valid {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// FilterValid drops rows whose Region trims to the empty string.
func FilterValid(t models.Table) models.Table {
	out := models.Table{ExtraColumns: append([]string(nil), t.ExtraColumns...)}
	for _, rec := range t.Records {
		if strings.TrimSpace(rec.Region) != "" {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// Normalize sorts by (Region, Year) ascending, keeping input order for
// ties.
func Normalize(t models.Table) models.Table {
	out := t.Clone()
	sort.SliceStable(out.Records, func(i, j int) bool {
		a, b := out.Records[i], out.Records[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		return a.Year.Int64 < b.Year.Int64
	})
	return out
}
