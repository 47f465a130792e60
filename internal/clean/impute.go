package clean

import (
	"sort"

	"github.com/lox/forestwatch/internal/models"
)

// Strategy is one imputation tier. Fill returns a new table with as many
// missing ForestCover values filled as the tier has data for, plus the
// number of values it filled. Tiers are applied in order; later tiers
// see the output of earlier ones.
type Strategy struct {
	Name string
	Fill func(models.Table) (models.Table, int)
}

// DefaultStrategies is the fallback chain: median of the same
// (Region, Year) group first, then median of the same Region.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "group-median", Fill: fillGroupMedian},
		{Name: "region-median", Fill: fillRegionMedian},
	}
}

type groupKey struct {
	region string
	year   int64
}

func fillGroupMedian(t models.Table) (models.Table, int) {
	groups := make(map[groupKey][]float64)
	for _, rec := range t.Records {
		if rec.Year.Valid && rec.ForestCover.Valid {
			k := groupKey{rec.Region, rec.Year.Int64}
			groups[k] = append(groups[k], rec.ForestCover.Float64)
		}
	}

	out := t.Clone()
	filled := 0
	for i, rec := range out.Records {
		if rec.ForestCover.Valid || !rec.Year.Valid {
			continue
		}
		if vals := groups[groupKey{rec.Region, rec.Year.Int64}]; len(vals) > 0 {
			out.Records[i].ForestCover.Float64 = median(vals)
			out.Records[i].ForestCover.Valid = true
			filled++
		}
	}
	return out, filled
}

func fillRegionMedian(t models.Table) (models.Table, int) {
	regions := make(map[string][]float64)
	for _, rec := range t.Records {
		if rec.ForestCover.Valid {
			regions[rec.Region] = append(regions[rec.Region], rec.ForestCover.Float64)
		}
	}

	out := t.Clone()
	filled := 0
	for i, rec := range out.Records {
		if rec.ForestCover.Valid {
			continue
		}
		if vals := regions[rec.Region]; len(vals) > 0 {
			out.Records[i].ForestCover.Float64 = median(vals)
			out.Records[i].ForestCover.Valid = true
			filled++
		}
	}
	return out, filled
}

// median returns the middle value, averaging the two middle values for
// even-length input.
func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	return (sorted[(n-1)/2] + sorted[n/2]) / 2
}
