// Package report derives the global yearly trend from a cleaned table.
package report

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lox/forestwatch/internal/models"
)

type Reporter struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{log: logger}
}

// GlobalTrend groups the table by year, sums cover across regions and
// computes the year-over-year percentage change. The first year's change
// is 0 by definition. Missing cover values contribute 0 to the sum; the
// cleaner only leaves them when no imputation tier had data, and each
// zero-filled value is surfaced as a warning rather than silently folded
// into the total.
func (r *Reporter) GlobalTrend(table models.Table) []models.TrendPoint {
	totals := make(map[int]float64)
	missing := 0
	for _, rec := range table.Records {
		if !rec.Year.Valid {
			continue
		}
		year := int(rec.Year.Int64)
		if rec.ForestCover.Valid {
			totals[year] += rec.ForestCover.Float64
		} else {
			// A year whose only rows are missing still gets a trend row.
			if _, ok := totals[year]; !ok {
				totals[year] = 0
			}
			missing++
		}
	}
	if missing > 0 {
		r.log.Warn("summing over missing cover values as zero; totals may be understated",
			"missing", missing)
	}

	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	trend := make([]models.TrendPoint, 0, len(years))
	for i, y := range years {
		p := models.TrendPoint{Year: y, TotalCover: totals[y]}
		if i > 0 {
			prev := trend[i-1].TotalCover
			if prev != 0 {
				p.YoYChange = (p.TotalCover - prev) / prev * 100
			}
		}
		trend = append(trend, p)
	}

	for _, p := range trend {
		r.log.Info("global trend",
			"year", p.Year,
			"total_cover_ha", p.TotalCover,
			"yoy_change_pct", p.YoYChange)
	}
	return trend
}

// RegionSeries is one region's cover measurements ordered by year.
type RegionSeries struct {
	Region string
	Years  []int
	Cover  []float64
}

// TopRegions returns the n regions with the highest mean cover across
// all years, each with its rows sorted by year. Missing cover values are
// excluded from both the mean and the series.
func TopRegions(table models.Table, n int) []RegionSeries {
	byRegion := make(map[string][]models.Record)
	for _, rec := range table.Records {
		if rec.Year.Valid && rec.ForestCover.Valid {
			byRegion[rec.Region] = append(byRegion[rec.Region], rec)
		}
	}

	type regionMean struct {
		region string
		mean   float64
	}
	means := make([]regionMean, 0, len(byRegion))
	for region, recs := range byRegion {
		vals := make([]float64, len(recs))
		for i, rec := range recs {
			vals[i] = rec.ForestCover.Float64
		}
		means = append(means, regionMean{region, stat.Mean(vals, nil)})
	}
	sort.Slice(means, func(i, j int) bool {
		if means[i].mean != means[j].mean {
			return means[i].mean > means[j].mean
		}
		return means[i].region < means[j].region
	})
	if n > len(means) {
		n = len(means)
	}

	series := make([]RegionSeries, 0, n)
	for _, rm := range means[:n] {
		recs := byRegion[rm.region]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Year.Int64 < recs[j].Year.Int64
		})
		s := RegionSeries{Region: rm.region}
		for _, rec := range recs {
			s.Years = append(s.Years, int(rec.Year.Int64))
			s.Cover = append(s.Cover, rec.ForestCover.Float64)
		}
		series = append(series, s)
	}
	return series
}
