package clean

import (
	"testing"

	"github.com/lox/forestwatch/internal/models"
)

func TestFillGroupMedian_EvenCountInterpolates(t *testing.T) {
	table := models.Table{Records: []models.Record{
		rec(2000, "A", 100),
		rec(2000, "A", 200),
		recMissingCover(2000, "A"),
	}}

	out, filled := fillGroupMedian(table)

	if filled != 1 {
		t.Fatalf("filled = %d, want 1", filled)
	}
	if got := out.Records[2].ForestCover.Float64; got != 150 {
		t.Errorf("imputed = %v, want 150 (median of {100, 200})", got)
	}
}

func TestFillGroupMedian_IgnoresOtherGroups(t *testing.T) {
	table := models.Table{Records: []models.Record{
		rec(2000, "A", 100),
		recMissingCover(2001, "A"),
	}}

	out, filled := fillGroupMedian(table)

	if filled != 0 {
		t.Fatalf("filled = %d, want 0", filled)
	}
	if out.Records[1].ForestCover.Valid {
		t.Error("value filled from a different (Region, Year) group")
	}
}

func TestFillRegionMedian(t *testing.T) {
	table := models.Table{Records: []models.Record{
		rec(2000, "A", 100),
		rec(2001, "A", 300),
		recMissingCover(2002, "A"),
		recMissingCover(2000, "B"),
	}}

	out, filled := fillRegionMedian(table)

	if filled != 1 {
		t.Fatalf("filled = %d, want 1", filled)
	}
	if got := out.Records[2].ForestCover.Float64; got != 200 {
		t.Errorf("imputed = %v, want 200", got)
	}
	if out.Records[3].ForestCover.Valid {
		t.Error("region with no data should stay missing")
	}
}

func TestStrategies_LaterTierSeesEarlierFills(t *testing.T) {
	// Tier 1 fills the 2000 peer from its group; tier 2's region median
	// is then computed over the partially filled table, matching the
	// original pipeline's fill order.
	table := models.Table{Records: []models.Record{
		rec(2000, "X", 10),
		recMissingCover(2000, "X"),
		recMissingCover(2001, "X"),
	}}

	for _, s := range DefaultStrategies() {
		table, _ = s.Fill(table)
	}

	if got := table.Records[1].ForestCover.Float64; got != 10 {
		t.Errorf("group-median fill = %v, want 10", got)
	}
	if got := table.Records[2].ForestCover.Float64; got != 10 {
		t.Errorf("region-median fill = %v, want 10", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"single", []float64{100}, 100},
		{"pair", []float64{100, 200}, 150},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.vals); got != tt.want {
				t.Errorf("median(%v) = %v, want %v", tt.vals, got, tt.want)
			}
		})
	}
}
