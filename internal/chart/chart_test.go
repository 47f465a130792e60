package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/forestwatch/internal/models"
	"github.com/lox/forestwatch/internal/report"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		t.Fatalf("%s is not a PNG file", path)
	}
}

func TestRenderTrend(t *testing.T) {
	trend := []models.TrendPoint{
		{Year: 2000, TotalCover: 300, YoYChange: 0},
		{Year: 2001, TotalCover: 330, YoYChange: 10},
		{Year: 2002, TotalCover: 310, YoYChange: -6.06},
	}

	path := filepath.Join(t.TempDir(), "forest_trend.png")
	if err := RenderTrend(trend, path); err != nil {
		t.Fatalf("RenderTrend: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderTrend_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest_trend.png")
	if err := RenderTrend(nil, path); err != nil {
		t.Fatalf("RenderTrend with no data: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderTrend_SinglePoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest_trend.png")
	trend := []models.TrendPoint{{Year: 2000, TotalCover: 100}}
	if err := RenderTrend(trend, path); err != nil {
		t.Fatalf("RenderTrend: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderTrend_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest_trend.png")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RenderTrend(nil, path); err != nil {
		t.Fatalf("RenderTrend: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderRegional(t *testing.T) {
	series := []report.RegionSeries{
		{Region: "Amazonia", Years: []int{2000, 2001}, Cover: []float64{100, 90}},
		{Region: "Congo Basin", Years: []int{2000, 2001}, Cover: []float64{80, 85}},
	}

	path := filepath.Join(t.TempDir(), "regional_trends.png")
	if err := RenderRegional(series, path); err != nil {
		t.Fatalf("RenderRegional: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderRegional_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regional_trends.png")
	if err := RenderRegional(nil, path); err != nil {
		t.Fatalf("RenderRegional with no series: %v", err)
	}
	assertPNG(t, path)
}
