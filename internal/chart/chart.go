// Package chart renders the trend tables to PNG files with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/lox/forestwatch/internal/models"
	"github.com/lox/forestwatch/internal/report"
)

var (
	forestGreen = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	fillGreen   = color.RGBA{R: 34, G: 139, B: 34, A: 80}
	lossRed     = color.RGBA{R: 220, G: 20, B: 60, A: 255}
)

// RenderTrend writes a two-panel chart: total cover per year as a filled
// line on top, year-over-year percentage change as sign-colored bars
// below, sharing the year axis. An empty trend produces a blank chart
// with titles and axes only; rendering never fails on zero data points.
func RenderTrend(trend []models.TrendPoint, path string) error {
	top := plot.New()
	top.Title.Text = "Global Forest Cover Trend"
	top.Y.Label.Text = "Global Forest Cover (ha)"
	top.Add(plotter.NewGrid())

	bottom := plot.New()
	bottom.Title.Text = "Annual Percentage Change in Forest Cover"
	bottom.X.Label.Text = "Year"
	bottom.Y.Label.Text = "Year-over-Year Change (%)"
	bottom.Add(plotter.NewGrid())

	if len(trend) > 0 {
		if err := addCoverLine(top, trend); err != nil {
			return err
		}
		if err := addChangeBars(bottom, trend); err != nil {
			return err
		}

		labels := make([]string, len(trend))
		for i, p := range trend {
			labels[i] = fmt.Sprintf("%d", p.Year)
		}
		top.NominalX(labels...)
		bottom.NominalX(labels...)
	}

	return writePanels(path, top, bottom)
}

func addCoverLine(p *plot.Plot, trend []models.TrendPoint) error {
	pts := make(plotter.XYs, len(trend))
	for i, tp := range trend {
		pts[i].X = float64(i)
		pts[i].Y = tp.TotalCover
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("cover line: %w", err)
	}
	line.Color = forestGreen
	line.Width = vg.Points(2)
	line.FillColor = fillGreen
	p.Add(line)
	return nil
}

func addChangeBars(p *plot.Plot, trend []models.TrendPoint) error {
	// Two overlaid bar charts, one per sign, so gains and losses get
	// distinct colors. The other sign's slots are zero-height.
	gains := make(plotter.Values, len(trend))
	losses := make(plotter.Values, len(trend))
	for i, tp := range trend {
		if tp.YoYChange < 0 {
			losses[i] = tp.YoYChange
		} else {
			gains[i] = tp.YoYChange
		}
	}

	for _, bars := range []struct {
		vals plotter.Values
		col  color.Color
	}{{gains, forestGreen}, {losses, lossRed}} {
		bc, err := plotter.NewBarChart(bars.vals, vg.Points(14))
		if err != nil {
			return fmt.Errorf("change bars: %w", err)
		}
		bc.Color = bars.col
		bc.LineStyle.Width = vg.Length(0)
		p.Add(bc)
	}

	zero, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: 0},
		{X: float64(len(trend)) - 0.5, Y: 0},
	})
	if err != nil {
		return fmt.Errorf("zero line: %w", err)
	}
	zero.Color = color.Black
	p.Add(zero)
	return nil
}

func writePanels(path string, panels ...*plot.Plot) error {
	img := vgimg.NewWith(
		vgimg.UseWH(10*vg.Inch, 8*vg.Inch),
		vgimg.UseDPI(150),
	)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: len(panels),
		Cols: 1,
		PadY: vg.Millimeter * 4,
	}
	plots := make([][]*plot.Plot, len(panels))
	for i, p := range panels {
		plots[i] = []*plot.Plot{p}
	}

	canvases := plot.Align(plots, tiles, dc)
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

var seriesPalette = []color.RGBA{
	{R: 0, G: 100, B: 0, A: 255},
	{R: 70, G: 130, B: 180, A: 255},
	{R: 255, G: 165, B: 0, A: 255},
	{R: 139, G: 0, B: 139, A: 255},
	{R: 178, G: 34, B: 34, A: 255},
}

// RenderRegional plots one line per region with a legend. Series are
// expected pre-sorted by year (report.TopRegions does this).
func RenderRegional(series []report.RegionSeries, path string) error {
	p := plot.New()
	p.Title.Text = "Forest Cover Trends for Top Regions"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Forest Cover (ha)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, s := range series {
		pts := make(plotter.XYs, len(s.Years))
		for j := range s.Years {
			pts[j].X = float64(s.Years[j])
			pts[j].Y = s.Cover[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Region, err)
		}
		line.Color = seriesPalette[i%len(seriesPalette)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Region, line)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
