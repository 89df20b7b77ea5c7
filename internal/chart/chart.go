// Package chart renders token count comparisons with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"math"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/23skdu/longbow-tokviz/internal/compare"
)

// Titles and axis labels of the two charts.
const (
	GroupedTitle = "Tokenization Comparison Across Different Models"
	GroupedX     = "Sample Texts"
	GroupedY     = "Token Count"
	BreakdownX   = "Number of Tokens"

	barAlpha = 0.8
)

var gridColor = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0x4c}

// BreakdownTitle is the title of the breakdown chart for text.
func BreakdownTitle(text string) string {
	return fmt.Sprintf("Token Breakdown for: %q", text)
}

// Series is one tokenizer's bars on the grouped chart.
type Series struct {
	Name   string
	Color  color.NRGBA
	Values []float64
	// Offset from the category center, in bar widths.
	Offset float64
}

// GroupedLayout is the data behind the grouped bar chart.
type GroupedLayout struct {
	Labels []string
	Series []Series
}

// Grouped lays the table out as one series per tokenizer, with the bars of a
// sample centered on its category.
func Grouped(table *compare.Table) GroupedLayout {
	models := table.Models()
	layout := GroupedLayout{
		Labels: table.Labels(),
		Series: make([]Series, len(models)),
	}
	center := float64(len(models)-1) / 2
	for j, name := range models {
		counts := table.Series(name)
		values := make([]float64, len(counts))
		for i, c := range counts {
			values[i] = float64(c)
		}
		layout.Series[j] = Series{
			Name:   name,
			Color:  table.Color(j),
			Values: values,
			Offset: float64(j) - center,
		}
	}
	return layout
}

// Annotations returns the per-bar labels of the breakdown chart.
func Annotations(b *compare.Breakdown) []string {
	out := make([]string, len(b.Bars))
	for i, bar := range b.Bars {
		out[i] = bar.Annotation()
	}
	return out
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(a * 255))
	return c
}

func lightGrid() *plotter.Grid {
	g := plotter.NewGrid()
	g.Vertical.Color = gridColor
	g.Horizontal.Color = gridColor
	return g
}

// built is a plot plus the bar charts and legend entries added to it.
type built struct {
	plot   *plot.Plot
	bars   []*plotter.BarChart
	legend []string
}

func groupedPlot(table *compare.Table, barWidth vg.Length) (*built, error) {
	layout := Grouped(table)

	p := plot.New()
	p.Title.Text = GroupedTitle
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.X.Label.Text = GroupedX
	p.Y.Label.Text = GroupedY
	p.Add(lightGrid())

	out := &built{plot: p}
	for _, s := range layout.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), barWidth)
		if err != nil {
			return nil, fmt.Errorf("bars for %q: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = withAlpha(s.Color, barAlpha)
		bars.Offset = vg.Length(s.Offset) * barWidth
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
		out.bars = append(out.bars, bars)
		out.legend = append(out.legend, s.Name)
	}

	p.Legend.Top = true
	p.NominalX(layout.Labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	return out, nil
}

func breakdownPlot(b *compare.Breakdown, barHeight vg.Length) (*built, error) {
	p := plot.New()
	p.Title.Text = BreakdownTitle(b.Text)
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.X.Label.Text = BreakdownX
	p.Add(lightGrid())

	names := make([]string, len(b.Bars))
	counts := make([]float64, len(b.Bars))
	xys := make(plotter.XYs, len(b.Bars))
	out := &built{plot: p}
	for i, bar := range b.Bars {
		names[i] = bar.Model
		counts[i] = float64(bar.Count())

		h, err := plotter.NewBarChart(plotter.Values{counts[i]}, barHeight)
		if err != nil {
			return nil, fmt.Errorf("bar for %q: %w", bar.Model, err)
		}
		h.Horizontal = true
		h.XMin = float64(i)
		h.LineStyle.Width = vg.Length(0)
		h.Color = withAlpha(bar.Color, barAlpha)
		p.Add(h)
		out.bars = append(out.bars, h)

		xys[i] = plotter.XY{X: counts[i] + 0.5, Y: float64(i)}
	}

	if len(b.Bars) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: Annotations(b)})
		if err != nil {
			return nil, fmt.Errorf("annotations: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Weight = xfont.WeightBold
			labels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(labels)
		// Leave room right of the longest bar for its annotation.
		p.X.Max = floats.Max(counts)*1.2 + 2
	}

	p.X.Min = 0
	p.NominalY(names...)
	return out, nil
}
