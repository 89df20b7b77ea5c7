package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/23skdu/longbow-tokviz/internal/compare"
)

// Renderer turns a count table and a breakdown into an image file.
type Renderer interface {
	Render(table *compare.Table, breakdown *compare.Breakdown) (*Figure, error)
	Save(fig *Figure, path string) error
}

// Figure is the two charts stacked vertically.
type Figure struct {
	Grouped   *plot.Plot
	Breakdown *plot.Plot
	// GroupedBars holds one bar chart per model, in legend order.
	GroupedBars []*plotter.BarChart
	// Legend holds the grouped chart's legend entries.
	Legend []string
	// BreakdownBars holds one horizontal bar per tokenizer.
	BreakdownBars []*plotter.BarChart
	Width         vg.Length
	Height        vg.Length
	DPI           int
}

// PlotRenderer renders PNG figures with gonum/plot.
type PlotRenderer struct {
	Width    vg.Length
	Height   vg.Length
	DPI      int
	BarWidth vg.Length
}

// NewPlotRenderer returns a renderer for a widthIn x heightIn inch figure.
func NewPlotRenderer(widthIn, heightIn float64, dpi int) *PlotRenderer {
	return &PlotRenderer{
		Width:    vg.Length(widthIn) * vg.Inch,
		Height:   vg.Length(heightIn) * vg.Inch,
		DPI:      dpi,
		BarWidth: vg.Points(40),
	}
}

// Render builds both charts.
func (r *PlotRenderer) Render(table *compare.Table, breakdown *compare.Breakdown) (*Figure, error) {
	if table == nil || breakdown == nil {
		return nil, errors.New("render: table and breakdown are required")
	}
	grouped, err := groupedPlot(table, r.BarWidth)
	if err != nil {
		return nil, fmt.Errorf("grouped chart: %w", err)
	}
	bd, err := breakdownPlot(breakdown, r.BarWidth*1.5)
	if err != nil {
		return nil, fmt.Errorf("breakdown chart: %w", err)
	}
	return &Figure{
		Grouped:       grouped.plot,
		Breakdown:     bd.plot,
		GroupedBars:   grouped.bars,
		Legend:        grouped.legend,
		BreakdownBars: bd.bars,
		Width:         r.Width,
		Height:        r.Height,
		DPI:           r.DPI,
	}, nil
}

// Save draws the figure and writes it as PNG. The file appears only once it
// is complete.
func (r *PlotRenderer) Save(fig *Figure, path string) error {
	img := vgimg.NewWith(vgimg.UseWH(fig.Width, fig.Height), vgimg.UseDPI(fig.DPI))
	dc := draw.New(img)

	plots := [][]*plot.Plot{{fig.Grouped}, {fig.Breakdown}}
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tokviz-*.png")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
