// Package termchart previews charts in a terminal.
package termchart

import (
	"github.com/guptarohit/asciigraph"

	"github.com/seenimoa/notegraph/internal/graph"
	"github.com/seenimoa/notegraph/internal/raster"
)

// Options controls the plot size and coloring.
type Options struct {
	Height int  // rows; 0 means 10
	Width  int  // columns; 0 plots one column per value
	Color  bool // emit ANSI colors
}

// xterm 256-color cube levels
var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

// Plot returns an ASCII line chart of every series in spec, colored with
// the closest terminal colors to palette.
func Plot(spec graph.ChartSpec, palette []string, o Options) (string, error) {
	if !spec.Valid() {
		return "", graph.ErrNoData
	}
	if o.Height <= 0 {
		o.Height = 10
	}
	if len(palette) == 0 {
		palette = graph.DefaultPalette
	}

	var (
		data   [][]float64
		colors []asciigraph.AnsiColor
	)
	for i, s := range spec.Series {
		if len(s.Values) == 0 {
			continue
		}
		data = append(data, s.Values)
		colors = append(colors, ANSIColor(palette[spec.PaletteSlot(i)%len(palette)]))
	}

	opts := []asciigraph.Option{
		asciigraph.Height(o.Height),
		asciigraph.Precision(2),
	}
	if o.Width > 0 {
		opts = append(opts, asciigraph.Width(o.Width))
	}
	if spec.HasTitle() {
		opts = append(opts, asciigraph.Caption(spec.Title))
	}
	if o.Color {
		opts = append(opts,
			asciigraph.SeriesColors(colors...),
			asciigraph.AxisColor(asciigraph.DarkGray),
			asciigraph.LabelColor(asciigraph.DarkGray),
			asciigraph.CaptionColor(asciigraph.White),
		)
	}

	return asciigraph.PlotMany(data, opts...), nil
}

// ANSIColor maps a hex color onto the xterm 256-color cube.
func ANSIColor(hex string) asciigraph.AnsiColor {
	c := raster.ParseColor(hex)
	r, g, b := nearestLevel(c.R), nearestLevel(c.G), nearestLevel(c.B)
	return asciigraph.AnsiColor(16 + 36*r + 6*g + b)
}

func nearestLevel(v uint8) int {
	best, bestDist := 0, 1<<30
	for i, l := range cubeLevels {
		d := int(v) - l
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
