// Package graph turns @graph[...] markers embedded in note text into inline
// SVG line charts.
//
// The engine is split into three stages: the marker parser (Scan, ParseSpec),
// the scale and layout engine (NiceScale, NewLayout) and the SVG renderer
// (Renderer). Transformer ties them together into a single left-to-right
// scan-and-rebuild pass. Every stage is pure: a Transformer holds only
// immutable options and may be shared between goroutines.
package graph

import "errors"

// ErrNoData is returned by adapters that build a chart directly from a
// payload when no series carries a single valid value.
var ErrNoData = errors.New("graph: no valid numeric values")

// Series is one ordered sequence of values plotted as one connected line.
type Series struct {
	Name   string    `json:"name"`
	Index  int       `json:"index"` // 0-based position in the marker payload
	Values []float64 `json:"values"`
}

// ChartSpec is one parsed marker occurrence.
type ChartSpec struct {
	Series      []Series `json:"series"`
	Title       string   `json:"title,omitempty"`
	GridFlag    bool     `json:"grid_flag,omitempty"` // trailing ';' was present
	GridEnabled bool     `json:"grid_enabled"`
}

// PaletteSlot returns the palette position of the series at pos. Parsed
// series use their payload index, so dropped series keep their color slot.
func (c ChartSpec) PaletteSlot(pos int) int {
	if idx := c.Series[pos].Index; idx > pos {
		return idx
	}
	return pos
}

// Valid reports whether the spec has at least one value to plot.
func (c ChartSpec) Valid() bool {
	for _, s := range c.Series {
		if len(s.Values) > 0 {
			return true
		}
	}
	return false
}

// HasTitle reports whether the chart reserves space for a title.
func (c ChartSpec) HasTitle() bool {
	return c.Title != ""
}

// MaxLen returns the length of the longest series.
func (c ChartSpec) MaxLen() int {
	n := 0
	for _, s := range c.Series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	return n
}

// Values returns the union of all series values in series order.
func (c ChartSpec) Values() []float64 {
	var all []float64
	for _, s := range c.Series {
		all = append(all, s.Values...)
	}
	return all
}

// Canvas holds the fixed logical size of a chart and the margins reserved
// for axis labels and the title.
type Canvas struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	PadLeft     int `json:"pad_left"`
	PadRight    int `json:"pad_right"`
	PadTop      int `json:"pad_top"`
	PadBottom   int `json:"pad_bottom"`
	TitleHeight int `json:"title_height"` // added to Height when titled
	TitlePad    int `json:"title_pad"`    // added to PadTop when titled
}

// WithTitle returns the canvas enlarged for a title row when titled is true.
func (c Canvas) WithTitle(titled bool) Canvas {
	if titled {
		c.Height += c.TitleHeight
		c.PadTop += c.TitlePad
	}
	return c
}

// Theme holds the colors used for everything except the series themselves.
type Theme struct {
	Background   string `json:"background"`
	Grid         string `json:"grid"`
	Axis         string `json:"axis"`
	Label        string `json:"label"`
	Title        string `json:"title"`
	FontFamily   string `json:"font_family"`
	CornerRadius int    `json:"corner_radius"`
}

// Options configures a Transformer.
type Options struct {
	Canvas         Canvas   `json:"canvas"`
	Theme          Theme    `json:"theme"`
	Palette        []string `json:"palette"`
	GridEnabled    bool     `json:"grid_enabled"`
	ShowFilledArea bool     `json:"show_filled_area"`
	MaxTickLabels  int      `json:"max_tick_labels"`
	TargetTicks    int      `json:"target_ticks"`
}

// DefaultPalette is the five-color series palette.
var DefaultPalette = []string{"#4f8ef7", "#f7674f", "#4fcf8e", "#f7c44f", "#bf4ff7"}

// DefaultOptions returns the dark-theme 340x200 chart with grid and area fill.
func DefaultOptions() Options {
	return Options{
		Canvas: Canvas{
			Width:       340,
			Height:      200,
			PadLeft:     45,
			PadRight:    15,
			PadTop:      15,
			PadBottom:   35,
			TitleHeight: 20,
			TitlePad:    15,
		},
		Theme: Theme{
			Background:   "#1a1d27",
			Grid:         "#2e3347",
			Axis:         "#4a5068",
			Label:        "#8892a4",
			Title:        "#cdd6f4",
			FontFamily:   "monospace",
			CornerRadius: 8,
		},
		Palette:        append([]string(nil), DefaultPalette...),
		GridEnabled:    true,
		ShowFilledArea: true,
		MaxTickLabels:  7,
		TargetTicks:    5,
	}
}

// normalized fills zero values with defaults so a partially populated
// Options (e.g. from a config file) still renders.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Canvas.Width <= 0 || o.Canvas.Height <= 0 {
		o.Canvas = d.Canvas
	}
	if o.Theme.Background == "" {
		o.Theme.Background = d.Theme.Background
	}
	if o.Theme.Grid == "" {
		o.Theme.Grid = d.Theme.Grid
	}
	if o.Theme.Axis == "" {
		o.Theme.Axis = d.Theme.Axis
	}
	if o.Theme.Label == "" {
		o.Theme.Label = d.Theme.Label
	}
	if o.Theme.Title == "" {
		o.Theme.Title = d.Theme.Title
	}
	if o.Theme.FontFamily == "" {
		o.Theme.FontFamily = d.Theme.FontFamily
	}
	if len(o.Palette) == 0 {
		o.Palette = d.Palette
	}
	if o.MaxTickLabels < 2 {
		o.MaxTickLabels = d.MaxTickLabels
	}
	if o.TargetTicks <= 0 {
		o.TargetTicks = d.TargetTicks
	}
	return o
}

// Color returns the palette color for the series at position i, cycling
// through the palette.
func (o Options) Color(i int) string {
	p := o.Palette
	if len(p) == 0 {
		p = DefaultPalette
	}
	return p[i%len(p)]
}
