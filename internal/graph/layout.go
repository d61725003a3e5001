package graph

import "math"

// Point is a pixel-space coordinate on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout is the per-chart geometry: the effective canvas, the shared value
// scale and the tick positions. All series of a chart share one Layout so
// they stay visually comparable.
type Layout struct {
	Canvas  Canvas    `json:"canvas"`
	Scale   AxisScale `json:"scale"`
	YTicks  []float64 `json:"y_ticks"`
	XTicks  []int     `json:"x_ticks"`
	MaxLen  int       `json:"max_len"`
	DataMin float64   `json:"data_min"`
	DataMax float64   `json:"data_max"`
}

// NewLayout computes the layout of spec on the canvas described by opts.
// It never fails: degenerate ranges and single points fall back to a
// divisor of 1.
func NewLayout(spec ChartSpec, opts Options) Layout {
	opts = opts.normalized()

	dataMin, dataMax := 0.0, 0.0
	first := true
	for _, s := range spec.Series {
		for _, v := range s.Values {
			if first {
				dataMin, dataMax = v, v
				first = false
				continue
			}
			dataMin = math.Min(dataMin, v)
			dataMax = math.Max(dataMax, v)
		}
	}

	scale := NiceScale(dataMin, dataMax, opts.TargetTicks)
	maxLen := spec.MaxLen()

	return Layout{
		Canvas:  opts.Canvas.WithTitle(spec.HasTitle()),
		Scale:   scale,
		YTicks:  scale.Ticks(),
		XTicks:  XTicks(maxLen, opts.MaxTickLabels),
		MaxLen:  maxLen,
		DataMin: dataMin,
		DataMax: dataMax,
	}
}

// Left returns the x coordinate of the y axis.
func (l Layout) Left() float64 { return float64(l.Canvas.PadLeft) }

// Right returns the right edge of the plot area.
func (l Layout) Right() float64 { return float64(l.Canvas.Width - l.Canvas.PadRight) }

// Top returns the top edge of the plot area.
func (l Layout) Top() float64 { return float64(l.Canvas.PadTop) }

// Bottom returns the y coordinate of the x axis.
func (l Layout) Bottom() float64 { return float64(l.Canvas.Height - l.Canvas.PadBottom) }

// InnerWidth returns the plot area width.
func (l Layout) InnerWidth() float64 { return l.Right() - l.Left() }

// InnerHeight returns the plot area height.
func (l Layout) InnerHeight() float64 { return l.Bottom() - l.Top() }

// X maps a point index to a horizontal pixel position.
func (l Layout) X(i int) float64 {
	den := float64(l.MaxLen - 1)
	if den <= 0 {
		den = 1
	}
	return l.Left() + float64(i)/den*l.InnerWidth()
}

// Y maps a value to a vertical pixel position; larger values sit higher.
func (l Layout) Y(v float64) float64 {
	return l.Top() + (1-(v-l.Scale.NiceMin)/l.Scale.Span())*l.InnerHeight()
}

// Points maps every value of s to pixel space.
func (l Layout) Points(s Series) []Point {
	pts := make([]Point, len(s.Values))
	for i, v := range s.Values {
		pts[i] = Point{X: l.X(i), Y: l.Y(v)}
	}
	return pts
}
