package graph

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
)

const (
	titleFontSize = 11
	labelFontSize = 9
	markerRadius  = 3
	fillOpacity   = "0.08"
)

// Renderer draws a ChartSpec as a self-contained SVG fragment.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer for opts. Zero fields fall back to
// DefaultOptions.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.normalized()}
}

// Options returns the effective rendering options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Fragment renders spec to a single-line <svg> element. Invalid specs
// render to the empty string.
func (r *Renderer) Fragment(spec ChartSpec) string {
	if !spec.Valid() {
		return ""
	}
	var buf bytes.Buffer
	r.write(&buf, spec, NewLayout(spec, r.opts))
	// svgo terminates every element with a newline; text content has its
	// own newlines escaped, so dropping them is safe.
	return strings.ReplaceAll(buf.String(), "\n", "")
}

// WriteSVG writes spec as a standalone SVG document.
func (r *Renderer) WriteSVG(w io.Writer, spec ChartSpec) error {
	if !spec.Valid() {
		return ErrNoData
	}
	var buf bytes.Buffer
	r.write(&buf, spec, NewLayout(spec, r.opts))
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) write(w io.Writer, spec ChartSpec, l Layout) {
	c := l.Canvas
	th := r.opts.Theme

	io.WriteString(w, svgHeader(c, th)) //nolint:errcheck
	canvas := svg.New(w)

	if spec.HasTitle() {
		canvas.Text(c.Width/2, px(l.Top())-12, spec.Title,
			fmt.Sprintf(`fill="%s" font-size="%d" text-anchor="middle" font-weight="bold"`, th.Title, titleFontSize))
	}

	left, right := px(l.Left()), px(l.Right())
	top, bottom := px(l.Top()), px(l.Bottom())
	gridStyle := fmt.Sprintf(`stroke="%s" stroke-width="1"`, th.Grid)

	// Y grid and labels
	for _, v := range l.YTicks {
		y := px(l.Y(v))
		if spec.GridEnabled {
			canvas.Line(left, y, right, y, gridStyle)
		}
		canvas.Text(left-4, y, FormatTick(v),
			fmt.Sprintf(`fill="%s" font-size="%d" text-anchor="end" dominant-baseline="middle"`, th.Label, labelFontSize))
	}

	// X grid and labels
	for _, i := range l.XTicks {
		x := px(l.X(i))
		if spec.GridEnabled {
			canvas.Line(x, top, x, bottom, gridStyle)
		}
		canvas.Text(x, bottom+12, strconv.Itoa(i),
			fmt.Sprintf(`fill="%s" font-size="%d" text-anchor="middle"`, th.Label, labelFontSize))
	}

	axisStyle := fmt.Sprintf(`stroke="%s" stroke-width="1.5"`, th.Axis)
	canvas.Line(left, top, left, bottom, axisStyle)
	canvas.Line(left, bottom, right, bottom, axisStyle)

	for si, s := range spec.Series {
		if len(s.Values) == 0 {
			continue
		}
		color := r.opts.Color(spec.PaletteSlot(si))
		xs, ys := pixels(l.Points(s))

		if r.opts.ShowFilledArea {
			ax := make([]int, 0, len(xs)+2)
			ay := make([]int, 0, len(ys)+2)
			ax = append(append(append(ax, xs[0]), xs...), xs[len(xs)-1])
			ay = append(append(append(ay, bottom), ys...), bottom)
			canvas.Polygon(ax, ay, fmt.Sprintf(`fill="%s" fill-opacity="%s"`, color, fillOpacity))
		}

		canvas.Polyline(xs, ys,
			fmt.Sprintf(`fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"`, color))

		for i := range xs {
			canvas.Circle(xs[i], ys[i], markerRadius,
				fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="1.5"`, color, th.Background))
		}
	}

	canvas.End()
}

// svgHeader opens the root element. It is written by hand so the fragment
// carries no XML prolog and can be inlined into a larger document.
func svgHeader(c Canvas, th Theme) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" style="background:%s;border-radius:%dpx;font-family:%s;display:block">`,
		c.Width, c.Height, c.Width, c.Height, th.Background, th.CornerRadius, th.FontFamily)
}

func px(v float64) int {
	return int(math.Round(v))
}

func pixels(pts []Point) (xs, ys []int) {
	xs = make([]int, len(pts))
	ys = make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}
	return xs, ys
}
