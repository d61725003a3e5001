// Package raster draws charts as PNG images for hosts that cannot inline
// SVG. It uses the same layout as the SVG renderer, so both outputs agree on
// scale, ticks and point positions.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"github.com/seenimoa/notegraph/internal/graph"
)

const (
	markerRadius = 3.0
	fillAlpha    = 20 // 0.08 opacity
)

// fallback is used for colors that are not #rgb or #rrggbb.
var fallback = color.NRGBA{0x88, 0x92, 0xa4, 0xff}

// Render writes spec as a PNG at 1x scale.
func Render(w io.Writer, spec graph.ChartSpec, opts graph.Options) error {
	img, err := Image(spec, opts, 1)
	if err != nil {
		return err
	}
	return encode(w, img)
}

// RenderScaled writes spec as a PNG enlarged by scale, for high-density
// displays.
func RenderScaled(w io.Writer, spec graph.ChartSpec, opts graph.Options, scale float64) error {
	img, err := Image(spec, opts, scale)
	if err != nil {
		return err
	}
	return encode(w, img)
}

func encode(w io.Writer, img image.Image) error {
	dc := gg.NewContextForImage(img)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// Image draws spec into a new image. It returns graph.ErrNoData when spec
// has no values.
func Image(spec graph.ChartSpec, opts graph.Options, scale float64) (image.Image, error) {
	if !spec.Valid() {
		return nil, graph.ErrNoData
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}

	opts = graph.NewRenderer(opts).Options()
	l := graph.NewLayout(spec, opts)
	c := l.Canvas
	th := opts.Theme

	dc := gg.NewContext(int(math.Ceil(float64(c.Width)*scale)), int(math.Ceil(float64(c.Height)*scale)))
	dc.Scale(scale, scale)

	dc.SetColor(ParseColor(th.Background))
	dc.DrawRoundedRectangle(0, 0, float64(c.Width), float64(c.Height), float64(th.CornerRadius))
	dc.Fill()

	left, right, top, bottom := l.Left(), l.Right(), l.Top(), l.Bottom()

	if spec.HasTitle() {
		dc.SetColor(ParseColor(th.Title))
		dc.DrawStringAnchored(spec.Title, float64(c.Width)/2, top-12, 0.5, 0)
	}

	// Y grid and labels
	dc.SetLineWidth(1)
	for _, v := range l.YTicks {
		y := l.Y(v)
		if spec.GridEnabled {
			dc.SetColor(ParseColor(th.Grid))
			dc.DrawLine(left, y, right, y)
			dc.Stroke()
		}
		dc.SetColor(ParseColor(th.Label))
		dc.DrawStringAnchored(graph.FormatTick(v), left-4, y, 1, 0.5)
	}

	// X grid and labels
	for _, i := range l.XTicks {
		x := l.X(i)
		if spec.GridEnabled {
			dc.SetColor(ParseColor(th.Grid))
			dc.DrawLine(x, top, x, bottom)
			dc.Stroke()
		}
		dc.SetColor(ParseColor(th.Label))
		dc.DrawStringAnchored(strconv.Itoa(i), x, bottom+12, 0.5, 0)
	}

	dc.SetColor(ParseColor(th.Axis))
	dc.SetLineWidth(1.5)
	dc.DrawLine(left, top, left, bottom)
	dc.DrawLine(left, bottom, right, bottom)
	dc.Stroke()

	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetLineCap(gg.LineCapRound)
	for si, s := range spec.Series {
		if len(s.Values) == 0 {
			continue
		}
		col := ParseColor(opts.Color(spec.PaletteSlot(si)))
		pts := l.Points(s)

		if opts.ShowFilledArea {
			dc.MoveTo(pts[0].X, bottom)
			for _, p := range pts {
				dc.LineTo(p.X, p.Y)
			}
			dc.LineTo(pts[len(pts)-1].X, bottom)
			dc.ClosePath()
			dc.SetColor(withAlpha(col, fillAlpha))
			dc.Fill()
		}

		dc.SetColor(col)
		dc.SetLineWidth(2)
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()

		dc.SetLineWidth(1.5)
		for _, p := range pts {
			dc.DrawCircle(p.X, p.Y, markerRadius)
			dc.SetColor(col)
			dc.FillPreserve()
			dc.SetColor(ParseColor(th.Background))
			dc.Stroke()
		}
	}

	return dc.Image(), nil
}

// ParseColor parses #rgb and #rrggbb colors. Anything else maps to a
// neutral gray.
func ParseColor(s string) color.NRGBA {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
