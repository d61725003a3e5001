// Package output writes a single chart in one of the supported formats.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/notegraph/internal/export"
	"github.com/seenimoa/notegraph/internal/graph"
	"github.com/seenimoa/notegraph/internal/raster"
	"github.com/seenimoa/notegraph/internal/termchart"
)

// Supported formats.
const (
	SVG  = "svg"
	PNG  = "png"
	Text = "txt"
	XLSX = "xlsx"
)

// MaxScale bounds the PNG scale factor.
const MaxScale = 8

var contentTypes = map[string]string{
	SVG:  "image/svg+xml",
	PNG:  "image/png",
	Text: "text/plain; charset=utf-8",
	XLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Params tunes the raster and terminal formats.
type Params struct {
	Scale  float64 // PNG scale factor; 0 means 1
	Color  bool    // ANSI colors for Text
	Height int     // Text rows; 0 means the termchart default
}

// Normalize maps a format name or alias to a supported format.
func Normalize(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "ascii", "text":
		f = Text
	case "excel":
		f = XLSX
	}
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("unknown format %q (want svg, png, txt or xlsx)", format)
	}
	return f, nil
}

// CheckScale rejects PNG scale factors outside (0, MaxScale].
func CheckScale(scale float64) error {
	if !(scale > 0 && scale <= MaxScale) {
		return fmt.Errorf("scale must be a number in (0, %d], got %g", MaxScale, scale)
	}
	return nil
}

// ContentType returns the MIME type of a normalized format.
func ContentType(format string) string {
	return contentTypes[format]
}

// Write renders spec to w in format. Invalid specs yield graph.ErrNoData.
func Write(w io.Writer, format string, spec graph.ChartSpec, opts graph.Options, p Params) error {
	f, err := Normalize(format)
	if err != nil {
		return err
	}

	switch f {
	case SVG:
		return graph.NewRenderer(opts).WriteSVG(w, spec)
	case PNG:
		return raster.RenderScaled(w, spec, opts, p.Scale)
	case Text:
		out, err := termchart.Plot(spec, opts.Palette, termchart.Options{Height: p.Height, Color: p.Color})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out+"\n")
		return err
	default:
		return export.WriteXLSX(w, spec)
	}
}
