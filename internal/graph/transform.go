package graph

import "strings"

// Stats counts the markers seen by one Expand call.
type Stats struct {
	Markers  int `json:"markers"`
	Rendered int `json:"rendered"`
	Dropped  int `json:"dropped"`
}

// Transformer rewrites every marker in a text into its chart fragment.
// It holds no mutable state and is safe for concurrent use.
type Transformer struct {
	renderer *Renderer
}

// New returns a Transformer using opts.
func New(opts Options) *Transformer {
	return &Transformer{renderer: NewRenderer(opts)}
}

var defaultTransformer = New(DefaultOptions())

// Render expands all markers in text using DefaultOptions.
func Render(text string) string {
	return defaultTransformer.Render(text)
}

// Options returns the effective options.
func (t *Transformer) Options() Options {
	return t.renderer.Options()
}

// Renderer returns the underlying SVG renderer.
func (t *Transformer) Renderer() *Renderer {
	return t.renderer
}

// Scan returns all markers in text, left to right and non-overlapping.
func (t *Transformer) Scan(text string) []Match {
	return scan(text, t.renderer.opts.GridEnabled)
}

// Fragment renders one parsed marker. Invalid specs yield "".
func (t *Transformer) Fragment(spec ChartSpec) string {
	return t.renderer.Fragment(spec)
}

// Render returns text with every marker replaced by its fragment, or
// removed when it carries no valid value. Text without markers is returned
// unchanged.
func (t *Transformer) Render(text string) string {
	out, _ := t.Expand(text)
	return out
}

// Expand is Render with marker statistics.
func (t *Transformer) Expand(text string) (string, Stats) {
	matches := t.Scan(text)
	if len(matches) == 0 {
		return text, Stats{}
	}

	var (
		sb    strings.Builder
		stats Stats
		prev  int
	)
	sb.Grow(len(text))
	for _, m := range matches {
		sb.WriteString(text[prev:m.Start])
		stats.Markers++
		if frag := t.Fragment(m.Spec); frag != "" {
			sb.WriteString(frag)
			stats.Rendered++
		} else {
			stats.Dropped++
		}
		prev = m.End
	}
	sb.WriteString(text[prev:])
	return sb.String(), stats
}
