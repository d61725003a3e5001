package graph

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// markerPattern matches @graph[payload] with an optional ';' grid flag and an
// optional {title}. The payload may be empty so that @graph[] is consumed.
var markerPattern = regexp.MustCompile(`@graph\[([^\]]*)\](;)?(?:\{([^}]*)\})?`)

const (
	seriesSep = ":"
	valueSep  = ","

	// maxAbsValue bounds accepted values so that max-min stays finite.
	maxAbsValue = 1e300
)

// Match is one marker occurrence inside a text.
type Match struct {
	Start int // byte offset of '@'
	End   int // byte offset just past the marker
	Spec  ChartSpec
}

// scan finds all non-overlapping markers left to right. gridDefault is OR-ed
// into every spec's GridEnabled.
func scan(text string, gridDefault bool) []Match {
	locs := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		payload := text[loc[2]:loc[3]]
		flag := loc[4] >= 0
		title := ""
		if loc[6] >= 0 {
			title = text[loc[6]:loc[7]]
		}

		spec := ParseSpec(payload, title, flag)
		spec.GridEnabled = spec.GridEnabled || gridDefault
		matches = append(matches, Match{Start: loc[0], End: loc[1], Spec: spec})
	}
	return matches
}

// ParseSpec builds a ChartSpec from the raw pieces of a marker.
func ParseSpec(payload, title string, gridFlag bool) ChartSpec {
	return ChartSpec{
		Series:      ParseSeries(payload),
		Title:       title,
		GridFlag:    gridFlag,
		GridEnabled: gridFlag,
	}
}

// ParseSeries splits a payload into series on ':' and values on ','.
// Tokens that are not finite numbers are dropped, as are series left empty.
// Series keep their position in the payload as Index and are named by it.
func ParseSeries(payload string) []Series {
	var out []Series
	for i, group := range strings.Split(payload, seriesSep) {
		var values []float64
		for _, tok := range strings.Split(group, valueSep) {
			if v, ok := parseValue(tok); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, Series{
			Name:   fmt.Sprintf("Series %d", i+1),
			Index:  i,
			Values: values,
		})
	}
	return out
}

func parseValue(tok string) (float64, bool) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxAbsValue {
		return 0, false
	}
	return v, true
}

// NewChart parses a bare payload (without the @graph[...] wrapper) for
// callers that build a chart directly. It returns ErrNoData when nothing
// can be plotted.
func NewChart(payload, title string, grid bool) (ChartSpec, error) {
	spec := ParseSpec(payload, title, grid)
	if !spec.Valid() {
		return ChartSpec{}, ErrNoData
	}
	return spec, nil
}

// MarkerSyntax returns the marker text that produces the given chart, the
// inverse of Scan for valid specs.
func MarkerSyntax(payload, title string) string {
	if title == "" {
		return "@graph[" + payload + "]"
	}
	return "@graph[" + payload + "]{" + title + "}"
}
