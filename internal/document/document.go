// Package document expands graph markers inside HTML, for notes that have
// already been rendered from Markdown.
//
// Only text nodes are rewritten. Text inside pre, code, script, style,
// textarea and title elements is left alone so marker syntax can be documented.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/seenimoa/notegraph/internal/graph"
)

const skipSelector = "pre, code, script, style, textarea, title"

// markerPrefix lets text nodes without markers be skipped cheaply.
const markerPrefix = "@graph["

// ExpandDocument parses a full HTML document from r and returns it with every
// marker in its text replaced by an inline chart.
func ExpandDocument(r io.Reader, t *graph.Transformer) (string, graph.Stats, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", graph.Stats{}, fmt.Errorf("parsing html document: %w", err)
	}

	stats := expand(doc.Selection, t)

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", stats, fmt.Errorf("rendering html document: %w", err)
	}
	return out, stats, nil
}

// ExpandFragment is ExpandDocument for a body fragment. The result carries
// no html, head or body wrapper.
func ExpandFragment(r io.Reader, t *graph.Transformer) (string, graph.Stats, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return "", graph.Stats{}, fmt.Errorf("parsing html fragment: %w", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	sel := goquery.NewDocumentFromNode(root).Selection

	stats := expand(sel, t)

	out, err := sel.Html()
	if err != nil {
		return "", stats, fmt.Errorf("rendering html fragment: %w", err)
	}
	return out, stats, nil
}

func expand(root *goquery.Selection, t *graph.Transformer) graph.Stats {
	skip := make(map[*html.Node]bool)
	root.Find(skipSelector).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			skip[n] = true
		}
	})

	// Collect first; replacing while iterating would invalidate the walk.
	var targets []*html.Node
	root.Find("*").AddSelection(root).Contents().Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if n.Type != html.TextNode || !strings.Contains(n.Data, markerPrefix) {
			return
		}
		if insideSkipped(n, skip) {
			return
		}
		targets = append(targets, n)
	})

	var stats graph.Stats
	for _, n := range targets {
		replacement, st := expandText(n.Data, t)
		stats.Markers += st.Markers
		stats.Rendered += st.Rendered
		stats.Dropped += st.Dropped
		if st.Markers == 0 {
			continue
		}
		goquery.NewDocumentFromNode(n).Selection.ReplaceWithHtml(replacement)
	}
	return stats
}

// expandText returns text as HTML with literal runs escaped and markers
// replaced by their fragments.
func expandText(text string, t *graph.Transformer) (string, graph.Stats) {
	var stats graph.Stats
	matches := t.Scan(text)
	if len(matches) == 0 {
		return html.EscapeString(text), stats
	}

	var sb strings.Builder
	prev := 0
	for _, m := range matches {
		sb.WriteString(html.EscapeString(text[prev:m.Start]))
		stats.Markers++
		if frag := t.Fragment(m.Spec); frag != "" {
			sb.WriteString(frag)
			stats.Rendered++
		} else {
			stats.Dropped++
		}
		prev = m.End
	}
	sb.WriteString(html.EscapeString(text[prev:]))
	return sb.String(), stats
}

func insideSkipped(n *html.Node, skip map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if skip[p] {
			return true
		}
	}
	return false
}
