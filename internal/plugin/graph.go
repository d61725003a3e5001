package plugin

import "github.com/seenimoa/notegraph/internal/graph"

// Graph plugin identity as shown to hosts.
const (
	GraphName        = "LineGraph"
	GraphVersion     = "2.0"
	GraphDescription = "Draws @graph[1,3,2,5,4] or @graph[A series:B series] as a line chart"
)

// GraphPlugin exposes a graph.Transformer as a Plugin.
type GraphPlugin struct {
	t *graph.Transformer
}

// NewGraphPlugin wraps t. A nil t uses graph.DefaultOptions.
func NewGraphPlugin(t *graph.Transformer) *GraphPlugin {
	if t == nil {
		t = graph.New(graph.DefaultOptions())
	}
	return &GraphPlugin{t: t}
}

// Info implements Plugin.
func (g *GraphPlugin) Info() Info {
	return Info{Name: GraphName, Version: GraphVersion, Description: GraphDescription}
}

// Transform implements Plugin.
func (g *GraphPlugin) Transform(text string) string {
	return g.t.Render(text)
}

// Transformer returns the wrapped transformer.
func (g *GraphPlugin) Transformer() *graph.Transformer {
	return g.t
}
