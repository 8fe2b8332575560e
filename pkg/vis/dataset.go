// Package vis adapts a knowledge graph into the dataset shape a
// vis-network frontend consumes, and tracks the presentation state
// (selection highlights and property filters) applied on top of it.
package vis

import (
	"fmt"

	"github.com/semgraph/semgraph/pkg/graph"
)

// Node is a display node. Unlike the graph model it carries mutable
// presentation state: opacity and visibility change as the user selects
// and filters, the underlying graph never does.
type Node struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Title       string          `json:"title,omitempty"`
	Group       int             `json:"group"`
	Size        float64         `json:"size"`
	Color       graph.NodeColor `json:"color"`
	Shape       string          `json:"shape"`
	BorderWidth int             `json:"borderWidth,omitempty"`
	Opacity     float64         `json:"opacity"`
	Hidden      bool            `json:"hidden"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// Edge is a display edge; vis-network references endpoints as from/to.
type Edge struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Width   float64 `json:"width"`
	Value   float64 `json:"value,omitempty"`
	Title   string  `json:"title,omitempty"`
	Dashes  bool    `json:"dashes,omitempty"`
	Arrows  string  `json:"arrows,omitempty"`
	Opacity float64 `json:"opacity"`
	Hidden  bool    `json:"hidden"`
}

// Dataset is the render model for one loaded graph. All state transitions
// are recomputed from the load-time baseline, so applying the same
// selection or filter twice yields the same dataset as applying it once,
// and clearing always restores the exact initial appearance.
type Dataset struct {
	baselineNodes []Node
	baselineEdges []Edge
	adj           map[string][]string

	nodes []Node
	edges []Edge

	selected string
	filter   *Filter
}

// FromGraph converts a built graph into a display dataset and captures the
// baseline appearance. Node content moves into the hover title; the label
// stays the short heading.
func FromGraph(g *graph.Graph) *Dataset {
	d := &Dataset{
		baselineNodes: make([]Node, 0, len(g.Nodes)),
		baselineEdges: make([]Edge, 0, len(g.Edges)),
		adj:           make(map[string][]string, len(g.Nodes)),
	}

	for _, n := range g.Nodes {
		d.baselineNodes = append(d.baselineNodes, Node{
			ID:          n.ID,
			Label:       n.Label,
			Title:       n.Content,
			Group:       n.Group,
			Size:        n.Size,
			Color:       n.Color,
			Shape:       n.Shape,
			BorderWidth: n.BorderWidth,
			Opacity:     1.0,
			Metadata:    n.Metadata,
		})
	}

	for i, e := range g.Edges {
		d.baselineEdges = append(d.baselineEdges, Edge{
			ID:      fmt.Sprintf("e%d", i),
			From:    e.Source,
			To:      e.Target,
			Width:   e.Width,
			Value:   e.Value,
			Title:   e.Title,
			Dashes:  e.Dashes,
			Arrows:  e.Arrows,
			Opacity: 1.0,
		})
		d.adj[e.Source] = append(d.adj[e.Source], e.Target)
		d.adj[e.Target] = append(d.adj[e.Target], e.Source)
	}

	d.render()
	return d
}

// Nodes returns the current display nodes.
func (d *Dataset) Nodes() []Node { return d.nodes }

// Edges returns the current display edges.
func (d *Dataset) Edges() []Edge { return d.edges }

// render rebuilds the display state from the baseline, then layers the
// active filter and selection on top. Order matters: filtering decides
// visibility, highlighting decides opacity among what remains visible.
func (d *Dataset) render() {
	nodes := make([]Node, len(d.baselineNodes))
	copy(nodes, d.baselineNodes)
	edges := make([]Edge, len(d.baselineEdges))
	copy(edges, d.baselineEdges)

	if d.filter != nil {
		applyFilter(nodes, edges, *d.filter)
	}
	if d.selected != "" {
		d.applyHighlight(nodes, edges)
	}

	d.nodes = nodes
	d.edges = edges
}
