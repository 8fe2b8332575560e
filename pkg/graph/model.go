package graph

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/semgraph/semgraph/pkg/apperr"
)

// NodeColor is either a single color value or a background/border pair.
// It marshals to a plain string when no border is set, matching the wire
// shape the visualization layer expects.
type NodeColor struct {
	Background string `json:"background"`
	Border     string `json:"border,omitempty"`
}

func (c NodeColor) MarshalJSON() ([]byte, error) {
	if c.Border == "" {
		return json.Marshal(c.Background)
	}
	type plain NodeColor
	return json.Marshal(plain(c))
}

func (c *NodeColor) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = NodeColor{Background: single}
		return nil
	}
	type plain NodeColor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = NodeColor(p)
	return nil
}

// Node is a vertex in the knowledge graph: a statement, article section,
// or reference source.
type Node struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Content     string         `json:"content,omitempty"`
	Group       int            `json:"group"`
	Size        float64        `json:"size"`
	Color       NodeColor      `json:"color"`
	Shape       string         `json:"shape"`
	BorderWidth int            `json:"borderWidth,omitempty"`
	X           *float64       `json:"x,omitempty"`
	Y           *float64       `json:"y,omitempty"`
	DrawOrder   int            `json:"draw_order,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Edge is a weighted connection between two nodes. Similarity edges are
// conceptually undirected; citation edges are directed (Arrows set).
type Edge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Similarity float64        `json:"similarity"`
	Width      float64        `json:"width"`
	Title      string         `json:"title,omitempty"`
	Value      float64        `json:"value,omitempty"`
	Dashes     bool           `json:"dashes,omitempty"`
	Arrows     string         `json:"arrows,omitempty"`
	DrawOrder  int            `json:"draw_order,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Graph is the aggregate of nodes and edges plus derived metadata.
// Node order is insertion order and doubles as presentation order.
type Graph struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata"`
}

// ComputeMetadata recomputes the aggregate metadata from the current nodes
// and edges, preserving any build-specific keys already present. Similarity
// aggregates are defined as 0 when there are no edges.
func (g *Graph) ComputeMetadata() {
	if g.Metadata == nil {
		g.Metadata = make(map[string]any)
	}

	g.Metadata["node_count"] = len(g.Nodes)
	g.Metadata["edge_count"] = len(g.Edges)

	groupSet := make(map[int]struct{})
	for _, n := range g.Nodes {
		groupSet[n.Group] = struct{}{}
	}
	groups := make([]int, 0, len(groupSet))
	for group := range groupSet {
		groups = append(groups, group)
	}
	sort.Ints(groups)
	g.Metadata["groups"] = groups

	var avg, minSim, maxSim float64
	if len(g.Edges) > 0 {
		minSim = g.Edges[0].Similarity
		maxSim = g.Edges[0].Similarity
		total := 0.0
		for _, e := range g.Edges {
			total += e.Similarity
			if e.Similarity < minSim {
				minSim = e.Similarity
			}
			if e.Similarity > maxSim {
				maxSim = e.Similarity
			}
		}
		avg = total / float64(len(g.Edges))
	}
	g.Metadata["avg_similarity"] = avg
	g.Metadata["min_similarity"] = minSim
	g.Metadata["max_similarity"] = maxSim
}

// Validate checks the structural invariants: every edge references existing
// nodes, no self-edges, similarity within [0,1], node ids unique.
func (g *Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node with empty id", apperr.ErrInvalidInput)
		}
		if _, ok := seen[n.ID]; ok {
			return fmt.Errorf("%w: duplicate node id %q", apperr.ErrInvalidInput, n.ID)
		}
		seen[n.ID] = struct{}{}
	}

	for _, e := range g.Edges {
		if e.Source == e.Target {
			return fmt.Errorf("%w: self-edge on node %q", apperr.ErrInvalidInput, e.Source)
		}
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("%w: edge references missing node %q", apperr.ErrInvalidInput, e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("%w: edge references missing node %q", apperr.ErrInvalidInput, e.Target)
		}
		if e.Similarity < 0 || e.Similarity > 1 {
			return fmt.Errorf("%w: edge %s-%s similarity %v out of range", apperr.ErrInvalidInput, e.Source, e.Target, e.Similarity)
		}
	}

	return nil
}
