package vis

import (
	"fmt"
	"strconv"

	"github.com/semgraph/semgraph/pkg/apperr"
)

// Filter hides every node or edge whose property value is not in Values.
// Hidden nodes also lose their labels so vis-network does not render text
// for invisible elements.
type Filter struct {
	// Item is "node" or "edge".
	Item string `json:"item"`
	// Property names what to match: for nodes "id", "label", "group",
	// "shape", or a metadata key; for edges "arrows", "dashes", or a
	// metadata-free property like "from"/"to".
	Property string   `json:"property"`
	Values   []string `json:"values"`
}

// ApplyFilter installs a filter, replacing any previous one. An empty
// Values list clears the active filter instead of hiding everything, which
// is what a frontend sends when the user deselects the last filter value.
func (d *Dataset) ApplyFilter(f Filter) error {
	if len(f.Values) == 0 {
		d.ClearFilter()
		return nil
	}
	if f.Item != "node" && f.Item != "edge" {
		return fmt.Errorf("%w: filter item must be node or edge, got %q", apperr.ErrInvalidInput, f.Item)
	}
	if f.Property == "" {
		return fmt.Errorf("%w: filter property is required", apperr.ErrInvalidInput)
	}

	d.filter = &f
	d.render()
	return nil
}

// ClearFilter removes the active filter and restores baseline visibility
// and labels, leaving any selection highlight in place.
func (d *Dataset) ClearFilter() {
	d.filter = nil
	d.render()
}

// ActiveFilter returns the installed filter, or nil.
func (d *Dataset) ActiveFilter() *Filter { return d.filter }

// applyFilter resolves the filter to a set of selected nodes: a node
// filter selects the nodes whose property matches, an edge filter selects
// the endpoints of matching edges. Everything outside the selection is
// hidden and loses its label.
func applyFilter(nodes []Node, edges []Edge, f Filter) {
	match := func(value string) bool {
		for _, v := range f.Values {
			if v == value {
				return true
			}
		}
		return false
	}

	selected := make(map[string]struct{})
	switch f.Item {
	case "node":
		for i := range nodes {
			if match(nodeProperty(&nodes[i], f.Property)) {
				selected[nodes[i].ID] = struct{}{}
			}
		}
	case "edge":
		for i := range edges {
			if match(edgeProperty(&edges[i], f.Property)) {
				selected[edges[i].From] = struct{}{}
				selected[edges[i].To] = struct{}{}
			} else {
				edges[i].Hidden = true
			}
		}
	}

	for i := range nodes {
		if _, ok := selected[nodes[i].ID]; ok {
			continue
		}
		nodes[i].Hidden = true
		nodes[i].Label = ""
	}

	// An edge with a hidden endpoint has nothing to attach to.
	for i := range edges {
		if _, ok := selected[edges[i].From]; !ok {
			edges[i].Hidden = true
			continue
		}
		if _, ok := selected[edges[i].To]; !ok {
			edges[i].Hidden = true
		}
	}
}

func nodeProperty(n *Node, property string) string {
	switch property {
	case "id":
		return n.ID
	case "label":
		return n.Label
	case "group":
		return strconv.Itoa(n.Group)
	case "shape":
		return n.Shape
	default:
		if n.Metadata == nil {
			return ""
		}
		return fmt.Sprintf("%v", n.Metadata[property])
	}
}

func edgeProperty(e *Edge, property string) string {
	switch property {
	case "from":
		return e.From
	case "to":
		return e.To
	case "arrows":
		return e.Arrows
	case "dashes":
		return strconv.FormatBool(e.Dashes)
	default:
		return ""
	}
}
