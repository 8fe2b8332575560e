package vis

// Opacity tiers by hop distance from the selected node. Nodes beyond two
// hops fade almost out but stay visible for orientation.
const (
	opacitySelected = 1.0
	opacityNeighbor = 0.75
	opacitySecond   = 0.4
	opacityDistant  = 0.15
)

// Select highlights a node and fades the rest of the graph by hop
// distance. Selecting an id not present in the dataset is a no-op, so a
// stale frontend selection cannot corrupt the display state. Selecting a
// new node replaces the previous selection outright.
func (d *Dataset) Select(nodeID string) {
	if !d.hasNode(nodeID) {
		return
	}
	d.selected = nodeID
	d.render()
}

// ClearSelection restores every node and edge to its baseline opacity,
// leaving any active filter in place.
func (d *Dataset) ClearSelection() {
	d.selected = ""
	d.render()
}

// Selected returns the currently highlighted node id, or empty.
func (d *Dataset) Selected() string { return d.selected }

func (d *Dataset) hasNode(id string) bool {
	for _, n := range d.baselineNodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// applyHighlight assigns opacity tiers from the breadth-first distance to
// the selected node. Edges take the weaker of their endpoints' tiers so a
// faded node never has a fully opaque edge attached.
func (d *Dataset) applyHighlight(nodes []Node, edges []Edge) {
	dist := map[string]int{d.selected: 0}
	frontier := []string{d.selected}
	for depth := 1; depth <= 2 && len(frontier) > 0; depth++ {
		next := make([]string, 0)
		for _, cur := range frontier {
			for _, nb := range d.adj[cur] {
				if _, seen := dist[nb]; seen {
					continue
				}
				dist[nb] = depth
				next = append(next, nb)
			}
		}
		frontier = next
	}

	opacity := func(id string) float64 {
		hops, reached := dist[id]
		if !reached {
			return opacityDistant
		}
		switch hops {
		case 0:
			return opacitySelected
		case 1:
			return opacityNeighbor
		default:
			return opacitySecond
		}
	}

	for i := range nodes {
		nodes[i].Opacity = opacity(nodes[i].ID)
	}
	for i := range edges {
		from := opacity(edges[i].From)
		to := opacity(edges[i].To)
		if to < from {
			edges[i].Opacity = to
		} else {
			edges[i].Opacity = from
		}
	}
}
