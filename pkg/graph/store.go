package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/semgraph/semgraph/pkg/apperr"
)

const (
	defaultNodeLimit = 100
	maxNodeLimit     = 1000
	minTraverseDepth = 1
	maxTraverseDepth = 3
)

// snapshot is an immutable view of one built graph together with its
// lookup indexes. Replacing the store's current snapshot swaps the whole
// pointer, so readers always see a consistent graph.
type snapshot struct {
	graph *Graph
	byID  map[string]*Node
	// order maps node id to its insertion position, used to keep every
	// read model in deterministic build order.
	order map[string]int
	adj   map[string][]string
}

func newSnapshot(g *Graph) *snapshot {
	s := &snapshot{
		graph: g,
		byID:  make(map[string]*Node, len(g.Nodes)),
		order: make(map[string]int, len(g.Nodes)),
		adj:   make(map[string][]string, len(g.Nodes)),
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		s.byID[n.ID] = n
		s.order[n.ID] = i
	}
	for _, e := range g.Edges {
		s.adj[e.Source] = append(s.adj[e.Source], e.Target)
		s.adj[e.Target] = append(s.adj[e.Target], e.Source)
	}
	return s
}

// reachable runs a breadth-first traversal from the given node up to
// maxDepth hops, treating edges as undirected. The start node itself is
// excluded, each reachable node appears exactly once, and the result is
// sorted into build order. Running against one snapshot keeps a traversal
// consistent even while the store is being replaced.
func (sn *snapshot) reachable(id string, maxDepth int) []string {
	visited := map[string]struct{}{id: {}}
	frontier := []string{id}
	reached := make([]string, 0)

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		next := make([]string, 0)
		for _, cur := range frontier {
			for _, nb := range sn.adj[cur] {
				if _, seen := visited[nb]; seen {
					continue
				}
				visited[nb] = struct{}{}
				reached = append(reached, nb)
				next = append(next, nb)
			}
		}
		frontier = next
	}

	sort.Slice(reached, func(i, j int) bool {
		return sn.order[reached[i]] < sn.order[reached[j]]
	})
	return reached
}

func clampDepth(maxDepth int) int {
	if maxDepth < minTraverseDepth {
		return minTraverseDepth
	}
	if maxDepth > maxTraverseDepth {
		return maxTraverseDepth
	}
	return maxDepth
}

// Store holds the current knowledge graph and serves all read queries
// against it. Reads never block: they operate on an atomically swapped
// immutable snapshot, so a concurrent rebuild cannot tear a response.
type Store struct {
	current atomic.Pointer[snapshot]
}

// NewStore creates a Store seeded with the given graph. A nil graph seeds
// an empty store.
func NewStore(g *Graph) *Store {
	if g == nil {
		g = &Graph{Nodes: []Node{}, Edges: []Edge{}, Metadata: map[string]any{}}
	}
	s := &Store{}
	s.current.Store(newSnapshot(g))
	return s
}

// Replace atomically installs a newly built graph. In-flight readers keep
// the snapshot they started with.
func (s *Store) Replace(g *Graph) {
	s.current.Store(newSnapshot(g))
}

// Topic returns the topic recorded in the current graph's metadata, if any.
func (s *Store) Topic() string {
	snap := s.current.Load()
	topic, _ := snap.graph.Metadata["topic"].(string)
	return topic
}

// FullGraph is the response model for a complete graph read.
type FullGraph struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GetFull returns the current graph. A non-empty topic keeps only nodes
// whose label or content contains it, together with the edges induced by
// those nodes. Metadata is attached only when requested; under a topic
// filter the counts and average similarity describe the filtered view.
func (s *Store) GetFull(topic string, includeMetadata bool) *FullGraph {
	snap := s.current.Load()

	nodes := snap.graph.Nodes
	edges := snap.graph.Edges
	if topic != "" {
		nodes = filterByTopic(nodes, topic)
		ids := make(map[string]struct{}, len(nodes))
		for _, n := range nodes {
			ids[n.ID] = struct{}{}
		}
		kept := make([]Edge, 0, len(edges))
		for _, e := range edges {
			if _, ok := ids[e.Source]; !ok {
				continue
			}
			if _, ok := ids[e.Target]; !ok {
				continue
			}
			kept = append(kept, e)
		}
		edges = kept
	}

	out := &FullGraph{Nodes: nodes, Edges: edges}
	if includeMetadata {
		if topic == "" {
			out.Metadata = snap.graph.Metadata
		} else {
			filtered := &Graph{Nodes: nodes, Edges: edges, Metadata: map[string]any{}}
			filtered.ComputeMetadata()
			filtered.Metadata["topic_filter"] = topic
			out.Metadata = filtered.Metadata
		}
	}
	return out
}

// filterByTopic keeps nodes whose label or content contains the topic,
// case-insensitively.
func filterByTopic(nodes []Node, topic string) []Node {
	needle := strings.ToLower(topic)
	matched := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if strings.Contains(strings.ToLower(n.Label), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle) {
			matched = append(matched, n)
		}
	}
	return matched
}

// NodePage is the response model for a node listing.
type NodePage struct {
	Nodes []Node `json:"nodes"`
	Total int    `json:"total"`
	Count int    `json:"count"`
}

// GetNodes lists nodes in insertion order, optionally restricted to one
// group and to a topic substring over label and content. Total reports the
// match count before the limit is applied. The limit defaults to 100 and
// is capped at 1000.
func (s *Store) GetNodes(topic string, group *int, limit int) *NodePage {
	if limit <= 0 {
		limit = defaultNodeLimit
	}
	if limit > maxNodeLimit {
		limit = maxNodeLimit
	}

	snap := s.current.Load()
	matched := make([]Node, 0, len(snap.graph.Nodes))
	for _, n := range snap.graph.Nodes {
		if group != nil && n.Group != *group {
			continue
		}
		matched = append(matched, n)
	}
	if topic != "" {
		matched = filterByTopic(matched, topic)
	}

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return &NodePage{Nodes: matched, Total: total, Count: len(matched)}
}

// GetNode returns a single node by id.
func (s *Store) GetNode(id string) (*Node, error) {
	snap := s.current.Load()
	n, ok := snap.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: node %q", apperr.ErrNotFound, id)
	}
	return n, nil
}

// Neighborhood is the response model for a neighbor traversal.
type Neighborhood struct {
	NodeID    string `json:"node_id"`
	Neighbors []Node `json:"neighbors"`
	Count     int    `json:"count"`
	Depth     int    `json:"depth"`
}

// GetNeighbors returns the nodes reachable from the given node within
// maxDepth hops. Depth is clamped to [1,3].
func (s *Store) GetNeighbors(id string, maxDepth int) (*Neighborhood, error) {
	maxDepth = clampDepth(maxDepth)

	snap := s.current.Load()
	if _, ok := snap.byID[id]; !ok {
		return nil, fmt.Errorf("%w: node %q", apperr.ErrNotFound, id)
	}

	reached := snap.reachable(id, maxDepth)

	neighbors := make([]Node, 0, len(reached))
	for _, nid := range reached {
		neighbors = append(neighbors, *snap.byID[nid])
	}

	return &Neighborhood{
		NodeID:    id,
		Neighbors: neighbors,
		Count:     len(neighbors),
		Depth:     maxDepth,
	}, nil
}

// EdgePage is the response model for an edge listing.
type EdgePage struct {
	Edges []Edge `json:"edges"`
	Total int    `json:"total"`
	Count int    `json:"count"`
}

// GetEdges lists edges in insertion order. A non-empty nodeID keeps only
// edges touching that node; minSimilarity drops edges below it. Total
// reports the match count before the limit.
func (s *Store) GetEdges(nodeID string, minSimilarity float64, limit int) *EdgePage {
	if limit <= 0 {
		limit = defaultNodeLimit
	}
	if limit > maxNodeLimit {
		limit = maxNodeLimit
	}

	snap := s.current.Load()
	matched := make([]Edge, 0, len(snap.graph.Edges))
	for _, e := range snap.graph.Edges {
		if nodeID != "" && e.Source != nodeID && e.Target != nodeID {
			continue
		}
		if e.Similarity < minSimilarity {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return &EdgePage{Edges: matched, Total: total, Count: len(matched)}
}

// QueryParams selects a subgraph.
type QueryParams struct {
	NodeIDs          []string
	Topic            string
	IncludeNeighbors bool
	MaxDepth         int
}

// QueryResult is the response model for a subgraph query.
type QueryResult struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata"`
}

// Query returns the subgraph induced by the requested node ids, optionally
// expanded with their breadth-first neighborhoods. Requested ids that do
// not exist are skipped rather than failing the query; the result set is
// deduplicated and kept in build order, so the same query always yields
// the same response. Without node ids the query falls back to the topic
// filter, and without either it returns the full graph.
func (s *Store) Query(params QueryParams) *QueryResult {
	snap := s.current.Load()

	queryType := "full"
	selected := make(map[string]struct{})

	switch {
	case len(params.NodeIDs) > 0:
		queryType = "selection"
		for _, id := range params.NodeIDs {
			if _, ok := snap.byID[id]; !ok {
				continue
			}
			selected[id] = struct{}{}
		}
		if params.IncludeNeighbors {
			queryType = "selection_with_neighbors"
			depth := clampDepth(params.MaxDepth)
			for _, id := range params.NodeIDs {
				if _, ok := snap.byID[id]; !ok {
					continue
				}
				for _, nb := range snap.reachable(id, depth) {
					selected[nb] = struct{}{}
				}
			}
		}
	case params.Topic != "":
		queryType = "topic"
		for _, n := range filterByTopic(snap.graph.Nodes, params.Topic) {
			selected[n.ID] = struct{}{}
		}
	default:
		for _, n := range snap.graph.Nodes {
			selected[n.ID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return snap.order[ids[i]] < snap.order[ids[j]]
	})

	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, *snap.byID[id])
	}

	edges := make([]Edge, 0)
	for _, e := range snap.graph.Edges {
		if _, ok := selected[e.Source]; !ok {
			continue
		}
		if _, ok := selected[e.Target]; !ok {
			continue
		}
		edges = append(edges, e)
	}

	return &QueryResult{
		Nodes: nodes,
		Edges: edges,
		Metadata: map[string]any{
			"query_type":      queryType,
			"requested_nodes": len(params.NodeIDs),
			"node_count":      len(nodes),
			"edge_count":      len(edges),
		},
	}
}
