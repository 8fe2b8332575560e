package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/semgraph/semgraph/pkg/ai"
	"github.com/semgraph/semgraph/pkg/apperr"
)

// fakeEmbedder returns canned vectors keyed by the first word of the input
// text, so tests can dictate exact pairwise similarities.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, content []byte) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := strings.Fields(string(content))[0]
	vec, ok := f.vectors[key]
	if !ok {
		return nil, errors.New("no vector for " + key)
	}
	return vec, nil
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, contents [][]byte) ([][]float32, error) {
	out := make([][]float32, len(contents))
	for i, c := range contents {
		vec, err := f.GenerateEmbedding(ctx, c)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
func (f *fakeEmbedder) ResetMetrics()               {}

func padText(word string) string {
	return word + " " + strings.Repeat("filler text for the minimum length gate ", 3)
}

// newTestItems yields three items with cos(A,B)=0.8, cos(B,C)=0.5 and
// cos(A,C)=0.1.
func newTestItems() ([]Item, *fakeEmbedder) {
	items := []Item{
		{ID: "a", Label: "Alpha", Text: padText("alpha"), Level: 1},
		{ID: "b", Label: "Beta", Text: padText("beta"), Level: 1},
		{ID: "c", Label: "Gamma", Text: padText("gamma"), Level: 2},
	}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0.8, 0.6, 0},
		"gamma": {0.1, 0.7, 0.7071067811865476},
	}}
	return items, embedder
}

func TestBuildThresholdGatesEdges(t *testing.T) {
	tests := []struct {
		name          string
		threshold     float64
		expectedEdges int
	}{
		{"default threshold keeps both pairs", 0.3, 2},
		{"raised threshold drops the weaker pair", 0.6, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			items, embedder := newTestItems()
			builder := NewBuilder(NewBuilderParams{Embedder: embedder, EmbeddingModel: "test-model"})

			g, err := builder.Build(context.Background(), items, BuildOptions{SimilarityThreshold: test.threshold})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(g.Edges) != test.expectedEdges {
				t.Errorf("Expected %d edges, got %d", test.expectedEdges, len(g.Edges))
			}
			if len(g.Nodes) != 3 {
				t.Errorf("Expected 3 nodes, got %d", len(g.Nodes))
			}
			for _, e := range g.Edges {
				if e.Similarity < test.threshold {
					t.Errorf("Edge %s-%s below threshold: %f", e.Source, e.Target, e.Similarity)
				}
				if e.Width != EdgeWidth(e.Similarity) {
					t.Errorf("Edge %s-%s width %f does not match similarity %f", e.Source, e.Target, e.Width, e.Similarity)
				}
			}
		})
	}
}

func TestBuildSkipsStubItems(t *testing.T) {
	items, embedder := newTestItems()
	items = append(items, Item{ID: "stub", Label: "Stub", Text: "too short", Level: 1})

	builder := NewBuilder(NewBuilderParams{Embedder: embedder})
	g, err := builder.Build(context.Background(), items, BuildOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, n := range g.Nodes {
		if n.ID == "stub" {
			t.Errorf("Expected stub item to be skipped")
		}
	}
}

func TestBuildAllStubsYieldsEmptyGraph(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	items := []Item{
		{ID: "a", Label: "A", Text: "short"},
		{ID: "b", Label: "B", Text: "also short"},
	}

	builder := NewBuilder(NewBuilderParams{Embedder: embedder})
	g, err := builder.Build(context.Background(), items, BuildOptions{})
	if err != nil {
		t.Fatalf("Expected empty graph instead of error, got %v", err)
	}
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("Expected empty graph, got %d nodes and %d edges", len(g.Nodes), len(g.Edges))
	}
	if embedder.calls != 0 {
		t.Errorf("Expected no embedding calls for stub-only input, got %d", embedder.calls)
	}
	if g.Metadata["node_count"] != 0 {
		t.Errorf("Expected node_count metadata of 0, got %v", g.Metadata["node_count"])
	}
}

func TestBuildEmbedderFailureIsUpstream(t *testing.T) {
	items, embedder := newTestItems()
	embedder.err = errors.New("model offline")

	builder := NewBuilder(NewBuilderParams{Embedder: embedder})
	_, err := builder.Build(context.Background(), items, BuildOptions{})
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Errorf("Expected upstream error, got %v", err)
	}
	// Two items should each get a retry before the build fails; exact call
	// counts depend on scheduling, but at least one retry must happen.
	if embedder.calls < 2 {
		t.Errorf("Expected failed calls to be retried, got %d calls", embedder.calls)
	}
}

func TestBuildAttachesSources(t *testing.T) {
	items, embedder := newTestItems()

	builder := NewBuilder(NewBuilderParams{Embedder: embedder})
	g, err := builder.Build(context.Background(), items, BuildOptions{
		Sources: []SourceRef{
			{ID: "src1", Label: "Perkins (1986)", Language: "en", SectionIDs: []string{"a"}, Strength: 0.9},
			{ID: "src2", Label: "Khémais", Language: "fr", SectionIDs: []string{"missing"}, Strength: 0.8},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(g.Nodes) != 5 {
		t.Errorf("Expected 3 section nodes and 2 source nodes, got %d", len(g.Nodes))
	}

	var citation *Edge
	for i := range g.Edges {
		if g.Edges[i].Metadata["edge_type"] == "source_citation" {
			if g.Edges[i].Source == "src2" {
				t.Errorf("Expected citation to a missing section to be skipped")
			}
			citation = &g.Edges[i]
		}
	}
	if citation == nil {
		t.Fatalf("Expected a citation edge from src1")
	}
	if !citation.Dashes || citation.Arrows != "to" || citation.Width != citationEdgeWidth {
		t.Errorf("Expected dashed directed citation edge of width %f, got %+v", citationEdgeWidth, citation)
	}

	var crossLang *Node
	for i := range g.Nodes {
		if g.Nodes[i].ID == "src2" {
			crossLang = &g.Nodes[i]
		}
	}
	if crossLang == nil {
		t.Fatalf("Expected src2 node to exist even without resolvable citations")
	}
	if crossLang.Group != 5 {
		t.Errorf("Expected cross-language source in group 5, got %d", crossLang.Group)
	}
	if crossLang.Shape != ShapeDot {
		t.Errorf("Expected source node shape %q, got %q", ShapeDot, crossLang.Shape)
	}
}

func TestBuildMetadata(t *testing.T) {
	items, embedder := newTestItems()

	builder := NewBuilder(NewBuilderParams{Embedder: embedder, EmbeddingModel: "test-model"})
	g, err := builder.Build(context.Background(), items, BuildOptions{
		Sources: []SourceRef{{ID: "src1", Label: "Perkins", SectionIDs: []string{"a"}, Strength: 0.9}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if g.Metadata["section_node_count"] != 3 {
		t.Errorf("Expected 3 section nodes, got %v", g.Metadata["section_node_count"])
	}
	if g.Metadata["source_node_count"] != 1 {
		t.Errorf("Expected 1 source node, got %v", g.Metadata["source_node_count"])
	}
	if g.Metadata["topic_edge_count"] != 2 {
		t.Errorf("Expected 2 topic edges, got %v", g.Metadata["topic_edge_count"])
	}
	if g.Metadata["source_edge_count"] != 1 {
		t.Errorf("Expected 1 citation edge, got %v", g.Metadata["source_edge_count"])
	}
	if g.Metadata["embedding_model"] != "test-model" {
		t.Errorf("Expected embedding model in metadata, got %v", g.Metadata["embedding_model"])
	}
	if g.Metadata["similarity_threshold"] != defaultSimilarityThreshold {
		t.Errorf("Expected default threshold in metadata, got %v", g.Metadata["similarity_threshold"])
	}
}
