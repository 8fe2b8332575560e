package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/semgraph/semgraph/pkg/ai"
	"github.com/semgraph/semgraph/pkg/graph"
	"github.com/semgraph/semgraph/pkg/source"
)

type staticEmbedder struct{}

func (staticEmbedder) GenerateEmbedding(context.Context, []byte) ([]float32, error) {
	return []float32{1, 0}, nil
}
func (s staticEmbedder) GenerateEmbeddings(_ context.Context, contents [][]byte) ([][]float32, error) {
	out := make([][]float32, len(contents))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}
func (staticEmbedder) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
func (staticEmbedder) ResetMetrics()               {}

type staticFetcher struct {
	err error
}

func (f staticFetcher) Fetch(context.Context, string, []string) (*source.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &source.Article{
		Title: "Test",
		Sections: []source.Section{
			{ID: "s1", Title: "One", Text: "A section body long enough to clear the minimum text length gate.", Level: 1},
		},
	}, nil
}

type memCache struct {
	graphs map[string]*graph.Graph
}

func newMemCache() *memCache {
	return &memCache{graphs: make(map[string]*graph.Graph)}
}

func (c *memCache) Load(_ context.Context, topic string) (*graph.Graph, error) {
	return c.graphs[topic], nil
}

func (c *memCache) Save(_ context.Context, topic string, g *graph.Graph) error {
	c.graphs[topic] = g
	return nil
}

func newBuildService(fetcher source.Fetcher) *graph.Service {
	return graph.NewService(graph.NewServiceParams{
		Store:   graph.NewStore(nil),
		Builder: graph.NewBuilder(graph.NewBuilderParams{Embedder: staticEmbedder{}}),
		Fetcher: fetcher,
	})
}

func TestProcessBuildMessage(t *testing.T) {
	svc := newBuildService(staticFetcher{})

	msg := `{"correlation_id": "abc", "article_title": "Test"}`
	if err := ProcessBuildMessage(context.Background(), svc, msg); err != nil {
		t.Errorf("Expected successful build, got %v", err)
	}
}

// A processed build job must become visible to the API server, which runs
// in a different process and shares only the snapshot cache with the
// worker. The server side picks the result up through a use_cache build.
func TestProcessedBuildReachesServerThroughCache(t *testing.T) {
	cache := newMemCache()

	workerSvc := graph.NewService(graph.NewServiceParams{
		Store:   graph.NewStore(nil),
		Builder: graph.NewBuilder(graph.NewBuilderParams{Embedder: staticEmbedder{}}),
		Fetcher: staticFetcher{},
		Cache:   cache,
	})

	msg := `{"correlation_id": "abc", "article_title": "Test"}`
	if err := ProcessBuildMessage(context.Background(), workerSvc, msg); err != nil {
		t.Fatalf("Expected successful build, got %v", err)
	}
	if cache.graphs["Test"] == nil {
		t.Fatal("Expected the worker to save the built graph to the cache")
	}

	serverStore := graph.NewStore(nil)
	serverSvc := graph.NewService(graph.NewServiceParams{
		Store: serverStore,
		Cache: cache,
	})

	result, err := serverSvc.BuildFromArticle(context.Background(), graph.BuildParams{
		ArticleTitle: "Test",
		UseCache:     true,
	})
	if err != nil {
		t.Fatalf("Expected cached load on the server side, got %v", err)
	}
	if result.Status != "cached" {
		t.Errorf("Expected status cached, got %q", result.Status)
	}
	if _, err := serverStore.GetNode("s1"); err != nil {
		t.Errorf("Expected the built section node to be served, got %v", err)
	}
}

func TestProcessBuildMessageDropsMalformed(t *testing.T) {
	if err := ProcessBuildMessage(context.Background(), nil, "{not json"); err != nil {
		t.Errorf("Expected malformed message to be dropped, got %v", err)
	}
}

func TestProcessBuildMessageDropsInvalidJob(t *testing.T) {
	svc := newBuildService(staticFetcher{})

	if err := ProcessBuildMessage(context.Background(), svc, `{"correlation_id": "abc"}`); err != nil {
		t.Errorf("Expected job without a title to be dropped, got %v", err)
	}
}

func TestProcessBuildMessageReturnsTransientErrors(t *testing.T) {
	svc := newBuildService(staticFetcher{err: errors.New("upstream down")})

	msg := `{"correlation_id": "abc", "article_title": "Test"}`
	if err := ProcessBuildMessage(context.Background(), svc, msg); err == nil {
		t.Errorf("Expected transient failure to be surfaced for retry")
	}
}
