package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/semgraph/semgraph/pkg/apperr"
	"github.com/semgraph/semgraph/pkg/source"
)

type fakeFetcher struct {
	article *source.Article
	err     error
	// entered and release let tests hold a fetch open to provoke a
	// concurrent build.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, _ []string) (*source.Article, error) {
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.article, nil
}

type fakeCache struct {
	graphs map[string]*Graph
	saved  []string
}

func (c *fakeCache) Load(_ context.Context, topic string) (*Graph, error) {
	return c.graphs[topic], nil
}

func (c *fakeCache) Save(_ context.Context, topic string, g *Graph) error {
	if c.graphs == nil {
		c.graphs = make(map[string]*Graph)
	}
	c.graphs[topic] = g
	c.saved = append(c.saved, topic)
	return nil
}

func newTestArticle() *source.Article {
	return &source.Article{
		Title:   "Test Article",
		Summary: padText("alpha"),
		Sections: []source.Section{
			{ID: "s1", Title: "First", Text: padText("beta"), Level: 1},
			{ID: "s2", Title: "Second", Text: padText("gamma"), Level: 1},
		},
		References: []source.Reference{
			{ID: "ref1", Label: "Perkins (1986)", Language: "en", SectionIDs: []string{"s1"}, Strength: 0.9},
		},
		Languages: []string{"en"},
	}
}

func newTestService(fetcher source.Fetcher, cache SnapshotCache) (*Service, *Store) {
	_, embedder := newTestItems()
	store := NewStore(nil)
	svc := NewService(NewServiceParams{
		Store:   store,
		Builder: NewBuilder(NewBuilderParams{Embedder: embedder, EmbeddingModel: "test-model"}),
		Fetcher: fetcher,
		Cache:   cache,
	})
	return svc, store
}

func TestBuildFromArticle(t *testing.T) {
	cache := &fakeCache{}
	svc, store := newTestService(&fakeFetcher{article: newTestArticle()}, cache)

	result, err := svc.BuildFromArticle(context.Background(), BuildParams{
		ArticleTitle:   "Test Article",
		IncludeSummary: true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Status != "built" {
		t.Errorf("Expected status built, got %s", result.Status)
	}
	// Summary plus two sections plus one source node.
	if result.NodeCount != 4 {
		t.Errorf("Expected 4 nodes, got %d", result.NodeCount)
	}

	if _, err := store.GetNode("summary"); err != nil {
		t.Errorf("Expected summary node in store, got %v", err)
	}
	if store.Topic() != "Test Article" {
		t.Errorf("Expected store topic to follow the build, got %q", store.Topic())
	}
	if len(cache.saved) != 1 || cache.saved[0] != "Test Article" {
		t.Errorf("Expected snapshot save for the topic, got %v", cache.saved)
	}
}

func TestBuildFromArticleWithoutSummary(t *testing.T) {
	svc, store := newTestService(&fakeFetcher{article: newTestArticle()}, nil)

	result, err := svc.BuildFromArticle(context.Background(), BuildParams{ArticleTitle: "Test Article"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// Two sections plus the source; the reference's section anchor keeps
	// its citation resolvable without a summary node.
	if result.NodeCount != 3 {
		t.Errorf("Expected 3 nodes, got %d", result.NodeCount)
	}
	if _, err := store.GetNode("summary"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected no summary node, got %v", err)
	}
}

func TestBuildFromArticleServesCache(t *testing.T) {
	cached := &Graph{
		Nodes:    []Node{{ID: "cached"}},
		Edges:    []Edge{},
		Metadata: map[string]any{"topic": "Test Article"},
	}
	cache := &fakeCache{graphs: map[string]*Graph{"Test Article": cached}}
	fetcher := &fakeFetcher{err: errors.New("must not fetch")}
	svc, store := newTestService(fetcher, cache)

	result, err := svc.BuildFromArticle(context.Background(), BuildParams{
		ArticleTitle: "Test Article",
		UseCache:     true,
	})
	if err != nil {
		t.Fatalf("Expected cached build, got %v", err)
	}
	if result.Status != "cached" {
		t.Errorf("Expected status cached, got %s", result.Status)
	}
	if _, err := store.GetNode("cached"); err != nil {
		t.Errorf("Expected cached graph in store, got %v", err)
	}
}

func TestBuildFromArticleCacheDisabled(t *testing.T) {
	cache := &fakeCache{graphs: map[string]*Graph{"Test Article": {Nodes: []Node{{ID: "cached"}}}}}
	svc, _ := newTestService(&fakeFetcher{article: newTestArticle()}, cache)

	result, err := svc.BuildFromArticle(context.Background(), BuildParams{ArticleTitle: "Test Article"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Status != "built" {
		t.Errorf("Expected fresh build when cache is disabled, got %s", result.Status)
	}
}

func TestBuildFromArticleErrors(t *testing.T) {
	svc, _ := newTestService(&fakeFetcher{err: errors.New("wiki down")}, nil)

	_, err := svc.BuildFromArticle(context.Background(), BuildParams{ArticleTitle: "Test Article"})
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Errorf("Expected upstream error for fetch failure, got %v", err)
	}

	_, err = svc.BuildFromArticle(context.Background(), BuildParams{})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Expected invalid-input error for empty title, got %v", err)
	}
}

func TestBuildFromArticleRejectsConcurrentBuild(t *testing.T) {
	fetcher := &fakeFetcher{
		article: newTestArticle(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newTestService(fetcher, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.BuildFromArticle(context.Background(), BuildParams{ArticleTitle: "Test Article"})
		done <- err
	}()

	select {
	case <-fetcher.entered:
	case <-time.After(time.Second):
		t.Fatalf("First build never reached the fetcher")
	}

	_, err := svc.BuildFromArticle(context.Background(), BuildParams{ArticleTitle: "Other Article"})
	if !errors.Is(err, apperr.ErrBuildConflict) {
		t.Errorf("Expected build-conflict error, got %v", err)
	}

	close(fetcher.release)
	if err := <-done; err != nil {
		t.Errorf("Expected first build to finish cleanly, got %v", err)
	}
}
