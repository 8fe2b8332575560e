package graph

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/semgraph/semgraph/internal/util"
	"github.com/semgraph/semgraph/pkg/ai"
	"github.com/semgraph/semgraph/pkg/apperr"
	"github.com/semgraph/semgraph/pkg/logger"
	"github.com/semgraph/semgraph/pkg/similarity"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMinTextLength       = 50
	defaultSimilarityThreshold = 0.3
)

// Item is a labeled text unit that becomes a graph node: an article
// section, a statement, or a summary.
type Item struct {
	ID    string
	Label string
	Text  string
	Level int
}

// SourceRef is a reference source cited by one or more items. It becomes a
// dot node with directed citation edges into the sections it supports.
type SourceRef struct {
	ID       string
	Label    string
	Detail   string
	Language string
	// SectionIDs lists the item ids this source supports; ids not present
	// in the built graph are skipped.
	SectionIDs []string
	// Strength is the provenance confidence in [0,1].
	Strength float64
}

// BuildOptions control a single graph build.
type BuildOptions struct {
	// MinTextLength discards items whose trimmed text is shorter.
	// Defaults to 50 when zero.
	MinTextLength int
	// SimilarityThreshold is the minimum cosine similarity required to
	// materialize an edge. Defaults to 0.3 when zero.
	SimilarityThreshold float64
	// Sources are provenance references to attach alongside the items.
	Sources []SourceRef
	// Seed parameterizes the per-build pseudo-random generator used for
	// accent shades, making visual output reproducible.
	Seed int64
}

// Builder turns labeled text items into a similarity graph using an
// embedding provider and the cosine similarity engine.
//
// A Builder should be created using NewBuilder.
type Builder struct {
	embedder         ai.Embedder
	embeddingModel   string
	tokenEncoder     string
	maxEmbedTokens   int
	parallelRequests int
	maxRetries       int
}

// NewBuilderParams defines the configuration for creating a Builder.
type NewBuilderParams struct {
	Embedder       ai.Embedder
	EmbeddingModel string
	// TokenEncoder names the tiktoken encoding used to bound embedding
	// input length. Empty disables truncation.
	TokenEncoder   string
	MaxEmbedTokens int
	// ParallelRequests bounds concurrent embedding calls.
	ParallelRequests int
	// MaxRetries is the total number of attempts per embedding call.
	MaxRetries int
}

// NewBuilder creates a Builder configured with the provided parameters.
func NewBuilder(params NewBuilderParams) *Builder {
	parallel := params.ParallelRequests
	if parallel <= 0 {
		parallel = 4
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	maxTokens := params.MaxEmbedTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}

	return &Builder{
		embedder:         params.Embedder,
		embeddingModel:   params.EmbeddingModel,
		tokenEncoder:     params.TokenEncoder,
		maxEmbedTokens:   maxTokens,
		parallelRequests: parallel,
		maxRetries:       maxRetries,
	}
}

// Build constructs a similarity graph from the given items. Items shorter
// than the minimum text length are skipped; an input where every item is a
// stub yields an empty graph, not an error. Edges exist exactly for
// unordered pairs whose cosine similarity meets the threshold. Node sizes
// are finalized in a second pass once all edges (and therefore degrees)
// are known.
func (b *Builder) Build(ctx context.Context, items []Item, opts BuildOptions) (*Graph, error) {
	minLength := opts.MinTextLength
	if minLength <= 0 {
		minLength = defaultMinTextLength
	}
	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if len(strings.TrimSpace(item.Text)) < minLength {
			logger.Debug("[Builder] Skipping stub item", "id", item.ID, "label", item.Label)
			continue
		}
		kept = append(kept, item)
	}

	g := &Graph{
		Nodes:    make([]Node, 0, len(kept)),
		Edges:    make([]Edge, 0),
		Metadata: make(map[string]any),
	}

	logger.Info("[Builder] Building graph", "items", len(items), "kept", len(kept))

	if len(kept) > 0 {
		vectors, err := b.embedItems(ctx, kept)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding items: %v", apperr.ErrUpstream, err)
		}

		matrix, err := similarity.Matrix(vectors)
		if err != nil {
			return nil, fmt.Errorf("computing similarity matrix: %w", err)
		}

		for i := 0; i < len(kept); i++ {
			for j := i + 1; j < len(kept); j++ {
				sim := matrix[i][j]
				if sim < threshold {
					continue
				}
				if sim > 1 {
					sim = 1
				}
				g.Edges = append(g.Edges, Edge{
					Source:     kept[i].ID,
					Target:     kept[j].ID,
					Similarity: sim,
					Width:      EdgeWidth(sim),
					Value:      sim,
					Title:      fmt.Sprintf("%s ↔ %s\nSimilarity: %.3f", kept[i].Label, kept[j].Label, sim),
					Metadata: map[string]any{
						"edge_type":    "topic_similarity",
						"source_title": kept[i].Label,
						"target_title": kept[j].Label,
					},
				})
			}
		}

		// Degrees exist only after the edge pass, so sizing is second.
		degrees := make(map[string]int, len(kept))
		for _, e := range g.Edges {
			degrees[e.Source]++
			degrees[e.Target]++
		}

		for _, item := range kept {
			textLength := len(item.Text)
			nodeType := "section"
			if item.Level == 0 {
				nodeType = "summary"
			}
			g.Nodes = append(g.Nodes, Node{
				ID:          item.ID,
				Label:       item.Label,
				Content:     item.Text,
				Group:       1,
				Size:        NodeSize(textLength, degrees[item.ID]),
				Color:       LevelColor(item.Level),
				Shape:       ShapeBox,
				BorderWidth: sectionBorderWidth,
				Metadata: map[string]any{
					"level":       item.Level,
					"type":        nodeType,
					"text_length": textLength,
				},
			})
		}
	}

	b.attachSources(g, opts.Sources, rng)

	g.ComputeMetadata()
	b.stampBuildMetadata(g, threshold)

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("built graph failed validation: %w", err)
	}

	logger.Info("[Builder] Graph built",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"threshold", threshold,
	)

	return g, nil
}

// embedItems generates embeddings for all items concurrently, preserving
// item-to-vector alignment by index. Each call gets a single bounded retry
// before the build fails.
func (b *Builder) embedItems(ctx context.Context, items []Item) ([][]float32, error) {
	vectors := make([][]float32, len(items))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.parallelRequests)

	for i := range items {
		idx := i
		text := b.truncateText(items[i].Text)
		eg.Go(func() error {
			vec, err := util.RetryWithContext(gCtx, b.maxRetries, func(ctx context.Context) ([]float32, error) {
				return b.embedder.GenerateEmbedding(ctx, []byte(text))
			})
			if err != nil {
				return fmt.Errorf("embedding item %s: %w", items[idx].ID, err)
			}
			vectors[idx] = vec
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// truncateText bounds item text to the configured token budget before it is
// sent to the embedding model. Truncation is skipped when no encoder is
// configured or the encoding cannot be loaded.
func (b *Builder) truncateText(text string) string {
	if b.tokenEncoder == "" {
		return text
	}

	enc, err := tiktoken.GetEncoding(b.tokenEncoder)
	if err != nil {
		logger.Debug("[Builder] Token encoder unavailable, skipping truncation", "encoder", b.tokenEncoder, "err", err)
		return text
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= b.maxEmbedTokens {
		return text
	}
	return enc.Decode(tokens[:b.maxEmbedTokens])
}

// attachSources adds reference-source nodes and their directed citation
// edges. Sources citing only unknown sections still get a node; the
// dangling citations are skipped so the graph never references a missing
// node.
func (b *Builder) attachSources(g *Graph, sources []SourceRef, rng *rand.Rand) {
	if len(sources) == 0 {
		return
	}

	known := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = struct{}{}
	}

	for _, src := range sources {
		group := 4
		if src.Language != "" && src.Language != "en" {
			group = 5
		}
		strength := src.Strength
		if strength <= 0 || strength > 1 {
			strength = 0.8
		}

		g.Nodes = append(g.Nodes, Node{
			ID:      src.ID,
			Label:   src.Label,
			Content: src.Detail,
			Group:   group,
			Size:    sourceNodeSize,
			Color:   NodeColor{Background: sourceColor(rng, src.Language)},
			Shape:   ShapeDot,
			Metadata: map[string]any{
				"type":     "source",
				"language": src.Language,
			},
		})
		known[src.ID] = struct{}{}

		for _, sectionID := range src.SectionIDs {
			if _, ok := known[sectionID]; !ok {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				Source:     src.ID,
				Target:     sectionID,
				Similarity: strength,
				Width:      citationEdgeWidth,
				Value:      strength,
				Title:      fmt.Sprintf("Source: %.2f", strength),
				Dashes:     true,
				Arrows:     "to",
				Metadata: map[string]any{
					"edge_type":    "source_citation",
					"source_title": src.Label,
				},
			})
		}
	}
}

func (b *Builder) stampBuildMetadata(g *Graph, threshold float64) {
	sectionNodes, sourceNodes := 0, 0
	for _, n := range g.Nodes {
		if t, _ := n.Metadata["type"].(string); t == "source" {
			sourceNodes++
		} else {
			sectionNodes++
		}
	}
	topicEdges, sourceEdges := 0, 0
	for _, e := range g.Edges {
		if t, _ := e.Metadata["edge_type"].(string); t == "source_citation" {
			sourceEdges++
		} else {
			topicEdges++
		}
	}

	g.Metadata["section_node_count"] = sectionNodes
	g.Metadata["source_node_count"] = sourceNodes
	g.Metadata["topic_edge_count"] = topicEdges
	g.Metadata["source_edge_count"] = sourceEdges
	g.Metadata["similarity_threshold"] = threshold
	g.Metadata["embedding_model"] = b.embeddingModel
}
