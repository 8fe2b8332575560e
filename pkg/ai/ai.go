package ai

import "context"

// ModelMetrics contains performance metrics from embedding operations.
type ModelMetrics struct {
	InputTokens int   `json:"input_tokens"`
	TotalTokens int   `json:"total_tokens"`
	DurationMs  int64 `json:"duration_ms"`
}

// Embedder defines the interface for turning text into fixed-length vectors.
// Implementations are remote clients; every call carries a timeout and may
// fail, callers are responsible for retry policy.
type Embedder interface {
	// GenerateEmbedding creates a vector embedding for a single input text.
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)

	// GenerateEmbeddings creates embeddings for multiple inputs. The result
	// is aligned with the input by index: result[i] is the embedding of
	// inputs[i], regardless of completion order.
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)

	// GetMetrics returns accumulated usage metrics since the last reset.
	GetMetrics() ModelMetrics

	// ResetMetrics clears accumulated usage metrics.
	ResetMetrics()
}
