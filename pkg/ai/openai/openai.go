package openai

import (
	"sync"

	"github.com/semgraph/semgraph/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// EmbedOpenAIClient implements the ai.Embedder interface against any
// OpenAI-compatible embeddings endpoint.
//
// An EmbedOpenAIClient should be created using NewEmbedOpenAIClient.
type EmbedOpenAIClient struct {
	embeddingModel string
	timeoutMin     int

	embeddingURL string
	embeddingKey string

	embeddingLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	EmbeddingClient *openai.Client
}

// NewEmbedOpenAIClientParams defines the configuration parameters for
// creating a new EmbedOpenAIClient.
//
// EmbeddingModel specifies the model used for embeddings.
// EmbeddingURL and EmbeddingKey configure the embedding API endpoint.
type NewEmbedOpenAIClientParams struct {
	EmbeddingModel string

	EmbeddingURL string
	EmbeddingKey string

	MaxConcurrentRequests int64
	TimeoutMin            int
}

// NewEmbedOpenAIClient creates and returns a new EmbedOpenAIClient configured
// with the provided parameters.
//
// Example:
//
//	client := openai.NewEmbedOpenAIClient(openai.NewEmbedOpenAIClientParams{
//		EmbeddingModel: "text-embedding-3-small",
//		EmbeddingURL:   "https://api.openai.com/v1",
//		EmbeddingKey:   os.Getenv("OPENAI_API_KEY"),
//	})
func NewEmbedOpenAIClient(
	params NewEmbedOpenAIClientParams,
) *EmbedOpenAIClient {
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 2
	}

	return &EmbedOpenAIClient{
		embeddingModel: params.EmbeddingModel,
		timeoutMin:     timeoutMin,

		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		embeddingLock: semaphore.NewWeighted(maxConcurrent),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

func (c *EmbedOpenAIClient) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += delta.InputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// GetMetrics returns accumulated usage metrics since the last reset.
func (c *EmbedOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	return c.metrics
}

// ResetMetrics clears accumulated usage metrics.
func (c *EmbedOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics = ai.ModelMetrics{}
}
