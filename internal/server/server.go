package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/semgraph/semgraph/internal/queue"
	mid "github.com/semgraph/semgraph/internal/server/middleware"
	"github.com/semgraph/semgraph/internal/storage"
	"github.com/semgraph/semgraph/internal/util"
	"github.com/semgraph/semgraph/pkg/ai"
	oai "github.com/semgraph/semgraph/pkg/ai/ollama"
	gai "github.com/semgraph/semgraph/pkg/ai/openai"
	"github.com/semgraph/semgraph/pkg/graph"
	"github.com/semgraph/semgraph/pkg/logger"
	"github.com/semgraph/semgraph/pkg/source"
	"github.com/semgraph/semgraph/pkg/source/web"
	"github.com/semgraph/semgraph/pkg/source/wikipedia"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rabbitmq/amqp091-go"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEmbedder builds the embedding client selected by AI_ADAPTER. The
// worker reuses the same construction.
func NewEmbedder() ai.Embedder {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewEmbedOllamaClient(oai.NewEmbedOllamaClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewEmbedOpenAIClient(gai.NewEmbedOpenAIClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQ", 4)),
		})
	}
}

// NewFetcher selects the article source. SOURCE_ADAPTER=web fetches
// arbitrary pages through the readability extractor; the default is the
// Wikipedia API.
func NewFetcher() source.Fetcher {
	if util.GetEnv("SOURCE_ADAPTER") == "web" {
		return web.NewFetcher()
	}
	return wikipedia.NewClient()
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := graph.NewStore(graph.SampleGraph())

	builder := graph.NewBuilder(graph.NewBuilderParams{
		Embedder:         NewEmbedder(),
		EmbeddingModel:   util.GetEnv("AI_EMBED_MODEL"),
		TokenEncoder:     util.GetEnvString("AI_TOKEN_ENCODER", "cl100k_base"),
		MaxEmbedTokens:   util.GetEnvInt("AI_EMBED_MAX_TOKENS", 512),
		ParallelRequests: util.GetEnvInt("AI_PARALLEL_REQ", 4),
	})

	var cache graph.SnapshotCache
	if util.GetEnv("AWS_REGION") != "" {
		s3 := storage.NewS3Client(ctx)
		cache = storage.NewS3SnapshotCache(s3)
	}

	// Async builds hand the work to a separate worker process, so the
	// snapshot cache is the only medium carrying the result back. Without
	// it a queued build would be unobservable, so the queue stays off and
	// every build runs inline.
	var ch *amqp091.Channel
	if util.GetEnv("RABBITMQ_HOST") != "" {
		if cache == nil {
			logger.Warn("RabbitMQ is configured but no snapshot cache is; async builds disabled, building inline")
		} else {
			conn := queue.Init()
			defer conn.Close()

			var err error
			ch, err = conn.Channel()
			if err != nil {
				logger.Fatal("Failed to open channel", "err", err)
			}

			if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
				logger.Fatal("Failed to set up queues", "err", err)
			}
		}
	}

	service := graph.NewService(graph.NewServiceParams{
		Store:   store,
		Builder: builder,
		Fetcher: NewFetcher(),
		Cache:   cache,
	})

	app := &mid.App{
		Store:   store,
		Service: service,
		Queue:   ch,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
