package routes

import (
	"encoding/json"
	"net/http"

	"github.com/semgraph/semgraph/internal/queue"
	"github.com/semgraph/semgraph/internal/server/middleware"
	"github.com/semgraph/semgraph/internal/util"
	"github.com/semgraph/semgraph/pkg/graph"
	"github.com/semgraph/semgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BuildGraphHandler builds a new graph from an article. With async set and
// a message queue configured the job is enqueued for the worker; otherwise
// the build runs inline and the response carries the finished counts. An
// async result lands in the shared snapshot cache, so a follow-up build
// request with use_cache installs it here without re-embedding.
func BuildGraphHandler(c echo.Context) error {
	type buildGraphBody struct {
		ArticleTitle        string   `json:"article_title" validate:"required"`
		Languages           []string `json:"languages"`
		IncludeSummary      *bool    `json:"include_summary"`
		UseCache            *bool    `json:"use_cache"`
		Async               bool     `json:"async"`
		MinTextLength       int      `json:"min_text_length" validate:"omitempty,min=1"`
		SimilarityThreshold float64  `json:"similarity_threshold" validate:"min=0,max=1"`
	}

	body := new(buildGraphBody)
	if err := c.Bind(body); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(body); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "article_title is required and similarity_threshold must be between 0 and 1")
	}

	includeSummary := true
	if body.IncludeSummary != nil {
		includeSummary = *body.IncludeSummary
	}
	useCache := true
	if body.UseCache != nil {
		useCache = *body.UseCache
	}

	app := c.(*middleware.AppContext).App

	if body.Async && app.Queue != nil {
		correlationID := util.NewCorrelationID()
		msg := queue.BuildJobMsg{
			Message:             "build_graph",
			CorrelationID:       correlationID,
			ArticleTitle:        body.ArticleTitle,
			Languages:           body.Languages,
			IncludeSummary:      includeSummary,
			UseCache:            useCache,
			MinTextLength:       body.MinTextLength,
			SimilarityThreshold: body.SimilarityThreshold,
		}

		data, err := json.Marshal(msg)
		if err != nil {
			logger.Error("Failed to marshal build job", "err", err)
			return jsonDetail(c, http.StatusInternalServerError, "Internal server error")
		}

		if err := queue.PublishFIFO(app.Queue, queue.BuildQueue, data); err != nil {
			logger.Error("Failed to enqueue build job", "err", err)
			return jsonDetail(c, http.StatusInternalServerError, "Failed to enqueue build job")
		}

		return c.JSON(http.StatusAccepted, map[string]string{
			"status":         "queued",
			"correlation_id": correlationID,
		})
	}

	result, err := app.Service.BuildFromArticle(c.Request().Context(), graph.BuildParams{
		ArticleTitle:        body.ArticleTitle,
		Languages:           body.Languages,
		IncludeSummary:      includeSummary,
		UseCache:            useCache,
		MinTextLength:       body.MinTextLength,
		SimilarityThreshold: body.SimilarityThreshold,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
