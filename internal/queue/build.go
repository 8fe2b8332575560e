package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/semgraph/semgraph/pkg/apperr"
	"github.com/semgraph/semgraph/pkg/graph"
	"github.com/semgraph/semgraph/pkg/logger"
)

// BuildJobMsg is the payload of one asynchronous build request.
type BuildJobMsg struct {
	Message       string   `json:"message"`
	CorrelationID string   `json:"correlation_id"`
	ArticleTitle  string   `json:"article_title"`
	Languages     []string `json:"languages,omitempty"`

	IncludeSummary      bool    `json:"include_summary,omitempty"`
	UseCache            bool    `json:"use_cache,omitempty"`
	MinTextLength       int     `json:"min_text_length,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
}

// ProcessBuildMessage decodes and runs one build job. Malformed payloads
// and invalid jobs are logged and dropped since a retry would only
// reproduce the failure; transient failures (upstream fetch, embedding,
// build conflicts) are returned so the caller routes the message through
// the retry queue.
func ProcessBuildMessage(ctx context.Context, svc *graph.Service, msgBody string) error {
	var data BuildJobMsg
	if err := json.Unmarshal([]byte(msgBody), &data); err != nil {
		logger.Error("[BuildJob] Discarding malformed message", "err", err)
		return nil
	}

	logger.Info("[BuildJob] Starting build",
		"correlation_id", data.CorrelationID,
		"article", data.ArticleTitle,
	)

	result, err := svc.BuildFromArticle(ctx, graph.BuildParams{
		ArticleTitle:        data.ArticleTitle,
		Languages:           data.Languages,
		IncludeSummary:      data.IncludeSummary,
		UseCache:            data.UseCache,
		MinTextLength:       data.MinTextLength,
		SimilarityThreshold: data.SimilarityThreshold,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			logger.Error("[BuildJob] Discarding invalid job", "correlation_id", data.CorrelationID, "err", err)
			return nil
		}
		if errors.Is(err, apperr.ErrBuildConflict) {
			// The worker runs jobs one at a time, so a conflict means
			// another process owns the store. Requeueing via retry is the
			// right recovery.
			return fmt.Errorf("build conflict for %s: %w", data.ArticleTitle, err)
		}
		return fmt.Errorf("build failed for %s: %w", data.ArticleTitle, err)
	}

	logger.Info("[BuildJob] Build finished",
		"correlation_id", data.CorrelationID,
		"status", result.Status,
		"nodes", result.NodeCount,
		"edges", result.EdgeCount,
	)

	return nil
}
