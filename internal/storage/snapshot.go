package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/semgraph/semgraph/pkg/graph"
	"github.com/semgraph/semgraph/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const snapshotPrefix = "graphs"

var keySanitizer = regexp.MustCompile(`[^a-z0-9._-]+`)

// S3SnapshotCache persists built graphs as JSON objects in S3 so a rebuild
// of an already-processed topic can skip fetching and embedding. It
// implements graph.SnapshotCache. Any S3 or decode failure on load is
// treated as a cache miss; builds never fail because the cache is down.
type S3SnapshotCache struct {
	client *s3.Client
}

// NewS3SnapshotCache creates a cache on top of an existing S3 client.
func NewS3SnapshotCache(client *s3.Client) *S3SnapshotCache {
	return &S3SnapshotCache{client: client}
}

func (c *S3SnapshotCache) Load(ctx context.Context, topic string) (*graph.Graph, error) {
	data, err := GetFile(ctx, c.client, snapshotKey(topic))
	if err != nil {
		logger.Debug("[SnapshotCache] Miss", "topic", topic, "err", err)
		return nil, nil
	}

	var g graph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		logger.Warn("[SnapshotCache] Corrupt snapshot, treating as miss", "topic", topic, "err", err)
		return nil, nil
	}
	if err := g.Validate(); err != nil {
		logger.Warn("[SnapshotCache] Invalid snapshot, treating as miss", "topic", topic, "err", err)
		return nil, nil
	}

	return &g, nil
}

func (c *S3SnapshotCache) Save(ctx context.Context, topic string, g *graph.Graph) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return PutFile(ctx, c.client, snapshotKey(topic), "application/json", bytes.NewReader(data))
}

// snapshotKey maps a topic to a stable object key.
func snapshotKey(topic string) string {
	slug := strings.ToLower(strings.TrimSpace(topic))
	slug = keySanitizer.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return fmt.Sprintf("%s/%s.json", snapshotPrefix, slug)
}
