// Package notes implements the semantic note store: a stateless repository
// façade that embeds note content and persists it as points in a remote
// vector index.
package notes

import (
	"context"
	"errors"
	"time"

	"github.com/avillega/recuerdo/internal/qdrant"
)

// ErrContentRequired is returned when a note is created without a non-empty
// "content" payload entry. Validation happens before any vector is computed.
var ErrContentRequired = errors.New("content required in payload to create a note")

// Note is the durable unit. The payload is an open key/value bag; by
// convention it carries the embedded text under "content" and an optional
// "title".
type Note struct {
	ID      int64
	Payload map[string]any
}

// Content returns the payload "content" string, or "" if absent.
func (n Note) Content() string {
	s, _ := n.Payload["content"].(string)
	return s
}

// SearchResult is a note extended with its similarity score. Higher is more
// relevant; cosine scores for normalized text embeddings land in [0, 1].
type SearchResult struct {
	Note
	Score float64
}

// IDFunc assigns ids to new notes. Ids are caller-generated; a duplicate id
// replaces the existing point (upsert semantics), it is not detected.
type IDFunc func() int64

// TimeID is the default IDFunc: the current time in milliseconds, so the
// composer can render a creation time from the id.
func TimeID() int64 {
	return time.Now().UnixMilli()
}

// Store is the vector index surface the repository needs. *qdrant.Client
// implements it.
type Store interface {
	EnsureCollection(ctx context.Context, name string, vectorSize int) error
	UpsertPoint(ctx context.Context, collection string, point qdrant.Point) error
	Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]qdrant.SearchPoint, error)
	Retrieve(ctx context.Context, collection string, id int64) (*qdrant.Point, error)
	Delete(ctx context.Context, collection string, id int64) error
}

// Embedder turns text into a fixed-length vector. *embedding.Service
// implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// KeywordIndexer is the optional derived keyword index kept alongside the
// vector store for hybrid search.
type KeywordIndexer interface {
	Index(id int64, title, content string) error
	Delete(id int64) error
	Search(query string, limit int) (map[int64]float64, error)
}
