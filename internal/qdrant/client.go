// Package qdrant is a minimal REST client for a Qdrant-compatible vector
// index. It covers the surface the note store needs: idempotent collection
// provisioning, acknowledged upserts, similarity search, point retrieval and
// deletion.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrDimensionMismatch is returned when a collection already exists with a
// different vector size than requested. The index is never migrated or
// truncated silently.
var ErrDimensionMismatch = errors.New("collection vector size mismatch")

// StatusError is a non-2xx response from the index. The status code lets
// callers distinguish "not found" from auth or server failures.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("qdrant status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 response from the index.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(url, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// Point is a stored point: id, vector, open payload.
type Point struct {
	ID      int64          `json:"id"`
	Vector  []float32      `json:"vector,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// SearchPoint is a search hit with its similarity score.
type SearchPoint struct {
	ID      int64
	Score   float64
	Payload map[string]any
}

// EnsureCollection provisions the collection if it does not exist, with the
// given vector size and cosine distance. If it exists with the same size this
// is a no-op; if it exists with a different size it fails with
// ErrDimensionMismatch. Only a 404 from the index is treated as "not exists";
// any other failure propagates unmodified.
func (c *Client) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	data, err := c.doRequest(ctx, http.MethodGet, "/collections/"+name, nil)
	if err == nil {
		var parsed struct {
			Result struct {
				Config struct {
					Params struct {
						Vectors struct {
							Size int `json:"size"`
						} `json:"vectors"`
					} `json:"params"`
				} `json:"config"`
			} `json:"result"`
		}
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("parse collection info: %w", err)
		}
		currentSize := parsed.Result.Config.Params.Vectors.Size
		if currentSize != 0 && currentSize != vectorSize {
			return fmt.Errorf("%w: collection %q has size %d, tried to use size %d",
				ErrDimensionMismatch, name, currentSize, vectorSize)
		}
		return nil
	}
	if !IsNotFound(err) {
		return err
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	_, err = c.doRequest(ctx, http.MethodPut, "/collections/"+name, req)
	return err
}

// UpsertPoint inserts or replaces a single point. The write is acknowledged
// (wait=true) before the call returns, so the point is visible to subsequent
// reads and searches.
func (c *Client) UpsertPoint(ctx context.Context, collection string, point Point) error {
	req := map[string]any{
		"points": []map[string]any{
			{
				"id":      point.ID,
				"vector":  point.Vector,
				"payload": point.Payload,
			},
		},
	}
	_, err := c.doRequest(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", req)
	return err
}

// Search returns up to limit points ordered by descending similarity to the
// query vector. A positive scoreThreshold excludes points scoring below it.
// Tie ordering among equal scores is the index's native order and is
// implementation-defined.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]SearchPoint, error) {
	if limit <= 0 {
		limit = 10
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if scoreThreshold > 0 {
		req["score_threshold"] = scoreThreshold
	}
	data, err := c.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/search", req)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Result []struct {
			ID      int64          `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	points := make([]SearchPoint, 0, len(parsed.Result))
	for _, item := range parsed.Result {
		points = append(points, SearchPoint{
			ID:      item.ID,
			Score:   item.Score,
			Payload: item.Payload,
		})
	}
	return points, nil
}

// Retrieve returns the point with the given id, or (nil, nil) if it does not
// exist. Absence is not an error.
func (c *Client) Retrieve(ctx context.Context, collection string, id int64) (*Point, error) {
	req := map[string]any{
		"ids":          []int64{id},
		"with_payload": true,
	}
	data, err := c.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points", req)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Result []struct {
			ID      int64          `json:"id"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Result) == 0 {
		return nil, nil
	}
	return &Point{
		ID:      parsed.Result[0].ID,
		Payload: parsed.Result[0].Payload,
	}, nil
}

// Delete removes the point with the given id. Deleting a nonexistent id
// succeeds.
func (c *Client) Delete(ctx context.Context, collection string, id int64) error {
	req := map[string]any{
		"points": []int64{id},
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", req)
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewBuffer(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	return data, nil
}
