// Package embedding turns text into fixed-length normalized vectors through
// an OpenAI-compatible embeddings endpoint.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Client is the interface for embedding API clients
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Similarity computes cosine similarity between two vectors
func Similarity(a, b []float32) float32 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector dimension mismatch: %d vs %d", len(a), len(b)))
	}

	var dotProduct float32
	var normA float32
	var normB float32

	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// Normalize scales a vector to unit length in place. Zero vectors are left
// unchanged.
func Normalize(v []float32) {
	var sum float32
	for _, val := range v {
		sum += val * val
	}
	if sum == 0 {
		return
	}
	magnitude := float32(math.Sqrt(float64(sum)))
	for i := range v {
		v[i] /= magnitude
	}
}
