package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/avillega/recuerdo/internal/config"
)

// Service provides embedding generation on top of a lazily constructed
// client. The client is built on first use and shared for the process
// lifetime; concurrent first calls initialize it exactly once.
type Service struct {
	cfg *config.EmbeddingConfig

	once    sync.Once
	client  Client
	initErr error
}

// NewService creates a new embedding service. The underlying client is not
// constructed until the first Embed call.
func NewService(cfg *config.EmbeddingConfig) *Service {
	return &Service{cfg: cfg}
}

// NewServiceWithClient creates a service around an already constructed
// client. Used by tests and callers that manage the client themselves.
func NewServiceWithClient(client Client) *Service {
	s := &Service{}
	s.once.Do(func() { s.client = client })
	return s
}

func (s *Service) init() (Client, error) {
	s.once.Do(func() {
		client, err := NewOpenAIClient(s.cfg)
		if err != nil {
			s.initErr = fmt.Errorf("failed to create embedding client: %w", err)
			return
		}
		s.client = client
	})
	return s.client, s.initErr
}

// Embed generates an embedding for a single text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	client, err := s.init()
	if err != nil {
		return nil, err
	}
	return client.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client, err := s.init()
	if err != nil {
		return nil, err
	}

	// Filter out empty texts
	validTexts := make([]string, 0, len(texts))
	validIndices := make([]int, 0, len(texts))
	for i, text := range texts {
		if text != "" {
			validTexts = append(validTexts, text)
			validIndices = append(validIndices, i)
		}
	}

	if len(validTexts) == 0 {
		return nil, fmt.Errorf("no valid texts to embed")
	}

	// Process in batches
	batchSize := 10
	if s.cfg != nil && s.cfg.BatchSize > 0 {
		batchSize = s.cfg.BatchSize
	}

	results := make([][]float32, len(texts))

	for i := 0; i < len(validTexts); i += batchSize {
		end := i + batchSize
		if end > len(validTexts) {
			end = len(validTexts)
		}

		batch := validTexts[i:end]
		embeddings, err := client.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", i, end, err)
		}

		for j, emb := range embeddings {
			results[validIndices[i+j]] = emb
		}
	}

	return results, nil
}

// Dimensions returns the dimension of the embeddings. It does not force
// client construction; the configured value is authoritative.
func (s *Service) Dimensions() int {
	if s.cfg != nil && s.cfg.Dimensions > 0 {
		return s.cfg.Dimensions
	}
	if s.client != nil {
		return s.client.Dimensions()
	}
	return 0
}
