package main

import (
	"log"

	"github.com/avillega/recuerdo/internal/agent"
	"github.com/avillega/recuerdo/internal/config"
	"github.com/avillega/recuerdo/internal/embedding"
	"github.com/avillega/recuerdo/internal/keyword"
	"github.com/avillega/recuerdo/internal/notes"
	"github.com/avillega/recuerdo/internal/qdrant"
)

// newRepository wires the embedding service and vector index into a note
// repository. The keyword index is attached only when enabled in config; a
// failure to open it degrades to vector-only search.
func newRepository(cfg *config.Config) (*notes.Repository, func()) {
	store := qdrant.NewClient(cfg.VectorStore.URL, cfg.VectorStore.APIKey)
	embedder := embedding.NewService(&cfg.Embedding)

	var opts []notes.Option
	cleanup := func() {}

	if cfg.Search.EnableKeyword {
		idx, err := keyword.Open(cfg.Keyword.Path)
		if err != nil {
			log.Printf("Warning: keyword index unavailable, falling back to vector-only search: %v", err)
		} else {
			opts = append(opts, notes.WithKeywordIndex(idx, cfg.Search.VectorWeight, cfg.Search.KeywordWeight))
			cleanup = func() {
				if err := idx.Close(); err != nil {
					log.Printf("Warning: failed to close keyword index: %v", err)
				}
			}
		}
	}

	return notes.NewRepository(store, embedder, cfg.VectorStore.Collection, opts...), cleanup
}

// newAgents builds the classifier and composer over one shared chat client.
func newAgents(cfg *config.Config) (*agent.Classifier, *agent.Composer) {
	chat := agent.NewChatClient(&cfg.Model)
	return agent.NewClassifier(chat), agent.NewComposer(chat)
}
