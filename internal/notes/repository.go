package notes

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/avillega/recuerdo/internal/qdrant"
)

// Repository combines the embedder and the vector store behind create,
// search, read and delete. It holds no state beyond configuration; the store
// exclusively owns persisted point data.
type Repository struct {
	store      Store
	embedder   Embedder
	collection string

	idFn IDFunc

	keyword       KeywordIndexer
	vectorWeight  float64
	keywordWeight float64
}

// Option configures a Repository.
type Option func(*Repository)

// WithIDFunc overrides the default time-based id assignment.
func WithIDFunc(fn IDFunc) Option {
	return func(r *Repository) { r.idFn = fn }
}

// WithKeywordIndex attaches a derived keyword index used by SearchHybrid.
// Weights are normalized at search time.
func WithKeywordIndex(idx KeywordIndexer, vectorWeight, keywordWeight float64) Option {
	return func(r *Repository) {
		r.keyword = idx
		r.vectorWeight = vectorWeight
		r.keywordWeight = keywordWeight
	}
}

// NewRepository creates a repository over the given store and embedder,
// bound to one collection.
func NewRepository(store Store, embedder Embedder, collection string, opts ...Option) *Repository {
	r := &Repository{
		store:      store,
		embedder:   embedder,
		collection: collection,
		idFn:       TimeID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create validates, embeds and upserts a note. On success the note is
// immediately visible to Search and Read. Recreating with an existing id
// replaces the stored point.
func (r *Repository) Create(ctx context.Context, note Note) error {
	content, ok := note.Payload["content"].(string)
	if !ok || content == "" {
		return ErrContentRequired
	}

	vector, err := r.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed note content: %w", err)
	}

	if err := r.store.EnsureCollection(ctx, r.collection, len(vector)); err != nil {
		return err
	}

	if err := r.store.UpsertPoint(ctx, r.collection, qdrant.Point{
		ID:      note.ID,
		Vector:  vector,
		Payload: note.Payload,
	}); err != nil {
		return err
	}

	if r.keyword != nil {
		title, _ := note.Payload["title"].(string)
		if err := r.keyword.Index(note.ID, title, content); err != nil {
			// The keyword index is derived, rebuildable state; the note is
			// already durable in the vector store.
			log.Printf("Warning: failed to index note %d for keyword search: %v", note.ID, err)
		}
	}

	return nil
}

// CreateText stores a new note with a freshly assigned id and a payload
// holding only the content. Returns the stored note.
func (r *Repository) CreateText(ctx context.Context, content string) (Note, error) {
	note := Note{
		ID:      r.idFn(),
		Payload: map[string]any{"content": content},
	}
	if err := r.Create(ctx, note); err != nil {
		return Note{}, err
	}
	return note, nil
}

// Search embeds the query and returns up to limit notes ordered by
// descending similarity. A positive scoreThreshold excludes lower-scoring
// notes. An empty result set is a valid outcome.
func (r *Repository) Search(ctx context.Context, query string, limit int, scoreThreshold float64) ([]SearchResult, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := r.store.Search(ctx, r.collection, vector, limit, scoreThreshold)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(points))
	for _, p := range points {
		results = append(results, SearchResult{
			Note:  Note{ID: p.ID, Payload: p.Payload},
			Score: p.Score,
		})
	}
	return results, nil
}

// SearchHybrid blends vector similarity with keyword relevance from the
// local index. Falls back to plain Search when no keyword index is attached.
// The score threshold applies to the vector leg only.
func (r *Repository) SearchHybrid(ctx context.Context, query string, limit int, scoreThreshold float64) ([]SearchResult, error) {
	if r.keyword == nil {
		return r.Search(ctx, query, limit, scoreThreshold)
	}
	if limit <= 0 {
		limit = 10
	}

	vectorWeight := r.vectorWeight
	keywordWeight := r.keywordWeight
	totalWeight := vectorWeight + keywordWeight
	if totalWeight == 0 {
		vectorWeight = 1.0
		totalWeight = 1.0
	}
	vectorWeight /= totalWeight
	keywordWeight /= totalWeight

	vectorResults, err := r.Search(ctx, query, limit*2, scoreThreshold)
	if err != nil {
		return nil, err
	}

	keywordScores, err := r.keyword.Search(query, limit*2)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	combined := make([]SearchResult, 0, len(vectorResults))
	seen := make(map[int64]bool, len(vectorResults))
	for _, res := range vectorResults {
		score := vectorWeight*res.Score + keywordWeight*keywordScores[res.ID]
		combined = append(combined, SearchResult{Note: res.Note, Score: score})
		seen[res.ID] = true
	}

	// Keyword-only hits need their payload fetched from the store.
	for id, kscore := range keywordScores {
		if seen[id] {
			continue
		}
		point, err := r.store.Retrieve(ctx, r.collection, id)
		if err != nil {
			return nil, err
		}
		if point == nil {
			// Stale keyword entry; the vector store is the system of record.
			continue
		}
		combined = append(combined, SearchResult{
			Note:  Note{ID: point.ID, Payload: point.Payload},
			Score: keywordWeight * kscore,
		})
	}

	sort.Slice(combined, func(i, j int) bool { return combined[i].Score > combined[j].Score })
	if len(combined) > limit {
		combined = combined[:limit]
	}
	return combined, nil
}

// Read returns the note with the given id, or (nil, nil) if absent.
func (r *Repository) Read(ctx context.Context, id int64) (*Note, error) {
	point, err := r.store.Retrieve(ctx, r.collection, id)
	if err != nil {
		return nil, err
	}
	if point == nil {
		return nil, nil
	}
	return &Note{ID: point.ID, Payload: point.Payload}, nil
}

// Delete removes the note with the given id. Deleting a nonexistent id
// succeeds.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		return err
	}
	if r.keyword != nil {
		if err := r.keyword.Delete(id); err != nil {
			log.Printf("Warning: failed to remove note %d from keyword index: %v", id, err)
		}
	}
	return nil
}
