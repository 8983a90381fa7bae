package notes

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/avillega/recuerdo/internal/embedding"
	"github.com/avillega/recuerdo/internal/qdrant"
)

// memStore is an in-memory Store with the same visibility semantics as the
// real index: upserts are immediately readable and searchable.
type memStore struct {
	collectionSize int
	points         map[int64]qdrant.Point
	ensureCalls    int
	upsertCalls    int
}

func newMemStore() *memStore {
	return &memStore{points: make(map[int64]qdrant.Point)}
}

func (s *memStore) EnsureCollection(_ context.Context, _ string, vectorSize int) error {
	s.ensureCalls++
	if s.collectionSize == 0 {
		s.collectionSize = vectorSize
		return nil
	}
	if s.collectionSize != vectorSize {
		return qdrant.ErrDimensionMismatch
	}
	return nil
}

func (s *memStore) UpsertPoint(_ context.Context, _ string, point qdrant.Point) error {
	s.upsertCalls++
	s.points[point.ID] = point
	return nil
}

func (s *memStore) Search(_ context.Context, _ string, vector []float32, limit int, scoreThreshold float64) ([]qdrant.SearchPoint, error) {
	var results []qdrant.SearchPoint
	for id, p := range s.points {
		score := float64(embedding.Similarity(vector, p.Vector))
		if scoreThreshold > 0 && score < scoreThreshold {
			continue
		}
		results = append(results, qdrant.SearchPoint{ID: id, Score: score, Payload: p.Payload})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *memStore) Retrieve(_ context.Context, _ string, id int64) (*qdrant.Point, error) {
	p, ok := s.points[id]
	if !ok {
		return nil, nil
	}
	return &qdrant.Point{ID: p.ID, Payload: p.Payload}, nil
}

func (s *memStore) Delete(_ context.Context, _ string, id int64) error {
	delete(s.points, id)
	return nil
}

// wordEmbedder maps known words to fixed unit vectors so similarity is
// predictable without a model.
type wordEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func testEmbedder() *wordEmbedder {
	return &wordEmbedder{vectors: map[string][]float32{
		"comprar leche":      {1, 0, 0},
		"leche":              {0.9, 0.1, 0},
		"llamar al dentista": {0, 1, 0},
		"dentista":           {0.1, 0.9, 0},
		"regar las plantas":  {0, 0, 1},
		"cuidado del jardin": {0, 0.1, 0.9},
		"algo sin relacion":  {0.57, 0.57, 0.57},
	}}
}

func seqID() IDFunc {
	next := int64(0)
	return func() int64 {
		next++
		return next
	}
}

func TestCreateAndRead(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, testEmbedder(), "notes")
	ctx := context.Background()

	note := Note{ID: 100, Payload: map[string]any{"content": "comprar leche", "title": "super"}}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Read(ctx, 100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got == nil {
		t.Fatal("Read returned nil for existing note")
	}
	if got.Content() != "comprar leche" {
		t.Errorf("content = %q", got.Content())
	}
	if got.Payload["title"] != "super" {
		t.Errorf("title = %v", got.Payload["title"])
	}
	if store.ensureCalls != 1 {
		t.Errorf("EnsureCollection called %d times, want 1", store.ensureCalls)
	}
}

func TestCreateRequiresContent(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing content", map[string]any{"title": "sin texto"}},
		{"empty content", map[string]any{"content": ""}},
		{"non-string content", map[string]any{"content": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			repo := NewRepository(store, testEmbedder(), "notes")
			err := repo.Create(context.Background(), Note{ID: 1, Payload: tt.payload})
			if !errors.Is(err, ErrContentRequired) {
				t.Fatalf("err = %v, want ErrContentRequired", err)
			}
			if store.upsertCalls != 0 {
				t.Errorf("store written despite validation failure")
			}
		})
	}
}

func TestCreateEmbedFailureWritesNothing(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, &wordEmbedder{err: errors.New("model down")}, "notes")
	err := repo.Create(context.Background(), Note{ID: 1, Payload: map[string]any{"content": "hola"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if store.upsertCalls != 0 {
		t.Error("store written despite embed failure")
	}
}

func TestCreateTextAssignsID(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, testEmbedder(), "notes", WithIDFunc(seqID()))
	ctx := context.Background()

	first, err := repo.CreateText(ctx, "comprar leche")
	if err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	second, err := repo.CreateText(ctx, "llamar al dentista")
	if err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("both notes got id %d", first.ID)
	}
	if first.Content() != "comprar leche" {
		t.Errorf("content = %q", first.Content())
	}
}

func TestRecreateReplacesNote(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, testEmbedder(), "notes")
	ctx := context.Background()

	for _, content := range []string{"comprar leche", "llamar al dentista"} {
		err := repo.Create(ctx, Note{ID: 5, Payload: map[string]any{"content": content}})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.Read(ctx, 5)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Content() != "llamar al dentista" {
		t.Errorf("content = %q, want replacement", got.Content())
	}
}

func TestDeleteThenReadAbsent(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, testEmbedder(), "notes")
	ctx := context.Background()

	if err := repo.Create(ctx, Note{ID: 9, Payload: map[string]any{"content": "comprar leche"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, 9); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.Read(ctx, 9)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != nil {
		t.Errorf("Read after delete = %+v, want nil", got)
	}
	// Deleting again succeeds.
	if err := repo.Delete(ctx, 9); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestSearchOrdersByScore(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, testEmbedder(), "notes", WithIDFunc(seqID()))
	ctx := context.Background()

	for _, content := range []string{"comprar leche", "llamar al dentista", "regar las plantas"} {
		if _, err := repo.CreateText(ctx, content); err != nil {
			t.Fatalf("CreateText: %v", err)
		}
	}

	results, err := repo.Search(ctx, "leche", 3, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Content() != "comprar leche" {
		t.Errorf("top result = %q, want comprar leche", results[0].Content())
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted: %v before %v", results[i-1].Score, results[i].Score)
		}
	}
}

func TestSearchThresholdFiltersWeakHits(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, testEmbedder(), "notes", WithIDFunc(seqID()))
	ctx := context.Background()

	for _, content := range []string{"comprar leche", "llamar al dentista"} {
		if _, err := repo.CreateText(ctx, content); err != nil {
			t.Fatalf("CreateText: %v", err)
		}
	}

	results, err := repo.Search(ctx, "leche", 10, 0.8)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, res := range results {
		if res.Score < 0.8 {
			t.Errorf("result %q score %v below threshold", res.Content(), res.Score)
		}
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearchEmptyStore(t *testing.T) {
	repo := NewRepository(newMemStore(), testEmbedder(), "notes")
	results, err := repo.Search(context.Background(), "leche", 3, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

// memKeyword is an in-memory KeywordIndexer backed by substring matching.
type memKeyword struct {
	docs map[int64]string
}

func (k *memKeyword) Index(id int64, title, content string) error {
	if k.docs == nil {
		k.docs = make(map[int64]string)
	}
	k.docs[id] = title + " " + content
	return nil
}

func (k *memKeyword) Delete(id int64) error {
	delete(k.docs, id)
	return nil
}

func (k *memKeyword) Search(query string, limit int) (map[int64]float64, error) {
	scores := make(map[int64]float64)
	for id, doc := range k.docs {
		if containsWord(doc, query) {
			scores[id] = 1.0
		}
	}
	return scores, nil
}

func containsWord(doc, word string) bool {
	for i := 0; i+len(word) <= len(doc); i++ {
		if doc[i:i+len(word)] == word {
			return true
		}
	}
	return false
}

func TestSearchHybridBoostsKeywordMatches(t *testing.T) {
	store := newMemStore()
	kw := &memKeyword{}
	repo := NewRepository(store, testEmbedder(), "notes",
		WithIDFunc(seqID()),
		WithKeywordIndex(kw, 0.5, 0.5))
	ctx := context.Background()

	if _, err := repo.CreateText(ctx, "regar las plantas"); err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	if _, err := repo.CreateText(ctx, "cuidado del jardin"); err != nil {
		t.Fatalf("CreateText: %v", err)
	}

	// "regar las plantas" is both semantically close and an exact keyword
	// match; the keyword leg must push it above the merely-similar note.
	results, err := repo.SearchHybrid(ctx, "regar las plantas", 2, 0)
	if err != nil {
		t.Fatalf("SearchHybrid: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Content() != "regar las plantas" {
		t.Errorf("top result = %q", results[0].Content())
	}
	if len(results) >= 2 && results[0].Score <= results[1].Score {
		t.Errorf("keyword match not boosted: %v vs %v", results[0].Score, results[1].Score)
	}
}

func TestSearchHybridSkipsStaleKeywordEntries(t *testing.T) {
	store := newMemStore()
	kw := &memKeyword{}
	repo := NewRepository(store, testEmbedder(), "notes",
		WithIDFunc(seqID()),
		WithKeywordIndex(kw, 0.7, 0.3))
	ctx := context.Background()

	// A keyword entry whose point no longer exists in the vector store.
	if err := kw.Index(999, "", "comprar leche"); err != nil {
		t.Fatalf("Index: %v", err)
	}

	results, err := repo.SearchHybrid(ctx, "leche", 5, 0)
	if err != nil {
		t.Fatalf("SearchHybrid: %v", err)
	}
	for _, res := range results {
		if res.ID == 999 {
			t.Error("stale keyword entry surfaced in results")
		}
	}
}

func TestSearchHybridWithoutIndexFallsBack(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store, testEmbedder(), "notes", WithIDFunc(seqID()))
	ctx := context.Background()

	if _, err := repo.CreateText(ctx, "comprar leche"); err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	results, err := repo.SearchHybrid(ctx, "leche", 3, 0)
	if err != nil {
		t.Fatalf("SearchHybrid: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}
