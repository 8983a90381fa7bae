package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/avillega/recuerdo/internal/agent"
	"github.com/avillega/recuerdo/internal/history"
	"github.com/avillega/recuerdo/internal/notes"
)

type fakeRepo struct {
	created   []string
	createErr error

	searchResults []notes.SearchResult
	searchQuery   string
	searchLimit   int
	searchErr     error
}

func (r *fakeRepo) CreateText(_ context.Context, content string) (notes.Note, error) {
	if r.createErr != nil {
		return notes.Note{}, r.createErr
	}
	r.created = append(r.created, content)
	return notes.Note{ID: 1, Payload: map[string]any{"content": content}}, nil
}

func (r *fakeRepo) Search(_ context.Context, query string, limit int, _ float64) ([]notes.SearchResult, error) {
	r.searchQuery = query
	r.searchLimit = limit
	return r.searchResults, r.searchErr
}

type fakeClassifier struct {
	intent agent.Intent
	err    error
}

func (c *fakeClassifier) Classify(context.Context, string) (agent.Intent, error) {
	return c.intent, c.err
}

type fakeComposer struct {
	reply   string
	err     error
	results []notes.SearchResult
}

func (c *fakeComposer) Compose(_ context.Context, results []notes.SearchResult, _ string) (string, error) {
	c.results = results
	return c.reply, c.err
}

type fakeJournal struct {
	entries []history.Entry
	err     error
}

func (j *fakeJournal) Record(_ context.Context, e history.Entry) error {
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, e)
	return nil
}

func TestHandleNoteIntent(t *testing.T) {
	repo := &fakeRepo{}
	orch := NewOrchestrator(repo, &fakeClassifier{intent: agent.IntentNote}, &fakeComposer{}, 3, 0)

	reply := orch.Handle(context.Background(), 100, "comprar leche mañana")
	if reply != ReplyNoteSaved {
		t.Errorf("reply = %q, want %q", reply, ReplyNoteSaved)
	}
	if len(repo.created) != 1 || repo.created[0] != "comprar leche mañana" {
		t.Errorf("created = %v", repo.created)
	}
}

func TestHandleQuestionIntent(t *testing.T) {
	repo := &fakeRepo{searchResults: []notes.SearchResult{
		{Note: notes.Note{ID: 1, Payload: map[string]any{"content": "comprar leche"}}, Score: 0.9},
	}}
	composer := &fakeComposer{reply: "Tenías que comprar leche."}
	orch := NewOrchestrator(repo, &fakeClassifier{intent: agent.IntentQuestion}, composer, 5, 0.4)

	reply := orch.Handle(context.Background(), 100, "¿qué tenía que comprar?")
	if reply != "Tenías que comprar leche." {
		t.Errorf("reply = %q", reply)
	}
	if repo.searchQuery != "¿qué tenía que comprar?" {
		t.Errorf("search query = %q", repo.searchQuery)
	}
	if repo.searchLimit != 5 {
		t.Errorf("search limit = %d, want 5", repo.searchLimit)
	}
	if len(composer.results) != 1 {
		t.Errorf("composer got %d results", len(composer.results))
	}
	if len(repo.created) != 0 {
		t.Errorf("question created notes: %v", repo.created)
	}
}

func TestHandleQuestionWithNoMatches(t *testing.T) {
	repo := &fakeRepo{} // empty search results
	composer := &fakeComposer{reply: "No se encontraron notas relevantes."}
	orch := NewOrchestrator(repo, &fakeClassifier{intent: agent.IntentQuestion}, composer, 3, 0)

	reply := orch.Handle(context.Background(), 100, "¿dónde dejé las llaves?")
	if reply != "No se encontraron notas relevantes." {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleFailuresBecomeApology(t *testing.T) {
	tests := []struct {
		name       string
		repo       *fakeRepo
		classifier *fakeClassifier
		composer   *fakeComposer
	}{
		{
			name:       "classifier error",
			repo:       &fakeRepo{},
			classifier: &fakeClassifier{err: errors.New("model down")},
			composer:   &fakeComposer{},
		},
		{
			name:       "store error on note",
			repo:       &fakeRepo{createErr: errors.New("index unreachable")},
			classifier: &fakeClassifier{intent: agent.IntentNote},
			composer:   &fakeComposer{},
		},
		{
			name:       "search error on question",
			repo:       &fakeRepo{searchErr: errors.New("index unreachable")},
			classifier: &fakeClassifier{intent: agent.IntentQuestion},
			composer:   &fakeComposer{},
		},
		{
			name:       "composer error",
			repo:       &fakeRepo{},
			classifier: &fakeClassifier{intent: agent.IntentQuestion},
			composer:   &fakeComposer{err: errors.New("model down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := NewOrchestrator(tt.repo, tt.classifier, tt.composer, 3, 0)
			reply := orch.Handle(context.Background(), 100, "hola")
			if reply != ReplyProcessingError {
				t.Errorf("reply = %q, want apology", reply)
			}
		})
	}
}

func TestHandleJournalsUtterance(t *testing.T) {
	journal := &fakeJournal{}
	orch := NewOrchestrator(&fakeRepo{}, &fakeClassifier{intent: agent.IntentNote}, &fakeComposer{}, 3, 0).
		WithJournal(journal)

	orch.Handle(context.Background(), 77, "comprar pan")
	if len(journal.entries) != 1 {
		t.Fatalf("journaled %d entries, want 1", len(journal.entries))
	}
	entry := journal.entries[0]
	if entry.Chat != 77 || entry.Input != "comprar pan" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Intent != string(agent.IntentNote) {
		t.Errorf("intent = %q", entry.Intent)
	}
	if entry.Reply != ReplyNoteSaved {
		t.Errorf("reply = %q", entry.Reply)
	}
}

func TestHandleJournalFailureDoesNotChangeReply(t *testing.T) {
	journal := &fakeJournal{err: errors.New("disk full")}
	orch := NewOrchestrator(&fakeRepo{}, &fakeClassifier{intent: agent.IntentNote}, &fakeComposer{}, 3, 0).
		WithJournal(journal)

	reply := orch.Handle(context.Background(), 77, "comprar pan")
	if reply != ReplyNoteSaved {
		t.Errorf("reply = %q, want %q", reply, ReplyNoteSaved)
	}
}

func TestDefaultTopK(t *testing.T) {
	repo := &fakeRepo{}
	orch := NewOrchestrator(repo, &fakeClassifier{intent: agent.IntentQuestion}, &fakeComposer{reply: "ok"}, 0, 0)
	orch.Handle(context.Background(), 1, "¿algo?")
	if repo.searchLimit != 3 {
		t.Errorf("search limit = %d, want default 3", repo.searchLimit)
	}
}
