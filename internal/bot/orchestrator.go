// Package bot routes user utterances through the classify/store/answer
// pipeline and carries them over Telegram.
package bot

import (
	"context"
	"log"

	"github.com/avillega/recuerdo/internal/agent"
	"github.com/avillega/recuerdo/internal/history"
	"github.com/avillega/recuerdo/internal/notes"
)

// Replies mirror the bot's user-facing language.
const (
	ReplyNoteSaved          = "Nota guardada"
	ReplyProcessingError    = "Lo siento, ocurrió un error procesando tu mensaje."
	ReplyTranscriptionError = "Error transcribiendo el audio."
)

// Repository is the note store surface the orchestrator uses.
type Repository interface {
	CreateText(ctx context.Context, content string) (notes.Note, error)
	Search(ctx context.Context, query string, limit int, scoreThreshold float64) ([]notes.SearchResult, error)
}

// Classifier labels an utterance as note or question.
type Classifier interface {
	Classify(ctx context.Context, text string) (agent.Intent, error)
}

// Composer produces a grounded answer from search results.
type Composer interface {
	Compose(ctx context.Context, results []notes.SearchResult, question string) (string, error)
}

// Recorder journals handled utterances. May be nil.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Orchestrator processes one utterance end to end: classify, then either
// store a note or answer from retrieved notes. It holds no state across
// calls.
type Orchestrator struct {
	repo       Repository
	classifier Classifier
	composer   Composer
	journal    Recorder

	topK           int
	scoreThreshold float64
}

func NewOrchestrator(repo Repository, classifier Classifier, composer Composer, topK int, scoreThreshold float64) *Orchestrator {
	if topK <= 0 {
		topK = 3
	}
	return &Orchestrator{
		repo:           repo,
		classifier:     classifier,
		composer:       composer,
		topK:           topK,
		scoreThreshold: scoreThreshold,
	}
}

// WithJournal attaches a journal for handled utterances.
func (o *Orchestrator) WithJournal(journal Recorder) *Orchestrator {
	o.journal = journal
	return o
}

// Handle routes one utterance and always returns a user-visible reply. Any
// collaborator failure becomes an apology message instead of crashing the
// session loop; nothing is retried.
func (o *Orchestrator) Handle(ctx context.Context, chat int64, text string) string {
	reply, intent, err := o.route(ctx, text)
	if err != nil {
		log.Printf("Failed to handle utterance: %v", err)
		reply = ReplyProcessingError
	}

	if o.journal != nil {
		if err := o.journal.Record(ctx, history.Entry{
			Chat:   chat,
			Input:  text,
			Intent: string(intent),
			Reply:  reply,
		}); err != nil {
			log.Printf("Warning: failed to journal utterance: %v", err)
		}
	}

	return reply
}

func (o *Orchestrator) route(ctx context.Context, text string) (string, agent.Intent, error) {
	intent, err := o.classifier.Classify(ctx, text)
	if err != nil {
		return "", "", err
	}

	if intent == agent.IntentNote {
		if _, err := o.repo.CreateText(ctx, text); err != nil {
			return "", intent, err
		}
		return ReplyNoteSaved, intent, nil
	}

	results, err := o.repo.Search(ctx, text, o.topK, o.scoreThreshold)
	if err != nil {
		return "", intent, err
	}

	reply, err := o.composer.Compose(ctx, results, text)
	if err != nil {
		return "", intent, err
	}
	return reply, intent, nil
}
