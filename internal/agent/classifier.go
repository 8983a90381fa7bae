package agent

import (
	"context"
	"strings"
)

// Intent is the classifier's binary label for a user utterance.
type Intent string

const (
	IntentNote     Intent = "note"
	IntentQuestion Intent = "question"
)

const classifierSystemPrompt = "Eres un asistente que clasifica mensajes como 'nota' o 'pregunta'. " +
	"Si el mensaje es información para guardar, responde solo 'nota'. " +
	"Si es una pregunta, responde solo 'pregunta'."

// Classifier labels raw user text as a note to remember or a question to
// answer.
type Classifier struct {
	chat *ChatClient
}

func NewClassifier(chat *ChatClient) *Classifier {
	return &Classifier{chat: chat}
}

// Classify issues one model call and checks the lower-cased reply for the
// "nota" label token. Anything else, including ambiguous or malformed model
// output, is treated as a question: attempting retrieval is safer than
// silently dropping a note.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, error) {
	reply, err := c.chat.Complete(ctx, []Message{
		{Role: "system", Content: classifierSystemPrompt},
		{Role: "user", Content: text},
	}, 0, 1)
	if err != nil {
		return "", err
	}

	if strings.Contains(strings.ToLower(strings.TrimSpace(reply)), "nota") {
		return IntentNote, nil
	}
	return IntentQuestion, nil
}
