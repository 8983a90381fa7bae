package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/avillega/recuerdo/internal/notes"
)

const emptyContext = "No relevant notes found."

const composerSystemPrompt = "Eres un agente que responde preguntas basadas en notas guardadas.\n" +
	"Responde con la información más relevante de las notas guardadas teniendo en cuenta el score que está en los datos.\n" +
	"Si no hay notas relevantes, responde con \"No se encontraron notas relevantes\" o algo similar.\n" +
	"Contexto de notas guardadas:\n"

// Millisecond timestamps between 2001-09-09 and 5138-11-16. Ids outside this
// range are rendered as raw integers.
const (
	minTimestampID = int64(1e12)
	maxTimestampID = int64(1e14)
)

// Composer answers a question grounded on ranked search results.
type Composer struct {
	chat *ChatClient
}

func NewComposer(chat *ChatClient) *Composer {
	return &Composer{chat: chat}
}

// Compose renders the search results as a scored context block and issues one
// model call constrained to answer from that context. The model's reply is
// returned verbatim; a model-call failure propagates with no local fallback.
func (c *Composer) Compose(ctx context.Context, results []notes.SearchResult, question string) (string, error) {
	return c.chat.Complete(ctx, []Message{
		{Role: "system", Content: composerSystemPrompt + BuildContext(results)},
		{Role: "user", Content: question},
	}, 1, 1)
}

// BuildContext renders search results as one line per note, best score
// first, with a creation time derived from the id when the id looks like a
// millisecond timestamp.
func BuildContext(results []notes.SearchResult) string {
	if len(results) == 0 {
		return emptyContext
	}

	sorted := make([]notes.SearchResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var b strings.Builder
	for i, res := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Note (created: %s, score: %g): %s",
			formatCreated(res.ID), res.Score, res.Content())
	}
	return b.String()
}

func formatCreated(id int64) string {
	if id >= minTimestampID && id < maxTimestampID {
		return time.UnixMilli(id).Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%d", id)
}
