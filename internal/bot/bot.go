package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/avillega/recuerdo/internal/asr"
)

// Transcriber turns a voice clip into text. *asr.Client implements it.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader, opts asr.Options) (*asr.Result, error)
}

// Bot drives the Telegram long-poll loop and hands utterances to the
// orchestrator. Voice messages are transcribed first; a failed transcription
// gets its own error reply and nothing is stored.
type Bot struct {
	tg          *Telegram
	orch        *Orchestrator
	transcriber Transcriber
	language    string
}

func New(tg *Telegram, orch *Orchestrator) *Bot {
	return &Bot{tg: tg, orch: orch}
}

// WithTranscriber enables voice message handling.
func (b *Bot) WithTranscriber(t Transcriber, language string) *Bot {
	b.transcriber = t
	b.language = language
	return b
}

// Run long-polls until the context is canceled. Update handling errors are
// logged, never fatal; the next poll continues from the last seen update.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	log.Printf("Bot loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.tg.GetUpdates(ctx, offset, 60)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("getUpdates failed: %v", err)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *IncomingMessage) {
	chatID := msg.Chat.ID

	text := msg.Text
	if msg.Voice != nil {
		transcribed, err := b.transcribeVoice(ctx, msg.Voice)
		if err != nil {
			log.Printf("Transcription failed for chat %d: %v", chatID, err)
			b.reply(ctx, chatID, ReplyTranscriptionError)
			return
		}
		text = transcribed
	}
	if text == "" {
		return
	}

	b.reply(ctx, chatID, b.orch.Handle(ctx, chatID, text))
}

func (b *Bot) transcribeVoice(ctx context.Context, voice *Voice) (string, error) {
	if b.transcriber == nil {
		return "", fmt.Errorf("no transcription service configured")
	}
	audio, err := b.tg.DownloadFile(ctx, voice.FileID)
	if err != nil {
		return "", err
	}
	result, err := b.transcriber.Transcribe(ctx, voice.FileID+".ogg", bytes.NewReader(audio), asr.Options{
		Output:   "text",
		Task:     "transcribe",
		Language: b.language,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	if err := b.tg.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("Failed to send reply to chat %d: %v", chatID, err)
	}
}
