package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avillega/recuerdo/internal/asr"
	"github.com/avillega/recuerdo/internal/bot"
	"github.com/avillega/recuerdo/internal/config"
	"github.com/avillega/recuerdo/internal/history"
)

// handleBot implements the bot subcommand
func handleBot(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("bot", flag.ExitOnError)

	var language string
	var noJournal bool

	fs.StringVar(&language, "lang", "", "Transcription language hint (overrides config)")
	fs.BoolVar(&noJournal, "no-journal", false, "Disable the local conversation journal")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo bot [options]

DESCRIPTION:
    Run the Telegram bot loop. Incoming text is classified as a note to
    store or a question to answer from stored notes. Voice messages are
    transcribed first when a transcription service is configured.

OPTIONS:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if cfg.Telegram.Token == "" {
		log.Fatalf("telegram token is required (config telegram.token or TELEGRAM_TOKEN)")
	}

	repo, cleanup := newRepository(cfg)
	defer cleanup()
	classifier, composer := newAgents(cfg)

	orch := bot.NewOrchestrator(repo, classifier, composer, cfg.Search.DefaultTopK, cfg.Search.ScoreThreshold)

	if !noJournal && !cfg.History.Disabled {
		journal, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Printf("Warning: conversation journal unavailable: %v", err)
		} else {
			defer journal.Close()
			orch.WithJournal(journal)
		}
	}

	b := bot.New(bot.NewTelegram(cfg.Telegram.Token), orch)
	if cfg.Transcription.URL != "" {
		if language == "" {
			language = cfg.Transcription.Language
		}
		b.WithTranscriber(asr.NewClient(cfg.Transcription.URL), language)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting recuerdo bot (collection %q)", cfg.VectorStore.Collection)
	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Bot loop failed: %v", err)
	}
	log.Printf("Bot stopped")
}
