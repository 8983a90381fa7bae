package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avillega/recuerdo/internal/config"
	"github.com/avillega/recuerdo/internal/history"
)

// handleHistory implements the history subcommand
func handleHistory(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	var limit int

	fs.IntVar(&limit, "n", 20, "Number of entries to show")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo history [options]

DESCRIPTION:
    Show recently handled utterances from the local journal, newest first.

OPTIONS:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	journal, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	defer journal.Close()

	entries, err := journal.Recent(context.Background(), limit)
	if err != nil {
		log.Fatalf("Failed to read journal: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history yet")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  [%s]  %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Intent, e.Input)
		if e.Reply != "" {
			fmt.Printf("    -> %s\n", e.Reply)
		}
	}
	_ = os.Stdout.Sync()
}
