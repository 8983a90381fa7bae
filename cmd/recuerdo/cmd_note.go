package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avillega/recuerdo/internal/config"
	"github.com/avillega/recuerdo/internal/notes"
)

// handleNote implements the note subcommand
func handleNote(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("note", flag.ExitOnError)

	var title string
	var id int64

	fs.StringVar(&title, "title", "", "Optional note title")
	fs.Int64Var(&id, "id", 0, "Explicit note id (default: time-based). An existing id is replaced.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo note [options] "<text>"

DESCRIPTION:
    Embed and store a note in the vector index.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    recuerdo note "Tengo que comprar leche"
    recuerdo note -title "Compras" "Leche, pan y huevos"
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: note text is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	content := fs.Arg(0)

	repo, cleanup := newRepository(cfg)
	defer cleanup()

	payload := map[string]any{"content": content}
	if title != "" {
		payload["title"] = title
	}
	if id == 0 {
		id = notes.TimeID()
	}

	ctx := context.Background()
	if err := repo.Create(ctx, notes.Note{ID: id, Payload: payload}); err != nil {
		log.Fatalf("Failed to create note: %v", err)
	}

	fmt.Printf("Note %d saved\n", id)
}
