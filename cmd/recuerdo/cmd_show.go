package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/avillega/recuerdo/internal/config"
)

// handleShow implements the show subcommand
func handleShow(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo show <id>

DESCRIPTION:
    Print a stored note by id.
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: note id is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		log.Fatalf("Invalid note id %q: %v", fs.Arg(0), err)
	}

	repo, cleanup := newRepository(cfg)
	defer cleanup()

	note, err := repo.Read(context.Background(), id)
	if err != nil {
		log.Fatalf("Failed to read note: %v", err)
	}
	if note == nil {
		fmt.Printf("Note %d not found\n", id)
		os.Exit(1)
	}

	if title, _ := note.Payload["title"].(string); title != "" {
		fmt.Printf("Title: %s\n", title)
	}
	fmt.Println(note.Content())
}
