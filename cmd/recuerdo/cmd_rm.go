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

// handleRm implements the rm subcommand
func handleRm(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo rm <id> [id...]

DESCRIPTION:
    Delete stored notes by id. Deleting an unknown id succeeds.
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: at least one note id is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	repo, cleanup := newRepository(cfg)
	defer cleanup()

	ctx := context.Background()
	for _, arg := range fs.Args() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			log.Fatalf("Invalid note id %q: %v", arg, err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			log.Fatalf("Failed to delete note %d: %v", id, err)
		}
		fmt.Printf("Note %d deleted\n", id)
	}
}
