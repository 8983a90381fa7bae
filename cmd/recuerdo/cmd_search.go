package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avillega/recuerdo/internal/config"
	"github.com/avillega/recuerdo/internal/notes"
)

// handleSearch implements the search subcommand
func handleSearch(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)

	var topK int
	var threshold float64
	var hybrid, jsonOutput bool

	fs.IntVar(&topK, "k", cfg.Search.DefaultTopK, "Number of results to return")
	fs.Float64Var(&threshold, "threshold", cfg.Search.ScoreThreshold, "Minimum similarity score (0 disables)")
	fs.BoolVar(&hybrid, "hybrid", false, "Blend keyword relevance from the local index")
	fs.BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo search [options] "<query>"

DESCRIPTION:
    Search stored notes by semantic similarity. Results are ordered by
    descending score.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    recuerdo search "comprar leche"
    recuerdo search "ideas del proyecto" -k 10 -threshold 0.3
    recuerdo search "reunión lunes" -hybrid
    recuerdo search "comprar leche" -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: search query is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	query := fs.Arg(0)

	repo, cleanup := newRepository(cfg)
	defer cleanup()

	ctx := context.Background()
	var results []notes.SearchResult
	var err error
	if hybrid {
		results, err = repo.SearchHybrid(ctx, query, topK, threshold)
	} else {
		results, err = repo.Search(ctx, query, topK, threshold)
	}
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	if jsonOutput {
		out := make([]map[string]any, 0, len(results))
		for _, res := range results {
			out = append(out, map[string]any{
				"id":      res.ID,
				"score":   res.Score,
				"payload": res.Payload,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}

	if len(results) == 0 {
		fmt.Println("No notes found")
		return
	}
	for _, res := range results {
		title, _ := res.Payload["title"].(string)
		if title != "" {
			fmt.Printf("%d  %.4f  [%s] %s\n", res.ID, res.Score, title, res.Content())
		} else {
			fmt.Printf("%d  %.4f  %s\n", res.ID, res.Score, res.Content())
		}
	}
}
