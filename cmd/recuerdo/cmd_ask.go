package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avillega/recuerdo/internal/agent"
	"github.com/avillega/recuerdo/internal/cli"
	"github.com/avillega/recuerdo/internal/config"
)

// handleAsk implements the ask subcommand
func handleAsk(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)

	var topK int
	var threshold float64
	var showContext bool

	fs.IntVar(&topK, "k", cfg.Search.DefaultTopK, "Number of notes retrieved as context")
	fs.Float64Var(&threshold, "threshold", cfg.Search.ScoreThreshold, "Minimum similarity score (0 disables)")
	fs.BoolVar(&showContext, "show-context", false, "Print the retrieved context before the answer")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo ask [options] "<question>"

DESCRIPTION:
    Answer a question from your stored notes. The most similar notes are
    retrieved and summarized by the language model.

OPTIONS:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: question is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	question := fs.Arg(0)

	repo, cleanup := newRepository(cfg)
	defer cleanup()
	_, composer := newAgents(cfg)

	ctx := context.Background()
	stopSpinner := cli.StartSpinner(cli.DefaultProgressEnabled(), "thinking")

	results, err := repo.Search(ctx, question, topK, threshold)
	if err != nil {
		stopSpinner()
		log.Fatalf("Search failed: %v", err)
	}

	answer, err := composer.Compose(ctx, results, question)
	stopSpinner()
	if err != nil {
		log.Fatalf("Failed to compose answer: %v", err)
	}

	if showContext {
		fmt.Println("--- context ---")
		fmt.Println(agent.BuildContext(results))
		fmt.Println("--- answer ---")
	}
	fmt.Println(answer)
}
