package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/avillega/recuerdo/internal/cli"
	"github.com/avillega/recuerdo/internal/config"
	"github.com/avillega/recuerdo/internal/notes"
)

// handleImport implements the import subcommand
func handleImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	var dryRun bool
	var noProgress bool

	fs.BoolVar(&dryRun, "dry-run", false, "List matched files without storing anything")
	fs.BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo import [options] <pattern> [pattern...]

DESCRIPTION:
    Create one note per file matching the glob patterns. The file name
    (without extension) becomes the title and the file body the content.
    Patterns support doublestar globs like 'notes/**/*.md'.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    recuerdo import 'notes/**/*.md'
    recuerdo import -dry-run 'journal/*.txt' 'ideas/**/*.md'
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: at least one glob pattern is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	var files []string
	seen := make(map[string]bool)
	for _, pattern := range fs.Args() {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			log.Fatalf("Invalid pattern %q: %v", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}

	if len(files) == 0 {
		fmt.Println("No files matched")
		return
	}

	if dryRun {
		for _, file := range files {
			fmt.Println(file)
		}
		fmt.Printf("%d files would be imported\n", len(files))
		return
	}

	repo, cleanup := newRepository(cfg)
	defer cleanup()

	progress := cli.NewImportProgress(!noProgress && cli.DefaultProgressEnabled())
	if progress != nil {
		progress.Start(len(files))
	}

	ctx := context.Background()
	imported := 0
	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Warning: failed to read %s: %v", file, err)
			failed++
			continue
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			log.Printf("Warning: skipping empty file %s", file)
			failed++
			continue
		}

		base := filepath.Base(file)
		title := strings.TrimSuffix(base, filepath.Ext(base))
		err = repo.Create(ctx, notes.Note{
			ID: notes.TimeID(),
			Payload: map[string]any{
				"title":   title,
				"content": content,
				"source":  file,
			},
		})
		if err != nil {
			log.Printf("Warning: failed to import %s: %v", file, err)
			failed++
		} else {
			imported++
		}
		if progress != nil {
			progress.Increment()
		}
	}
	if progress != nil {
		progress.Finish()
	}

	fmt.Printf("Imported %d notes (%d failed)\n", imported, failed)
}
