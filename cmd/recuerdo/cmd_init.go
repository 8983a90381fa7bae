package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/avillega/recuerdo/internal/config"
)

// handleInit implements the init subcommand
func handleInit(configPath string, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    recuerdo [-config <path>] init

DESCRIPTION:
    Create a default configuration template if none exists.
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		configPath = filepath.Join(homeDir, ".recuerdo", "config", "recuerdo.yaml")
	}

	created, err := config.WriteDefaultTemplate(configPath)
	if err != nil {
		log.Fatalf("Failed to create config template: %v", err)
	}
	if created {
		fmt.Printf("Created config template at %s\n", configPath)
		fmt.Println("Edit it (or set the environment variables listed inside) before running the bot.")
	} else {
		fmt.Printf("Config already exists at %s\n", configPath)
	}
}
