package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/avillega/recuerdo/cmd/recuerdo/internal"
	"github.com/avillega/recuerdo/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		internal.PrintUsage()
		os.Exit(1)
	}

	configPath := ""
	args := os.Args[1:]

	// Handle special flags that don't require a subcommand
	for _, arg := range args {
		if arg == "-h" || arg == "-help" || arg == "--help" {
			internal.PrintUsage()
			os.Exit(0)
		}
		if arg == "-v" || arg == "-version" || arg == "--version" {
			fmt.Printf("recuerdo version %s\n", internal.Version)
			os.Exit(0)
		}
	}

	validSubcommands := map[string]bool{
		"bot":     true,
		"note":    true,
		"ask":     true,
		"search":  true,
		"import":  true,
		"show":    true,
		"rm":      true,
		"history": true,
		"init":    true,
	}

	subcommandIndex := -1
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && validSubcommands[arg] {
			subcommandIndex = i
			break
		}
	}

	if subcommandIndex == -1 {
		fmt.Fprintf(os.Stderr, "Error: No subcommand specified\n\n")
		internal.PrintUsage()
		os.Exit(1)
	}

	// Parse global flags (before subcommand)
	globalFlags := args[:subcommandIndex]
	for i := 0; i < len(globalFlags); i++ {
		flag := globalFlags[i]
		if flag == "-config" || flag == "--config" {
			if i+1 < len(globalFlags) {
				configPath = globalFlags[i+1]
				i++
			}
		} else if strings.HasPrefix(flag, "-") {
			fmt.Fprintf(os.Stderr, "Error: Unknown global flag: %s\n\n", flag)
			internal.PrintUsage()
			os.Exit(1)
		}
	}

	subcommand := args[subcommandIndex]
	subArgs := args[subcommandIndex+1:]

	// init works without an existing configuration
	if subcommand == "init" {
		handleInit(configPath, subArgs)
		return
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		if config.IsConfigNotFound(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			internal.PrintConfigExample()
			os.Exit(1)
		}
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := internal.SetupLogging(subcommand); err != nil {
		log.Printf("Warning: failed to set up log file: %v", err)
	}

	switch subcommand {
	case "bot":
		handleBot(cfg, subArgs)
	case "note":
		handleNote(cfg, subArgs)
	case "ask":
		handleAsk(cfg, subArgs)
	case "search":
		handleSearch(cfg, subArgs)
	case "import":
		handleImport(cfg, subArgs)
	case "show":
		handleShow(cfg, subArgs)
	case "rm":
		handleRm(cfg, subArgs)
	case "history":
		handleHistory(cfg, subArgs)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown subcommand: %s\n\n", subcommand)
		internal.PrintUsage()
		os.Exit(1)
	}
}
