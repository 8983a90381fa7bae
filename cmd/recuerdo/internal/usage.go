package internal

import (
	"fmt"
	"os"
)

const Version = "0.3.1"

// PrintUsage writes the command overview to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `recuerdo - Personal semantic note assistant

Version: %s

USAGE:
    recuerdo [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ~/.recuerdo/config/recuerdo.yaml)

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    bot
        Run the Telegram bot loop (text and voice messages)

    note
        Store a note from the command line

    ask
        Ask a question answered from your stored notes

    search
        Search stored notes by semantic similarity

    import
        Bulk-import notes from files matching glob patterns

    show
        Print a stored note by id

    rm
        Delete stored notes by id

    history
        Show recently handled utterances

    init
        Create a default config file

EXAMPLES:
    # Create the config template, then edit it
    recuerdo init

    # Run the bot
    recuerdo bot

    # Store a note directly
    recuerdo note "Tengo que comprar leche"

    # Ask a question
    recuerdo ask "¿Qué tengo que comprar?"

    # Raw similarity search
    recuerdo search "comprar leche" -k 5

    # Import a folder of markdown notes
    recuerdo import 'notes/**/*.md'

For detailed help on each command, use:
    recuerdo <command> -help
`, Version)
}

// PrintConfigExample writes a minimal config example to stderr.
func PrintConfigExample() {
	homeDir, _ := os.UserHomeDir()
	configPath := fmt.Sprintf("%s/.recuerdo/config/recuerdo.yaml", homeDir)

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s:

model:
  endpoint: https://api.openai.com/v1/chat/completions
  model: gpt-4o-mini
  api_key: your-model-api-key

embedding:
  api_key: your-embedding-api-key
  model: text-embedding-3-small
  dimensions: 1536

vector_store:
  url: http://127.0.0.1:6333
  collection: recuerdo_notes

telegram:
  token: your-telegram-bot-token

All values can also come from environment variables; run 'recuerdo init'
to create a template listing them.
`, configPath)
}
