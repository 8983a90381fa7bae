package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Telegram      TelegramConfig      `yaml:"telegram,omitempty"`
	Model         ModelConfig         `yaml:"model"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	VectorStore   VectorStoreConfig   `yaml:"vector_store"`
	Transcription TranscriptionConfig `yaml:"transcription,omitempty"`
	Search        SearchConfig        `yaml:"search,omitempty"`
	History       HistoryConfig       `yaml:"history,omitempty"`
	Keyword       KeywordConfig       `yaml:"keyword,omitempty"`
}

// TelegramConfig holds the chat transport configuration
type TelegramConfig struct {
	Token string `yaml:"token,omitempty"`
}

// ModelConfig holds the chat-completion model configuration
type ModelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// EmbeddingConfig holds embedding service configuration
type EmbeddingConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`

	// Embedding parameters
	Dimensions int `yaml:"dimensions"`
	BatchSize  int `yaml:"batch_size"`
}

// VectorStoreConfig holds the remote vector index configuration
type VectorStoreConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key,omitempty"`
	Collection string `yaml:"collection"`
}

// TranscriptionConfig holds the ASR service configuration
type TranscriptionConfig struct {
	URL      string `yaml:"url,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// SearchConfig holds search-specific configuration
type SearchConfig struct {
	DefaultTopK    int     `yaml:"default_top_k,omitempty"`   // Default number of results
	ScoreThreshold float64 `yaml:"score_threshold,omitempty"` // Minimum similarity score (0 disables)
	VectorWeight   float64 `yaml:"vector_weight,omitempty"`   // Vector search weight (0-1)
	KeywordWeight  float64 `yaml:"keyword_weight,omitempty"`  // Keyword search weight (0-1)
	EnableKeyword  bool    `yaml:"enable_keyword,omitempty"`  // Maintain the local keyword index
}

// HistoryConfig holds the conversation journal configuration
type HistoryConfig struct {
	// Path to the SQLite journal file
	// If empty, uses ~/.recuerdo/data/history.db
	Path string `yaml:"path,omitempty"`

	Disabled bool `yaml:"disabled,omitempty"`
}

// KeywordConfig holds the local keyword index configuration
type KeywordConfig struct {
	// Path to the bleve index directory
	// If empty, uses ~/.recuerdo/data/keyword.bleve
	Path string `yaml:"path,omitempty"`
}

// Environment variable overrides. Every value the bot needs at process start
// can be supplied without a config file.
const (
	envTelegramToken    = "TELEGRAM_TOKEN"
	envModelEndpoint    = "MODEL_ENDPOINT"
	envModel            = "MODEL"
	envModelAPIKey      = "MODEL_API_KEY"
	envVectorStoreURL   = "DB_URL"
	envCollection       = "DB_COLLECTION_NAME"
	envTranscriptionURL = "TRANSCRIPTION_API_URL"
	envEmbeddingKey     = "EMBEDDING_API_KEY"
)

// Load loads configuration from the default config file
// Default location: ~/.recuerdo/config/recuerdo.yaml
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".recuerdo", "config", "recuerdo.yaml")
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file.
// Environment variables override file values after parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".recuerdo", "config", "recuerdo.yaml")
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv builds a configuration from environment variables alone,
// without a config file on disk.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ConfigNotFoundError is returned when config file is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag\n"+
		"  3. Run 'recuerdo init' to create a config template",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envTelegramToken); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv(envModelEndpoint); v != "" {
		c.Model.Endpoint = v
	}
	if v := os.Getenv(envModel); v != "" {
		c.Model.Model = v
	}
	if v := os.Getenv(envModelAPIKey); v != "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv(envVectorStoreURL); v != "" {
		c.VectorStore.URL = v
	}
	if v := os.Getenv(envCollection); v != "" {
		c.VectorStore.Collection = v
	}
	if v := os.Getenv(envTranscriptionURL); v != "" {
		c.Transcription.URL = v
	}
	if v := os.Getenv(envEmbeddingKey); v != "" {
		c.Embedding.APIKey = v
	}
}

// expandPath expands ~ and $HOME to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "$HOME/") || path == "$HOME" {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			var err error
			homeDir, err = os.UserHomeDir()
			if err != nil {
				return path
			}
		}
		if path == "$HOME" {
			return homeDir
		}
		return filepath.Join(homeDir, path[6:])
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

func defaultDataPath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, ".recuerdo", "data", name)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Embedding.Endpoint == "" {
		c.Embedding.Endpoint = "https://api.openai.com/v1/embeddings"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 10
	}

	if c.VectorStore.URL == "" {
		c.VectorStore.URL = "http://127.0.0.1:6333"
	}
	if c.VectorStore.Collection == "" {
		c.VectorStore.Collection = "recuerdo_notes"
	}

	if c.Model.Endpoint == "" {
		c.Model.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if c.Model.Model == "" {
		c.Model.Model = "gpt-4o-mini"
	}

	if c.Search.DefaultTopK == 0 {
		c.Search.DefaultTopK = 3
	}
	if c.Search.VectorWeight == 0 && c.Search.KeywordWeight == 0 {
		c.Search.VectorWeight = 0.7
		c.Search.KeywordWeight = 0.3
	}

	if c.History.Path == "" {
		c.History.Path = defaultDataPath("history.db")
	}
	c.History.Path = expandPath(c.History.Path)

	if c.Keyword.Path == "" {
		c.Keyword.Path = defaultDataPath("keyword.bleve")
	}
	c.Keyword.Path = expandPath(c.Keyword.Path)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got: %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize <= 0 || c.Embedding.BatchSize > 100 {
		return fmt.Errorf("embedding batch_size must be between 1 and 100, got: %d", c.Embedding.BatchSize)
	}
	if c.VectorStore.Collection == "" {
		return fmt.Errorf("vector_store collection is required")
	}
	if c.Search.VectorWeight < 0 || c.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must not be negative")
	}
	return nil
}

// SaveToFile saves the configuration to a specific file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const defaultConfigTemplate = `# Recuerdo Configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.recuerdo/config/recuerdo.yaml
#
# Every value here can also be supplied through environment variables:
# TELEGRAM_TOKEN, MODEL_ENDPOINT, MODEL, MODEL_API_KEY,
# DB_URL, DB_COLLECTION_NAME, TRANSCRIPTION_API_URL, EMBEDDING_API_KEY

telegram:
  token: your-telegram-bot-token

model:
  endpoint: https://api.openai.com/v1/chat/completions
  model: gpt-4o-mini
  api_key: your-model-api-key

embedding:
  endpoint: https://api.openai.com/v1/embeddings
  api_key: your-embedding-api-key
  model: text-embedding-3-small
  dimensions: 1536
  batch_size: 10

vector_store:
  url: http://127.0.0.1:6333
  collection: recuerdo_notes

transcription:
  url: http://127.0.0.1:9000
  # language: es

search:
  default_top_k: 3
  # score_threshold: 0.35
  # enable_keyword: true
  # vector_weight: 0.7
  # keyword_weight: 0.3
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
