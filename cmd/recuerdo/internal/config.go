package internal

import (
	"github.com/avillega/recuerdo/internal/config"
)

// LoadConfig reads the YAML configuration. With an empty path the default
// location is tried first; when no file exists the environment alone is used,
// so the bot can run fully configured through env vars.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	cfg, err := config.Load()
	if err != nil && config.IsConfigNotFound(err) {
		return config.LoadFromEnv()
	}
	return cfg, err
}
