package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvAddr      = "CHESS_TRAINER_ADDR"
	EnvAgentURL  = "CHESS_TRAINER_AGENT_URL"
	EnvAgentKey  = "CHESS_TRAINER_AGENT_KEY"
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvLogLevel  = "CHESS_TRAINER_LOG_LEVEL"
)

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the --config flag
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if url := os.Getenv(EnvAgentURL); url != "" {
		c.Agent.Endpoint = url
		c.Agent.Provider = ProviderHTTP
	}
	if key := os.Getenv(EnvAgentKey); key != "" {
		c.Agent.APIKey = key
	}
	// A Gemini key selects the genai provider unless an endpoint was forced.
	if key := os.Getenv(EnvGeminiKey); key != "" && os.Getenv(EnvAgentURL) == "" {
		c.Agent.APIKey = key
		c.Agent.Provider = ProviderGenAI
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}
