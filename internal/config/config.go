// Package config provides configuration for chess-trainer.
package config

import (
	"time"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
)

// Agent provider names.
const (
	ProviderHTTP  = "http"
	ProviderGenAI = "genai"
)

// Config holds all program configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Agent   AgentConfig   `yaml:"agent"`
	Cache   CacheConfig   `yaml:"cache"`
	Session SessionConfig `yaml:"session"`
	Review  ReviewConfig  `yaml:"review"`
	Logging LoggingConfig `yaml:"logging"`

	// OpeningsFile optionally replaces the built-in opening catalog.
	OpeningsFile string `yaml:"openings_file"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`

	// AllowedOrigins restricts websocket upgrades; empty allows same-host only.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AgentConfig configures the external agent service.
type AgentConfig struct {
	// Provider is "http" (generic JSON endpoint) or "genai" (Gemini).
	Provider string `yaml:"provider"`

	// Endpoint is the URL requests are POSTed to (http provider).
	Endpoint string `yaml:"endpoint"`

	APIKey string `yaml:"api_key"`

	// Model is the Gemini model name (genai provider).
	Model string `yaml:"model"`

	Timeout    string `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`

	// Agents maps each panel to the agent identifier sent with its prompts.
	Agents AgentIDs `yaml:"agents"`
}

// AgentIDs names the agent used by each panel.
type AgentIDs struct {
	Analyst string `yaml:"analyst"`
	Opening string `yaml:"opening"`
	Puzzle  string `yaml:"puzzle"`
	Review  string `yaml:"review"`
	Chat    string `yaml:"chat"`
}

// CacheConfig controls the in-memory agent response cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Capacity int    `yaml:"capacity"`
	TTL      string `yaml:"ttl"`
}

// SessionConfig controls in-memory session lifetime.
type SessionConfig struct {
	TTL           string `yaml:"ttl"`
	SweepInterval string `yaml:"sweep_interval"`
}

// ReviewConfig controls game review fan-out.
type ReviewConfig struct {
	// Workers is the number of concurrent position analyses in a deep review.
	Workers int `yaml:"workers"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "10s",
			WriteTimeout:    "120s",
			ShutdownTimeout: "15s",
		},
		Agent: AgentConfig{
			Provider:   ProviderHTTP,
			Endpoint:   "http://localhost:8765/invoke",
			Model:      "gemini-2.5-flash",
			Timeout:    "90s",
			MaxRetries: 2,
			Agents: AgentIDs{
				Analyst: "chess-analyst",
				Opening: "opening-coach",
				Puzzle:  "puzzle-master",
				Review:  "game-reviewer",
				Chat:    "chess-coach",
			},
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 256,
			TTL:      "30m",
		},
		Session: SessionConfig{
			TTL:           "2h",
			SweepInterval: "1m",
		},
		Review: ReviewConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values the program cannot run with.
func (c *Config) Validate() error {
	switch c.Agent.Provider {
	case ProviderHTTP:
		if c.Agent.Endpoint == "" {
			return invalid("agent.endpoint", "required for the http provider")
		}
	case ProviderGenAI:
		if c.Agent.APIKey == "" {
			return invalid("agent.api_key", "required for the genai provider")
		}
	default:
		return invalid("agent.provider", "must be \"http\" or \"genai\"")
	}

	if c.Agent.MaxRetries < 0 {
		return invalid("agent.max_retries", "must not be negative")
	}
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return invalid("cache.capacity", "must be positive when the cache is enabled")
	}
	if c.Review.Workers < 1 {
		return invalid("review.workers", "must be at least 1")
	}

	durations := map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"agent.timeout":           c.Agent.Timeout,
		"cache.ttl":               c.Cache.TTL,
		"session.ttl":             c.Session.TTL,
		"session.sweep_interval":  c.Session.SweepInterval,
	}
	for field, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return invalid(field, err.Error())
		}
	}
	return nil
}

func invalid(field, reason string) error {
	return &errors.FieldError{Err: errors.ErrInvalidConfig, Field: field, Reason: reason}
}

// durationOr parses value, falling back to def when empty or invalid.
func durationOr(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ReadTimeout returns the server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return durationOr(c.Server.ReadTimeout, 10*time.Second)
}

// WriteTimeout returns the server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return durationOr(c.Server.WriteTimeout, 120*time.Second)
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, 15*time.Second)
}

// AgentTimeout returns the per-request agent timeout.
func (c *Config) AgentTimeout() time.Duration {
	return durationOr(c.Agent.Timeout, 90*time.Second)
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return durationOr(c.Cache.TTL, 30*time.Minute)
}

// SessionTTL returns the idle lifetime of a session.
func (c *Config) SessionTTL() time.Duration {
	return durationOr(c.Session.TTL, 2*time.Hour)
}

// SweepInterval returns how often expired sessions are removed.
func (c *Config) SweepInterval() time.Duration {
	return durationOr(c.Session.SweepInterval, time.Minute)
}
