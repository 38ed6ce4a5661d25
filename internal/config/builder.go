package config

// Builder provides a fluent API for building Config instances.
type Builder struct {
	cfg *Config
}

// NewBuilder creates a new Builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build returns the built Config.
func (b *Builder) Build() *Config {
	return b.cfg
}

// WithAddr sets the HTTP listen address.
func (b *Builder) WithAddr(addr string) *Builder {
	b.cfg.Server.Addr = addr
	return b
}

// WithHTTPAgent selects the generic HTTP agent provider.
func (b *Builder) WithHTTPAgent(endpoint, apiKey string) *Builder {
	b.cfg.Agent.Provider = ProviderHTTP
	b.cfg.Agent.Endpoint = endpoint
	b.cfg.Agent.APIKey = apiKey
	return b
}

// WithGenAIAgent selects the Gemini agent provider.
func (b *Builder) WithGenAIAgent(apiKey, model string) *Builder {
	b.cfg.Agent.Provider = ProviderGenAI
	b.cfg.Agent.APIKey = apiKey
	if model != "" {
		b.cfg.Agent.Model = model
	}
	return b
}

// WithMaxRetries sets the agent retry budget.
func (b *Builder) WithMaxRetries(n int) *Builder {
	b.cfg.Agent.MaxRetries = n
	return b
}

// WithCache enables or disables response caching.
func (b *Builder) WithCache(enabled bool, capacity int) *Builder {
	b.cfg.Cache.Enabled = enabled
	b.cfg.Cache.Capacity = capacity
	return b
}

// WithSessionTTL sets the idle session lifetime.
func (b *Builder) WithSessionTTL(ttl string) *Builder {
	b.cfg.Session.TTL = ttl
	return b
}

// WithReviewWorkers sets the deep review concurrency.
func (b *Builder) WithReviewWorkers(n int) *Builder {
	b.cfg.Review.Workers = n
	return b
}

// WithLogLevel sets the logging level.
func (b *Builder) WithLogLevel(level string) *Builder {
	b.cfg.Logging.Level = level
	return b
}
