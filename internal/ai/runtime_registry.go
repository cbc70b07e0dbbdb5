package ai

import "time"

// RuntimeConfig carries the knobs needed to build a Runtime.
type RuntimeConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

// NewRuntime builds a one-shot client for the configured provider. A missing
// key or an unknown provider is reported as *ConfigurationError.
func NewRuntime(cfg RuntimeConfig) (*Client, error) {
	base, err := ResolveBaseURL(cfg.Provider, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	c := NewClientWithBaseURL(cfg.APIKey, cfg.HTTPTimeout, base)
	if c.apiKey == "" {
		return nil, &ConfigurationError{Field: "api_key", Reason: "API key is missing (set GROQ_API_KEY or DATAQA_API_KEY)"}
	}
	return c, nil
}
