// Package config loads client credentials from the environment and decodes
// the per-call completion options.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultBaseURL is the OpenAI API root used when none is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// ClientConfig holds what is needed to construct the completion service client.
type ClientConfig struct {
	APIKey       string        `env:"OPENAI_API_KEY"`
	Organization string        `env:"OPENAI_ORGANIZATION"`
	BaseURL      string        `env:"OPENAI_API_URL" envDefault:"https://api.openai.com/v1"`
	Timeout      time.Duration `env:"OPENAI_TIMEOUT" envDefault:"60s"`
	LogLevel     string        `env:"CHATSHAPE_LOG_LEVEL" envDefault:"info"`
	LogFormat    string        `env:"CHATSHAPE_LOG_FORMAT" envDefault:"json"`
}

// ConfigOption mutates a ClientConfig after environment loading.
type ConfigOption func(*ClientConfig)

// SetAPIKey overrides the API key.
func SetAPIKey(key string) ConfigOption {
	return func(c *ClientConfig) {
		c.APIKey = key
	}
}

// SetOrganization overrides the organization header value.
func SetOrganization(org string) ConfigOption {
	return func(c *ClientConfig) {
		c.Organization = org
	}
}

// SetBaseURL overrides the API root. Trailing slashes are dropped.
func SetBaseURL(url string) ConfigOption {
	return func(c *ClientConfig) {
		c.BaseURL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

// SetTimeout overrides the HTTP client timeout.
func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// SetLogLevel overrides the log level name.
func SetLogLevel(level string) ConfigOption {
	return func(c *ClientConfig) {
		c.LogLevel = strings.ToLower(level)
	}
}

// LoadClientConfig reads the environment and then applies opts in order.
func LoadClientConfig(opts ...ConfigOption) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.normalize()
	return cfg, nil
}

// With returns a copy of c with opts applied. c is left unchanged.
func (c *ClientConfig) With(opts ...ConfigOption) *ClientConfig {
	out := *c
	for _, opt := range opts {
		opt(&out)
	}
	out.normalize()
	return &out
}

func (c *ClientConfig) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}
