package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options is the caller-supplied configuration bag: client credentials at
// the top level and generation settings under "config".
type Options struct {
	APIKey       string           `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Organization string           `json:"organization,omitempty" yaml:"organization,omitempty"`
	BaseURL      string           `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Config       CompletionConfig `json:"config" yaml:"config"`
}

// ParseOptions decodes a JSON options bag. Empty input yields zero Options.
func ParseOptions(data []byte) (Options, error) {
	var opts Options
	if len(bytes.TrimSpace(data)) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	return opts, nil
}

// LoadOptionsFile reads a YAML (or JSON) options file from disk.
func LoadOptionsFile(path string) (Options, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Options{}, fmt.Errorf("resolve options path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Options{}, fmt.Errorf("read options file %q: %w", absPath, err)
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse options file %q: %w", absPath, err)
	}
	return opts, nil
}

// Merge overlays non-empty values of other onto o. Generation settings from
// other replace o's field by field.
func (o Options) Merge(other Options) Options {
	if other.APIKey != "" {
		o.APIKey = other.APIKey
	}
	if other.Organization != "" {
		o.Organization = other.Organization
	}
	if other.BaseURL != "" {
		o.BaseURL = other.BaseURL
	}

	c, oc := &o.Config, other.Config
	if oc.Model != "" {
		c.Model = oc.Model
	}
	if oc.Temperature != nil {
		c.Temperature = oc.Temperature
	}
	if oc.MaxTokens != nil {
		c.MaxTokens = oc.MaxTokens
	}
	if oc.TopP != nil {
		c.TopP = oc.TopP
	}
	if oc.FrequencyPenalty != nil {
		c.FrequencyPenalty = oc.FrequencyPenalty
	}
	if oc.PresencePenalty != nil {
		c.PresencePenalty = oc.PresencePenalty
	}
	if oc.Stop != nil {
		c.Stop = oc.Stop
	}
	if oc.Stream {
		c.Stream = true
	}
	if oc.ResponseFormat != nil {
		c.ResponseFormat = oc.ResponseFormat
	}
	return o
}

// ClientOptions returns overrides for the credentials present in the bag,
// leaving environment values in place for the rest.
func (o Options) ClientOptions() []ConfigOption {
	var opts []ConfigOption
	if o.APIKey != "" {
		opts = append(opts, SetAPIKey(o.APIKey))
	}
	if o.Organization != "" {
		opts = append(opts, SetOrganization(o.Organization))
	}
	if o.BaseURL != "" {
		opts = append(opts, SetBaseURL(o.BaseURL))
	}
	return opts
}
