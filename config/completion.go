package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaults for CompletionConfig fields that carry one. Every other optional
// field stays absent when unset.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
)

// ResponseFormatConfig requests structured output.
type ResponseFormatConfig struct {
	Type   string                 `json:"type" yaml:"type" validate:"omitempty,oneof=json_schema json_object"`
	Schema map[string]interface{} `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// HasSchema reports whether a schema was supplied, including an empty one.
func (r *ResponseFormatConfig) HasSchema() bool {
	return r != nil && r.Schema != nil
}

// CompletionConfig is the recognized set of per-call generation settings.
// Keys not listed here are ignored when decoding.
type CompletionConfig struct {
	Model            string                `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature      *float64              `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens        *int                  `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"omitempty,gte=1"`
	TopP             *float64              `json:"top_p,omitempty" yaml:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	FrequencyPenalty *float64              `json:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	PresencePenalty  *float64              `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	Stop             []string              `json:"stop,omitempty" yaml:"stop,omitempty"`
	Stream           bool                  `json:"stream,omitempty" yaml:"stream,omitempty"`
	ResponseFormat   *ResponseFormatConfig `json:"response_format,omitempty" yaml:"response_format,omitempty"`
}

// WithDefaults returns a copy with model and temperature defaulted.
func (c CompletionConfig) WithDefaults() CompletionConfig {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	return c
}

// WantsStructuredOutput reports whether a response format was requested.
// An empty response_format object counts as not requested.
func (c CompletionConfig) WantsStructuredOutput() bool {
	rf := c.ResponseFormat
	return rf != nil && (rf.Type != "" || rf.Schema != nil)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and the response format type.
func (c CompletionConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config.%s: failed %q constraint (value %v)", jsonFieldName(fe.StructNamespace()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

var fieldNames = map[string]string{
	"Model":            "model",
	"Temperature":      "temperature",
	"MaxTokens":        "max_tokens",
	"TopP":             "top_p",
	"FrequencyPenalty": "frequency_penalty",
	"PresencePenalty":  "presence_penalty",
	"Stop":             "stop",
	"Stream":           "stream",
	"ResponseFormat":   "response_format",
	"Type":             "type",
	"Schema":           "schema",
}

func jsonFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "CompletionConfig" {
		parts = parts[1:]
	}
	for i, p := range parts {
		if name, ok := fieldNames[p]; ok {
			parts[i] = name
		}
	}
	return strings.Join(parts, ".")
}

// Float returns a pointer to v, for populating optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for populating optional fields.
func Int(v int) *int { return &v }
