// Package dto defines standardized request and response payloads.
package dto

import "encoding/json"

// ErrorType classifies a failed completion.
type ErrorType string

const (
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeAPI       ErrorType = "api_error"
	ErrorTypeProvider  ErrorType = "provider_error"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// CompletionResult is the caller-facing outcome of one completion call.
// Exactly one of the success (Output, TokenUsage) or failure (Error,
// ErrorType) variants is populated; use Succeeded/Failed to build one.
type CompletionResult struct {
	Output     interface{}
	TokenUsage *Usage
	Error      string
	ErrorType  ErrorType
}

// Succeeded builds a success result. A nil usage is reported as zero counts.
func Succeeded(output interface{}, usage *Usage) CompletionResult {
	if usage == nil {
		usage = &Usage{}
	}
	return CompletionResult{Output: output, TokenUsage: usage}
}

// Failed builds a failure result.
func Failed(kind ErrorType, message string) CompletionResult {
	return CompletionResult{Error: message, ErrorType: kind}
}

// IsError reports whether the result is the failure variant.
func (r CompletionResult) IsError() bool {
	return r.ErrorType != ""
}

type successJSON struct {
	Output     interface{} `json:"output"`
	TokenUsage *Usage      `json:"token_usage"`
	Cached     bool        `json:"cached"`
}

type failureJSON struct {
	Error     string    `json:"error"`
	ErrorType ErrorType `json:"error_type"`
}

// MarshalJSON emits only the populated variant.
func (r CompletionResult) MarshalJSON() ([]byte, error) {
	if r.IsError() {
		return json.Marshal(failureJSON{Error: r.Error, ErrorType: r.ErrorType})
	}
	usage := r.TokenUsage
	if usage == nil {
		usage = &Usage{}
	}
	return json.Marshal(successJSON{Output: r.Output, TokenUsage: usage})
}

// UnmarshalJSON accepts either variant.
func (r *CompletionResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Output     interface{} `json:"output"`
		TokenUsage *Usage      `json:"token_usage"`
		Error      string      `json:"error"`
		ErrorType  ErrorType   `json:"error_type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ErrorType != "" || raw.Error != "" {
		kind := raw.ErrorType
		if kind == "" {
			kind = ErrorTypeUnknown
		}
		*r = Failed(kind, raw.Error)
		return nil
	}
	*r = Succeeded(raw.Output, raw.TokenUsage)
	return nil
}
