// Package dto defines standardized request and response payloads.
package dto

import "fmt"

// LLMError is a well-formed error returned by the provider: a non-2xx status
// with a structured {"error": {...}} body.
type LLMError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Type     string `json:"type,omitempty"`
	Param    string `json:"param,omitempty"`
	ErrCode  string `json:"err_code,omitempty"`
	Provider string `json:"provider"`
}

func (e *LLMError) Error() string {
	if e == nil {
		return ""
	}
	if e.Provider == "" {
		return fmt.Sprintf("%s (code=%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (code=%d, provider=%s)", e.Message, e.Code, e.Provider)
}

// ProviderError is a malformed or unexpected failure from the client side of
// the exchange: an error status without a parseable body, a transport
// failure, or a success body that cannot be decoded. Code is zero when no
// HTTP status was received.
type ProviderError struct {
	Code     int
	Message  string
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Code == 0 {
		return msg
	}
	return fmt.Sprintf("%s (code=%d)", msg, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
