package llm

import (
	"errors"
	"net/http"

	"github.com/YspCoder/chatshape/dto"
)

const rateLimitCode = "rate_limit_exceeded"

// LLMError is a failure raised by the composer itself rather than the
// provider, such as a schema that cannot be serialized.
type LLMError struct {
	Type    dto.ErrorType
	Message string
	Err     error
}

// NewLLMError creates a composer error of the given type.
func NewLLMError(errType dto.ErrorType, message string, err error) *LLMError {
	return &LLMError{Type: errType, Message: message, Err: err}
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

var errorPrefix = map[dto.ErrorType]string{
	dto.ErrorTypeRateLimit: "Rate limit exceeded: ",
	dto.ErrorTypeAPI:       "OpenAI API error: ",
	dto.ErrorTypeProvider:  "OpenAI error: ",
	dto.ErrorTypeUnknown:   "Unexpected error: ",
}

// Classify maps a dispatch or interpretation failure to its error type and
// the caller-facing message.
func Classify(err error) (dto.ErrorType, string) {
	errType := classify(err)
	return errType, errorPrefix[errType] + err.Error()
}

func classify(err error) dto.ErrorType {
	var apiErr *dto.LLMError
	var provErr *dto.ProviderError
	var localErr *LLMError

	switch {
	case isRateLimit(err):
		return dto.ErrorTypeRateLimit
	case errors.As(err, &apiErr):
		return dto.ErrorTypeAPI
	case errors.As(err, &provErr):
		return dto.ErrorTypeProvider
	case errors.As(err, &localErr) && errorPrefix[localErr.Type] != "":
		return localErr.Type
	default:
		return dto.ErrorTypeUnknown
	}
}

func isRateLimit(err error) bool {
	var apiErr *dto.LLMError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.ErrCode == rateLimitCode || apiErr.Type == rateLimitCode
	}
	var provErr *dto.ProviderError
	if errors.As(err, &provErr) {
		return provErr.Code == http.StatusTooManyRequests
	}
	return false
}
