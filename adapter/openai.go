// Package adapter provides OpenAI adaptor implementation.
package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/YspCoder/chatshape/dto"
)

const chatSuffix = "/chat/completions"

// OpenAIAdaptor converts requests and responses to the OpenAI API format.
type OpenAIAdaptor struct {
	BaseURL string
}

// GetRequestURL returns the OpenAI chat completions endpoint.
func (a *OpenAIAdaptor) GetRequestURL(config *ProviderConfig) (string, error) {
	base := strings.TrimRight(config.BaseURL, "/")
	if base == "" {
		base = strings.TrimRight(a.BaseURL, "/")
	}
	if base == "" {
		base = "https://api.openai.com/v1"
	}

	return buildOpenAIRequestURL(base)
}

// SetupHeaders sets OpenAI-specific headers.
func (a *OpenAIAdaptor) SetupHeaders(req *http.Request, config *ProviderConfig) error {
	if config.AuthHeader != "" {
		req.Header.Set(config.AuthHeader, config.AuthPrefix+config.APIKey)
	} else if config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+config.APIKey)
	}
	if config.Organization != "" {
		req.Header.Set("OpenAI-Organization", config.Organization)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return nil
}

// ConvertChatRequest marshals the OpenAI chat request.
func (a *OpenAIAdaptor) ConvertChatRequest(ctx context.Context, config *ProviderConfig, request *dto.ChatRequest) ([]byte, error) {
	if request == nil {
		return nil, errors.New("chat request is required")
	}
	if request.Model == "" {
		return nil, errors.New("chat request model is required")
	}
	return json.Marshal(request)
}

// ConvertChatResponse unmarshals the OpenAI chat response.
func (a *OpenAIAdaptor) ConvertChatResponse(ctx context.Context, config *ProviderConfig, body []byte) (*dto.ChatResponse, error) {
	var response dto.ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &response, nil
}

// ParseErrorBody extracts a structured {"error": {...}} body. ok is false
// when the body is not one.
func ParseErrorBody(body []byte) (apiErr dto.LLMError, ok bool) {
	var envelope struct {
		Error *struct {
			Message string      `json:"message"`
			Type    string      `json:"type"`
			Param   interface{} `json:"param"`
			Code    interface{} `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil || envelope.Error.Message == "" {
		return dto.LLMError{}, false
	}
	return dto.LLMError{
		Message: envelope.Error.Message,
		Type:    envelope.Error.Type,
		Param:   stringOrEmpty(envelope.Error.Param),
		ErrCode: stringOrEmpty(envelope.Error.Code),
	}, true
}

func stringOrEmpty(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

func buildOpenAIRequestURL(base string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return buildOpenAIRequestURLFallback(base), nil
	}

	path := strings.TrimRight(parsed.Path, "/")
	if strings.HasSuffix(path, chatSuffix) {
		return parsed.String(), nil
	}

	parsed.Path = path + chatSuffix
	return parsed.String(), nil
}

func buildOpenAIRequestURLFallback(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, chatSuffix) {
		return base
	}
	return base + chatSuffix
}
