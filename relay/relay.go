// Package relay provides the unified request execution layer.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YspCoder/chatshape/adapter"
	"github.com/YspCoder/chatshape/dto"
)

const maxErrorBody = 64 * 1024

// Relay executes provider requests using a unified flow.
type Relay struct {
	Client *http.Client
}

// NewRelay creates a relay with default settings.
func NewRelay() *Relay {
	return &Relay{}
}

// Chat executes a chat completion request.
//
// A non-2xx status with a structured error body returns *dto.LLMError. Any
// other failure on the wire or while decoding returns *dto.ProviderError.
func (r *Relay) Chat(ctx context.Context, adp adapter.Adaptor, config *adapter.ProviderConfig, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	if config == nil {
		return nil, fmt.Errorf("provider config is required")
	}

	body, err := adp.ConvertChatRequest(ctx, config, request)
	if err != nil {
		return nil, err
	}
	respBody, err := r.doRequest(ctx, adp, config, body)
	if err != nil {
		return nil, err
	}
	response, err := adp.ConvertChatResponse(ctx, config, respBody)
	if err != nil {
		return nil, &dto.ProviderError{Message: "malformed response body", Provider: config.Name, Err: err}
	}
	return response, nil
}

func (r *Relay) doRequest(ctx context.Context, adp adapter.Adaptor, config *adapter.ProviderConfig, body []byte) ([]byte, error) {
	url, err := adp.GetRequestURL(config)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("request url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if err := adp.SetupHeaders(req, config); err != nil {
		return nil, err
	}
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := r.httpClient(config).Do(req)
	if err != nil {
		return nil, &dto.ProviderError{Message: "request failed", Provider: config.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(config.Name, resp.StatusCode, errBody)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &dto.ProviderError{Code: resp.StatusCode, Message: "read response body", Provider: config.Name, Err: err}
	}
	return respBody, nil
}

func (r *Relay) httpClient(config *adapter.ProviderConfig) *http.Client {
	client := config.HTTPClient
	if client == nil {
		client = r.Client
	}
	if client == nil {
		client = &http.Client{}
	}
	timeout := config.Timeout
	if timeout <= 0 && client.Timeout == 0 {
		timeout = 60 * time.Second
	}
	if timeout > 0 && timeout != client.Timeout {
		// The caller's client may be shared; adjust a copy.
		adjusted := *client
		adjusted.Timeout = timeout
		return &adjusted
	}
	return client
}

func statusError(provider string, status int, body []byte) error {
	if apiErr, ok := adapter.ParseErrorBody(body); ok {
		apiErr.Code = status
		apiErr.Provider = provider
		return &apiErr
	}
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(status)
	}
	return &dto.ProviderError{
		Code:     status,
		Message:  fmt.Sprintf("unexpected status %d: %s", status, message),
		Provider: provider,
	}
}
