// Package adapter converts unified DTOs to and from the provider wire format
// and classifies models by structured-output capability.
package adapter

import (
	"context"
	"net/http"
	"time"

	"github.com/YspCoder/chatshape/dto"
)

// ProviderConfig holds configuration for a specific provider.
type ProviderConfig struct {
	Name         string
	APIKey       string
	BaseURL      string
	Organization string
	AuthHeader   string
	AuthPrefix   string
	Headers      map[string]string
	HTTPClient   *http.Client
	Timeout      time.Duration
}

// Adaptor defines the interface for provider-specific conversions and routing.
type Adaptor interface {
	// GetRequestURL returns the chat completions endpoint.
	GetRequestURL(config *ProviderConfig) (string, error)

	// SetupHeaders sets authentication and content headers for the request.
	SetupHeaders(req *http.Request, config *ProviderConfig) error

	// Chat conversions.
	ConvertChatRequest(ctx context.Context, config *ProviderConfig, request *dto.ChatRequest) ([]byte, error)
	ConvertChatResponse(ctx context.Context, config *ProviderConfig, body []byte) (*dto.ChatResponse, error)
}
