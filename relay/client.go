package relay

import (
	"context"
	"net/http"

	"github.com/YspCoder/chatshape/adapter"
	"github.com/YspCoder/chatshape/config"
	"github.com/YspCoder/chatshape/dto"
)

// Client submits chat requests to an OpenAI-compatible endpoint.
type Client struct {
	relay   *Relay
	adaptor adapter.Adaptor
	cfg     *adapter.ProviderConfig
}

// NewClient builds a client from credentials. httpClient may be nil.
func NewClient(cfg *config.ClientConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		relay:   NewRelay(),
		adaptor: &adapter.OpenAIAdaptor{},
		cfg: &adapter.ProviderConfig{
			Name:         "openai",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Organization: cfg.Organization,
			HTTPClient:   httpClient,
			Timeout:      cfg.Timeout,
		},
	}
}

// Submit sends one chat completion request. It does not retry.
func (c *Client) Submit(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	return c.relay.Chat(ctx, c.adaptor, c.cfg, request)
}
