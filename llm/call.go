package llm

import (
	"context"
	"net/http"

	"github.com/YspCoder/chatshape/config"
	"github.com/YspCoder/chatshape/dto"
	"github.com/YspCoder/chatshape/prompt"
	"github.com/YspCoder/chatshape/relay"
	"github.com/YspCoder/chatshape/utils"
)

// Call runs one self-contained invocation: it validates the prompt, builds a
// fresh client from clientCfg and completes. httpClient may be nil.
//
// Returns:
//   - the completion result, success or failure variant
//   - *prompt.ValidationError or *prompt.DecodeError for a malformed prompt
func Call(ctx context.Context, clientCfg *config.ClientConfig, input interface{}, cfg config.CompletionConfig, httpClient *http.Client, logger utils.Logger, opts ...ComposerOption) (dto.CompletionResult, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if _, err := prompt.Normalize(input); err != nil {
		return dto.CompletionResult{}, err
	}

	if clientCfg == nil || clientCfg.APIKey == "" {
		errType, message := Classify(&dto.ProviderError{Message: "api key is required; set OPENAI_API_KEY or pass api_key"})
		logger.Error("Completion client not configured", "error", message)
		return dto.Failed(errType, message), nil
	}

	opts = append([]ComposerOption{WithLogger(logger)}, opts...)
	composer := NewComposer(relay.NewClient(clientCfg, httpClient), opts...)
	return composer.Complete(ctx, input, cfg)
}
