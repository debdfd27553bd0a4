// Package llm shapes chat completion requests for a single OpenAI-compatible
// provider: it picks the structured-output strategy for the model, assembles
// the outgoing parameters, dispatches them and maps the outcome to a
// dto.CompletionResult.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/YspCoder/chatshape/adapter"
	"github.com/YspCoder/chatshape/config"
	"github.com/YspCoder/chatshape/dto"
	"github.com/YspCoder/chatshape/prompt"
	"github.com/YspCoder/chatshape/utils"
)

// jsonInstruction is prepended as a system message for legacy models.
const jsonInstruction = "You must provide output in JSON format"

// Submitter sends one request to the completion service.
type Submitter interface {
	Submit(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	return f(ctx, request)
}

// Composer builds, dispatches and interprets completion requests. It keeps
// no per-call state and may be shared.
type Composer struct {
	submitter Submitter
	registry  *adapter.Registry
	logger    utils.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithRegistry replaces the default model capability registry.
func WithRegistry(registry *adapter.Registry) ComposerOption {
	return func(c *Composer) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger utils.Logger) ComposerOption {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewComposer creates a composer dispatching through submitter.
func NewComposer(submitter Submitter, opts ...ComposerOption) *Composer {
	c := &Composer{
		submitter: submitter,
		registry:  adapter.GetDefaultRegistry(),
		logger:    utils.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strategy returns the structured-output tier for model.
func (c *Composer) Strategy(model string) adapter.Tier {
	return c.registry.Classify(model)
}

// Build assembles the outgoing request. messages is never modified; on the
// legacy path the JSON instruction is prepended to a copy.
func (c *Composer) Build(messages []dto.Message, cfg config.CompletionConfig) (*dto.ChatRequest, error) {
	cfg = cfg.WithDefaults()

	outgoing := make([]dto.Message, len(messages))
	copy(outgoing, messages)

	request := &dto.ChatRequest{
		Model:            cfg.Model,
		Messages:         outgoing,
		Temperature:      cloneFloat(cfg.Temperature),
		MaxTokens:        cloneInt(cfg.MaxTokens),
		TopP:             cloneFloat(cfg.TopP),
		FrequencyPenalty: cloneFloat(cfg.FrequencyPenalty),
		PresencePenalty:  cloneFloat(cfg.PresencePenalty),
		Stop:             cloneStrings(cfg.Stop),
		Stream:           cfg.Stream,
	}

	if !cfg.WantsStructuredOutput() {
		return request, nil
	}

	switch c.Strategy(cfg.Model) {
	case adapter.TierLegacy:
		request.ResponseFormat = &dto.ResponseFormat{Type: dto.FormatJSONObject}
		if !mentionsJSON(outgoing) {
			instruction, err := legacyInstruction(cfg.ResponseFormat)
			if err != nil {
				return nil, err
			}
			request.Messages = append([]dto.Message{{Role: dto.RoleSystem, Content: instruction}}, outgoing...)
		}
		c.logger.Debug("Using legacy JSON mode", "model", cfg.Model, "injected_instruction", len(request.Messages) > len(outgoing))
	default:
		schema := cfg.ResponseFormat.Schema
		if schema == nil {
			schema = map[string]interface{}{}
		}
		raw, err := json.Marshal(schema)
		if err != nil {
			return nil, NewLLMError(dto.ErrorTypeUnknown, "encode response schema", err)
		}
		request.ResponseFormat = &dto.ResponseFormat{Type: dto.FormatJSONSchema, JSONSchema: raw}
		c.logger.Debug("Using structured output", "model", cfg.Model, "schema", string(raw))
	}

	return request, nil
}

// Interpret maps a service response, or the error returned instead of one,
// to a result. Truncated completions are logged and still succeed.
func (c *Composer) Interpret(response *dto.ChatResponse, err error, cfg config.CompletionConfig) dto.CompletionResult {
	if err != nil {
		errType, message := Classify(err)
		c.logger.Warn("Completion failed", "error_type", errType, "error", err)
		return dto.Failed(errType, message)
	}
	if response == nil || len(response.Choices) == 0 {
		errType, message := Classify(&dto.ProviderError{Message: "response did not include choices"})
		return dto.Failed(errType, message)
	}

	choice := response.Choices[0]
	if choice.FinishReason == dto.FinishReasonLength {
		c.logger.Warn("Response was truncated due to length", "model", response.Model)
	}

	if !cfg.WantsStructuredOutput() {
		var output interface{}
		if choice.Message.Content != nil {
			output = *choice.Message.Content
		}
		return dto.Succeeded(output, response.Usage)
	}

	var content string
	if choice.Message.Content != nil {
		content = *choice.Message.Content
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		errType, message := Classify(NewLLMError(dto.ErrorTypeUnknown, "decode structured output", err))
		c.logger.Warn("Structured output is not valid JSON", "error", err, "finish_reason", choice.FinishReason)
		return dto.Failed(errType, message)
	}
	return dto.Succeeded(decoded, response.Usage)
}

// Complete normalizes input, builds the request, submits it once and
// interprets the outcome. Only prompt validation failures are returned as an
// error; every other failure is reported in the result.
func (c *Composer) Complete(ctx context.Context, input interface{}, cfg config.CompletionConfig) (dto.CompletionResult, error) {
	callID := uuid.NewString()
	c.logger.Debug("Completion requested", "call_id", callID, "prompt_kind", prompt.Kind(input))

	messages, err := prompt.Normalize(input)
	if err != nil {
		c.logger.Debug("Prompt rejected", "call_id", callID, "error", err)
		return dto.CompletionResult{}, err
	}

	effective := cfg.WithDefaults()
	c.logger.Debug("Completion config",
		"call_id", callID,
		"model", effective.Model,
		"temperature", *effective.Temperature,
		"max_tokens", effective.MaxTokens,
		"top_p", effective.TopP,
		"frequency_penalty", effective.FrequencyPenalty,
		"presence_penalty", effective.PresencePenalty,
		"stop", effective.Stop,
		"stream", effective.Stream,
		"response_format", effective.ResponseFormat,
		"strategy", c.Strategy(effective.Model).String(),
	)

	request, err := c.Build(messages, effective)
	if err != nil {
		return c.Interpret(nil, err, effective), nil
	}
	c.logger.Debug("Final request params", "call_id", callID, "messages", len(request.Messages), "params", request)

	response, err := c.submit(ctx, request)
	result := c.Interpret(response, err, effective)
	if !result.IsError() {
		c.logger.Debug("Completion succeeded", "call_id", callID, "total_tokens", result.TokenUsage.TotalTokens)
	}
	return result, nil
}

func (c *Composer) submit(ctx context.Context, request *dto.ChatRequest) (response *dto.ChatResponse, err error) {
	if c.submitter == nil {
		return nil, &dto.ProviderError{Message: "no completion client configured"}
	}
	defer func() {
		if r := recover(); r != nil {
			response, err = nil, fmt.Errorf("submit panicked: %v", r)
		}
	}()
	return c.submitter.Submit(ctx, request)
}

// SchemaFormat returns a json_schema response format reflected from v's type.
func SchemaFormat(v interface{}) (*config.ResponseFormatConfig, error) {
	schema, err := adapter.ReflectSchema(v)
	if err != nil {
		return nil, err
	}
	return &config.ResponseFormatConfig{Type: dto.FormatJSONSchema, Schema: schema}, nil
}

func legacyInstruction(rf *config.ResponseFormatConfig) (string, error) {
	if !rf.HasSchema() {
		return jsonInstruction, nil
	}
	raw, err := json.Marshal(rf.Schema)
	if err != nil {
		return "", NewLLMError(dto.ErrorTypeUnknown, "encode response schema", err)
	}
	return jsonInstruction + " following this schema: " + string(raw), nil
}

func mentionsJSON(messages []dto.Message) bool {
	for _, msg := range messages {
		if strings.Contains(msg.Content, "JSON") {
			return true
		}
	}
	return false
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
