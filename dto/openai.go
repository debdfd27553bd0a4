// Package dto defines standardized request and response payloads.
package dto

import "encoding/json"

// Message roles accepted by the chat completions endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Response format types.
const (
	FormatJSONSchema = "json_schema"
	FormatJSONObject = "json_object"
)

// FinishReasonLength marks a completion cut short by the token budget.
const FinishReasonLength = "length"

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ResponseFormat is the outgoing response_format object.
// JSONSchema is only set for the json_schema type; an empty schema is "{}".
type ResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest represents a chat completion request following the OpenAI schema.
// Optional sampling fields are always serialized; unset values go out as null.
type ChatRequest struct {
	Model            string          `json:"model"`
	Messages         []Message       `json:"messages"`
	Temperature      *float64        `json:"temperature"`
	MaxTokens        *int            `json:"max_tokens"`
	TopP             *float64        `json:"top_p"`
	FrequencyPenalty *float64        `json:"frequency_penalty"`
	PresencePenalty  *float64        `json:"presence_penalty"`
	Stop             []string        `json:"stop"`
	Stream           bool            `json:"stream"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse represents a chat completion response.
type ChatResponse struct {
	ID      string       `json:"id,omitempty"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []ChatChoice `json:"choices,omitempty"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChatChoice represents a single response choice.
type ChatChoice struct {
	Index        int           `json:"index,omitempty"`
	Message      ChoiceMessage `json:"message,omitempty"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// ChoiceMessage is the assistant message of a choice. Content is null for
// refusals and tool calls.
type ChoiceMessage struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
	Refusal *string `json:"refusal,omitempty"`
}

// Usage represents token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
