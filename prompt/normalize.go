// Package prompt turns a free-form prompt into a validated message sequence.
package prompt

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/YspCoder/chatshape/dto"
)

// messageRecord mirrors one decoded message. Pointers distinguish an absent
// key from an empty value.
type messageRecord struct {
	Role    *string `validate:"required,oneof=system user assistant"`
	Content *string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize converts input into a new message slice.
//
// A string becomes a single user message and is never decoded. A []dto.Message,
// []map[string]interface{} or []interface{} is validated element by element.
// []byte and json.RawMessage are treated as an encoded sequence and decoded
// first; decoding failures return *DecodeError, constraint failures
// *ValidationError. The caller's data is never modified.
func Normalize(input interface{}) ([]dto.Message, error) {
	switch v := input.(type) {
	case string:
		return []dto.Message{{Role: dto.RoleUser, Content: v}}, nil
	case []dto.Message:
		return fromMessages(v)
	case json.RawMessage:
		return ParseMessages(v)
	case []byte:
		return ParseMessages(v)
	case []map[string]interface{}:
		items := make([]interface{}, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return fromValues(items)
	case []interface{}:
		return fromValues(v)
	default:
		return nil, invalid(ReasonNotSequence, -1, "")
	}
}

// ParseMessages decodes a JSON-encoded message sequence and validates it.
func ParseMessages(data []byte) ([]dto.Message, error) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &DecodeError{Err: err}
	}
	items, ok := decoded.([]interface{})
	if !ok {
		return nil, invalid(ReasonNotSequence, -1, "")
	}
	return fromValues(items)
}

// IsValidationError reports whether err came from message validation or decoding.
func IsValidationError(err error) bool {
	var ve *ValidationError
	var de *DecodeError
	return errors.As(err, &ve) || errors.As(err, &de)
}

// Kind describes the shape of a prompt for diagnostics.
func Kind(input interface{}) string {
	switch input.(type) {
	case string:
		return "text"
	case []byte, json.RawMessage:
		return "encoded"
	case []dto.Message, []map[string]interface{}, []interface{}:
		return "messages"
	case nil:
		return "nil"
	default:
		return "unsupported"
	}
}

func fromMessages(messages []dto.Message) ([]dto.Message, error) {
	out := make([]dto.Message, 0, len(messages))
	for i, msg := range messages {
		role, content := msg.Role, msg.Content
		if err := check(i, messageRecord{Role: &role, Content: &content}); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func fromValues(items []interface{}) ([]dto.Message, error) {
	out := make([]dto.Message, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, invalid(ReasonNotMapping, i, "")
		}

		var rec messageRecord
		if raw, ok := fields["role"]; ok {
			role, _ := raw.(string)
			rec.Role = &role
		}
		var content string
		var contentIsString bool
		if raw, ok := fields["content"]; ok {
			content, contentIsString = raw.(string)
			rec.Content = &content
		}

		if err := check(i, rec); err != nil {
			return nil, err
		}
		if !contentIsString {
			return nil, invalid(ReasonInvalidContent, i, "content")
		}
		out = append(out, dto.Message{Role: *rec.Role, Content: content})
	}
	return out, nil
}

// check runs the struct rules, reporting a missing field ahead of a bad role.
func check(index int, rec messageRecord) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return invalid(ReasonMissingField, index, strings.ToLower(fe.Field()))
		}
	}
	return invalid(ReasonInvalidRole, index, "role")
}
