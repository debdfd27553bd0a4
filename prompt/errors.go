package prompt

import "fmt"

// Reason identifies which message constraint was violated.
type Reason string

const (
	ReasonNotSequence    Reason = "not_sequence"
	ReasonNotMapping     Reason = "not_mapping"
	ReasonMissingField   Reason = "missing_field"
	ReasonInvalidRole    Reason = "invalid_role"
	ReasonInvalidContent Reason = "invalid_content"
)

var reasonText = map[Reason]string{
	ReasonNotSequence:    "messages must be a sequence",
	ReasonNotMapping:     "each message must be a mapping",
	ReasonMissingField:   "each message must have role and content fields",
	ReasonInvalidRole:    "message role must be system, user, or assistant",
	ReasonInvalidContent: "message content must be a string",
}

// ValidationError reports a prompt that is not a valid message sequence.
// Index is the offending element, or -1 when the input as a whole is wrong.
type ValidationError struct {
	Reason Reason
	Index  int
	Field  string
}

func (e *ValidationError) Error() string {
	text := reasonText[e.Reason]
	if e.Index < 0 {
		return "invalid prompt: " + text
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid prompt: message %d (%s): %s", e.Index, e.Field, text)
	}
	return fmt.Sprintf("invalid prompt: message %d: %s", e.Index, text)
}

// DecodeError reports a textual message sequence that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode messages: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func invalid(reason Reason, index int, field string) *ValidationError {
	return &ValidationError{Reason: reason, Index: index, Field: field}
}
