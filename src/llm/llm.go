// Package llm wraps the language model used for requirement extraction and
// the proposal assistant. Model output is untrusted input: every record is
// validated before it reaches the data model.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the model could not be reached.
	ErrUnavailable = errors.New("llm unavailable")

	// ErrInvalidOutput indicates the reply could not be parsed into the expected shape.
	ErrInvalidOutput = errors.New("invalid llm output")

	// ErrEmptyHistory indicates a chat call without a trailing user message.
	ErrEmptyHistory = errors.New("chat history must end with a user message")

	// ErrInvalidRole indicates a chat message with a role other than user or assistant.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrEmptyDocument indicates an analysis request without text.
	ErrEmptyDocument = errors.New("document text is empty")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Generator produces one reply for a system prompt and a conversation.
type Generator interface {
	Generate(ctx context.Context, system string, history []Message) (string, error)
}
