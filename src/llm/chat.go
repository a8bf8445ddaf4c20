package llm

import (
	"context"
	"fmt"
	"strings"
)

const chatSystemPrompt = `You are a proposal writing assistant for a government contracting team.
Answer concisely and ground every answer in the proposal context below. If the context
does not cover the question, say so.

Proposal context:
%s`

// maxHistory keeps only the most recent turns.
const maxHistory = 20

type Assistant struct {
	gen Generator
}

func NewAssistant(gen Generator) *Assistant {
	return &Assistant{gen: gen}
}

// Chat answers the last user message in history.
func (a *Assistant) Chat(ctx context.Context, proposalContext string, history []Message) (Message, error) {
	if len(history) == 0 || history[len(history)-1].Role != RoleUser ||
		strings.TrimSpace(history[len(history)-1].Content) == "" {
		return Message{}, ErrEmptyHistory
	}
	for _, m := range history {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
	}
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	reply, err := a.gen.Generate(ctx, fmt.Sprintf(chatSystemPrompt, proposalContext), history)
	if err != nil {
		return Message{}, err
	}
	return Message{Role: RoleAssistant, Content: strings.TrimSpace(reply)}, nil
}
