package llm

import (
	"context"
	"errors"
)

// ErrNoChoices is returned by clients when the provider responded without any
// message to pick.
var ErrNoChoices = errors.New("response contained no choices")

// Client is a chat-completion provider.
type Client interface {
	Chat(context.Context, *ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	// Model identifies the provider-specific model to use.
	Model    string
	Messages []Message
	// Temperature controls randomness.
	Temperature float64
	// MaxTokens to generate.
	MaxTokens int
}

type ChatResponse struct {
	Message Message
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	// RoleSystem specifies that the message is from the system itself.
	RoleSystem Role = "system"
	// RoleAssistant specifies that the message is from the assistant / LLM.
	RoleAssistant Role = "assistant"
	// RoleUser specifies that the message is from an end-user.
	RoleUser Role = "user"
)

// NewPrompt returns a prompt consisting of exactly one system message followed
// by one user message.
func NewPrompt(system string, user string) []Message {
	return []Message{
		{
			Role:    RoleSystem,
			Content: system,
		},
		{
			Role:    RoleUser,
			Content: user,
		},
	}
}

// SplitSystem separates system messages from the rest of the conversation, for
// providers that take the system prompt out of band.
func SplitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
