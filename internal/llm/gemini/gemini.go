package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlexGustafsson/chronicler/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var _ llm.Client = (*Client)(nil)

const DefaultModel = "gemini-1.5-flash"

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey string, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Chat implements llm.Client.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	system, rest := llm.SplitSystem(r.Messages)
	if len(rest) == 0 {
		return nil, fmt.Errorf("gemini: no user message")
	}

	name := r.Model
	if name == "" {
		name = c.model
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(float32(r.Temperature))
	if r.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(r.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	// All but the last message become history
	session := model.StartChat()
	for _, m := range rest[:len(rest)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  roleOf(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	res, err := session.SendMessage(ctx, genai.Text(rest[len(rest)-1].Content))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, llm.ErrNoChoices
	}

	var builder strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: builder.String(),
		},
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func roleOf(role llm.Role) string {
	if role == llm.RoleAssistant {
		return "model"
	}
	return "user"
}
