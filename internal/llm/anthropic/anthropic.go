package anthropic

import (
	"context"
	"strings"

	"github.com/AlexGustafsson/chronicler/internal/llm"
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var _ llm.Client = (*Client)(nil)

const DefaultModel = "claude-3-5-haiku-latest"

// Anthropic requires an explicit token budget.
const defaultMaxTokens = 1024

type Client struct {
	client anthropic.Client
	model  string
}

type Options struct {
	// BaseURL overrides the API endpoint.
	BaseURL string
}

func NewClient(apiKey string, model string, options *Options) *Client {
	if model == "" {
		model = DefaultModel
	}

	// Retries are handled by the caller
	requestOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if options != nil && options.BaseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(options.BaseURL))
	}

	return &Client{
		client: anthropic.NewClient(requestOptions...),
		model:  model,
	}
}

// Chat implements llm.Client.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	system, rest := llm.SplitSystem(r.Messages)

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for _, m := range rest {
		switch m.Role {
		case llm.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	model := r.Model
	if model == "" {
		model = c.model
	}

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(r.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			builder.WriteString(text.Text)
		}
	}

	if builder.Len() == 0 {
		return nil, llm.ErrNoChoices
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: builder.String(),
		},
	}, nil
}
