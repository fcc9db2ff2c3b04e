package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AlexGustafsson/chronicler/internal/llm"
)

var _ llm.Client = (*Client)(nil)

const (
	// OpenAIBaseURL is the base URL of OpenAI's API.
	OpenAIBaseURL = "https://api.openai.com/v1"
	// GroqBaseURL is the base URL of Groq's OpenAI-compatible API.
	GroqBaseURL = "https://api.groq.com/openai/v1"
)

const DefaultModel string = "llama-3.3-70b-versatile"

// Client performs requests towards OpenAI-compatible chat completion APIs.
type Client struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

type Options struct {
	// BaseURL defaults to GroqBaseURL.
	BaseURL string
	// Model is used for requests that don't specify one. Defaults to
	// DefaultModel.
	Model string
	// HTTPClient defaults to a new http.Client.
	HTTPClient *http.Client
}

// NewClient returns a new Client using the specified API key.
func NewClient(apiKey string, options *Options) *Client {
	if options == nil {
		options = &Options{}
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = GroqBaseURL
	}

	model := options.Model
	if model == "" {
		model = DefaultModel
	}

	client := options.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Client{
		client:  client,
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
	}
}

// CompletionRequest defines a request using the chat completion API.
type CompletionRequest struct {
	// Messages contains messages / conversation history to use for completion.
	Messages []Message `json:"messages"`
	// Temperature controls randomness.
	// Lowering results in less random completions.
	// As the temperature approaches zero, the model will become deterministic and
	// repetitive.
	Temperature float64 `json:"temperature"`
	// MaxTokens to generate.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Model controls the model to use.
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// Message is a message sent to or received from an LLM.
type Message struct {
	Role string `json:"role"`
	// Content holds the message's contents.
	Content string `json:"content"`
}

// CompletionResponse defines the response for a CompletionRequest.
type CompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int    `json:"created"`
	Model   string `json:"model"`
	// Choices holds possible choices for completions.
	// Typically only one choice is provided.
	Choices []CompletionChoice `json:"choices"`
	// CompletionUsage holds information on token usage of a completion request.
	Usage CompletionUsage `json:"usage"`
}

// CompletionChoice defines one possible completion choice.
type CompletionChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// CompletionUsage holds information on token usage of a completion request.
type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Chat implements llm.Client.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]Message, len(r.Messages))
	for i, m := range r.Messages {
		messages[i] = Message{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	model := r.Model
	if model == "" {
		model = c.model
	}

	res, err := c.FetchCompletion(ctx, &CompletionRequest{
		Messages:    messages,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Model:       model,
	})
	if err != nil {
		return nil, err
	}

	if len(res.Choices) == 0 {
		return nil, llm.ErrNoChoices
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.Role(res.Choices[0].Message.Role),
			Content: res.Choices[0].Message.Content,
		},
	}, nil
}

// FetchCompletion performs a completion request.
func (c *Client) FetchCompletion(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	if request.Stream {
		return nil, fmt.Errorf("stream mode is unsupported")
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		// Providers explain failures in the body, keep a bounded excerpt
		excerpt, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("got unexpected status: %s: %s", res.Status, strings.TrimSpace(string(excerpt)))
	}

	var response CompletionResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, err
	}

	return &response, nil
}
