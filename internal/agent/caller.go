package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AlexGustafsson/chronicler/internal/llm"
)

const (
	DefaultMaxRetries  = 2
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 350
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// RetriesExhaustedError is returned by Caller.Call once every attempt failed.
type RetriesExhaustedError struct {
	// Name of the agent.
	Name       string
	MaxRetries int
	// Err is the error of the last attempt.
	Err error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("[%s] failed to get response after %d retries", e.Name, e.MaxRetries)
}

func (e *RetriesExhaustedError) Unwrap() []error {
	return []error{ErrRetriesExhausted, e.Err}
}

// Caller sends chat completion requests on behalf of a named agent,
// immediately resending the identical request on failure.
type Caller struct {
	name       string
	client     llm.Client
	model      string
	maxRetries int
	metrics    *Metrics
}

type CallerOptions struct {
	// Model defaults to the client's default model.
	Model string
	// MaxRetries is the total number of attempts. Defaults to
	// DefaultMaxRetries.
	MaxRetries int
	// Metrics is optional.
	Metrics *Metrics
}

func NewCaller(name string, client llm.Client, options *CallerOptions) *Caller {
	if options == nil {
		options = &CallerOptions{}
	}

	maxRetries := options.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	return &Caller{
		name:       name,
		client:     client,
		model:      options.Model,
		maxRetries: maxRetries,
		metrics:    options.Metrics,
	}
}

func (c *Caller) Name() string {
	return c.name
}

func (c *Caller) MaxRetries() int {
	return c.maxRetries
}

// Call sends the messages and returns the content of the response.
func (c *Caller) Call(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error) {
	request := &llm.ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slog.Info("Sending messages", slog.String("agent", c.name), slog.Int("attempt", attempt))
		for _, m := range messages {
			slog.Debug("Message", slog.String("agent", c.name), slog.String("role", string(m.Role)), slog.String("content", m.Content))
		}
		if c.metrics != nil {
			c.metrics.Attempts.WithLabelValues(c.name).Inc()
		}

		res, err := c.client.Chat(ctx, request)
		if err == nil && res == nil {
			err = llm.ErrNoChoices
		}
		if err != nil {
			lastErr = err
			slog.Error("Chat completion failed", slog.String("agent", c.name), slog.Int("attempt", attempt), slog.Int("maxRetries", c.maxRetries), slog.Any("error", err))
			if c.metrics != nil {
				c.metrics.FailedAttempts.WithLabelValues(c.name).Inc()
			}
			continue
		}

		reply := res.Message.Content
		slog.Info("Received response", slog.String("agent", c.name), slog.String("response", reply))
		if c.metrics != nil {
			c.metrics.Completions.WithLabelValues(c.name).Inc()
		}
		return reply, nil
	}

	if c.metrics != nil {
		c.metrics.Exhausted.WithLabelValues(c.name).Inc()
	}

	return "", &RetriesExhaustedError{
		Name:       c.name,
		MaxRetries: c.maxRetries,
		Err:        lastErr,
	}
}
