// Package provider constructs the llm.Client selected by the config.
package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/AlexGustafsson/chronicler/internal/config"
	"github.com/AlexGustafsson/chronicler/internal/llm"
	"github.com/AlexGustafsson/chronicler/internal/llm/anthropic"
	"github.com/AlexGustafsson/chronicler/internal/llm/gemini"
	"github.com/AlexGustafsson/chronicler/internal/llm/ollama"
	"github.com/AlexGustafsson/chronicler/internal/llm/openai"
)

// New returns a client for the configured provider. Some clients hold
// resources and implement io.Closer.
func New(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.Provider {
	case config.ProviderGroq, "":
		return openai.NewClient(cfg.GroqAPIKey, &openai.Options{
			BaseURL: openai.GroqBaseURL,
			Model:   cfg.Model,
		}), nil
	case config.ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return openai.NewClient(cfg.OpenAIAPIKey, &openai.Options{
			BaseURL: openai.OpenAIBaseURL,
			Model:   model,
		}), nil
	case config.ProviderOllama:
		base, err := url.Parse(cfg.OllamaURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama url: %w", err)
		}
		return ollama.NewClient(base, cfg.Model, nil), nil
	case config.ProviderAnthropic:
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.Model, nil), nil
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
