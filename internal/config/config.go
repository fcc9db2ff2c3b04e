package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names a chat-completion provider.
type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

type Config struct {
	Provider Provider `yaml:"provider" env:"CHRONICLER_PROVIDER"`
	// Model is the provider-specific model identifier. Empty selects the
	// provider's default.
	Model string `yaml:"model,omitempty" env:"CHRONICLER_MODEL"`

	GroqAPIKey      string `yaml:"groqApiKey,omitempty" env:"GROQ_API_KEY"`
	OpenAIAPIKey    string `yaml:"openAiApiKey,omitempty" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"anthropicApiKey,omitempty" env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `yaml:"geminiApiKey,omitempty" env:"GEMINI_API_KEY"`
	OllamaURL       string `yaml:"ollamaUrl,omitempty" env:"OLLAMA_HOST"`

	MaxRetries  int     `yaml:"maxRetries" env:"CHRONICLER_MAX_RETRIES"`
	Temperature float64 `yaml:"temperature" env:"CHRONICLER_TEMPERATURE"`

	Listen     string            `yaml:"listen" env:"CHRONICLER_LISTEN"`
	Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`

	LogLevel slog.Level `yaml:"logLevel" env:"CHRONICLER_LOG_LEVEL"`
}

type PrometheusConfig struct {
	Enabled bool `yaml:"enabled" env:"CHRONICLER_PROMETHEUS_ENABLED"`
}

// DefaultConfig returns the default config.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGroq,

		OllamaURL: "http://localhost:11434",

		MaxRetries:  2,
		Temperature: 0.5,

		Listen: ":8080",
		Prometheus: &PrometheusConfig{
			Enabled: false,
		},

		LogLevel: slog.LevelInfo,
	}
}

// DefaultPath returns the default path of the config file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "chronicler", "config.yaml")
}

// Load loads a .env file from the working directory, if any, then reads the
// config file at path, creating it if it doesn't exist, and finally applies
// environment variables. An empty path skips the config file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	config := DefaultConfig()
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, err
		}

		if err := CreateConfigIfNotExists(path); err != nil {
			return nil, err
		}

		var err error
		config, err = ReadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.PopulateFromEnvironment(); err != nil {
		return nil, err
	}

	return config, nil
}

// PopulateFromEnvironment populates the config with values from environment
// variables.
func (c *Config) PopulateFromEnvironment() error {
	return env.Parse(c)
}

// CreateConfigIfNotExists makes sure that a config file exists. If it doesn't,
// it is created and populated with the default config.
func CreateConfigIfNotExists(path string) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	config := DefaultConfig()
	return config.Store(path)
}

// ReadConfig reads a config file from the specified path.
func ReadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Store stores the config in the specified path.
// Writes are atomic.
func (c *Config) Store(path string) (err error) {
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	encoder := yaml.NewEncoder(file)
	if err = encoder.Encode(c); err != nil {
		return err
	}

	if err = file.Sync(); err != nil {
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}
	return os.Rename(file.Name(), path)
}
