// Package llm builds langchaingo model clients for the configured provider.
package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"planpilot/internal/utils"
)

// Provider represents the available LLM providers
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// Default models per provider
const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
	defaultOllamaModel    = "llama3.1"
)

// Config holds configuration for LLM initialization
type Config struct {
	Provider Provider
	ModelID  string
	// ServerURL is only used by the ollama provider.
	ServerURL string
	Logger    utils.ExtendedLogger
}

// ParseProvider normalizes a provider name, defaulting to openai.
func ParseProvider(s string) Provider {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ProviderAnthropic):
		return ProviderAnthropic
	case string(ProviderOllama):
		return ProviderOllama
	default:
		return ProviderOpenAI
	}
}

// New creates a langchaingo model for the configured provider. API keys come
// from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY), matching how the
// provider SDKs resolve credentials themselves.
func New(cfg Config) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for provider openai")
		}
		model := cfg.ModelID
		if model == "" {
			model = defaultOpenAIModel
		}
		client, err := openai.New(openai.WithModel(model))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		cfg.log("✅ OpenAI model initialized: %s", model)
		return client, nil

	case ProviderAnthropic:
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required for provider anthropic")
		}
		model := cfg.ModelID
		if model == "" {
			model = defaultAnthropicModel
		}
		client, err := anthropic.New(anthropic.WithModel(model))
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		cfg.log("✅ Anthropic model initialized: %s", model)
		return client, nil

	case ProviderOllama:
		model := cfg.ModelID
		if model == "" {
			model = defaultOllamaModel
		}
		opts := []ollama.Option{ollama.WithModel(model)}
		if cfg.ServerURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
		}
		client, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		cfg.log("✅ Ollama model initialized: %s", model)
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func (c Config) log(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Infof(format, args...)
	}
}
