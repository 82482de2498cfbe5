// ABOUTME: Provider-agnostic text generation interface and factory
// ABOUTME: Selects the DeepSeek, OpenAI, or Gemini backend from configuration
package llm

import (
	"context"
	"fmt"

	"github.com/harper/paperplay/internal/config"
)

// Generator produces raw text completions from a system and user prompt.
// The script engine treats implementations as a black box and validates
// everything they return.
type Generator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// NewGenerator creates the generator selected by SCRIPT_PROVIDER
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderDeepSeek:
		return NewOpenAIClient(&ClientConfig{
			APIKey:      cfg.DeepSeekKey,
			BaseURL:     cfg.DeepSeekBase,
			Model:       cfg.DeepSeekModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.ScriptTimeout,
			MaxRetries:  cfg.LLMMaxRetries,
			RetryDelay:  cfg.LLMRetryDelay,
		})
	case config.ProviderOpenAI:
		return NewOpenAIClient(&ClientConfig{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBase,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.ScriptTimeout,
			MaxRetries:  cfg.LLMMaxRetries,
			RetryDelay:  cfg.LLMRetryDelay,
		})
	case config.ProviderGemini:
		return NewGeminiClient(ctx, &GeminiConfig{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.ScriptTimeout,
			MaxRetries:  cfg.LLMMaxRetries,
			RetryDelay:  cfg.LLMRetryDelay,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
