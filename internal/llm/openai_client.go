// ABOUTME: OpenAI-compatible chat completion client for script generation
// ABOUTME: Serves both OpenAI and DeepSeek endpoints via a configurable base URL
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/paperplay/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultTimeout bounds a single completion request
	DefaultTimeout = 120 * time.Second
)

// ClientConfig holds configuration for an OpenAI-compatible client
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// OpenAIClient wraps an OpenAI-compatible API client with retry logic
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	retry       util.Retrier
}

// NewOpenAIClient creates a new client for an OpenAI-compatible endpoint.
// DeepSeek is served by pointing BaseURL at its API.
func NewOpenAIClient(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = DefaultChatModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(apiConfig),
		model:       model,
		temperature: float32(config.Temperature),
		timeout:     timeout,
		retry: util.Retrier{
			MaxRetries: config.MaxRetries,
			BaseDelay:  config.RetryDelay,
		},
	}, nil
}

// GetClient returns the underlying OpenAI client for direct use
func (c *OpenAIClient) GetClient() *openai.Client {
	return c.client
}

// Name identifies the backing model for logging and cache records
func (c *OpenAIClient) Name() string {
	return c.model
}

// GenerateText sends a chat completion request and returns the raw response text
func (c *OpenAIClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var text string

	err := c.retry.Do(ctx, func(ctx context.Context, _ int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: c.temperature,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}

		text = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return text, nil
}
