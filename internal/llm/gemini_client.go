// ABOUTME: Gemini chat client for script generation
// ABOUTME: Uses the google.golang.org/genai SDK with retry logic
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/paperplay/internal/util"
	genai "google.golang.org/genai"
)

// DefaultGeminiModel is the default Gemini model for script generation
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig holds configuration for the Gemini client
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// GeminiClient wraps the genai SDK with retry logic
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	retry       util.Retrier
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: config.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: float32(config.Temperature),
		timeout:     timeout,
		retry: util.Retrier{
			MaxRetries: config.MaxRetries,
			BaseDelay:  config.RetryDelay,
		},
	}, nil
}

// Name identifies the backing model for logging and cache records
func (c *GeminiClient) Name() string {
	return c.model
}

// GenerateText sends a generation request and returns the raw response text
func (c *GeminiClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if systemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	var text string

	err := c.retry.Do(ctx, func(ctx context.Context, _ int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		res, err := c.client.Models.GenerateContent(attemptCtx, c.model, []*genai.Content{
			genai.NewContentFromText(userPrompt, genai.RoleUser),
		}, genConfig)
		if err != nil {
			return err
		}

		out := res.Text()
		if out == "" {
			return fmt.Errorf("empty response")
		}

		text = out
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return text, nil
}
