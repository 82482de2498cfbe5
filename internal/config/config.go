// ABOUTME: Centralized configuration for the paperplay pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names for the generative backend
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
)

// Config holds all configuration for the pipeline
type Config struct {
	// Generative backend
	Provider       string
	DeepSeekKey    string
	DeepSeekBase   string
	DeepSeekModel  string
	OpenAIKey      string
	OpenAIBase     string
	OpenAIModel    string
	GeminiKey      string
	GeminiModel    string
	Temperature    float64
	ScriptTimeout  time.Duration
	ScriptAttempts int
	LLMMaxRetries  int
	LLMRetryDelay  time.Duration

	// Remote OCR (MinerU)
	MinerUKey          string
	MinerUBase         string
	PollInterval       time.Duration
	PollTimeout        time.Duration
	OCRMaxRetries      int
	OCRRetryDelay      time.Duration
	RemoteSegmentation bool

	// Segmentation
	ChunkSize int

	// Storage
	DataDir string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		Provider:       getEnv("SCRIPT_PROVIDER", ProviderDeepSeek),
		DeepSeekKey:    os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekBase:   getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBase:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature:    getEnvFloat("SCRIPT_TEMPERATURE", 0.8),
		ScriptTimeout:  getEnvDuration("SCRIPT_TIMEOUT", 120*time.Second),
		ScriptAttempts: getEnvInt("SCRIPT_MAX_ATTEMPTS", 3),
		LLMMaxRetries:  getEnvInt("LLM_MAX_RETRIES", 3),
		LLMRetryDelay:  getEnvDuration("LLM_RETRY_DELAY", 2*time.Second),

		MinerUKey:          os.Getenv("MINERU_API_KEY"),
		MinerUBase:         getEnv("MINERU_BASE_URL", "https://mineru.net/api/v4"),
		PollInterval:       getEnvDuration("MINERU_POLL_INTERVAL", 5*time.Second),
		PollTimeout:        getEnvDuration("MINERU_POLL_TIMEOUT", 5*time.Minute),
		OCRMaxRetries:      getEnvInt("OCR_MAX_RETRIES", 2),
		OCRRetryDelay:      getEnvDuration("OCR_RETRY_DELAY", 2*time.Second),
		RemoteSegmentation: getEnvBool("REMOTE_SEGMENTATION", true),

		ChunkSize: getEnvInt("CHUNK_SIZE", 1400),

		DataDir: os.Getenv("PAPERPLAY_DATA_DIR"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderDeepSeek, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("SCRIPT_PROVIDER must be deepseek, openai, or gemini, got %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("SCRIPT_TEMPERATURE must be 0-2, got %f", c.Temperature)
	}
	if c.ScriptAttempts < 1 || c.ScriptAttempts > 5 {
		return fmt.Errorf("SCRIPT_MAX_ATTEMPTS must be 1-5, got %d", c.ScriptAttempts)
	}
	if c.LLMMaxRetries < 0 || c.LLMMaxRetries > 10 {
		return fmt.Errorf("LLM_MAX_RETRIES must be 0-10, got %d", c.LLMMaxRetries)
	}
	if c.OCRMaxRetries < 0 || c.OCRMaxRetries > 10 {
		return fmt.Errorf("OCR_MAX_RETRIES must be 0-10, got %d", c.OCRMaxRetries)
	}
	if c.ChunkSize < 200 || c.ChunkSize > 20000 {
		return fmt.Errorf("CHUNK_SIZE must be 200-20000, got %d", c.ChunkSize)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("MINERU_POLL_INTERVAL must be positive, got %v", c.PollInterval)
	}
	return nil
}

// GenerativeKey returns the API key for the selected provider
func (c *Config) GenerativeKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiKey
	case ProviderOpenAI:
		return c.OpenAIKey
	}
	return c.DeepSeekKey
}

// GenerativeModel returns the model name for the selected provider
func (c *Config) GenerativeModel() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiModel
	case ProviderOpenAI:
		return c.OpenAIModel
	}
	return c.DeepSeekModel
}

// RemoteConfigured reports whether the remote OCR strategy has a credential
func (c *Config) RemoteConfigured() bool {
	return c.MinerUKey != ""
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
