package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/celestial/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate asks the model for one sign's daily reading as a JSON object
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for horoscope generation
type GenerateRequest struct {
	Sign     model.Sign
	Date     string // YYYY-MM-DD
	Language string // en or hi

	// Prompt overrides the default prompt when set
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse is the raw model output
type GenerateResponse struct {
	// Text is expected to hold a JSON object, possibly fenced
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "gemini", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Gemini/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Retries is the number of Generate attempts before giving up
	Retries int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   60,
		MaxTokens: 8192,
		Retries:   3,
	}
}

// systemPrompt is shared by the chat-style providers
const systemPrompt = "You are a Vedic astrologer writing concise daily horoscopes. Reply with a single JSON object and nothing else."

// BuildPrompt constructs the default generation prompt
func BuildPrompt(req GenerateRequest) string {
	return fmt.Sprintf(
		"Generate a daily horoscope for %s for date %s. Language: %s. "+
			"Output STRICT JSON format with keys: mood, positives (array), cautions (array), "+
			"remedies, luckyColor, detailedPrediction, generalAdvice.",
		req.Sign, req.Date, languageName(req.Language))
}

func languageName(lang string) string {
	if lang == "hi" {
		return "Hindi"
	}
	return "English"
}

// resolve fills request defaults from the provider config
func resolve(req GenerateRequest, cfg Config, defaultModel string) (prompt, modelName string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req)
	}

	modelName = req.Model
	if modelName == "" {
		modelName = cfg.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 8192
	}

	return prompt, modelName, maxTokens
}
