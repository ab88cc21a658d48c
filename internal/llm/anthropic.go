package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicURL     = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-3-5-sonnet-20241022"
)

// AnthropicProvider writes horoscopes with Claude through the Messages API
type AnthropicProvider struct {
	api    *restClient
	config Config
}

type messagesRequest struct {
	Model       string     `json:"model"`
	MaxTokens   int        `json:"max_tokens"`
	System      string     `json:"system,omitempty"`
	Messages    []chatTurn `json:"messages"`
	Temperature float64    `json:"temperature,omitempty"`
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   tokenUsage     `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type tokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// NewAnthropicProvider creates a provider; an API key is required
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}

	header := http.Header{}
	header.Set("x-api-key", config.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	return &AnthropicProvider{
		api:    newRESTClient(config, anthropicURL, 60*time.Second, header),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable lists models, which checks the key without spending tokens
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	return p.api.reachable(ctx, "/v1/models")
}

// Generate asks Claude for one sign's reading and returns its text blocks
func (p *AnthropicProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt, model, maxTokens := resolve(req, p.config, anthropicModel)

	var reply messagesResponse
	err := p.api.post(ctx, "/v1/messages", messagesRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      systemPrompt,
		Messages:    []chatTurn{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	}, &reply, anthropicErrorMessage)
	if err != nil {
		return nil, fmt.Errorf("anthropic %s: %w", req.Sign, err)
	}

	var text strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic %s: reply has no text", req.Sign)
	}

	return &GenerateResponse{
		Text:       strings.TrimSpace(text.String()),
		Model:      reply.Model,
		TokensUsed: reply.Usage.InputTokens + reply.Usage.OutputTokens,
	}, nil
}

func anthropicErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Type + ": " + e.Error.Message
}
