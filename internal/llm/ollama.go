package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const ollamaURL = "http://localhost:11434"

// OllamaProvider writes horoscopes with a locally served model
type OllamaProvider struct {
	api    *restClient
	config Config
}

type generateCall struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Format  string   `json:"format,omitempty"`
	Stream  bool     `json:"stream"`
	Options sampling `json:"options,omitempty"`
}

type sampling struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateReply struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// NewOllamaProvider creates a provider for an Ollama server
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	// cold model loads are slow
	return &OllamaProvider{
		api:    newRESTClient(config, ollamaURL, 120*time.Second, nil),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable reports whether the server answers its model listing
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	return p.api.reachable(ctx, "/api/tags")
}

// Generate asks the model for one sign's reading in JSON format mode
func (p *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt, model, maxTokens := resolve(req, p.config, "")
	if model == "" {
		return nil, fmt.Errorf("ollama: model must be specified (llm.model, e.g. llama3.1:8b)")
	}

	var reply generateReply
	err := p.api.post(ctx, "/api/generate", generateCall{
		Model:   model,
		Prompt:  prompt,
		System:  systemPrompt,
		Format:  "json",
		Options: sampling{Temperature: 0.7, NumPredict: maxTokens},
	}, &reply, ollamaErrorMessage)
	if err != nil {
		return nil, fmt.Errorf("ollama %s: %w", req.Sign, err)
	}

	text := strings.TrimSpace(reply.Response)

	// some models report no counts; about 4 characters per token
	tokens := reply.PromptEvalCount + reply.EvalCount
	if tokens == 0 {
		tokens = (len(prompt) + len(text)) / 4
	}

	return &GenerateResponse{
		Text:       text,
		Model:      reply.Model,
		TokensUsed: tokens,
	}, nil
}

func ollamaErrorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}
