package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/celestial/internal/util"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// horoscopeSchema constrains Gemini output to the record shape
var horoscopeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"mood":               {Type: genai.TypeString},
		"positives":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"cautions":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"remedies":           {Type: genai.TypeString},
		"luckyColor":         {Type: genai.TypeString},
		"detailedPrediction": {Type: genai.TypeString},
		"generalAdvice":      {Type: genai.TypeString},
	},
	PropertyOrdering: []string{
		"mood", "positives", "cautions", "remedies",
		"luckyColor", "detailedPrediction", "generalAdvice",
	},
}

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(config.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks that the configured model can be looked up
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	model := p.config.Model
	if model == "" {
		model = defaultGeminiModel
	}

	if _, err := p.client.Models.Get(ctx, model, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Gemini API check failed: %v\n", err)
		return false
	}
	return true
}

// Generate requests a horoscope with a JSON response schema
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	prompt, model, maxTokens := resolve(req, p.config, defaultGeminiModel)

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   int32(maxTokens),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    horoscopeSchema,
	}

	resp, err := p.client.Models.GenerateContent(ctxWithTimeout, model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("no content in Gemini response")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &GenerateResponse{
		Text:       text,
		Model:      model,
		TokensUsed: tokens,
	}, nil
}
