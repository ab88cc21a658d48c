package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/celestial/internal/model"
)

func TestGeminiProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		genConfig, _ := body["generationConfig"].(map[string]any)
		if genConfig["responseMimeType"] != "application/json" {
			t.Errorf("Expected JSON response MIME type, got %v", genConfig["responseMimeType"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": ` + jsonQuote(sampleJSON) + `}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 30, "candidatesTokenCount": 70, "totalTokenCount": 100}
		}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{Sign: model.Pisces, Date: "2025-01-15", Language: "en"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != sampleJSON {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(Config{}); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func jsonQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
