package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/celestial/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	responses []*GenerateResponse
	errs      []error
	calls     int
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return m.responses[len(m.responses)-1], nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func TestNewGenerator_DisabledProvider(t *testing.T) {
	g, err := NewGenerator(Config{Provider: ""}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if g.IsEnabled() {
		t.Error("Expected generator to be disabled")
	}
	if g.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	_, err = g.Generate(context.Background(), model.Aries, "2025-01-15", "en")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	if _, err := NewGenerator(Config{Provider: "bard"}, nil); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestGenerator_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		responses: []*GenerateResponse{{Text: sampleJSON, Model: "test-model", TokensUsed: 100}},
	}
	g := NewGeneratorWithProvider(mock, Config{Retries: 3}, nil)

	h, err := g.Generate(context.Background(), model.Aries, "2025-01-15", "en")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := model.Horoscope{
		Mood:               "Bold",
		Positives:          []string{"Drive"},
		Cautions:           []string{"Haste"},
		Remedies:           "Offer water to the sun",
		LuckyColor:         "Red",
		DetailedPrediction: "A day for beginnings.",
		GeneralAdvice:      "Pace yourself.",
		Meta:               model.Meta{Source: model.SourceAPI},
	}
	if diff := cmp.Diff(want, *h); diff != "" {
		t.Errorf("horoscope mismatch (-want +got):\n%s", diff)
	}
	if mock.calls != 1 {
		t.Errorf("Expected 1 call, got %d", mock.calls)
	}
	if g.ProviderName() != "test-provider" {
		t.Errorf("Expected provider name, got %q", g.ProviderName())
	}
}

func TestGenerator_RetriesThenSucceeds(t *testing.T) {
	mock := &MockProvider{
		name: "test-provider",
		errs: []error{errors.New("API rate limit exceeded"), nil, nil},
		responses: []*GenerateResponse{
			nil,
			{Text: "not json"},
			{Text: sampleJSON},
		},
	}
	g := NewGeneratorWithProvider(mock, Config{Retries: 3}, nil)

	h, err := g.Generate(context.Background(), model.Leo, "2025-01-15", "en")
	if err != nil {
		t.Fatalf("Expected success on third attempt, got %v", err)
	}
	if h.Mood != "Bold" {
		t.Errorf("Unexpected mood %q", h.Mood)
	}
	if mock.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", mock.calls)
	}
}

func TestGenerator_AllAttemptsFail(t *testing.T) {
	mock := &MockProvider{
		name: "test-provider",
		errs: []error{
			errors.New("boom"),
			errors.New("API rate limit exceeded"),
		},
	}
	g := NewGeneratorWithProvider(mock, Config{Retries: 2}, nil)

	_, err := g.Generate(context.Background(), model.Leo, "2025-01-15", "en")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("Expected error to report attempts and last cause, got %v", err)
	}
	if mock.calls != 2 {
		t.Errorf("Expected 2 calls, got %d", mock.calls)
	}
}

func TestGenerator_ZeroRetriesStillTriesOnce(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		responses: []*GenerateResponse{{Text: sampleJSON}},
	}
	g := NewGeneratorWithProvider(mock, Config{}, nil)

	if _, err := g.Generate(context.Background(), model.Leo, "2025-01-15", "en"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("Expected 1 call, got %d", mock.calls)
	}
}

func TestGenerator_CancelledContext(t *testing.T) {
	mock := &MockProvider{name: "test-provider", responses: []*GenerateResponse{{Text: sampleJSON}}}
	g := NewGeneratorWithProvider(mock, Config{Retries: 3}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Generate(ctx, model.Leo, "2025-01-15", "en"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if mock.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", mock.calls)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(GenerateRequest{Sign: model.Scorpio, Date: "2025-01-15", Language: "hi"})

	for _, want := range []string{"Scorpio", "2025-01-15", "Hindi", "luckyColor", "detailedPrediction"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q:\n%s", want, prompt)
		}
	}

	if !strings.Contains(BuildPrompt(GenerateRequest{Language: "en"}), "English") {
		t.Error("Expected English prompt")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != "" {
		t.Errorf("Expected provider disabled by default, got %q", cfg.Provider)
	}
	if cfg.MaxTokens != 8192 {
		t.Errorf("Expected max tokens 8192, got %d", cfg.MaxTokens)
	}
	if cfg.Retries != 3 {
		t.Errorf("Expected 3 retries, got %d", cfg.Retries)
	}
}
