package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/celestial/internal/model"
	"go.uber.org/zap"
)

// ErrDisabled is returned by Generate when no provider is configured
var ErrDisabled = errors.New("LLM provider not configured")

// Generator turns provider output into horoscope records, retrying
// failed or undecodable attempts
type Generator struct {
	provider Provider
	config   Config
	logger   *zap.Logger
}

// NewGenerator builds a generator for config. An empty provider name yields
// a disabled generator rather than an error.
func NewGenerator(config Config, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	return &Generator{
		provider: provider,
		config:   config,
		logger:   logger,
	}, nil
}

// NewGeneratorWithProvider wraps an existing provider
func NewGeneratorWithProvider(provider Provider, config Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{provider: provider, config: config, logger: logger}
}

// IsEnabled reports whether a provider is configured
func (g *Generator) IsEnabled() bool {
	return g != nil && g.provider != nil
}

// ProviderName returns the configured provider name, or ""
func (g *Generator) ProviderName() string {
	if !g.IsEnabled() {
		return ""
	}
	return g.provider.Name()
}

// Generate produces the reading for sign on date in lang. It makes up to
// config.Retries attempts (at least one) and returns the last error when
// all of them fail.
func (g *Generator) Generate(ctx context.Context, sign model.Sign, date, lang string) (*model.Horoscope, error) {
	if !g.IsEnabled() {
		return nil, ErrDisabled
	}

	attempts := g.config.Retries
	if attempts < 1 {
		attempts = 1
	}

	req := GenerateRequest{
		Sign:      sign,
		Date:      date,
		Language:  lang,
		Model:     g.config.Model,
		MaxTokens: g.config.MaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := g.provider.Generate(ctx, req)
		if err == nil {
			var h *model.Horoscope
			h, err = DecodeHoroscope(resp.Text)
			if err == nil {
				g.logger.Debug("generated horoscope",
					zap.String("provider", g.provider.Name()),
					zap.String("model", resp.Model),
					zap.String("sign", string(sign)),
					zap.Int("tokens", resp.TokensUsed),
					zap.Int("attempt", attempt))
				return h, nil
			}
		}

		lastErr = err
		g.logger.Warn("horoscope generation attempt failed",
			zap.String("provider", g.provider.Name()),
			zap.String("sign", string(sign)),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return nil, fmt.Errorf("%s generation failed after %d attempts: %w", g.provider.Name(), attempts, lastErr)
}
