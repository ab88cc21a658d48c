package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/celestial/internal/model"
	"go.uber.org/zap"
)

// BatchPaths lists where a day's batch TXT may be published, in lookup order
func BatchPaths(date, lang string) []string {
	name := fmt.Sprintf("%s_%s.txt", date, lang)
	return []string{"/horoscopes/" + name, "/" + name}
}

// SignJSONPaths lists where a single sign's JSON may be published, in
// lookup order. The "%20(1)" variant covers files re-uploaded through a
// browser that de-duplicated the name.
func SignJSONPaths(date string, sign model.Sign, lang string) []string {
	base := fmt.Sprintf("%s_%s_%s", date, sign, lang)
	return []string{
		"/" + base + ".json",
		"/" + base + "%20(1).json",
		"/json/" + base + ".json",
		"/horoscopes/" + base + ".json",
	}
}

// Batch is a batch TXT retrieved from storage
type Batch struct {
	Path string
	Text string
}

// FetchBatch returns the first published batch TXT for (date, lang).
// It returns ErrNotFound when no candidate path exists.
func (f *Fetcher) FetchBatch(ctx context.Context, date, lang string) (*Batch, error) {
	var lastErr error
	for _, path := range BatchPaths(date, lang) {
		result, err := f.FetchWithRetry(ctx, f.baseURL+path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, ErrNotFound) {
				lastErr = err
				f.logger.Debug("batch candidate failed", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		return &Batch{Path: path, Text: result.Body}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("batch %s_%s: %w (last error: %v)", date, lang, ErrNotFound, lastErr)
	}
	return nil, fmt.Errorf("batch %s_%s: %w", date, lang, ErrNotFound)
}

// FetchSignJSON returns the first decodable per-sign JSON for (date, sign,
// lang), tagged cloud-json. "concerns" is accepted for cautions.
func (f *Fetcher) FetchSignJSON(ctx context.Context, date string, sign model.Sign, lang string) (*model.Horoscope, error) {
	for _, path := range SignJSONPaths(date, sign, lang) {
		result, err := f.FetchWithRetry(ctx, f.baseURL+path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		var h model.Horoscope
		if err := json.Unmarshal([]byte(result.Body), &h); err != nil {
			f.logger.Warn("undecodable sign JSON", zap.String("path", path), zap.Error(err))
			continue
		}
		h.Meta.Source = model.SourceCloudJSON
		return &h, nil
	}

	return nil, fmt.Errorf("%s %s_%s: %w", sign, date, lang, ErrNotFound)
}

// Verify probes the English batch paths for date with HEAD requests and
// returns human-readable result lines
func (f *Fetcher) Verify(ctx context.Context, date string) []string {
	lines := []string{fmt.Sprintf("Target Base: %s", f.baseURL)}

	for _, path := range BatchPaths(date, "en") {
		ok, err := f.Exists(ctx, f.baseURL+path)
		if err != nil {
			lines = append(lines, fmt.Sprintf("✗ %s: %v", path, err))
			continue
		}
		if ok {
			return append(lines, fmt.Sprintf("✓ Batch TXT found: %s", path))
		}
	}

	return append(lines, "ℹ No Batch TXT found.")
}
