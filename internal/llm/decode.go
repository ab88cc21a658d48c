package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/celestial/internal/model"
)

// ErrEmptyResponse is returned when the model produced no usable reading
var ErrEmptyResponse = errors.New("empty horoscope in LLM response")

var (
	openFence  = regexp.MustCompile("^```(?:json)?\\s*")
	closeFence = regexp.MustCompile("\\s*```\\s*$")
)

// DecodeHoroscope parses model output into a horoscope tagged as
// API-generated. Markdown code fences around the JSON are tolerated.
func DecodeHoroscope(text string) (*model.Horoscope, error) {
	text = strings.TrimSpace(text)
	text = openFence.ReplaceAllString(text, "")
	text = closeFence.ReplaceAllString(text, "")

	if text == "" {
		return nil, ErrEmptyResponse
	}

	var h model.Horoscope
	if err := json.Unmarshal([]byte(text), &h); err != nil {
		return nil, fmt.Errorf("decode horoscope JSON: %w", err)
	}
	if h.IsEmpty() {
		return nil, ErrEmptyResponse
	}

	h.Meta.Source = model.SourceAPI
	return &h, nil
}
