package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/celestial/internal/model"
)

// Export origins reported per sign
const (
	OriginLocal = "local" // found without the AI provider
	OriginAPI   = "api"   // generated by the AI provider
)

// OriginFor maps a provenance tag to the origin reported on export
func OriginFor(src model.Source) string {
	if src == model.SourceAPI {
		return OriginAPI
	}
	return OriginLocal
}

// ExportRecord is one sign's horoscope prepared for export
type ExportRecord struct {
	Sign      model.Sign
	Horoscope model.Horoscope
	Origin    string
}

// exportJSON fixes the field order of exported per-sign files
type exportJSON struct {
	Mood               string     `json:"mood"`
	GeneralAdvice      string     `json:"generalAdvice"`
	Positives          []string   `json:"positives"`
	Concerns           []string   `json:"concerns"`
	LuckyColor         string     `json:"luckyColor"`
	Remedies           string     `json:"remedies"`
	DetailedPrediction string     `json:"detailedPrediction"`
	Meta               exportMeta `json:"meta"`
}

type exportMeta struct {
	Source          model.Source `json:"source,omitempty"`
	GeneratedSource string       `json:"generatedSource"`
}

// TXTFileName names the single-file export for (date, lang)
func TXTFileName(date, lang string) string {
	return fmt.Sprintf("%s_%s.txt", date, lang)
}

// JSONFileName names one sign's JSON export
func JSONFileName(date string, sign model.Sign, lang string) string {
	return fmt.Sprintf("%s_%s_%s.json", date, sign, lang)
}

// RenderTXT writes records in the batch TXT layout the parser reads back
func RenderTXT(w io.Writer, records []ExportRecord) error {
	var b strings.Builder
	for _, r := range records {
		h := r.Horoscope
		fmt.Fprintf(&b, "### %s\n", r.Sign)
		fmt.Fprintf(&b, "Mood: %s\n", h.Mood)
		fmt.Fprintf(&b, "General Advice: %s\n", h.GeneralAdvice)
		fmt.Fprintf(&b, "Positives: %s\n", strings.Join(h.Positives, ", "))
		fmt.Fprintf(&b, "Concerns: %s\n", strings.Join(h.Cautions, ", "))
		fmt.Fprintf(&b, "Lucky Color: %s\n", h.LuckyColor)
		fmt.Fprintf(&b, "Remedies: %s\n", h.Remedies)
		fmt.Fprintf(&b, "Detailed Prediction: %s\n", h.DetailedPrediction)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderJSON encodes one record in the exported per-sign layout
func RenderJSON(r ExportRecord) ([]byte, error) {
	h := r.Horoscope
	out := exportJSON{
		Mood:               h.Mood,
		GeneralAdvice:      h.GeneralAdvice,
		Positives:          nonNil(h.Positives),
		Concerns:           nonNil(h.Cautions),
		LuckyColor:         h.LuckyColor,
		Remedies:           h.Remedies,
		DetailedPrediction: h.DetailedPrediction,
		Meta: exportMeta{
			Source:          h.Meta.Source,
			GeneratedSource: r.Origin,
		},
	}
	return json.MarshalIndent(out, "", "  ")
}

// Renderer writes export files into a directory
type Renderer struct {
	dir string
}

// NewRenderer creates a Renderer writing into dir
func NewRenderer(dir string) *Renderer {
	if dir == "" {
		dir = "."
	}
	return &Renderer{dir: dir}
}

// WriteTXT writes all records to <date>_<lang>.txt and returns its path
func (r *Renderer) WriteTXT(date, lang string, records []ExportRecord) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(r.dir, TXTFileName(date, lang))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderTXT(f, records); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// WriteJSON writes one <date>_<Sign>_<lang>.json per record and returns
// the paths written
func (r *Renderer) WriteJSON(date, lang string, records []ExportRecord) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(records))
	for _, rec := range records {
		data, err := RenderJSON(rec)
		if err != nil {
			return paths, fmt.Errorf("encode %s: %w", rec.Sign, err)
		}

		path := filepath.Join(r.dir, JSONFileName(date, rec.Sign, lang))
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
