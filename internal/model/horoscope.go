package model

import "encoding/json"

// Horoscope is the structured daily reading for one sign.
// Empty fields mean the source never provided them; they are never filled
// with placeholder text.
type Horoscope struct {
	Mood               string   `json:"mood"`
	Positives          []string `json:"positives"`
	Cautions           []string `json:"cautions"`
	Remedies           string   `json:"remedies"`
	LuckyColor         string   `json:"luckyColor"`
	DetailedPrediction string   `json:"detailedPrediction"`
	GeneralAdvice      string   `json:"generalAdvice"`
	Meta               Meta     `json:"meta"`
}

// Meta records where a horoscope came from
type Meta struct {
	Source Source `json:"source,omitempty"`
}

// Source is a provenance tag
type Source string

const (
	SourceManualUpload Source = "manual-upload" // Parsed from an uploaded batch document
	SourceCloud        Source = "cloud"         // Parsed from a remote batch TXT file
	SourceCloudJSON    Source = "cloud-json"    // Decoded from a remote per-sign JSON file
	SourceAPI          Source = "api"           // Generated by an LLM provider
)

// NewHoroscope returns a record with empty, non-nil list fields
func NewHoroscope() Horoscope {
	return Horoscope{
		Positives: []string{},
		Cautions:  []string{},
	}
}

// IsEmpty reports whether no field carries content
func (h Horoscope) IsEmpty() bool {
	return h.Mood == "" &&
		h.Remedies == "" &&
		h.LuckyColor == "" &&
		h.DetailedPrediction == "" &&
		h.GeneralAdvice == "" &&
		len(h.Positives) == 0 &&
		len(h.Cautions) == 0
}

// UnmarshalJSON accepts "concerns" as an alias for "cautions", which older
// generated files use.
func (h *Horoscope) UnmarshalJSON(data []byte) error {
	type plain Horoscope
	var aux struct {
		plain
		Concerns []string `json:"concerns"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*h = Horoscope(aux.plain)
	if len(h.Cautions) == 0 && len(aux.Concerns) > 0 {
		h.Cautions = aux.Concerns
	}
	if h.Positives == nil {
		h.Positives = []string{}
	}
	if h.Cautions == nil {
		h.Cautions = []string{}
	}
	return nil
}

// Batch maps a sign to its parsed horoscope for one date and language
type Batch map[Sign]Horoscope

// Signs returns the batch keys in zodiac order, followed by any
// non-canonical identities in lexical order.
func (b Batch) Signs() []Sign {
	var out []Sign
	for _, s := range Zodiac {
		if _, ok := b[s]; ok {
			out = append(out, s)
		}
	}

	var extra []Sign
	for s := range b {
		if !s.IsCanonical() {
			extra = append(extra, s)
		}
	}
	sortSigns(extra)

	return append(out, extra...)
}

// WithSource returns a copy of the batch with every record tagged src
func (b Batch) WithSource(src Source) Batch {
	out := make(Batch, len(b))
	for s, h := range b {
		h.Meta.Source = src
		out[s] = h
	}
	return out
}
