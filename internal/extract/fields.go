package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/celestial/internal/model"
)

// Extractor walks one sign's body line by line and accumulates content
// into the section most recently announced by a header. It starts in
// detailedPrediction so that a body with no recognised headers is kept
// whole rather than lost.
type Extractor struct {
	current Section
	text    map[Section]*strings.Builder
	lists   map[Section][]string
}

// NewExtractor returns an extractor positioned at detailedPrediction
func NewExtractor() *Extractor {
	return &Extractor{
		current: SectionDetailedPrediction,
		text:    make(map[Section]*strings.Builder),
		lists: map[Section][]string{
			SectionPositives: {},
			SectionCautions:  {},
		},
	}
}

// State returns the current section and what it has accumulated so far.
// List sections report their items joined with "\n".
func (e *Extractor) State() (Section, string) {
	if e.current.IsList() {
		return e.current, strings.Join(e.lists[e.current], "\n")
	}
	if b, ok := e.text[e.current]; ok {
		return e.current, b.String()
	}
	return e.current, ""
}

// Feed processes a single raw line
func (e *Extractor) Feed(raw string) {
	line := trimLine(raw)
	if line == "" {
		return
	}

	content := line
	if section, rest, ok := DetectHeader(line); ok {
		e.current = section
		if isHeaderOnly(rest) {
			return
		}
		content = rest
	}

	content = cleanContent(content)
	if content == "" {
		return
	}

	if e.current.IsList() {
		e.lists[e.current] = append(e.lists[e.current], splitItems(content)...)
		return
	}

	b, ok := e.text[e.current]
	if !ok {
		b = &strings.Builder{}
		e.text[e.current] = b
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(content)
}

// Result builds the structured record. body is the text that was fed; it
// becomes the detailed prediction when nothing else landed there.
func (e *Extractor) Result(body string) model.Horoscope {
	h := model.NewHoroscope()
	h.Mood = e.textOf(SectionMood)
	h.Remedies = e.textOf(SectionRemedies)
	h.LuckyColor = e.textOf(SectionLuckyColor)
	h.DetailedPrediction = e.textOf(SectionDetailedPrediction)
	h.GeneralAdvice = e.textOf(SectionGeneralAdvice)
	h.Positives = append(h.Positives, e.lists[SectionPositives]...)
	h.Cautions = append(h.Cautions, e.lists[SectionCautions]...)

	if h.DetailedPrediction == "" {
		h.DetailedPrediction = strings.TrimSpace(body)
	}

	h.Meta.Source = model.SourceManualUpload
	return h
}

func (e *Extractor) textOf(s Section) string {
	if b, ok := e.text[s]; ok {
		return strings.TrimSpace(b.String())
	}
	return ""
}

// ExtractFields converts one block body into a structured horoscope.
// It never fails: at worst everything lands in DetailedPrediction.
func ExtractFields(body string) model.Horoscope {
	e := NewExtractor()
	for _, line := range strings.Split(body, "\n") {
		e.Feed(line)
	}
	return e.Result(body)
}

// cleanContent strips bullets, wrapping quotes and leading colons
func cleanContent(s string) string {
	s = strings.TrimSpace(leadingBullets.ReplaceAllString(s, ""))
	s = wrappingQuotes.ReplaceAllString(s, "")
	s = leadingColons.ReplaceAllString(s, "")
	return s
}

// splitItems breaks a list fragment into its items
func splitItems(s string) []string {
	var items []string
	for _, part := range listSeparators.Split(s, -1) {
		item := strings.TrimSpace(part)
		item = itemPrefix.ReplaceAllString(item, "")
		item = wrappingQuotes.ReplaceAllString(item, "")
		if utf8.RuneCountInString(item) > 1 {
			items = append(items, item)
		}
	}
	return items
}

func trimLine(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}
