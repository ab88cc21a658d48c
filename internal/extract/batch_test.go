package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/celestial/internal/model"
)

func TestParseBatch_FallbackFirstSingleBlock(t *testing.T) {
	batch := ParseBatch("### Aries\nJust a simple sentence with no headers.")

	if len(batch) != 1 {
		t.Fatalf("Expected 1 sign, got %d", len(batch))
	}

	want := model.NewHoroscope()
	want.DetailedPrediction = "Just a simple sentence with no headers."
	want.Meta.Source = model.SourceManualUpload

	if diff := cmp.Diff(want, batch[model.Aries]); diff != "" {
		t.Errorf("Aries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBatch_MultiBlock(t *testing.T) {
	doc := `### Aries
Mood: Bold
Lucky Color: Red

### Taurus
Mood: Steady
Positives: Patience, Loyalty`

	batch := ParseBatch(doc)
	if len(batch) != 2 {
		t.Fatalf("Expected exactly 2 signs, got %d: %v", len(batch), batch.Signs())
	}

	if batch[model.Aries].Mood != "Bold" || batch[model.Aries].LuckyColor != "Red" {
		t.Errorf("Unexpected Aries record: %+v", batch[model.Aries])
	}
	if batch[model.Taurus].Mood != "Steady" {
		t.Errorf("Unexpected Taurus mood: %q", batch[model.Taurus].Mood)
	}
	if diff := cmp.Diff([]string{"Patience", "Loyalty"}, batch[model.Taurus].Positives); diff != "" {
		t.Errorf("Taurus positives mismatch (-want +got):\n%s", diff)
	}
	// Blocks are parsed independently
	if len(batch[model.Aries].Positives) != 0 {
		t.Errorf("Expected Aries positives to be empty, got %v", batch[model.Aries].Positives)
	}
}

func TestParseBatch_LastWriteWins(t *testing.T) {
	doc := "### Aries\nMood: first\nLucky Color: Blue\n### Aries\nMood: second"

	batch := ParseBatch(doc)
	if len(batch) != 1 {
		t.Fatalf("Expected 1 sign, got %d", len(batch))
	}

	want := ExtractFields("Mood: second")
	if diff := cmp.Diff(want, batch[model.Aries]); diff != "" {
		t.Errorf("Expected second block to win (-want +got):\n%s", diff)
	}
}

func TestParse_DropsUnidentifiableBlocks(t *testing.T) {
	doc := "###??\nMood: lost\n### मेष राशि\nMood: found"

	res := Parse(doc)
	if len(res.Batch) != 1 {
		t.Fatalf("Expected 1 sign, got %d", len(res.Batch))
	}
	if res.Batch[model.Aries].Mood != "found" {
		t.Errorf("Expected Aries mood 'found', got %q", res.Batch[model.Aries].Mood)
	}
	if diff := cmp.Diff([]string{"??"}, res.Dropped); diff != "" {
		t.Errorf("dropped mismatch (-want +got):\n%s", diff)
	}
	if res.Blocks != 1 {
		t.Errorf("Expected 1 resolved block, got %d", res.Blocks)
	}
}

func TestParseBatch_Empty(t *testing.T) {
	for _, doc := range []string{"", "   ", "###", "### \n\n###"} {
		if batch := ParseBatch(doc); len(batch) != 0 {
			t.Errorf("Expected no signs for %q, got %v", doc, batch.Signs())
		}
	}
}

func TestParseBatch_RTFDocument(t *testing.T) {
	doc := `{\rtf1\ansi\ansicpg1252
{\fonttbl\f0\fswiss Helvetica;}
\f0 ### Leo (5)\
\b Mood:\b0  Regal\
\b Cautions:\b0  Pride, Ego\
}`

	batch := ParseBatch(doc)
	leo, ok := batch[model.Leo]
	if !ok {
		t.Fatalf("Expected Leo block, got %v", batch.Signs())
	}
	if leo.Mood != "Regal" {
		t.Errorf("Expected mood 'Regal', got %q", leo.Mood)
	}
	if diff := cmp.Diff([]string{"Pride", "Ego"}, leo.Cautions); diff != "" {
		t.Errorf("cautions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBatch_RTFWindowsLineEndings(t *testing.T) {
	doc := "{\\rtf1\\ansi {\\fonttbl}\r\n### Aries\\\r\nMood: Happy\\\r\nLucky Color: Red\\\r\n}"

	aries, ok := ParseBatch(doc)[model.Aries]
	if !ok {
		t.Fatal("Expected Aries block")
	}
	if aries.Mood != "Happy" {
		t.Errorf("Expected mood 'Happy', got %q", aries.Mood)
	}
	if aries.LuckyColor != "Red" {
		t.Errorf("Expected lucky color 'Red', got %q", aries.LuckyColor)
	}
}

func TestParseBatch_HindiDocument(t *testing.T) {
	doc := strings.Join([]string{
		"### सिंह राशि",
		"मनोदशा: उत्साहित",
		"राशिफल: आज का दिन शुभ है।",
		"सलाह: धैर्य रखें।",
	}, "\n")

	batch := ParseBatch(doc)
	leo := batch[model.Leo]
	if leo.Mood != "उत्साहित" {
		t.Errorf("Expected mood, got %q", leo.Mood)
	}
	if leo.DetailedPrediction != "आज का दिन शुभ है।" {
		t.Errorf("Expected prediction, got %q", leo.DetailedPrediction)
	}
	if leo.GeneralAdvice != "धैर्य रखें।" {
		t.Errorf("Expected advice, got %q", leo.GeneralAdvice)
	}
}

func TestBatch_SignsOrder(t *testing.T) {
	batch := ParseBatch("### Pisces\nx y\n### Aries\nx y\n### Ophiuchus\nx y")

	want := []model.Sign{model.Aries, model.Pisces, "Ophiuchus"}
	if diff := cmp.Diff(want, batch.Signs()); diff != "" {
		t.Errorf("Signs mismatch (-want +got):\n%s", diff)
	}
}
