package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHoroscope_UnmarshalConcernsAlias(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"cautions", `{"cautions":["Haste"]}`, []string{"Haste"}},
		{"concerns", `{"concerns":["Pride","Ego"]}`, []string{"Pride", "Ego"}},
		{"cautions win", `{"cautions":["Haste"],"concerns":["Pride"]}`, []string{"Haste"}},
		{"neither", `{"mood":"Calm"}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Horoscope
			if err := json.Unmarshal([]byte(tt.data), &h); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, h.Cautions); diff != "" {
				t.Errorf("cautions mismatch (-want +got):\n%s", diff)
			}
			if h.Positives == nil {
				t.Error("expected non-nil positives")
			}
		})
	}
}

func TestHoroscope_IsEmpty(t *testing.T) {
	if !NewHoroscope().IsEmpty() {
		t.Error("expected new horoscope to be empty")
	}

	h := NewHoroscope()
	h.Meta.Source = SourceAPI
	if !h.IsEmpty() {
		t.Error("meta alone should not count as content")
	}

	h.Positives = []string{"Energy"}
	if h.IsEmpty() {
		t.Error("expected positives to count as content")
	}
}

func TestBatch_WithSource(t *testing.T) {
	b := Batch{Aries: {Mood: "Bold"}, Leo: {Mood: "Regal", Meta: Meta{Source: SourceManualUpload}}}

	tagged := b.WithSource(SourceCloud)
	for sign, h := range tagged {
		if h.Meta.Source != SourceCloud {
			t.Errorf("%s: expected cloud source, got %q", sign, h.Meta.Source)
		}
	}
	if b[Leo].Meta.Source != SourceManualUpload {
		t.Error("WithSource must not modify the original batch")
	}
}

func TestSign_Index(t *testing.T) {
	if Aries.Index() != 0 || Pisces.Index() != 11 {
		t.Errorf("unexpected indices: Aries=%d Pisces=%d", Aries.Index(), Pisces.Index())
	}
	if Sign("Ophiuchus").IsCanonical() {
		t.Error("Ophiuchus should not be canonical")
	}
}
