package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/celestial/internal/model"
)

func sampleBatch() model.Batch {
	aries := model.NewHoroscope()
	aries.Mood = "Bold"
	aries.Positives = []string{"Drive", "Focus"}
	aries.LuckyColor = "Red"
	aries.DetailedPrediction = "A day for beginnings."
	aries.Meta.Source = model.SourceManualUpload

	leo := model.NewHoroscope()
	leo.DetailedPrediction = "आज का दिन शुभ है।"
	leo.Cautions = []string{"Pride"}
	leo.Meta.Source = model.SourceManualUpload

	return model.Batch{model.Aries: aries, model.Leo: leo}
}

func TestBatchKey(t *testing.T) {
	if BatchKey("2025-01-15", "EN") != BatchKey(" 2025-01-15", "en ") {
		t.Error("Expected keys to be normalized")
	}
	if BatchKey("2025-01-15", "en") == BatchKey("2025-01-15", "hi") {
		t.Error("Expected language to be part of the key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Expected 'v', got %q (ok=%v)", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndReplace(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("first"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("k", []byte("second"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get("k")
	if !ok || string(got) != "second" {
		t.Errorf("Expected replaced value 'second', got %q (ok=%v)", got, ok)
	}

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly 1 file in cache dir, got %d", len(entries))
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Expected expired entry to miss")
	}
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Delete("nope"); err != nil {
		t.Errorf("Expected no error deleting missing key, got %v", err)
	}
}

func TestSQLiteCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "batches.db")

	c, err := OpenSQLiteCache(ctx, path, time.Hour)
	if err != nil {
		t.Fatalf("OpenSQLiteCache failed: %v", err)
	}
	defer c.Close()

	if err := c.Set("k", []byte("first"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("k", []byte("second"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "second" {
		t.Errorf("Expected 'second', got %q (ok=%v)", got, ok)
	}

	if err := c.Set("old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("old"); ok {
		t.Error("Expected expired entry to miss")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after clear")
	}
}

func TestLayeredCache_PromotesFromPersistent(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Hour)
	c := NewLayeredCache(memory, disk)

	if err := disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Expected 'v' from disk layer, got %q (ok=%v)", got, ok)
	}
	if _, ok := memory.Get("k"); !ok {
		t.Error("Expected value to be promoted to memory")
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	backends := map[string]func(t *testing.T) Cache{
		"memory": func(t *testing.T) Cache {
			return NewMemoryCache(time.Minute, time.Minute)
		},
		"layered-disk": func(t *testing.T) Cache {
			return NewLayeredDiskCache(time.Minute, t.TempDir(), time.Hour)
		},
		"sqlite": func(t *testing.T) Cache {
			c, err := OpenSQLiteCache(context.Background(), filepath.Join(t.TempDir(), "c.db"), time.Hour)
			if err != nil {
				t.Fatalf("OpenSQLiteCache failed: %v", err)
			}
			t.Cleanup(func() { _ = c.Close() })
			return c
		},
	}

	for name, newCache := range backends {
		t.Run(name, func(t *testing.T) {
			s := NewStore(newCache(t), 0)

			if _, ok := s.GetBatch("2025-01-15", "en"); ok {
				t.Fatal("Expected miss on empty store")
			}

			want := sampleBatch()
			if err := s.SetBatch("2025-01-15", "en", want); err != nil {
				t.Fatalf("SetBatch failed: %v", err)
			}

			got, ok := s.GetBatch("2025-01-15", "en")
			if !ok {
				t.Fatal("Expected stored batch")
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("batch mismatch (-want +got):\n%s", diff)
			}

			if _, ok := s.GetBatch("2025-01-15", "hi"); ok {
				t.Error("Expected other language to miss")
			}
		})
	}
}

func TestStore_SetReplacesWholeBatch(t *testing.T) {
	s := NewStore(NewMemoryCache(time.Minute, time.Minute), 0)

	if err := s.SetBatch("2025-01-15", "en", sampleBatch()); err != nil {
		t.Fatalf("SetBatch failed: %v", err)
	}

	only := model.Batch{model.Pisces: model.NewHoroscope()}
	p := only[model.Pisces]
	p.Mood = "Dreamy"
	only[model.Pisces] = p
	if err := s.SetBatch("2025-01-15", "en", only); err != nil {
		t.Fatalf("SetBatch failed: %v", err)
	}

	got, _ := s.GetBatch("2025-01-15", "en")
	if diff := cmp.Diff([]model.Sign{model.Pisces}, got.Signs()); diff != "" {
		t.Errorf("Expected replacement, not merge (-want +got):\n%s", diff)
	}
}
