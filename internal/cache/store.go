package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/celestial/internal/model"
)

// BatchStore keeps parsed daily batches keyed by (date, language). Storing
// a batch replaces whatever was held for that key.
type BatchStore interface {
	GetBatch(date, lang string) (model.Batch, bool)
	SetBatch(date, lang string, batch model.Batch) error
}

// Store is a BatchStore that serializes batches as JSON into a Cache
type Store struct {
	cache Cache
	ttl   time.Duration
}

// NewStore wraps c; ttl is passed to every Set (zero uses the layer defaults)
func NewStore(c Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// GetBatch returns the batch for (date, lang). Entries that fail to decode
// are treated as missing.
func (s *Store) GetBatch(date, lang string) (model.Batch, bool) {
	data, ok := s.cache.Get(BatchKey(date, lang))
	if !ok {
		return nil, false
	}

	var batch model.Batch
	if err := json.Unmarshal(data, &batch); err != nil || len(batch) == 0 {
		return nil, false
	}
	return batch, true
}

// SetBatch replaces the batch for (date, lang)
func (s *Store) SetBatch(date, lang string, batch model.Batch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	if err := s.cache.Set(BatchKey(date, lang), data, s.ttl); err != nil {
		return fmt.Errorf("store batch %s/%s: %w", date, lang, err)
	}
	return nil
}
