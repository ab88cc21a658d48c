package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the byte-level interface shared by the memory, disk and
// sqlite layers
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// BatchKey generates the cache key of a daily batch
func BatchKey(date, lang string) string {
	return "celestial:v1:" + strings.TrimSpace(date) + ":" + strings.ToLower(strings.TrimSpace(lang))
}

// fileName maps an arbitrary key to a filesystem-safe name
func fileName(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
