package cache

import "time"

// LayeredCache puts the memory cache in front of a persistent layer
// (disk or sqlite)
type LayeredCache struct {
	memory     Cache
	persistent Cache
}

// NewLayeredCache combines memory with a persistent backing cache
func NewLayeredCache(memory, persistent Cache) *LayeredCache {
	return &LayeredCache{
		memory:     memory,
		persistent: persistent,
	}
}

// NewLayeredDiskCache is the default layout: memory over a disk directory
func NewLayeredDiskCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return NewLayeredCache(
		NewMemoryCache(memoryTTL, 10*time.Minute),
		NewDiskCache(diskDir, diskTTL),
	)
}

// Get checks memory first, then the persistent layer
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.persistent.Get(key); found {
		// Promote with the memory default TTL
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set writes through to both layers. The persistent write happens first so
// that memory never holds a value the mirror failed to record.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.persistent.Set(key, value, ttl); err != nil {
		return err
	}
	return c.memory.Set(key, value, 0)
}

// Delete removes key from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.persistent.Delete(key)
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.persistent.Clear()
}
