package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists entries in a single SQLite database file. Each Set
// is an upsert, so replacing a batch is atomic.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenSQLiteCache opens (or creates) the database at path with WAL enabled
func OpenSQLiteCache(ctx context.Context, path string, ttl time.Duration) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// database/sql pools connections; one writer keeps SQLite happy
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS entries (
	key TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	stored_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteCache{db: db, ttl: ttl}, nil
}

// Close closes the database
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Get returns the entry for key unless it has expired
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var (
		data      []byte
		expiresAt int64
	)
	row := c.db.QueryRow(`SELECT data, expires_at FROM entries WHERE key = ?`, key)
	if err := row.Scan(&data, &expiresAt); err != nil {
		return nil, false
	}

	if expiresAt > 0 && time.Now().UnixNano() > expiresAt {
		_ = c.Delete(key)
		return nil, false
	}

	return data, true
}

// Set upserts the entry for key. A zero ttl uses the cache default; a
// negative ttl stores the entry without expiry.
func (c *SQLiteCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	now := time.Now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}

	_, err := c.db.Exec(`
INSERT INTO entries (key, data, stored_at, expires_at) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET data = excluded.data, stored_at = excluded.stored_at, expires_at = excluded.expires_at`,
		key, value, now.UnixNano(), expiresAt)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// Delete removes key
func (c *SQLiteCache) Delete(key string) error {
	if _, err := c.db.Exec(`DELETE FROM entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear removes every entry
func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}
