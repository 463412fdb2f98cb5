package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	_ "modernc.org/sqlite"

	"github.com/quantmesh/finmcp/internal/logger"
)

var plog = logger.ForComponent("cache")

// PersistentStore layers a sqlite snapshot under a MemoryStore. Writes go
// through to disk best-effort; reads are served from memory only. The
// snapshot exists so a restarted server begins warm; a cold or missing
// database is normal, never an error.
type PersistentStore struct {
	*MemoryStore
	db *sql.DB
}

func NewPersistentStore(capacity int, dbPath string, staleRetention time.Duration) (*PersistentStore, error) {
	mem, err := NewMemoryStore(capacity)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	store := &PersistentStore{MemoryStore: mem, db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	store.load(staleRetention)
	return store, nil
}

func (s *PersistentStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		ttl_seconds INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);
	`

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init cache schema: %w", err)
		}
	}

	return nil
}

// load restores persisted entries into memory, discarding anything expired
// past the stale-retention window.
func (s *PersistentStore) load(staleRetention time.Duration) {
	cutoff := time.Now().Add(-staleRetention).Unix()

	_, _ = s.db.Exec("DELETE FROM cache_entries WHERE expires_at < ?", cutoff)

	rows, err := s.db.Query("SELECT key, value, created_at, ttl_seconds FROM cache_entries")
	if err != nil {
		plog.Warn("cache snapshot unreadable, starting cold", "error", err)
		return
	}
	defer rows.Close()

	restored := 0
	for rows.Next() {
		var key string
		var value []byte
		var createdAt, ttlSeconds int64
		if err := rows.Scan(&key, &value, &createdAt, &ttlSeconds); err != nil {
			continue
		}

		created := time.Unix(createdAt, 0)
		ttl := time.Duration(ttlSeconds) * time.Second
		s.entries.Add(key, Entry{
			Key:       key,
			Value:     json.RawMessage(value),
			CreatedAt: created,
			TTL:       ttl,
			ExpiresAt: created.Add(ttl),
		})
		restored++
	}

	if restored > 0 {
		plog.Info("restored cache snapshot", "entries", restored)
	}
}

func (s *PersistentStore) Put(key string, value json.RawMessage, ttl time.Duration) {
	s.MemoryStore.Put(key, value, ttl)

	entry, ok := s.entries.Peek(key)
	if !ok {
		return
	}

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO cache_entries (key, value, created_at, ttl_seconds, expires_at) VALUES (?, ?, ?, ?, ?)",
		key, []byte(entry.Value), entry.CreatedAt.Unix(), int64(ttl/time.Second), entry.ExpiresAt.Unix(),
	)
	if err != nil {
		plog.Warn("cache write-through failed", "key", key, "error", err)
	}
}

func (s *PersistentStore) Invalidate(key string) bool {
	removed := s.MemoryStore.Invalidate(key)
	_, _ = s.db.Exec("DELETE FROM cache_entries WHERE key = ?", key)
	return removed
}

func (s *PersistentStore) InvalidatePattern(pattern string) (int, error) {
	removed, err := s.MemoryStore.InvalidatePattern(pattern)
	if err != nil {
		return 0, err
	}

	rows, err := s.db.Query("SELECT key FROM cache_entries")
	if err != nil {
		return removed, nil
	}
	defer rows.Close()

	var doomed []string
	for rows.Next() {
		var key string
		if rows.Scan(&key) == nil {
			if ok, _ := doublestar.Match(pattern, key); ok {
				doomed = append(doomed, key)
			}
		}
	}
	for _, key := range doomed {
		_, _ = s.db.Exec("DELETE FROM cache_entries WHERE key = ?", key)
	}

	return removed, nil
}

func (s *PersistentStore) Close() error {
	return s.db.Close()
}
