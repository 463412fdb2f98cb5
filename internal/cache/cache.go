package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is an immutable snapshot of one cached value. Entries are replaced
// wholesale on Put, never mutated in place, so a concurrent reader can never
// observe a value from one write paired with a TTL from another.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	TTL       time.Duration   `json:"ttl"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is the cache contract the dispatcher depends on. Get observes lazy
// expiry: an expired entry is a miss. GetStale ignores expiry and exists only
// for the degraded-response path.
type Store interface {
	Get(key string) (Entry, bool)
	GetStale(key string) (Entry, bool)
	Put(key string, value json.RawMessage, ttl time.Duration)
	Invalidate(key string) bool
	InvalidatePattern(pattern string) (int, error)
	Len() int
}

// MemoryStore keeps entries in a bounded LRU. Expired entries stay resident
// until capacity evicts them or Sweep reclaims them, which is what allows
// serve-stale-on-failure to find a prior value after its TTL has passed.
type MemoryStore struct {
	entries *lru.Cache[string, Entry]
	clock   func() time.Time
}

func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	entries, err := lru.New[string, Entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	return &MemoryStore{
		entries: entries,
		clock:   time.Now,
	}, nil
}

func (s *MemoryStore) Get(key string) (Entry, bool) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return Entry{}, false
	}

	if entry.Expired(s.clock()) {
		return Entry{}, false
	}

	return entry, true
}

func (s *MemoryStore) GetStale(key string) (Entry, bool) {
	return s.entries.Get(key)
}

func (s *MemoryStore) Put(key string, value json.RawMessage, ttl time.Duration) {
	now := s.clock()
	s.entries.Add(key, Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		TTL:       ttl,
		ExpiresAt: now.Add(ttl),
	})
}

func (s *MemoryStore) Invalidate(key string) bool {
	return s.entries.Remove(key)
}

// InvalidatePattern removes every entry whose key matches the glob, e.g.
// "get_stock_price:*600519*". Used for manual cache busting; nothing on the
// request path calls it.
func (s *MemoryStore) InvalidatePattern(pattern string) (int, error) {
	if !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("invalid pattern: %s", pattern)
	}

	removed := 0
	for _, key := range s.entries.Keys() {
		if ok, _ := doublestar.Match(pattern, key); ok {
			if s.entries.Remove(key) {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *MemoryStore) Len() int {
	return s.entries.Len()
}

// Sweep drops entries that expired more than retention ago. Not required for
// correctness; it bounds how long stale values linger for the degraded path.
func (s *MemoryStore) Sweep(retention time.Duration) int {
	cutoff := s.clock().Add(-retention)
	removed := 0
	for _, key := range s.entries.Keys() {
		entry, ok := s.entries.Peek(key)
		if !ok {
			continue
		}
		if entry.ExpiresAt.Before(cutoff) {
			if s.entries.Remove(key) {
				removed++
			}
		}
	}
	return removed
}
