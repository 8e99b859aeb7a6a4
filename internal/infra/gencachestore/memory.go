package gencachestore

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yanqian/content-interlinker/internal/domain/gencache"
	"github.com/yanqian/content-interlinker/pkg/util"
)

// MemoryStore keeps generation results in process memory. Entries expire by
// TTL; with a positive max size the least recently used entry is evicted first.
type MemoryStore struct {
	mu      sync.Mutex
	now     util.Clock
	entries map[string]gencache.Entry
	bounded *lru.Cache[string, gencache.Entry]
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the wall clock, mainly for TTL tests.
func WithClock(clock util.Clock) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithMaxEntries bounds the store with LRU eviction. Zero or negative keeps it unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n <= 0 {
			return
		}
		bounded, err := lru.New[string, gencache.Entry](n)
		if err != nil {
			return
		}
		s.bounded = bounded
	}
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:     util.NowUTC,
		entries: make(map[string]gencache.Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements gencache.Store. An entry at or past its expiry is a miss.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.lookupLocked(key)
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(record.ExpiresAt) {
		s.deleteLocked(key)
		return nil, false, nil
	}
	return append([]byte(nil), record.Value...), true, nil
}

// Set implements gencache.Store; re-setting a key overwrites it.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	namespace, _, _ := strings.Cut(key, ":")
	record := gencache.Entry{
		Namespace: namespace,
		Key:       key,
		Value:     append([]byte(nil), value...),
		ExpiresAt: s.now().Add(ttl),
	}
	if s.bounded != nil {
		s.bounded.Add(key, record)
		return nil
	}
	s.entries[key] = record
	return nil
}

// Delete implements gencache.Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(key)
	return nil
}

// Entry returns a copy of the stored record for key, expired or not. It does
// not touch LRU recency.
func (s *MemoryStore) Entry(key string) (gencache.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		record gencache.Entry
		ok     bool
	)
	if s.bounded != nil {
		record, ok = s.bounded.Peek(key)
	} else {
		record, ok = s.entries[key]
	}
	if !ok {
		return gencache.Entry{}, false
	}
	record.Value = append([]byte(nil), record.Value...)
	return record, true
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bounded != nil {
		return s.bounded.Len()
	}
	return len(s.entries)
}

func (s *MemoryStore) lookupLocked(key string) (gencache.Entry, bool) {
	if s.bounded != nil {
		return s.bounded.Get(key)
	}
	record, ok := s.entries[key]
	return record, ok
}

func (s *MemoryStore) deleteLocked(key string) {
	if s.bounded != nil {
		s.bounded.Remove(key)
		return
	}
	delete(s.entries, key)
}

var _ gencache.Store = (*MemoryStore)(nil)
