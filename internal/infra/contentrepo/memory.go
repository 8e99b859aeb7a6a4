package contentrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/content-interlinker/internal/domain/interlink"
)

// MemoryRepository is an in-memory ContentRepository used for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[interlink.ContentRef]interlink.Content
}

// NewMemoryRepository constructs a repo holding items.
func NewMemoryRepository(items ...interlink.Content) *MemoryRepository {
	r := &MemoryRepository{items: make(map[interlink.ContentRef]interlink.Content, len(items))}
	for _, item := range items {
		r.items[item.Ref()] = item
	}
	return r
}

// Put inserts or replaces an item.
func (r *MemoryRepository) Put(item interlink.Content) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.Ref()] = item
}

// Get implements interlink.ContentRepository.
func (r *MemoryRepository) Get(_ context.Context, ref interlink.ContentRef) (interlink.Content, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[ref]
	return item, ok, nil
}

// List implements interlink.ContentRepository. Items come back ordered by type then id.
func (r *MemoryRepository) List(_ context.Context, types ...interlink.ContentType) ([]interlink.Content, error) {
	want := make(map[interlink.ContentType]struct{}, len(types))
	for _, typ := range types {
		want[typ] = struct{}{}
	}
	r.mu.RLock()
	out := make([]interlink.Content, 0, len(r.items))
	for _, item := range r.items {
		if len(want) > 0 {
			if _, ok := want[item.Type]; !ok {
				continue
			}
		}
		out = append(out, item)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type == out[j].Type {
			return out[i].ID < out[j].ID
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

var _ interlink.ContentRepository = (*MemoryRepository)(nil)
