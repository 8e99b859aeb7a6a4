package gencachestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/content-interlinker/pkg/util"
)

func TestMemoryStoreExpiresAtDeadline(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(util.FixedClock(&now)))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, store.Len())
}

func TestMemoryStoreOverwriteRefreshesTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(util.FixedClock(&now)))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old"), time.Minute))
	now = now.Add(50 * time.Second)
	require.NoError(t, store.Set(ctx, "k", []byte("new"), time.Minute))
	now = now.Add(30 * time.Second)

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("new"), got)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value, time.Hour))
	value[0] = 'x'

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("abc"), got)
}

func TestMemoryStoreBoundedEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewMemoryStore(WithMaxEntries(2))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))
	_, ok, _ := store.Get(ctx, "a")
	require.True(t, ok)
	require.NoError(t, store.Set(ctx, "c", []byte("3"), time.Hour))

	_, ok, _ = store.Get(ctx, "b")
	require.False(t, ok)
	_, ok, _ = store.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, 2, store.Len())
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreEntryCarriesNamespaceAndExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(util.FixedClock(&now)), WithMaxEntries(4))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "interlinks:abc", []byte("v"), time.Hour))
	entry, ok := store.Entry("interlinks:abc")
	require.True(t, ok)
	require.Equal(t, "interlinks", entry.Namespace)
	require.Equal(t, "interlinks:abc", entry.Key)
	require.Equal(t, []byte("v"), entry.Value)
	require.Equal(t, now.Add(time.Hour), entry.ExpiresAt)

	_, ok = store.Entry("missing")
	require.False(t, ok)
}
