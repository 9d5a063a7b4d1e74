package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/minionops/minionbase/internal/pkg/errors"
)

type memStore struct {
	data    map[string]interface{}
	fetches int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]interface{}{}}
}

func (m *memStore) Store(ctx context.Context, bank, key string, value interface{}) error {
	m.data[cacheKey(bank, key)] = value
	return nil
}

func (m *memStore) Fetch(ctx context.Context, bank, key string) (interface{}, error) {
	m.fetches++
	v, ok := m.data[cacheKey(bank, key)]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Flush(ctx context.Context, bank string, key *string) error {
	if key == nil {
		for k := range m.data {
			delete(m.data, k)
		}
		return nil
	}
	delete(m.data, cacheKey(bank, *key))
	return nil
}

func (m *memStore) List(ctx context.Context, bank string) ([]string, error) { return nil, nil }

func (m *memStore) ListBanks(ctx context.Context) ([]string, error) { return nil, nil }

func (m *memStore) Contains(ctx context.Context, bank string, key *string) (bool, error) {
	if key == nil {
		return len(m.data) > 0, nil
	}
	_, ok := m.data[cacheKey(bank, *key)]
	return ok, nil
}

func (m *memStore) Updated(ctx context.Context, bank, key string) (int64, error) { return 0, nil }

func TestWrapLRUDisabledPassthrough(t *testing.T) {
	next := newMemStore()
	require.Equal(t, Store(next), WrapLRU(next, 0, time.Minute))
	require.Equal(t, Store(next), WrapLRU(next, 16, 0))
}

func TestLRUFetchPopulates(t *testing.T) {
	next := newMemStore()
	wrapped := WrapLRU(next, 16, time.Minute)
	ctx := context.Background()

	require.NoError(t, next.Store(ctx, "minions", "web1", "data"))

	v, err := wrapped.Fetch(ctx, "minions", "web1")
	require.NoError(t, err)
	require.Equal(t, "data", v)
	require.Equal(t, 1, next.fetches)

	// Second fetch is served from the LRU.
	v, err = wrapped.Fetch(ctx, "minions", "web1")
	require.NoError(t, err)
	require.Equal(t, "data", v)
	require.Equal(t, 1, next.fetches)
}

func TestLRUStoreRefreshes(t *testing.T) {
	next := newMemStore()
	wrapped := WrapLRU(next, 16, time.Minute)
	ctx := context.Background()

	require.NoError(t, wrapped.Store(ctx, "minions", "web1", "v1"))
	require.NoError(t, wrapped.Store(ctx, "minions", "web1", "v2"))

	v, err := wrapped.Fetch(ctx, "minions", "web1")
	require.NoError(t, err)
	require.Equal(t, "v2", v)
	require.Equal(t, 0, next.fetches)
}

func TestLRUFlushKeyRemoves(t *testing.T) {
	next := newMemStore()
	wrapped := WrapLRU(next, 16, time.Minute)
	ctx := context.Background()

	require.NoError(t, wrapped.Store(ctx, "minions", "web1", "data"))
	key := "web1"
	require.NoError(t, wrapped.Flush(ctx, "minions", &key))

	_, err := wrapped.Fetch(ctx, "minions", "web1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestLRUFlushBankPurges(t *testing.T) {
	next := newMemStore()
	wrapped := WrapLRU(next, 16, time.Minute)
	ctx := context.Background()

	require.NoError(t, wrapped.Store(ctx, "minions", "web1", "data"))
	require.NoError(t, wrapped.Flush(ctx, "minions", nil))

	_, err := wrapped.Fetch(ctx, "minions", "web1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestLRUContainsConsultsCacheFirst(t *testing.T) {
	next := newMemStore()
	wrapped := WrapLRU(next, 16, time.Minute)
	ctx := context.Background()

	require.NoError(t, wrapped.Store(ctx, "minions", "web1", "data"))
	// Drop from the backing store; the LRU still has it.
	key := "web1"
	require.NoError(t, next.Flush(ctx, "minions", &key))

	ok, err := wrapped.Contains(ctx, "minions", &key)
	require.NoError(t, err)
	require.True(t, ok)
}
