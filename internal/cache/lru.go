package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// WrapLRU puts an expiring LRU in front of a Store. Reads populate the
// LRU, writes refresh it, and a bank-wide flush purges it entirely since
// the LRU is keyed flat.
func WrapLRU(next Store, size int, ttl time.Duration) Store {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &lruCache{
		next:  next,
		cache: expirable.NewLRU[string, interface{}](size, nil, ttl),
	}
}

type lruCache struct {
	next  Store
	cache *expirable.LRU[string, interface{}]
}

func cacheKey(bank, key string) string {
	return bank + "\x00" + key
}

func (l *lruCache) Store(ctx context.Context, bank, key string, value interface{}) error {
	if err := l.next.Store(ctx, bank, key, value); err != nil {
		return err
	}
	l.cache.Add(cacheKey(bank, key), value)
	return nil
}

func (l *lruCache) Fetch(ctx context.Context, bank, key string) (interface{}, error) {
	if cached, ok := l.cache.Get(cacheKey(bank, key)); ok {
		logutil.GetLogger(ctx).Debug("cache hit (lru)", zap.String("bank", bank), zap.String("key", key))
		return cached, nil
	}
	value, err := l.next.Fetch(ctx, bank, key)
	if err != nil {
		return nil, err
	}
	l.cache.Add(cacheKey(bank, key), value)
	return value, nil
}

func (l *lruCache) Flush(ctx context.Context, bank string, key *string) error {
	if err := l.next.Flush(ctx, bank, key); err != nil {
		return err
	}
	if key == nil {
		l.cache.Purge()
		return nil
	}
	l.cache.Remove(cacheKey(bank, *key))
	return nil
}

func (l *lruCache) List(ctx context.Context, bank string) ([]string, error) {
	return l.next.List(ctx, bank)
}

func (l *lruCache) ListBanks(ctx context.Context) ([]string, error) {
	return l.next.ListBanks(ctx)
}

func (l *lruCache) Contains(ctx context.Context, bank string, key *string) (bool, error) {
	if key != nil {
		if _, ok := l.cache.Get(cacheKey(bank, *key)); ok {
			return true, nil
		}
	}
	return l.next.Contains(ctx, bank, key)
}

func (l *lruCache) Updated(ctx context.Context, bank, key string) (int64, error) {
	return l.next.Updated(ctx, bank, key)
}
