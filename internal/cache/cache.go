// Package cache implements the minion data cache: opaque payloads
// addressed by (bank, key), persisted in the relational store and
// optionally fronted by an expiring LRU.
package cache

import (
	"context"

	appErr "github.com/minionops/minionbase/internal/pkg/errors"
	"github.com/minionops/minionbase/internal/pkg/payload"
	"github.com/minionops/minionbase/internal/repo"
)

type Store interface {
	Store(ctx context.Context, bank, key string, value interface{}) error
	Fetch(ctx context.Context, bank, key string) (interface{}, error)
	Flush(ctx context.Context, bank string, key *string) error
	List(ctx context.Context, bank string) ([]string, error)
	ListBanks(ctx context.Context) ([]string, error)
	Contains(ctx context.Context, bank string, key *string) (bool, error)
	Updated(ctx context.Context, bank, key string) (int64, error)
}

type dbCache struct {
	repo *repo.CacheRepo
}

func NewDBCache(cacheRepo *repo.CacheRepo) Store {
	return &dbCache{repo: cacheRepo}
}

func (c *dbCache) Store(ctx context.Context, bank, key string, value interface{}) error {
	if bank == "" || key == "" {
		return appErr.ErrInvalid
	}
	data, err := payload.Dumps(value)
	if err != nil {
		return err
	}
	return c.repo.Store(ctx, bank, key, data)
}

func (c *dbCache) Fetch(ctx context.Context, bank, key string) (interface{}, error) {
	if bank == "" || key == "" {
		return nil, appErr.ErrInvalid
	}
	data, err := c.repo.Fetch(ctx, bank, key)
	if err != nil {
		return nil, err
	}
	return payload.Loads(data)
}

func (c *dbCache) Flush(ctx context.Context, bank string, key *string) error {
	if bank == "" {
		return appErr.ErrInvalid
	}
	return c.repo.Flush(ctx, bank, key)
}

func (c *dbCache) List(ctx context.Context, bank string) ([]string, error) {
	if bank == "" {
		return nil, appErr.ErrInvalid
	}
	return c.repo.ListKeys(ctx, bank)
}

func (c *dbCache) ListBanks(ctx context.Context) ([]string, error) {
	return c.repo.ListBanks(ctx)
}

func (c *dbCache) Contains(ctx context.Context, bank string, key *string) (bool, error) {
	if bank == "" {
		return false, appErr.ErrInvalid
	}
	return c.repo.Contains(ctx, bank, key)
}

func (c *dbCache) Updated(ctx context.Context, bank, key string) (int64, error) {
	if bank == "" || key == "" {
		return 0, appErr.ErrInvalid
	}
	return c.repo.Updated(ctx, bank, key)
}
