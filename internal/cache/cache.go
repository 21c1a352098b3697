package cache

import (
	"context"
	"fmt"

	"github.com/dexterpante/scheduler/internal/config"
)

// Store memoizes encoded runs by key. A key fully identifies its value, so entries never go stale; TTLs only bound size
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// New opens the store selected by the configuration
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return NewMemoryStore(cfg.TTL), nil
	case config.CacheBadger:
		return NewBadgerStore(cfg.BadgerPath, cfg.TTL)
	case config.CacheRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
	case config.CacheNone:
		return noopStore{}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

type noopStore struct{}

func (noopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) Set(context.Context, string, []byte) error         { return nil }
func (noopStore) Close() error                                      { return nil }
