// Package memory is an in-process cache.Cache used when no Redis address is
// configured and in tests.
package memory

import (
	"context"
	"encoding"
	"sync/atomic"
	"time"

	"jobtrends/common/cache"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 10 * time.Minute

type Cache struct {
	store      *gocache.Cache
	defaultTTL time.Duration
	closed     atomic.Bool
}

func New(opts cache.Options) *Cache {
	ttl := opts.DefaultTTL
	if ttl == 0 {
		ttl = cache.DefaultOptions().DefaultTTL
	}
	return &Cache{
		store:      gocache.New(ttl, cleanupInterval),
		defaultTTL: ttl,
	}
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}
	data, err := encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.store.Set(key, data, ttl)
	return nil
}

func (c *Cache) Get(_ context.Context, key string, value interface{}) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}
	raw, ok := c.store.Get(key)
	if !ok {
		return cache.ErrNotFound
	}
	data := raw.([]byte)

	switch v := value.(type) {
	case *string:
		*v = string(data)
	case *[]byte:
		*v = append([]byte(nil), data...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(data)
	default:
		return cache.ErrInvalidValue
	}
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *Cache) Close() error {
	c.closed.Store(true)
	c.store.Flush()
	return nil
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, cache.ErrInvalidValue
	}
}
