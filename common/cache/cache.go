package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
)

// Cache stores strings, byte slices and encoding.BinaryMarshaler values.
// Get fills *string, *[]byte or an encoding.BinaryUnmarshaler.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	RedisURL string

	RedisPassword string

	RedisDB int
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL: 10 * time.Minute,
	}
}

// Key builds a namespaced cache key; the last part is hashed so that paths
// and URLs of any length produce short keys.
func Key(namespace string, parts ...string) string {
	if len(parts) == 0 {
		return "jobtrends:" + namespace
	}
	sum := sha1.Sum([]byte(parts[len(parts)-1]))
	keyParts := append([]string{"jobtrends", namespace}, parts[:len(parts)-1]...)
	keyParts = append(keyParts, hex.EncodeToString(sum[:8]))
	return strings.Join(keyParts, ":")
}
