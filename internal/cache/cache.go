// Package cache provides the read cache in front of the store. Entries are
// JSON documents under string keys; every mutation deletes the keys it
// affects and the next read repopulates them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Generation returns a counter that grows every time key is deleted,
	// directly or by prefix.
	Generation(ctx context.Context, key string) (uint64, error)

	// SetIfGeneration stores value only while key's generation still
	// equals gen, and reports whether it did.
	SetIfGeneration(ctx context.Context, key string, gen uint64, value []byte, ttl time.Duration) (bool, error)

	Close() error
}

// Entity keys.
const (
	KeyProducts   = "products"
	KeyCategories = "categories"
	KeyFAQs       = "faqs"
)

// Key joins key components with ":".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// ContentKey is the key of a section's content map.
func ContentKey(section string) string { return Key("site_content", section) }

// ImagesKey is the key of a section's image list. The empty section names
// the list of every image.
func ImagesKey(section string) string {
	if section == "" {
		return Key("images", "*")
	}
	return Key("images", section)
}

// Fetch reads key through c. On a miss, or when the cached document does
// not decode into T, load is called and its result stored with ttl. The
// result is dropped instead of stored when key was invalidated while load
// ran. A nil client disables caching. Errors writing the cache are ignored.
func Fetch[T any](ctx context.Context, c Client, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	if data, err := c.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
	}

	gen, genErr := c.Generation(ctx, key)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if genErr != nil {
		return v, nil
	}
	if data, err := json.Marshal(v); err == nil {
		_, _ = c.SetIfGeneration(ctx, key, gen, data, ttl)
	}
	return v, nil
}

// Invalidate deletes keys from c. Failures are logged and never returned
// so a cache outage cannot fail a write that already committed.
func Invalidate(ctx context.Context, c Client, logger zerolog.Logger, keys ...string) {
	if c == nil {
		return
	}
	for _, key := range keys {
		if err := c.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
		}
	}
}
