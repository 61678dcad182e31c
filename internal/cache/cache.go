// Package cache provides time-to-live memoization for slow external calls.
// There is no invalidation beyond expiry.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Store keeps raw values for a bounded time.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Memoize returns the cached value for key or calls fn and caches its result
// for ttl. Errors from fn are returned as-is and never cached.
func Memoize[T any](ctx context.Context, s Store, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if raw, ok := s.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		log.Printf("[WARN] cache entry %s is corrupt, refetching", key)
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := s.Set(ctx, key, raw, ttl); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
	return v, nil
}

// Key joins parts into a cache key.
func Key(namespace string, parts ...any) string {
	k := namespace
	for _, p := range parts {
		k += ":" + fmt.Sprint(p)
	}
	return k
}
