package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// LocalStore is an in-process store backed by bigcache. Each entry carries
// its own deadline so per-key TTLs are honoured exactly; bigcache's life
// window only bounds how long stale bytes linger.
type LocalStore struct {
	bc  *bigcache.BigCache
	now func() time.Time
}

// NewLocalStore creates a LocalStore whose entries are swept after maxTTL.
func NewLocalStore(ctx context.Context, maxTTL time.Duration) (*LocalStore, error) {
	cfg := bigcache.DefaultConfig(maxTTL)
	cfg.CleanWindow = time.Minute
	cfg.Verbose = false
	bc, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &LocalStore{bc: bc, now: time.Now}, nil
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, bool) {
	entry, err := s.bc.Get(key)
	if err != nil || len(entry) < 8 {
		return nil, false
	}
	deadline := int64(binary.BigEndian.Uint64(entry[:8]))
	if s.now().UnixNano() >= deadline {
		_ = s.bc.Delete(key)
		return nil, false
	}
	return entry[8:], true
}

func (s *LocalStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	entry := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(entry[:8], uint64(s.now().Add(ttl).UnixNano()))
	copy(entry[8:], value)
	return s.bc.Set(key, entry)
}

func (s *LocalStore) Close() error { return s.bc.Close() }
