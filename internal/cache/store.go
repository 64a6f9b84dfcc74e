package cache

import (
	"context"
	"time"
)

// Store is the shared key/value cache dependency. Implementations are
// injected into services so tests can substitute a fake; values expire
// after the supplied TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
