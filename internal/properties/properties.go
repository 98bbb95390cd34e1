// Package properties provides the key-value properties store backing the
// audit log and template persistence. Values are opaque strings (JSON
// documents); every write replaces the whole value for a key.
//
// Update performs a read-modify-write as a single atomic operation:
// the Redis backend uses WATCH-based optimistic locking, the Postgres
// backend a row lock, the in-memory backend a mutex. Concurrent writers
// to the same key are therefore serialized instead of last-write-wins.
package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailroomhq/mailroom/internal/config"
)

// ErrUpdateConflict is returned when an Update could not be committed
// after exhausting optimistic-locking retries.
var ErrUpdateConflict = errors.New("properties: concurrent update conflict")

// UpdateFunc transforms the current value of a key into the next value.
// exists is false when the key has never been written.
type UpdateFunc func(current string, exists bool) (next string, err error)

// Store is a string key-value store with atomic read-modify-write.
type Store interface {
	// Get returns the value for key. exists is false when unset.
	Get(ctx context.Context, key string) (value string, exists bool, err error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	// Update atomically applies fn to the current value and persists
	// the result.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Close releases the underlying connections.
	Close() error
}

// New creates a Store for the configured backend.
func New(ctx context.Context, cfg *config.PropertiesConfig) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(ctx, cfg)
	case "postgres":
		return NewPostgresStore(ctx, cfg)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown properties backend %q", cfg.Backend)
	}
}
