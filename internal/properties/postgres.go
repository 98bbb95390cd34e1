package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailroomhq/mailroom/internal/config"
)

// PostgresStore is a Postgres-backed Store. All values live in a single
// properties table; Update holds a row lock for the duration of the
// read-modify-write so concurrent writers serialize.
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS properties (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSQL = `
INSERT INTO properties (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// NewPostgresStore connects to Postgres and ensures the properties table
// exists.
func NewPostgresStore(ctx context.Context, cfg *config.PropertiesConfig) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure properties table: %w", err)
	}

	return &PostgresStore{
		pool:      pool,
		namespace: cfg.Namespace,
	}, nil
}

func (s *PostgresStore) namespaced(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Get returns the value for key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM properties WHERE key = $1`,
		s.namespaced(key),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

// Set overwrites the value for key.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.pool.Exec(ctx, upsertSQL, s.namespaced(key), value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// Update applies fn within a transaction holding a row lock on key.
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	nsKey := s.namespaced(key)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres update %s: %w", key, err)
	}
	defer tx.Rollback(ctx)

	var current string
	exists := true
	err = tx.QueryRow(ctx,
		`SELECT value FROM properties WHERE key = $1 FOR UPDATE`,
		nsKey,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		current, exists = "", false
	} else if err != nil {
		return fmt.Errorf("postgres update %s: %w", key, err)
	}

	next, err := fn(current, exists)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, upsertSQL, nsKey, next); err != nil {
		return fmt.Errorf("postgres update %s: %w", key, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres update %s: %w", key, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
