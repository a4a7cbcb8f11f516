package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tgiffonirs/gomarketplace/pkg/database"
)

const (
	getQuery = `SELECT value FROM kv_store WHERE key = $1`

	setQuery = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`
)

// Storage implements storage.Storage on a single postgres table.
type Storage struct {
	db database.DBTX
}

// NewStorage creates a postgres-backed storage. db is usually a
// *pgxpool.Pool.
func NewStorage(db database.DBTX) *Storage {
	return &Storage{db: db}
}

// Get reads the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, getQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.Exec(ctx, setQuery, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// Ping checks the database connection when the underlying handle supports it.
func (s *Storage) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
