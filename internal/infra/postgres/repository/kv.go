package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yousafkhamza/devops-mcq-bot/internal/repository"
)

// KVRepository persists quiz state (attempt counters, rotation offsets)
// in a single key-value table.
type KVRepository struct {
	db *pgxpool.Pool
}

// NewKVRepository creates a KVRepository with the provided database pool.
func NewKVRepository(db *pgxpool.Pool) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the stored value for key, or repository.ErrKeyNotFound.
func (r *KVRepository) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value FROM quiz_state WHERE key = $1
	`

	var value string
	err := r.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrKeyNotFound
		}
		return "", fmt.Errorf("get quiz state: %w", err)
	}

	return value, nil
}

// Set upserts the value for key.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO quiz_state (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set quiz state: %w", err)
	}

	return nil
}
