package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/courtside/internal/store"
)

// ErrNotFound is returned when a cache key has no row.
var ErrNotFound = errors.New("cache entry not found")

// CacheRepository handles api_cache data access. Rows are
// {cache_key, data, updated_at}; there is no versioning column, so schema
// changes to a payload ride on the key prefix instead.
type CacheRepository struct {
	db *store.Database
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *store.Database) *CacheRepository {
	return &CacheRepository{db: db}
}

// GetEntry returns the payload and write timestamp for a cache key.
func (r *CacheRepository) GetEntry(ctx context.Context, key string) ([]byte, time.Time, error) {
	query := `
		SELECT data, updated_at
		FROM api_cache
		WHERE cache_key = $1
	`

	var payload []byte
	var updatedAt time.Time
	err := r.db.DB().QueryRowContext(ctx, query, key).Scan(&payload, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("querying cache entry %s: %w", key, err)
	}

	return payload, updatedAt, nil
}

// SetEntry upserts the payload for a cache key, refreshing updated_at.
// Last writer wins on concurrent refresh.
func (r *CacheRepository) SetEntry(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO api_cache (cache_key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (cache_key)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := r.db.DB().ExecContext(ctx, query, key, payload); err != nil {
		return fmt.Errorf("upserting cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteEntry removes a cache key. Deleting a missing key is not an error.
func (r *CacheRepository) DeleteEntry(ctx context.Context, key string) error {
	query := `DELETE FROM api_cache WHERE cache_key = $1`

	if _, err := r.db.DB().ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix and reports the count.
func (r *CacheRepository) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	query := `DELETE FROM api_cache WHERE cache_key LIKE $1 || '%'`

	res, err := r.db.DB().ExecContext(ctx, query, prefix)
	if err != nil {
		return 0, fmt.Errorf("deleting cache prefix %s: %w", prefix, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
