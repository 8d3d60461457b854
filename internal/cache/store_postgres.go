// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisetsu-app/kisetsu/internal/platform/database/schema"
)

// PostgresStore persists cache entries in the sync.api_cache table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps a shared connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (store *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.SyncAPICache.CacheKey, schema.SyncAPICache.Response,
		schema.SyncAPICache.CreatedAt, schema.SyncAPICache.ExpiresAt,
		schema.SyncAPICache.Table, schema.SyncAPICache.CacheKey,
	)

	entry := &Entry{}
	err := store.db.QueryRow(ctx, query, key).Scan(
		&entry.CacheKey, &entry.Response, &entry.CreatedAt, &entry.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: postgres get failed: %w", err)
	}
	return entry, nil
}

func (store *PostgresStore) Set(ctx context.Context, entry *Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s
	`,
		schema.SyncAPICache.Table,
		schema.SyncAPICache.CacheKey, schema.SyncAPICache.Response,
		schema.SyncAPICache.CreatedAt, schema.SyncAPICache.ExpiresAt,
		schema.SyncAPICache.CacheKey,
		schema.SyncAPICache.Response, schema.SyncAPICache.Response,
		schema.SyncAPICache.CreatedAt, schema.SyncAPICache.CreatedAt,
		schema.SyncAPICache.ExpiresAt, schema.SyncAPICache.ExpiresAt,
	)

	_, err := store.db.Exec(ctx, query, entry.CacheKey, entry.Response, entry.CreatedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("cache: postgres set failed: %w", err)
	}
	return nil
}

func (store *PostgresStore) Delete(ctx context.Context, key string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.SyncAPICache.Table, schema.SyncAPICache.CacheKey)

	tag, err := store.db.Exec(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("cache: postgres delete failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (store *PostgresStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	// The cache_key column carries a plain btree unique index; text_pattern_ops
	// in the migration keeps this LIKE prefix scan indexed.
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s LIKE $1`,
		schema.SyncAPICache.Table, schema.SyncAPICache.CacheKey)

	tag, err := store.db.Exec(ctx, query, likeEscape(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("cache: postgres prefix delete failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (store *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`,
		schema.SyncAPICache.Table, schema.SyncAPICache.ExpiresAt)

	tag, err := store.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("cache: postgres expired sweep failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// likeEscape neutralizes LIKE metacharacters in a literal prefix.
func likeEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
