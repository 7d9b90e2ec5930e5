package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

func (r *Repo) GetCache(ctx context.Context, key string) (domain.CacheRecord, bool, error) {
	var payload string
	rec := domain.CacheRecord{Key: key}
	err := r.db.QueryRow(ctx, `SELECT payload, expires_at FROM provider_cache WHERE cache_key = $1`, key).
		Scan(&payload, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		observability.ObserveCache("postgres", "miss")
		return domain.CacheRecord{}, false, nil
	}
	if err != nil {
		return domain.CacheRecord{}, false, err
	}
	rec.Payload = []byte(payload)
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	if rec.Fresh(time.Now()) {
		observability.ObserveCache("postgres", "hit")
	} else {
		observability.ObserveCache("postgres", "expired")
	}
	return rec, true, nil
}

func (r *Repo) PutCache(ctx context.Context, rec domain.CacheRecord) error {
	observability.ObserveCache("postgres", "set")
	_, err := r.db.Exec(ctx, `
INSERT INTO provider_cache (cache_key, payload, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (cache_key) DO UPDATE
SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		rec.Key, string(rec.Payload), rec.ExpiresAt.UTC())
	return err
}
