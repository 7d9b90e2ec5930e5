package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

func (r *Repo) GetCache(ctx context.Context, key string) (domain.CacheRecord, bool, error) {
	rec := domain.CacheRecord{Key: key}
	err := r.db.QueryRowContext(ctx, getCacheSQL, key).Scan(&rec.Payload, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		observability.ObserveCache("mysql", "miss")
		return domain.CacheRecord{}, false, nil
	}
	if err != nil {
		return domain.CacheRecord{}, false, err
	}
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	observability.ObserveCache("mysql", readEvent(rec))
	return rec, true, nil
}

// readEvent labels a found row; expired rows are still returned to the caller.
func readEvent(rec domain.CacheRecord) string {
	if rec.Fresh(time.Now()) {
		return "hit"
	}
	return "expired"
}

func (r *Repo) PutCache(ctx context.Context, rec domain.CacheRecord) error {
	observability.ObserveCache("mysql", "set")
	_, err := r.db.ExecContext(ctx, putCacheSQL, rec.Key, string(rec.Payload), rec.ExpiresAt.UTC())
	return err
}
