package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"flex_reviews/internal/domain"
)

// Repo implements the moderation, listing and cache stores on PostgreSQL.
type Repo struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

var (
	_ domain.ModerationStore = (*Repo)(nil)
	_ domain.ListingStore    = (*Repo)(nil)
	_ domain.CacheStore      = (*Repo)(nil)
)

// Open sets up a pgx connection pool and pings it.
func Open(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func valOpt[T any](o domain.Opt[T]) any {
	if o.Null {
		return nil
	}
	return o.Value
}

func valJSON(o domain.Opt[json.RawMessage]) any {
	if o.Null || len(o.Value) == 0 || string(o.Value) == "null" {
		return nil
	}
	return o.Value
}
