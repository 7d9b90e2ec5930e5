package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// Cache is a domain.CacheStore backed by Redis. Keys expire with their record.
type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

var _ domain.CacheStore = (*Cache)(nil)

type entry struct {
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (r *Cache) GetCache(ctx context.Context, key string) (domain.CacheRecord, bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return domain.CacheRecord{}, false, nil
	}
	if err != nil {
		return domain.CacheRecord{}, false, err
	}
	var e entry
	if err := json.Unmarshal(v, &e); err != nil {
		return domain.CacheRecord{}, false, err
	}
	rec := domain.CacheRecord{Key: key, Payload: e.Payload, ExpiresAt: e.ExpiresAt}
	if rec.Fresh(time.Now()) {
		observability.ObserveCache("redis", "hit")
	} else {
		observability.ObserveCache("redis", "expired")
	}
	return rec, true, nil
}

func (r *Cache) PutCache(ctx context.Context, rec domain.CacheRecord) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return r.Del(ctx, rec.Key)
	}
	b, err := json.Marshal(entry{Payload: rec.Payload, ExpiresAt: rec.ExpiresAt.UTC()})
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, rec.Key, b, ttl).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, key).Err()
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }
