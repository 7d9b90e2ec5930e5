package main

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/adapters/places"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/adapters/upstream"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	mysqlrepo "flex_reviews/internal/storage/mysql"
	pgrepo "flex_reviews/internal/storage/postgres"
)

type store interface {
	domain.ListingStore
	domain.CacheStore
}

// warmer fills the place-review cache for every listing that has a place id,
// so public pages never wait on the provider.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "warmer")

	log.Info().
		Str("db", cfg.DBDriver).
		Str("cache", cfg.CacheBackend).
		Int("workers", cfg.WarmWorkers).
		Msg("warmer starting")

	repo, closeDB := openStore(ctx, cfg)
	defer closeDB()

	var cache domain.CacheStore = repo
	if cfg.CacheBackend == "redis" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	client := places.NewClient(cfg.PlacesBase, cfg.PlacesKey, upstream.New("places", 20*time.Second, cfg.ProviderRPS))
	src := places.NewSource(client, cache, cfg.PlacesCacheTTL)

	listings, err := repo.ListListings(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list listings failed")
	}

	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var ok, failed int64

	for _, l := range listings {
		if l.GooglePlaceID == nil || strings.TrimSpace(*l.GooglePlaceID) == "" {
			continue
		}
		placeID := strings.TrimSpace(*l.GooglePlaceID)

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(slug, placeID string) {
			defer wg.Done()
			defer sem.Release(1)

			b, err := src.FetchPlaceReviews(ctx, placeID)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				log.Warn().Str("listing", slug).Str("place", placeID).Err(err).Msg("warm failed")
				return
			}
			atomic.AddInt64(&ok, 1)
			log.Info().Str("listing", slug).Str("place", placeID).Int("reviews", len(b.Items)).Msg("warm ok")
		}(l.Slug, placeID)
	}

	wg.Wait()
	log.Info().Int64("ok", ok).Int64("failed", failed).Msg("warming completed")
}

func openStore(ctx context.Context, cfg shared.Config) (store, func()) {
	switch cfg.DBDriver {
	case "postgres", "postgresql", "pg":
		pool, err := pgrepo.Open(ctx, cfg.PostgresDSN, int32(cfg.WarmWorkers+1))
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect failed")
		}
		return pgrepo.New(pool), pool.Close
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }
	default:
		log.Fatal().Str("driver", cfg.DBDriver).Msg("unknown DB_DRIVER")
		return nil, nil
	}
}
