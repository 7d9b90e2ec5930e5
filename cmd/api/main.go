package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/hostaway"
	server "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/adapters/places"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/adapters/upstream"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	mysqlrepo "flex_reviews/internal/storage/mysql"
	pgrepo "flex_reviews/internal/storage/postgres"
)

type store interface {
	domain.ModerationStore
	domain.ListingStore
	domain.CacheStore
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "api")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	repo, closeDB := openStore(ctx, cfg)
	defer closeDB()

	var cache domain.CacheStore = repo
	if cfg.CacheBackend == "redis" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		defer rc.Close()
		cache = rc
	}
	log.Info().Str("db", cfg.DBDriver).Str("cache", cfg.CacheBackend).Msg("storage ok")

	// providers
	fixture, err := hostaway.LoadFixture(cfg.HostawayFixturePath)
	if err != nil {
		log.Fatal().Err(err).Msg("load hostaway fixture failed")
	}
	var live hostaway.LiveFetcher
	if cfg.HostawayAccountID != "" && cfg.HostawaySecret != "" {
		hc := upstream.New("hostaway", 20*time.Second, cfg.ProviderRPS)
		tokens := hostaway.NewTokenSource(cfg.HostawayBase, cfg.HostawayAccountID, cfg.HostawaySecret, hc)
		live = hostaway.NewClient(cfg.HostawayBase, hc, tokens)
	}
	hostawaySrc := hostaway.NewSource(live, fixture)

	pc := places.NewClient(cfg.PlacesBase, cfg.PlacesKey, upstream.New("places", 20*time.Second, cfg.ProviderRPS))
	placesSrc := places.NewSource(pc, cache, cfg.PlacesCacheTTL)

	// services
	moderation := app.NewModerationService(repo, repo, 8)
	h := server.NewHandlers(
		app.NewReviewService(hostawaySrc, placesSrc, repo, repo),
		moderation,
		app.NewListingService(repo, repo),
	)

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h, cfg.CORSOrigins)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}

// openStore connects the configured database. The returned func closes it.
func openStore(ctx context.Context, cfg shared.Config) (store, func()) {
	switch cfg.DBDriver {
	case "postgres", "postgresql", "pg":
		pool, err := pgrepo.Open(ctx, cfg.PostgresDSN, 10)
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
		return mysqlrepo.New(db), func() { _ = db.Close() }
	default:
		log.Fatal().Str("driver", cfg.DBDriver).Msg("unknown DB_DRIVER")
		return nil, nil
	}
}
