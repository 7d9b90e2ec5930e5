package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "CACHE_BACKEND", "PLACES_CACHE_TTL_HOURS", "CORS_ORIGINS", "HOSTAWAY_BASE_URL"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.DBDriver != "mysql" || c.CacheBackend != "db" {
		t.Fatalf("drivers = %s/%s", c.DBDriver, c.CacheBackend)
	}
	if c.PlacesCacheTTL != 30*24*time.Hour {
		t.Fatalf("ttl = %v", c.PlacesCacheTTL)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Fatalf("origins = %v", c.CORSOrigins)
	}
	if c.HostawayBase != "https://api.hostaway.com/v1" {
		t.Fatalf("base = %s", c.HostawayBase)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PROVIDER_RPS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "https://theflex.global, https://admin.theflex.global ,")
	t.Setenv("HOSTAWAY_BASE_URL", "http://localhost:9000/")

	c := Load()
	if c.DBDriver != "postgres" || c.RedisDB != 3 || c.ProviderRPS != 5 {
		t.Fatalf("unexpected config %+v", c)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://admin.theflex.global" {
		t.Fatalf("origins = %v", c.CORSOrigins)
	}
	if c.HostawayBase != "http://localhost:9000" {
		t.Fatalf("base = %s", c.HostawayBase)
	}
}
