package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flex_reviews/internal/adapters/upstream"
	"flex_reviews/internal/domain"
)

type memCache struct {
	recs   map[string]domain.CacheRecord
	getErr error
	putErr error
	puts   int
}

func newMemCache() *memCache { return &memCache{recs: map[string]domain.CacheRecord{}} }

func (m *memCache) GetCache(_ context.Context, key string) (domain.CacheRecord, bool, error) {
	if m.getErr != nil {
		return domain.CacheRecord{}, false, m.getErr
	}
	r, ok := m.recs[key]
	return r, ok, nil
}

func (m *memCache) PutCache(_ context.Context, rec domain.CacheRecord) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.recs[rec.Key] = rec
	return nil
}

type fakePlaces struct {
	place rawPlace
	err   error
	calls int
}

func (f *fakePlaces) GetPlace(context.Context, string) (rawPlace, error) {
	f.calls++
	return f.place, f.err
}

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestSource(live placeFetcher, cache domain.CacheStore) *Source {
	return &Source{live: live, cache: cache, ttl: DefaultTTL, now: func() time.Time { return now }}
}

func samplePlace(n int) rawPlace {
	p := rawPlace{ID: "ChIJ123", DisplayName: "The Flex Shoreditch"}
	for i := 0; i < n; i++ {
		r := 4.0
		p.Reviews = append(p.Reviews, rawReview{
			Rating:      &r,
			Text:        text(fmt.Sprintf("review %d", i)),
			PublishTime: fmt.Sprintf("2024-04-0%dT10:00:00Z", i+1),
		})
	}
	return p
}

func TestSource_FreshCacheSkipsNetwork(t *testing.T) {
	cache := newMemCache()
	want := domain.PlaceBundle{Place: domain.Place{ID: "ChIJ123", Name: "cached"}}
	payload, _ := json.Marshal(want)
	cache.recs[CacheKey("ChIJ123")] = domain.CacheRecord{Key: CacheKey("ChIJ123"), Payload: payload, ExpiresAt: now.Add(time.Hour)}

	live := &fakePlaces{err: errors.New("must not be called")}
	got, err := newTestSource(live, cache).FetchPlaceReviews(context.Background(), "ChIJ123")
	if err != nil {
		t.Fatal(err)
	}
	if live.calls != 0 {
		t.Fatalf("fresh cache must not hit the network, got %d calls", live.calls)
	}
	if got.Place.Name != "cached" {
		t.Fatalf("unexpected bundle %+v", got)
	}
}

func TestSource_ExpiredCacheRefetchesAndOverwrites(t *testing.T) {
	cache := newMemCache()
	cache.recs[CacheKey("ChIJ123")] = domain.CacheRecord{Key: CacheKey("ChIJ123"), Payload: []byte(`{}`), ExpiresAt: now}

	live := &fakePlaces{place: samplePlace(2)}
	got, err := newTestSource(live, cache).FetchPlaceReviews(context.Background(), "ChIJ123")
	if err != nil {
		t.Fatal(err)
	}
	if live.calls != 1 {
		t.Fatalf("expired record should trigger one live call, got %d", live.calls)
	}
	rec := cache.recs[CacheKey("ChIJ123")]
	if !rec.ExpiresAt.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Fatalf("expiresAt = %v", rec.ExpiresAt)
	}
	if len(got.Items) != 2 || got.Place.Name != "The Flex Shoreditch" {
		t.Fatalf("unexpected bundle %+v", got)
	}
}

func TestSource_CapsAtFiveReviews(t *testing.T) {
	got, err := newTestSource(&fakePlaces{place: samplePlace(8)}, newMemCache()).FetchPlaceReviews(context.Background(), "ChIJ123")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 5 {
		t.Fatalf("items = %d, want 5", len(got.Items))
	}
	first := got.Items[0]
	if first.ID != "places:ChIJ123:2024-04-01T10:00:00Z" || *first.Channel != "google" || first.Source != domain.SourcePlaces {
		t.Fatalf("unexpected first item %+v", first)
	}
	if first.Categories != nil || first.Type != nil {
		t.Fatal("places reviews carry no categories or type")
	}
}

func TestSource_CacheFailuresDegrade(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errors.New("db down")
	cache.putErr = errors.New("db down")

	got, err := newTestSource(&fakePlaces{place: samplePlace(1)}, cache).FetchPlaceReviews(context.Background(), "ChIJ123")
	if err != nil {
		t.Fatalf("cache errors must not surface: %v", err)
	}
	if len(got.Items) != 1 || cache.puts != 1 {
		t.Fatalf("unexpected result %+v, puts=%d", got, cache.puts)
	}
}

func TestSource_UpstreamErrorSurfaces(t *testing.T) {
	live := &fakePlaces{err: fmt.Errorf("x: %w", domain.ErrUpstream)}
	_, err := newTestSource(live, newMemCache()).FetchPlaceReviews(context.Background(), "ChIJ123")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClient_FieldsAndTextShapes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/places/ChIJ123") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("fields") != detailFields || r.URL.Query().Get("key") != "k" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"id":"ChIJ123","displayName":{"text":"Flex"},"rating":4.6,
			"reviews":[{"rating":5,"text":{"text":"great"},"authorAttribution":{"displayName":"Ann","uri":"u"}},
			{"rating":3,"text":"plain"}]}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "k", upstream.New("places", time.Second, 100))
	p, err := c.GetPlace(context.Background(), "ChIJ123")
	if err != nil {
		t.Fatal(err)
	}
	if p.DisplayName != "Flex" || p.Reviews[0].Text != "great" || p.Reviews[1].Text != "plain" {
		t.Fatalf("unexpected decode %+v", p)
	}

	b := toBundle("ChIJ123", p)
	if b.Items[1].ID != "places:ChIJ123:1" {
		t.Fatalf("index id = %s", b.Items[1].ID)
	}
	if *b.Items[0].AuthorName != "Ann" || *b.Items[0].SourceMeta.AuthorURI != "u" {
		t.Fatalf("attribution lost: %+v", b.Items[0])
	}
}

func TestClient_Errors(t *testing.T) {
	if _, err := NewClient("http://x", "", upstream.New("places", time.Second, 100)).GetPlace(context.Background(), "p"); !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("missing key: %v", err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusBadRequest)
	}))
	defer ts.Close()
	_, err := NewClient(ts.URL, "k", upstream.New("places", time.Second, 100)).GetPlace(context.Background(), "p")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("non-2xx should be ErrUpstream, got %v", err)
	}
}
