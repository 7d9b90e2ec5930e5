package hostaway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flex_reviews/internal/adapters/upstream"
	"flex_reviews/internal/domain"
)

func tokenServer(t *testing.T, hits *int32, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/accessTokens" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["accountId"] != 61148.0 || in["apiKey"] != "secret" {
			t.Errorf("unexpected token body %v", in)
		}
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestTokenSource_ReusesUntilMargin(t *testing.T) {
	var hits int32
	ts := tokenServer(t, &hits, `{"result":{"accessToken":"abc","expiresIn":120}}`)
	defer ts.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	src := NewTokenSource(ts.URL, "61148", "secret", upstream.New("hostaway", time.Second, 100))
	src.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		tok, err := src.AccessToken(context.Background())
		if err != nil || tok != "abc" {
			t.Fatalf("AccessToken = %q, %v", tok, err)
		}
	}
	if hits != 1 {
		t.Fatalf("expected one token request, got %d", hits)
	}

	// 59s of validity left is inside the 60s margin.
	now = now.Add(61 * time.Second)
	if _, err := src.AccessToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits != 2 {
		t.Fatalf("expected refresh inside safety margin, got %d requests", hits)
	}
}

func TestTokenSource_AlternateShapesAndDefaultLifetime(t *testing.T) {
	var hits int32
	ts := tokenServer(t, &hits, `{"token":"flat"}`)
	defer ts.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := NewTokenSource(ts.URL, "61148", "secret", upstream.New("hostaway", time.Second, 100))
	src.now = func() time.Time { return now }

	tok, err := src.AccessToken(context.Background())
	if err != nil || tok != "flat" {
		t.Fatalf("AccessToken = %q, %v", tok, err)
	}
	now = now.Add(29 * 24 * time.Hour)
	if _, err := src.AccessToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Fatalf("default lifetime should be 30 days, got %d requests", hits)
	}
}

func TestTokenSource_InvalidateForcesRefresh(t *testing.T) {
	var hits int32
	ts := tokenServer(t, &hits, `{"accessToken":"abc"}`)
	defer ts.Close()

	src := NewTokenSource(ts.URL, "61148", "secret", upstream.New("hostaway", time.Second, 100))
	_, _ = src.AccessToken(context.Background())
	src.Invalidate()
	_, _ = src.AccessToken(context.Background())
	if hits != 2 {
		t.Fatalf("expected 2 token requests, got %d", hits)
	}
}

func TestTokenSource_MissingCredentials(t *testing.T) {
	src := NewTokenSource("http://127.0.0.1:0", "", "", upstream.New("hostaway", time.Second, 100))
	if _, err := src.AccessToken(context.Background()); !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
