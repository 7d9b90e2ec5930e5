package hostaway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"flex_reviews/internal/adapters/upstream"
	"flex_reviews/internal/domain"
)

const (
	tokenSafetyMargin  = 60 * time.Second
	defaultTokenExpiry = 30 * 24 * time.Hour
)

// TokenSource caches one bearer token for the whole process.
// Concurrent refreshes are tolerated; the last write wins.
type TokenSource struct {
	base      string
	accountID string
	secret    string
	caller    *upstream.Caller
	now       func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenSource(base, accountID, secret string, caller *upstream.Caller) *TokenSource {
	return &TokenSource{base: base, accountID: accountID, secret: secret, caller: caller, now: time.Now}
}

type tokenResponse struct {
	Result *struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   *int64 `json:"expiresIn"`
	} `json:"result"`
	AccessToken      string `json:"accessToken"`
	AccessTokenSnake string `json:"access_token"`
	Token            string `json:"token"`
	ExpiresIn        *int64 `json:"expiresIn"`
	ExpiresInSnake   *int64 `json:"expires_in"`
}

func (r tokenResponse) token() string {
	if r.Result != nil && r.Result.AccessToken != "" {
		return r.Result.AccessToken
	}
	for _, s := range []string{r.AccessToken, r.AccessTokenSnake, r.Token} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (r tokenResponse) lifetime() time.Duration {
	var secs *int64
	switch {
	case r.Result != nil && r.Result.ExpiresIn != nil:
		secs = r.Result.ExpiresIn
	case r.ExpiresIn != nil:
		secs = r.ExpiresIn
	case r.ExpiresInSnake != nil:
		secs = r.ExpiresInSnake
	}
	if secs == nil || *secs <= 0 {
		return defaultTokenExpiry
	}
	return time.Duration(*secs) * time.Second
}

// AccessToken returns the cached token while it is valid for at least another minute.
func (t *TokenSource) AccessToken(ctx context.Context) (string, error) {
	now := t.now()
	t.mu.Lock()
	if t.token != "" && now.Add(tokenSafetyMargin).Before(t.expiresAt) {
		tok := t.token
		t.mu.Unlock()
		return tok, nil
	}
	t.mu.Unlock()

	if t.accountID == "" || t.secret == "" {
		return "", fmt.Errorf("hostaway credentials: %w", domain.ErrConfig)
	}
	account, err := strconv.ParseInt(t.accountID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("hostaway account id %q is not numeric: %w", t.accountID, domain.ErrConfig)
	}
	body, err := json.Marshal(map[string]any{"accountId": account, "apiKey": t.secret})
	if err != nil {
		return "", err
	}

	var out tokenResponse
	err = t.caller.Do(ctx, "access_token", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/accessTokens", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &out)
	if err != nil {
		return "", fmt.Errorf("hostaway token: %w", err)
	}
	tok := out.token()
	if tok == "" {
		return "", fmt.Errorf("hostaway token missing in response: %w", domain.ErrUpstream)
	}

	t.mu.Lock()
	t.token = tok
	t.expiresAt = now.Add(out.lifetime())
	t.mu.Unlock()
	return tok, nil
}

// Invalidate drops the cached token, e.g. after the provider rejected it.
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	t.token = ""
	t.expiresAt = time.Time{}
	t.mu.Unlock()
}
