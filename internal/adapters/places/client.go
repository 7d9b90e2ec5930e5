package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"flex_reviews/internal/adapters/upstream"
	"flex_reviews/internal/domain"
)

const detailFields = "id,displayName,rating,userRatingCount,reviews"

// Client fetches place details, reviews included, with an API key.
type Client struct {
	base   string
	apiKey string
	caller *upstream.Caller
}

func NewClient(base, apiKey string, caller *upstream.Caller) *Client {
	return &Client{base: base, apiKey: apiKey, caller: caller}
}

// text decodes either a bare string or a localized {"text": "..."} object.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*t = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*t = text(obj.Text)
	return nil
}

type rawPlace struct {
	ID              string      `json:"id"`
	DisplayName     text        `json:"displayName"`
	Rating          *float64    `json:"rating"`
	UserRatingCount *int        `json:"userRatingCount"`
	Reviews         []rawReview `json:"reviews"`
}

type rawReview struct {
	Rating            *float64 `json:"rating"`
	Text              text     `json:"text"`
	PublishTime       string   `json:"publishTime"`
	AuthorAttribution *struct {
		DisplayName string `json:"displayName"`
		URI         string `json:"uri"`
		PhotoURI    string `json:"photoUri"`
	} `json:"authorAttribution"`
}

func (c *Client) GetPlace(ctx context.Context, placeID string) (rawPlace, error) {
	if c.apiKey == "" {
		return rawPlace{}, fmt.Errorf("places api key: %w", domain.ErrConfig)
	}
	q := url.Values{}
	q.Set("fields", detailFields)
	q.Set("key", c.apiKey)
	u := fmt.Sprintf("%s/places/%s?%s", c.base, url.PathEscape(placeID), q.Encode())

	var out rawPlace
	err := c.caller.Do(ctx, "place_details", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}, &out)
	if err != nil {
		return rawPlace{}, fmt.Errorf("place %s: %w: %w", placeID, domain.ErrUpstream, err)
	}
	return out, nil
}
