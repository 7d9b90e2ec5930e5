package hostaway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"flex_reviews/internal/adapters/upstream"
	"flex_reviews/internal/domain"
)

// Client is the live provider client. It is only ever called through Source,
// which swallows its errors in favor of the fixture dataset.
type Client struct {
	base   string
	caller *upstream.Caller
	tokens *TokenSource
}

func NewClient(base string, caller *upstream.Caller, tokens *TokenSource) *Client {
	return &Client{base: base, caller: caller, tokens: tokens}
}

type reviewsResponse struct {
	Status string      `json:"status"`
	Result []RawReview `json:"result"`
}

func (c *Client) GetReviews(ctx context.Context, q domain.HostawayQuery) ([]RawReview, error) {
	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if q.ListingMapID != nil && *q.ListingMapID != 0 {
		params.Set("listingMapId", strconv.Itoa(*q.ListingMapID))
	}
	if q.From != "" {
		params.Set("departureDateStart", q.From)
	}
	if q.To != "" {
		params.Set("departureDateEnd", q.To)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	u := c.base + "/reviews"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var out reviewsResponse
	err = c.caller.Do(ctx, "reviews", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		return req, nil
	}, &out)
	if errors.Is(err, upstream.ErrUnauthorized) {
		c.tokens.Invalidate()
	}
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}
