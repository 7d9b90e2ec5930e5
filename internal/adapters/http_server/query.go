package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"flex_reviews/internal/domain"
)

// pathParam returns the decoded route parameter; chi leaves it escaped when the path has a RawPath.
func pathParam(r *http.Request, k string) string {
	v := chi.URLParam(r, k)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

const maxLimit = 1000

// queryParser collects every malformed parameter instead of stopping at the first.
type queryParser struct {
	q    url.Values
	errs []string
}

func (p *queryParser) str(k string) string { return strings.TrimSpace(p.q.Get(k)) }

func (p *queryParser) boolPtr(k string) *bool {
	v := p.str(k)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, k+" must be true or false")
		return nil
	}
	return &b
}

func (p *queryParser) floatPtr(k string) *float64 {
	v := p.str(k)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, k+" must be a number")
		return nil
	}
	return &f
}

func (p *queryParser) intIn(k string, def, lo, hi int) int {
	v := p.str(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		p.errs = append(p.errs, fmt.Sprintf("%s must be an integer between %d and %d", k, lo, hi))
		return def
	}
	return n
}

func (p *queryParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w", strings.Join(p.errs, "; "), domain.ErrInvalidInput)
}

// reviewFilter reads the shared filter/sort/window parameters.
func (p *queryParser) reviewFilter() domain.ReviewFilter {
	return domain.ReviewFilter{
		Approved:     p.boolPtr("approved"),
		Pinned:       p.boolPtr("pinned"),
		RatingMin:    p.floatPtr("ratingMin"),
		RatingMax:    p.floatPtr("ratingMax"),
		From:         p.str("from"),
		To:           p.str("to"),
		Channel:      p.str("channel"),
		Type:         p.str("type"),
		CategoryName: p.str("categoryName"),
		CategoryMin:  p.floatPtr("categoryMin"),
		Sort:         p.str("sort"),
		Limit:        p.intIn("limit", domain.DefaultLimit, 1, maxLimit),
		Offset:       p.intIn("offset", 0, 0, 1<<30),
	}
}
