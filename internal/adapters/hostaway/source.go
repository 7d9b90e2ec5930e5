package hostaway

import (
	"context"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// LiveFetcher is the live half of Source; *Client implements it.
type LiveFetcher interface {
	GetReviews(ctx context.Context, q domain.HostawayQuery) ([]RawReview, error)
}

// Source implements domain.HostawayReviews. It never fails: any live error,
// and any empty live result, is served from the fixture dataset instead.
type Source struct {
	live    LiveFetcher
	fixture []RawReview
}

func NewSource(live LiveFetcher, fixture []RawReview) *Source {
	return &Source{live: live, fixture: fixture}
}

var _ domain.HostawayReviews = (*Source)(nil)

func (s *Source) FetchReviews(ctx context.Context, q domain.HostawayQuery) (domain.ReviewsPage, error) {
	var raw []RawReview
	if s.live == nil {
		observability.ObserveFallback("hostaway", "disabled")
		raw = s.fixture
	} else {
		live, err := s.live.GetReviews(ctx, q)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("provider", "hostaway").Msg("live fetch failed, serving fixture")
			observability.ObserveFallback("hostaway", "error")
			raw = s.fixture
		case len(live) == 0:
			log.Debug().Str("provider", "hostaway").Msg("live fetch empty, serving fixture")
			observability.ObserveFallback("hostaway", "empty")
			raw = s.fixture
		default:
			raw = live
		}
	}

	filtered := make([]RawReview, 0, len(raw))
	for _, r := range raw {
		if keep(r, q) {
			filtered = append(filtered, r)
		}
	}

	window := page(filtered, q.Offset, q.Limit)
	items := make([]domain.Review, 0, len(window))
	for _, r := range window {
		items = append(items, Normalize(r))
	}
	return domain.ReviewsPage{Count: len(filtered), Items: items}, nil
}

// keep compares dates as raw strings; a review without a date passes both bounds.
func keep(r RawReview, q domain.HostawayQuery) bool {
	if q.ListingMapID != nil && *q.ListingMapID != 0 {
		if r.ListingMapID == nil || *r.ListingMapID != *q.ListingMapID {
			return false
		}
	}
	if q.From != "" && r.SubmittedAt != "" && r.SubmittedAt < q.From {
		return false
	}
	if q.To != "" && r.SubmittedAt != "" && r.SubmittedAt > q.To {
		return false
	}
	return true
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
