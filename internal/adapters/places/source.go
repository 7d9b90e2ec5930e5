package places

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

const (
	maxReviews = 5
	channel    = "google"
)

// DefaultTTL is how long a place bundle stays in the cache.
const DefaultTTL = 30 * 24 * time.Hour

type placeFetcher interface {
	GetPlace(ctx context.Context, placeID string) (rawPlace, error)
}

// Source implements domain.PlaceReviews with a read-through cache.
type Source struct {
	live  placeFetcher
	cache domain.CacheStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSource(live *Client, cache domain.CacheStore, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Source{live: live, cache: cache, ttl: ttl, now: time.Now}
}

var _ domain.PlaceReviews = (*Source)(nil)

func CacheKey(placeID string) string { return "places:place:" + placeID }

func (s *Source) FetchPlaceReviews(ctx context.Context, placeID string) (domain.PlaceBundle, error) {
	key := CacheKey(placeID)
	now := s.now()

	if rec, ok, err := s.cache.GetCache(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("place cache read failed")
	} else if ok {
		if rec.Fresh(now) {
			var b domain.PlaceBundle
			if err := json.Unmarshal(rec.Payload, &b); err == nil {
				observability.ObserveCache("places", "hit")
				return b, nil
			}
			log.Warn().Str("key", key).Msg("place cache payload unreadable")
		} else {
			observability.ObserveCache("places", "expired")
		}
	} else {
		observability.ObserveCache("places", "miss")
	}

	raw, err := s.live.GetPlace(ctx, placeID)
	if err != nil {
		return domain.PlaceBundle{}, err
	}
	bundle := toBundle(placeID, raw)

	payload, err := json.Marshal(bundle)
	if err != nil {
		return domain.PlaceBundle{}, err
	}
	rec := domain.CacheRecord{Key: key, Payload: payload, ExpiresAt: now.Add(s.ttl)}
	if err := s.cache.PutCache(ctx, rec); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("place cache write failed")
	} else {
		observability.ObserveCache("places", "set")
	}
	return bundle, nil
}

func toBundle(placeID string, p rawPlace) domain.PlaceBundle {
	id := p.ID
	if id == "" {
		id = placeID
	}
	reviews := p.Reviews
	if len(reviews) > maxReviews {
		reviews = reviews[:maxReviews]
	}
	items := make([]domain.Review, 0, len(reviews))
	for i, r := range reviews {
		items = append(items, normalize(placeID, i, r))
	}
	return domain.PlaceBundle{
		Place: domain.Place{ID: id, Name: string(p.DisplayName), Rating: p.Rating, UserRatingCount: p.UserRatingCount},
		Items: items,
	}
}

func normalize(placeID string, idx int, r rawReview) domain.Review {
	suffix := r.PublishTime
	if suffix == "" {
		suffix = strconv.Itoa(idx)
	}
	ch := channel
	rv := domain.Review{
		ID:      string(domain.SourcePlaces) + ":" + placeID + ":" + suffix,
		Source:  domain.SourcePlaces,
		Channel: &ch,
		Text:    string(r.Text),
	}
	if r.Rating != nil {
		raw := *r.Rating
		v := math.Max(0, math.Min(5, raw))
		rv.Rating, rv.RatingRaw = &v, &raw
	}
	if r.PublishTime != "" {
		ts := r.PublishTime
		rv.SubmittedAt = &ts
	}
	if a := r.AuthorAttribution; a != nil {
		if a.DisplayName != "" {
			name := a.DisplayName
			rv.AuthorName = &name
		}
		rv.SourceMeta = &domain.SourceMeta{AuthorURI: nonEmpty(a.URI), ProfilePhotoURI: nonEmpty(a.PhotoURI)}
	}
	return rv
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
