package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flex_reviews/internal/domain"
)

// fetchWindow is how many provider reviews are pulled before filtering locally.
const fetchWindow = 1000

type ReviewService struct {
	hostaway   domain.HostawayReviews
	places     domain.PlaceReviews
	moderation domain.ModerationStore
	listings   domain.ListingStore
}

func NewReviewService(h domain.HostawayReviews, p domain.PlaceReviews, m domain.ModerationStore, l domain.ListingStore) *ReviewService {
	return &ReviewService{hostaway: h, places: p, moderation: m, listings: l}
}

// ListHostaway leaves the date window to the adapter, which compares it
// against the provider's raw timestamps.
func (s *ReviewService) ListHostaway(ctx context.Context, q domain.HostawayQuery, f domain.ReviewFilter) (domain.ReviewsPage, error) {
	q.Limit, q.Offset = fetchWindow, 0
	page, err := s.hostaway.FetchReviews(ctx, q)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	f.From, f.To = "", ""
	return Apply(Merge(ctx, s.moderation, page.Items), f), nil
}

// ListPlaces resolves the place by id or through a listing slug. Channel,
// type and category filters do not apply to this source.
func (s *ReviewService) ListPlaces(ctx context.Context, req domain.PlacesRequest, f domain.ReviewFilter) (domain.PlacesPage, error) {
	placeID, err := s.placeID(ctx, req)
	if err != nil {
		return domain.PlacesPage{}, err
	}
	bundle, err := s.places.FetchPlaceReviews(ctx, placeID)
	if err != nil {
		return domain.PlacesPage{}, err
	}

	f.Channel, f.Type, f.CategoryName, f.CategoryMin = "", "", "", nil
	page := Apply(Merge(ctx, s.moderation, bundle.Items), f)
	return domain.PlacesPage{ReviewsPage: page, Place: bundle.Place}, nil
}

func (s *ReviewService) placeID(ctx context.Context, req domain.PlacesRequest) (string, error) {
	if id := strings.TrimSpace(req.PlaceID); id != "" {
		return id, nil
	}
	slug := strings.TrimSpace(req.ListingSlug)
	if slug == "" {
		return "", fmt.Errorf("placeId or listingSlug is required: %w", domain.ErrInvalidInput)
	}
	l, err := s.listings.ListingBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("listing %q: %w", slug, domain.ErrInvalidInput)
	}
	if err != nil {
		return "", err
	}
	if l.GooglePlaceID == nil || strings.TrimSpace(*l.GooglePlaceID) == "" {
		return "", fmt.Errorf("listing %q has no place id: %w", slug, domain.ErrInvalidInput)
	}
	return strings.TrimSpace(*l.GooglePlaceID), nil
}
