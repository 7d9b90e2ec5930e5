package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flex_reviews/internal/domain"
)

// ListingInput is the writable part of a listing.
type ListingInput struct {
	Name          string  `json:"name" validate:"required,max=191"`
	Slug          string  `json:"slug" validate:"required,max=191,excludesall=/?#"`
	HostawayMapID *int    `json:"hostawayMapId" validate:"omitempty,gt=0"`
	GooglePlaceID *string `json:"googlePlaceId" validate:"omitempty,max=255"`
	Description   *string `json:"description"`
	Location      *string `json:"location" validate:"omitempty,max=255"`
}

func (in ListingInput) normalized() ListingInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.HostawayMapID != nil && *in.HostawayMapID == 0 {
		in.HostawayMapID = nil
	}
	in.GooglePlaceID = trimOrNil(in.GooglePlaceID)
	in.Description = trimOrNil(in.Description)
	in.Location = trimOrNil(in.Location)
	return in
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

const statsWorkers = 8

type ListingService struct {
	listings   domain.ListingStore
	moderation domain.ModerationStore
	validate   *validator.Validate
	now        func() time.Time
}

func NewListingService(l domain.ListingStore, m domain.ModerationStore) *ListingService {
	return &ListingService{
		listings:   l,
		moderation: m,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		now:        time.Now,
	}
}

func (s *ListingService) check(in ListingInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	return nil
}

// List returns every listing with its review stats, ordered by name.
func (s *ListingService) List(ctx context.Context) ([]domain.ListingWithStats, error) {
	ls, err := s.listings.ListListings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ListingWithStats, len(ls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsWorkers)
	for i, l := range ls {
		i, l := i, l
		out[i].Listing = l
		g.Go(func() error {
			st, err := s.moderation.ListingStats(gctx, l.ID)
			if err != nil {
				return fmt.Errorf("stats for %s: %w", l.ID, err)
			}
			out[i].ListingStats = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the listing and all of its approved reviews, pinned first, newest first.
func (s *ListingService) Get(ctx context.Context, slug string) (domain.ListingDetail, error) {
	l, err := s.listings.ListingBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return domain.ListingDetail{}, err
	}
	rs, err := s.moderation.ListApproved(ctx, l.ID, 0)
	if err != nil {
		return domain.ListingDetail{}, err
	}
	if rs == nil {
		rs = []domain.ModerationRecord{}
	}
	return domain.ListingDetail{Listing: l, Reviews: rs}, nil
}

func (s *ListingService) Create(ctx context.Context, in ListingInput) (domain.Listing, error) {
	in = in.normalized()
	if err := s.check(in); err != nil {
		return domain.Listing{}, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, ""); err != nil {
		return domain.Listing{}, err
	}
	now := s.now().UTC()
	l := domain.Listing{ID: uuid.NewString(), CreatedAt: now}
	apply(&l, in, now)
	if err := s.listings.CreateListing(ctx, l); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (s *ListingService) Update(ctx context.Context, id string, in ListingInput) (domain.Listing, error) {
	in = in.normalized()
	if err := s.check(in); err != nil {
		return domain.Listing{}, err
	}
	l, err := s.listings.ListingByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, id); err != nil {
		return domain.Listing{}, err
	}
	apply(&l, in, s.now().UTC())
	if err := s.listings.UpdateListing(ctx, l); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, id string) error {
	return s.listings.DeleteListing(ctx, strings.TrimSpace(id))
}

func (s *ListingService) ensureSlugFree(ctx context.Context, slug, exceptID string) error {
	taken, err := s.listings.SlugTaken(ctx, slug, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("slug %q already exists: %w", slug, domain.ErrConflict)
	}
	return nil
}

func apply(l *domain.Listing, in ListingInput, now time.Time) {
	l.Name = in.Name
	l.Slug = in.Slug
	l.HostawayMapID = in.HostawayMapID
	l.GooglePlaceID = in.GooglePlaceID
	l.Description = in.Description
	l.Location = in.Location
	l.UpdatedAt = now
}
