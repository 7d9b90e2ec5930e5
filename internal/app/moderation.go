package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

type ModerationService struct {
	store    domain.ModerationStore
	listings domain.ListingStore
	workers  int
}

func NewModerationService(store domain.ModerationStore, listings domain.ListingStore, workers int) *ModerationService {
	if workers <= 0 {
		workers = 4
	}
	return &ModerationService{store: store, listings: listings, workers: workers}
}

// Patch creates or sparsely updates the moderation record for id.
func (s *ModerationService) Patch(ctx context.Context, id string, p domain.ModerationPatch) (domain.ModerationRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ModerationRecord{}, fmt.Errorf("review id: %w", domain.ErrInvalidInput)
	}
	u, err := s.resolve(ctx, p)
	if err != nil {
		return domain.ModerationRecord{}, err
	}
	return s.upsert(ctx, id, u)
}

func (s *ModerationService) upsert(ctx context.Context, id string, u domain.ModerationUpdate) (domain.ModerationRecord, error) {
	rec, err := s.store.UpsertModeration(ctx, id, u)
	observability.ObserveModerationWrite(err)
	if err != nil {
		return domain.ModerationRecord{}, fmt.Errorf("upsert moderation %s: %w", id, err)
	}
	return rec, nil
}

// resolve turns a client patch into store columns: listingSlug becomes a
// listingId when no id was given, and submittedAt is parsed.
func (s *ModerationService) resolve(ctx context.Context, p domain.ModerationPatch) (domain.ModerationUpdate, error) {
	// these columns are NOT NULL
	switch {
	case p.Approved.Null:
		return domain.ModerationUpdate{}, fmt.Errorf("approved must not be null: %w", domain.ErrInvalidInput)
	case p.Pinned.Null:
		return domain.ModerationUpdate{}, fmt.Errorf("pinned must not be null: %w", domain.ErrInvalidInput)
	case p.Source.Null:
		return domain.ModerationUpdate{}, fmt.Errorf("source must not be null: %w", domain.ErrInvalidInput)
	}
	u := domain.ModerationUpdate{
		Approved:     p.Approved,
		Pinned:       p.Pinned,
		ListingID:    p.ListingID,
		Source:       p.Source,
		Channel:      p.Channel,
		Type:         p.Type,
		Rating:       p.Rating,
		RatingRaw:    p.RatingRaw,
		Categories:   p.Categories,
		Text:         p.Text,
		LanguageCode: p.LanguageCode,
		AuthorName:   p.AuthorName,
	}

	hasID := p.ListingID.Set && !p.ListingID.Null && p.ListingID.Value != ""
	slug := strings.TrimSpace(p.ListingSlug.Value)
	if !hasID && !p.ListingSlug.Null && slug != "" && s.listings != nil {
		l, err := s.listings.ListingBySlug(ctx, slug)
		switch {
		case err == nil:
			u.ListingID = domain.Some(l.ID)
		case errors.Is(err, domain.ErrNotFound):
			log.Debug().Str("slug", slug).Msg("listing slug not found, saving without listing")
		default:
			log.Warn().Err(err).Str("slug", slug).Msg("listing slug lookup failed, saving without listing")
		}
	}

	if p.SubmittedAt.Set {
		v := strings.TrimSpace(p.SubmittedAt.Value)
		if p.SubmittedAt.Null || v == "" {
			u.SubmittedAt = domain.Null[time.Time]()
		} else {
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return domain.ModerationUpdate{}, fmt.Errorf("submittedAt %q: %w", v, domain.ErrInvalidInput)
			}
			u.SubmittedAt = domain.Some(t.UTC())
		}
	}
	return u, nil
}

type BulkResult struct {
	ID     string                   `json:"id"`
	OK     bool                     `json:"ok"`
	Error  string                   `json:"error,omitempty"`
	Result *domain.ModerationRecord `json:"result,omitempty"`
}

// Bulk applies the same patch to every id as independent upserts.
// A failing id does not stop or roll back the others.
func (s *ModerationService) Bulk(ctx context.Context, ids []string, p domain.ModerationPatch) ([]BulkResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids: %w", domain.ErrInvalidInput)
	}
	u, err := s.resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	results := make([]BulkResult, len(ids))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, raw := range ids {
		i := i
		id := strings.TrimSpace(raw)
		results[i].ID = id
		if id == "" {
			results[i].Error = "empty id"
			continue
		}
		g.Go(func() error {
			rec, err := s.upsert(ctx, id, u)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].OK = true
			results[i].Result = &rec
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}
