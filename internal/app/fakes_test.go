package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"flex_reviews/internal/domain"
)

// ---- fakes ----

type memModeration struct {
	mu      sync.Mutex
	recs    map[string]domain.ModerationRecord
	findErr error
	failIDs map[string]bool
	lastU   domain.ModerationUpdate
	finds   int
}

func newMemModeration() *memModeration {
	return &memModeration{recs: map[string]domain.ModerationRecord{}, failIDs: map[string]bool{}}
}

func (m *memModeration) FindModeration(_ context.Context, ids []string) ([]domain.ModerationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []domain.ModerationState
	for _, id := range ids {
		if r, ok := m.recs[id]; ok {
			out = append(out, domain.ModerationState{ID: id, Approved: r.Approved, Pinned: r.Pinned})
		}
	}
	return out, nil
}

func (m *memModeration) UpsertModeration(_ context.Context, id string, u domain.ModerationUpdate) (domain.ModerationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastU = u
	if m.failIDs[id] {
		return domain.ModerationRecord{}, errors.New("write failed")
	}
	r, ok := m.recs[id]
	if !ok {
		r = domain.ModerationRecord{ID: id, Source: u.CreateSource(), CreatedAt: time.Unix(0, 0)}
	} else if u.HasSource() {
		r.Source = u.Source.Value
	}
	if u.Approved.Set {
		r.Approved = u.Approved.Value
	}
	if u.Pinned.Set {
		r.Pinned = u.Pinned.Value
	}
	if u.ListingID.Set {
		r.ListingID = optPtr(u.ListingID)
	}
	if u.Rating.Set {
		r.Rating = optPtr(u.Rating)
	}
	if u.Text.Set {
		r.Text = optPtr(u.Text)
	}
	if u.AuthorName.Set {
		r.AuthorName = optPtr(u.AuthorName)
	}
	if u.SubmittedAt.Set {
		r.SubmittedAt = optPtr(u.SubmittedAt)
	}
	m.recs[id] = r
	return r, nil
}

func (m *memModeration) ListApproved(_ context.Context, listingID string, limit int) ([]domain.ModerationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ModerationRecord
	for _, r := range m.recs {
		if r.Approved && r.ListingID != nil && *r.ListingID == listingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memModeration) ListingStats(_ context.Context, listingID string) (domain.ListingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st domain.ListingStats
	var sum float64
	var n int
	for _, r := range m.recs {
		if r.ListingID == nil || *r.ListingID != listingID {
			continue
		}
		st.ReviewsCount++
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		st.AverageRating = &avg
	}
	return st, nil
}

func optPtr[T any](o domain.Opt[T]) *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}

type memListings struct {
	mu    sync.Mutex
	byID  map[string]domain.Listing
	order []string
}

func newMemListings(ls ...domain.Listing) *memListings {
	m := &memListings{byID: map[string]domain.Listing{}}
	for _, l := range ls {
		m.byID[l.ID] = l
		m.order = append(m.order, l.ID)
	}
	return m
}

func (m *memListings) ListingBySlug(_ context.Context, slug string) (domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.byID {
		if l.Slug == slug {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrNotFound
}

func (m *memListings) ListingByID(_ context.Context, id string) (domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.byID[id]; ok {
		return l, nil
	}
	return domain.Listing{}, domain.ErrNotFound
}

func (m *memListings) ListListings(context.Context) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Listing, 0, len(m.order))
	for _, id := range m.order {
		if l, ok := m.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memListings) CreateListing(_ context.Context, l domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[l.ID] = l
	m.order = append(m.order, l.ID)
	return nil
}

func (m *memListings) UpdateListing(_ context.Context, l domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[l.ID]; !ok {
		return domain.ErrNotFound
	}
	m.byID[l.ID] = l
	return nil
}

func (m *memListings) DeleteListing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memListings) SlugTaken(_ context.Context, slug, exceptID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, l := range m.byID {
		if l.Slug == slug && id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

type fakeHostaway struct {
	page domain.ReviewsPage
	q    domain.HostawayQuery
}

func (f *fakeHostaway) FetchReviews(_ context.Context, q domain.HostawayQuery) (domain.ReviewsPage, error) {
	f.q = q
	return f.page, nil
}

type fakePlaces struct {
	bundle domain.PlaceBundle
	err    error
	gotID  string
}

func (f *fakePlaces) FetchPlaceReviews(_ context.Context, placeID string) (domain.PlaceBundle, error) {
	f.gotID = placeID
	return f.bundle, f.err
}

func sp(s string) *string   { return &s }
func fp(f float64) *float64 { return &f }
func bp(b bool) *bool       { return &b }
