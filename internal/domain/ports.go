package domain

import "context"

type ModerationStore interface {
	// FindModeration returns the states of the ids that have a record; missing ids are simply absent.
	FindModeration(ctx context.Context, ids []string) ([]ModerationState, error)
	UpsertModeration(ctx context.Context, id string, u ModerationUpdate) (ModerationRecord, error)
	ListApproved(ctx context.Context, listingID string, limit int) ([]ModerationRecord, error)
	ListingStats(ctx context.Context, listingID string) (ListingStats, error)
}

type ListingStore interface {
	ListingBySlug(ctx context.Context, slug string) (Listing, error)
	ListingByID(ctx context.Context, id string) (Listing, error)
	ListListings(ctx context.Context) ([]Listing, error)
	CreateListing(ctx context.Context, l Listing) error
	UpdateListing(ctx context.Context, l Listing) error
	DeleteListing(ctx context.Context, id string) error
	// SlugTaken reports whether slug belongs to a listing other than exceptID.
	SlugTaken(ctx context.Context, slug, exceptID string) (bool, error)
}

type CacheStore interface {
	GetCache(ctx context.Context, key string) (CacheRecord, bool, error)
	PutCache(ctx context.Context, rec CacheRecord) error
}

type HostawayReviews interface {
	FetchReviews(ctx context.Context, q HostawayQuery) (ReviewsPage, error)
}

type PlaceReviews interface {
	FetchPlaceReviews(ctx context.Context, placeID string) (PlaceBundle, error)
}

// Read models & queries

// ReviewFilter is the declarative filter/sort/window applied to merged reviews.
// A nil pointer or empty string means the filter is inactive.
type ReviewFilter struct {
	Approved     *bool
	Pinned       *bool
	RatingMin    *float64
	RatingMax    *float64
	From, To     string
	Channel      string
	Type         string
	CategoryName string
	CategoryMin  *float64
	Sort         string
	Limit        int
	Offset       int
}

const (
	SortDateDesc   = "date_desc"
	SortDateAsc    = "date_asc"
	SortRatingDesc = "rating_desc"
	SortRatingAsc  = "rating_asc"
	SortChannelAZ  = "channel_az"
	SortChannelZA  = "channel_za"

	DefaultLimit = 50
)

type PlacesRequest struct {
	PlaceID     string
	ListingSlug string
}

type PlacesPage struct {
	ReviewsPage
	Place Place
}
