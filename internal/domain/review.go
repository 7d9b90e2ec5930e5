package domain

import "time"

type Source string

const (
	SourceHostaway Source = "hostaway"
	SourcePlaces   Source = "places"
)

// Review is the canonical, source-agnostic review shape.
// Approved and Pinned are only meaningful after the moderation merge.
type Review struct {
	ID          string             `json:"id"`
	Source      Source             `json:"source"`
	Channel     *string            `json:"channel"`
	Type        *string            `json:"type"`
	Rating      *float64           `json:"rating"`
	RatingRaw   *float64           `json:"ratingRaw"`
	Categories  map[string]float64 `json:"categories"`
	Text        string             `json:"text"`
	AuthorName  *string            `json:"authorName"`
	SubmittedAt *string            `json:"submittedAt"`
	Listing     *ListingRef        `json:"listing,omitempty"`
	SourceMeta  *SourceMeta        `json:"sourceMeta,omitempty"`
	Approved    bool               `json:"approved"`
	Pinned      bool               `json:"pinned"`
}

type ListingRef struct {
	ListingMapID *int   `json:"listingMapId"`
	Name         string `json:"name"`
}

type SourceMeta struct {
	AuthorURI       *string `json:"authorUri"`
	ProfilePhotoURI *string `json:"profilePhotoUri"`
}

type ReviewsPage struct {
	Count int      `json:"count"`
	Items []Review `json:"items"`
}

// Place is the provider-B summary returned next to its reviews.
type Place struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Rating          *float64 `json:"rating"`
	UserRatingCount *int     `json:"userRatingCount"`
}

type PlaceBundle struct {
	Place Place    `json:"place"`
	Items []Review `json:"items"`
}

type HostawayQuery struct {
	ListingMapID *int
	From, To     string
	Limit        int
	Offset       int
}

// CacheRecord holds a cached provider payload; expired records count as absent.
type CacheRecord struct {
	Key       string
	Payload   []byte
	ExpiresAt time.Time
}

func (c CacheRecord) Fresh(now time.Time) bool { return c.ExpiresAt.After(now) }
