package domain

import "time"

type Listing struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	HostawayMapID *int      `json:"hostawayMapId"`
	GooglePlaceID *string   `json:"googlePlaceId"`
	Description   *string   `json:"description,omitempty"`
	Location      *string   `json:"location,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ListingStats struct {
	ReviewsCount  int        `json:"reviewsCount"`
	AverageRating *float64   `json:"averageRating"`
	LastSync      *time.Time `json:"lastSync"`
}

type ListingWithStats struct {
	Listing
	ListingStats
}

type ListingDetail struct {
	Listing Listing            `json:"listing"`
	Reviews []ModerationRecord `json:"reviews"`
}
