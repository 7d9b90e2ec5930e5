package hostaway

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

// RawReview is one review as the provider (or the fixture file) delivers it.
type RawReview struct {
	ID             RawID         `json:"id"`
	Type           string        `json:"type"`
	Status         string        `json:"status"`
	Rating         *float64      `json:"rating"`
	ReviewCategory []RawCategory `json:"reviewCategory"`
	SubmittedAt    string        `json:"submittedAt"`
	GuestName      *string       `json:"guestName"`
	ListingName    *string       `json:"listingName"`
	ChannelID      *int          `json:"channelId"`
	PublicReview   *string       `json:"publicReview"`
	ListingMapID   *int          `json:"listingMapId"`
}

type RawCategory struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// RawID accepts both numeric and string ids.
type RawID string

func (id *RawID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RawID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = RawID(n.String())
	return nil
}

var channels = map[int]string{
	2005: "airbnb",
	2002: "booking",
	2004: "vrbo",
}

// isoMillis matches the ISO-8601 shape the dashboard and embeds already consume.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Normalize maps a raw review into the canonical shape.
func Normalize(r RawReview) domain.Review {
	categories := make(map[string]float64, len(r.ReviewCategory))
	for _, c := range r.ReviewCategory {
		categories[c.Category] = c.Rating
	}

	raw := r.Rating
	if raw == nil && len(r.ReviewCategory) > 0 {
		var sum float64
		for _, c := range r.ReviewCategory {
			sum += c.Rating
		}
		avg := sum / float64(len(r.ReviewCategory))
		raw = &avg
	}
	var rating *float64
	if raw != nil {
		v := clamp(math.Round((*raw/2)*10)/10, 0, 5)
		rating = &v
	}

	channel := string(domain.SourceHostaway)
	if r.ChannelID != nil {
		if c, ok := channels[*r.ChannelID]; ok {
			channel = c
		}
	}

	name := "Unknown"
	if r.ListingName != nil {
		name = *r.ListingName
	}

	rv := domain.Review{
		ID:          string(domain.SourceHostaway) + ":" + string(r.ID),
		Source:      domain.SourceHostaway,
		Channel:     &channel,
		Rating:      rating,
		RatingRaw:   raw,
		Categories:  categories,
		AuthorName:  r.GuestName,
		SubmittedAt: normalizeTime(r.SubmittedAt),
		Listing:     &domain.ListingRef{ListingMapID: r.ListingMapID, Name: name},
	}
	if r.Type != "" {
		t := r.Type
		rv.Type = &t
	}
	if r.PublicReview != nil {
		rv.Text = *r.PublicReview
	}
	return rv
}

// normalizeTime reads the provider's zone-less "YYYY-MM-DD HH:MM:SS" as UTC.
func normalizeTime(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			out := t.UTC().Format(isoMillis)
			return &out
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
