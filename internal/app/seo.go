package app

import (
	"context"
	"math"
	"net/url"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

const (
	seoReviewLimit = 50
	seoEmbedLimit  = 25
	propertyURL    = "https://theflex.global/properties/"
)

// JSON-LD (schema.org) shapes for a property page.

type LodgingBusiness struct {
	Context         string           `json:"@context"`
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	URL             string           `json:"url"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
	Review          []LDReview       `json:"review,omitempty"`
}

type AggregateRating struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	ReviewCount int     `json:"reviewCount"`
	BestRating  int     `json:"bestRating"`
	WorstRating int     `json:"worstRating"`
}

type LDReview struct {
	Type          string    `json:"@type"`
	ReviewBody    string    `json:"reviewBody,omitempty"`
	DatePublished string    `json:"datePublished,omitempty"`
	Author        *LDPerson `json:"author,omitempty"`
	ReviewRating  *LDRating `json:"reviewRating,omitempty"`
}

type LDPerson struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type LDRating struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	BestRating  int     `json:"bestRating"`
	WorstRating int     `json:"worstRating"`
}

// SEO builds the structured-data document for a listing's public page.
func (s *ListingService) SEO(ctx context.Context, slug string) (LodgingBusiness, error) {
	slug = strings.TrimSpace(slug)
	l, err := s.listings.ListingBySlug(ctx, slug)
	if err != nil {
		return LodgingBusiness{}, err
	}
	rs, err := s.moderation.ListApproved(ctx, l.ID, seoReviewLimit)
	if err != nil {
		return LodgingBusiness{}, err
	}
	return buildJSONLD(l, rs), nil
}

func buildJSONLD(l domain.Listing, rs []domain.ModerationRecord) LodgingBusiness {
	name := l.Name
	if name == "" {
		name = l.Slug
	}
	doc := LodgingBusiness{
		Context: "https://schema.org",
		Type:    "LodgingBusiness",
		Name:    name,
		URL:     propertyURL + url.PathEscape(l.Slug),
	}

	var sum float64
	var rated int
	for _, r := range rs {
		if r.Rating != nil {
			sum += *r.Rating
			rated++
		}
	}
	if rated > 0 {
		doc.AggregateRating = &AggregateRating{
			Type:        "AggregateRating",
			RatingValue: math.Round(sum/float64(rated)*10) / 10,
			ReviewCount: rated,
			BestRating:  5,
			WorstRating: 1,
		}
	}

	if len(rs) > seoEmbedLimit {
		rs = rs[:seoEmbedLimit]
	}
	for _, r := range rs {
		rv := LDReview{Type: "Review"}
		if r.Text != nil {
			rv.ReviewBody = *r.Text
		}
		if r.SubmittedAt != nil {
			rv.DatePublished = r.SubmittedAt.UTC().Format(time.RFC3339)
		}
		if r.AuthorName != nil && *r.AuthorName != "" {
			rv.Author = &LDPerson{Type: "Person", Name: *r.AuthorName}
		}
		if r.Rating != nil {
			rv.ReviewRating = &LDRating{Type: "Rating", RatingValue: *r.Rating, BestRating: 5, WorstRating: 1}
		}
		doc.Review = append(doc.Review, rv)
	}
	return doc
}
