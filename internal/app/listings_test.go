package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func TestListingService_CreateValidatesAndRejectsDuplicates(t *testing.T) {
	svc := app.NewListingService(newMemListings(), newMemModeration())
	ctx := context.Background()

	l, err := svc.Create(ctx, app.ListingInput{Name: "  Shoreditch Heights ", Slug: " shoreditch-heights ", GooglePlaceID: sp("  ")})
	if err != nil {
		t.Fatal(err)
	}
	if l.ID == "" || l.Name != "Shoreditch Heights" || l.Slug != "shoreditch-heights" || l.GooglePlaceID != nil {
		t.Fatalf("unexpected listing %+v", l)
	}

	if _, err := svc.Create(ctx, app.ListingInput{Name: "Other", Slug: "shoreditch-heights"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate slug: %v", err)
	}
	if _, err := svc.Create(ctx, app.ListingInput{Name: "   ", Slug: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank name: %v", err)
	}
}

func TestListingService_UpdateAndDelete(t *testing.T) {
	store := newMemListings(
		domain.Listing{ID: "L1", Name: "One", Slug: "one"},
		domain.Listing{ID: "L2", Name: "Two", Slug: "two"},
	)
	svc := app.NewListingService(store, newMemModeration())
	ctx := context.Background()

	l, err := svc.Update(ctx, "L1", app.ListingInput{Name: "One", Slug: "one"})
	if err != nil || l.Slug != "one" {
		t.Fatalf("keeping own slug: %v", err)
	}
	if _, err := svc.Update(ctx, "L1", app.ListingInput{Name: "One", Slug: "two"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("taking another slug: %v", err)
	}
	if _, err := svc.Update(ctx, "nope", app.ListingInput{Name: "x", Slug: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing listing: %v", err)
	}
	if err := svc.Delete(ctx, "L2"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "L2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListingService_ListWithStats(t *testing.T) {
	mod := newMemModeration()
	mod.recs["a"] = domain.ModerationRecord{ID: "a", ListingID: sp("L1"), Rating: fp(4)}
	mod.recs["b"] = domain.ModerationRecord{ID: "b", ListingID: sp("L1"), Rating: fp(5)}
	mod.recs["c"] = domain.ModerationRecord{ID: "c", ListingID: sp("L1")}

	svc := app.NewListingService(newMemListings(
		domain.Listing{ID: "L1", Slug: "one"},
		domain.Listing{ID: "L2", Slug: "two"},
	), mod)
	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ReviewsCount != 3 || *got[0].AverageRating != 4.5 {
		t.Fatalf("stats L1 = %+v", got[0].ListingStats)
	}
	if got[1].ReviewsCount != 0 || got[1].AverageRating != nil {
		t.Fatalf("stats L2 = %+v", got[1].ListingStats)
	}
}

func TestListingService_GetOrdersPinnedFirst(t *testing.T) {
	mod := newMemModeration()
	mod.recs["a"] = domain.ModerationRecord{ID: "a", ListingID: sp("L1"), Approved: true}
	mod.recs["b"] = domain.ModerationRecord{ID: "b", ListingID: sp("L1"), Approved: true, Pinned: true}
	mod.recs["c"] = domain.ModerationRecord{ID: "c", ListingID: sp("L1")}

	svc := app.NewListingService(newMemListings(domain.Listing{ID: "L1", Slug: "one"}), mod)
	d, err := svc.Get(context.Background(), "one")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Reviews) != 2 || d.Reviews[0].ID != "b" {
		t.Fatalf("reviews = %+v", d.Reviews)
	}
	if _, err := svc.Get(context.Background(), "zzz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown slug: %v", err)
	}
}

func TestListingService_SEO(t *testing.T) {
	mod := newMemModeration()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, r := range []*float64{fp(4), fp(5), fp(4), nil} {
		id := string(rune('a' + i))
		mod.recs[id] = domain.ModerationRecord{ID: id, ListingID: sp("L1"), Approved: true, Rating: r, Text: sp("nice"), AuthorName: sp("Ann"), SubmittedAt: &at}
	}
	svc := app.NewListingService(newMemListings(domain.Listing{ID: "L1", Name: "Shoreditch", Slug: "shoreditch heights"}), mod)

	doc, err := svc.SEO(context.Background(), "shoreditch heights")
	if err != nil {
		t.Fatal(err)
	}
	if doc.URL != "https://theflex.global/properties/shoreditch%20heights" {
		t.Fatalf("url = %s", doc.URL)
	}
	if doc.AggregateRating == nil || doc.AggregateRating.RatingValue != 4.3 || doc.AggregateRating.ReviewCount != 3 {
		t.Fatalf("aggregate = %+v", doc.AggregateRating)
	}
	if len(doc.Review) != 4 || doc.Review[0].Author.Name != "Ann" || doc.Review[0].DatePublished != "2024-01-02T03:04:05Z" {
		t.Fatalf("reviews = %+v", doc.Review)
	}

	b, _ := json.Marshal(doc)
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	if raw["@context"] != "https://schema.org" || raw["@type"] != "LodgingBusiness" {
		t.Fatalf("json-ld header = %s", b)
	}
}

func TestListingService_SEOWithoutRatings(t *testing.T) {
	svc := app.NewListingService(newMemListings(domain.Listing{ID: "L1", Slug: "one"}), newMemModeration())
	doc, err := svc.SEO(context.Background(), "one")
	if err != nil {
		t.Fatal(err)
	}
	if doc.AggregateRating != nil || doc.Review != nil || doc.Name != "one" {
		t.Fatalf("doc = %+v", doc)
	}
}
