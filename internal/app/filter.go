package app

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"flex_reviews/internal/domain"
)

// Apply filters, sorts and windows items. Count is the filtered total before the window.
func Apply(items []domain.Review, f domain.ReviewFilter) domain.ReviewsPage {
	kept := make([]domain.Review, 0, len(items))
	for _, r := range items {
		if matches(r, f) {
			kept = append(kept, r)
		}
	}

	sortReviews(kept, f.Sort)

	offset, limit := f.Offset, f.Limit
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	page := domain.ReviewsPage{Count: len(kept), Items: []domain.Review{}}
	if offset >= len(kept) {
		return page
	}
	end := min(offset+limit, len(kept))
	page.Items = kept[offset:end]
	return page
}

func matches(r domain.Review, f domain.ReviewFilter) bool {
	if f.Approved != nil && r.Approved != *f.Approved {
		return false
	}
	if f.Pinned != nil && r.Pinned != *f.Pinned {
		return false
	}
	// unrated reviews pass both rating bounds
	if r.Rating != nil {
		if f.RatingMin != nil && *r.Rating < *f.RatingMin {
			return false
		}
		if f.RatingMax != nil && *r.Rating > *f.RatingMax {
			return false
		}
	}
	if r.SubmittedAt != nil {
		if f.From != "" && *r.SubmittedAt < f.From {
			return false
		}
		if f.To != "" && *r.SubmittedAt > f.To {
			return false
		}
	}
	if f.Channel != "" && (r.Channel == nil || *r.Channel != f.Channel) {
		return false
	}
	if f.Type != "" && (r.Type == nil || *r.Type != f.Type) {
		return false
	}
	if f.CategoryName != "" {
		v, ok := r.Categories[f.CategoryName]
		if !ok {
			return false
		}
		if f.CategoryMin != nil && v < *f.CategoryMin {
			return false
		}
	}
	return true
}

func sortReviews(items []domain.Review, mode string) {
	var less func(a, b domain.Review) bool
	switch mode {
	case domain.SortDateAsc:
		less = func(a, b domain.Review) bool { return str(a.SubmittedAt) < str(b.SubmittedAt) }
	case domain.SortRatingDesc:
		less = func(a, b domain.Review) bool { return rating(a) > rating(b) }
	case domain.SortRatingAsc:
		less = func(a, b domain.Review) bool { return rating(a) < rating(b) }
	case domain.SortChannelAZ, domain.SortChannelZA:
		// Collators keep internal buffers and are not safe for concurrent use.
		col := collate.New(language.English)
		sign := 1
		if mode == domain.SortChannelZA {
			sign = -1
		}
		less = func(a, b domain.Review) bool {
			return sign*col.CompareString(str(a.Channel), str(b.Channel)) < 0
		}
	default:
		less = func(a, b domain.Review) bool { return str(a.SubmittedAt) > str(b.SubmittedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// rating orders unrated reviews below every rated one in both directions.
func rating(r domain.Review) float64 {
	if r.Rating == nil {
		return math.Inf(-1)
	}
	return *r.Rating
}
