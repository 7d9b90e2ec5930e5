package httpserver

import (
	"net/http"
	"strings"

	"flex_reviews/internal/domain"
)

type pageResult struct {
	Items []domain.Review `json:"items"`
	Total int             `json:"total"`
}

type reviewsResponse struct {
	Status string     `json:"status"`
	Count  int        `json:"count"`
	Result pageResult `json:"result"`
}

type attribution struct {
	Provider string `json:"provider"`
	Logo     bool   `json:"logo"`
}

type placesResponse struct {
	reviewsResponse
	Place       domain.Place `json:"place"`
	Attribution attribution  `json:"attribution"`
}

func newReviewsResponse(p domain.ReviewsPage) reviewsResponse {
	return reviewsResponse{Status: "success", Count: p.Count, Result: pageResult{Items: p.Items, Total: p.Count}}
}

func (h *Handlers) listHostaway(w http.ResponseWriter, r *http.Request) {
	p := &queryParser{q: r.URL.Query()}
	f := p.reviewFilter()
	hq := domain.HostawayQuery{From: f.From, To: f.To}
	if id := p.intIn("listingMapId", 0, 0, 1<<31-1); id != 0 {
		hq.ListingMapID = &id
	}
	if err := p.err(); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Reviews.ListHostaway(r.Context(), hq, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/json", newReviewsResponse(page))
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	p := &queryParser{q: r.URL.Query()}
	f := p.reviewFilter()
	req := domain.PlacesRequest{PlaceID: p.str("placeId"), ListingSlug: p.str("listingSlug")}
	if err := p.err(); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Reviews.ListPlaces(r.Context(), req, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/json", placesResponse{
		reviewsResponse: newReviewsResponse(page.ReviewsPage),
		Place:           page.Place,
		Attribution:     attribution{Provider: "Google", Logo: true},
	})
}

func (h *Handlers) patchReview(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(pathParam(r, "id"))
	var patch domain.ModerationPatch
	if err := h.decodeBody(w, r, &patch, false); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.Moderation.Patch(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success{Status: "success", Result: rec})
}

type bulkRequest struct {
	IDs      []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
	Approved *bool    `json:"approved" validate:"required_without=Pinned"`
	Pinned   *bool    `json:"pinned"`
}

func (h *Handlers) bulkModerate(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := h.decodeBody(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.ModerationPatch
	if req.Approved != nil {
		patch.Approved = domain.Some(*req.Approved)
	}
	if req.Pinned != nil {
		patch.Pinned = domain.Some(*req.Pinned)
	}

	results, err := h.Moderation.Bulk(r.Context(), req.IDs, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	failed := 0
	for _, res := range results {
		if !res.OK {
			failed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "failed": failed, "result": results})
}
