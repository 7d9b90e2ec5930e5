package httpserver

import (
	"net/http"

	"flex_reviews/internal/app"
)

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	ls, err := h.Listings.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/json", success{Status: "success", Result: ls})
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	d, err := h.Listings.Get(r.Context(), pathParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/json", success{Status: "success", Result: d})
}

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	var in app.ListingInput
	if err := h.decodeBody(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.Listings.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, success{Status: "success", Result: l})
}

func (h *Handlers) updateListing(w http.ResponseWriter, r *http.Request) {
	var in app.ListingInput
	if err := h.decodeBody(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.Listings.Update(r.Context(), pathParam(r, "key"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success{Status: "success", Result: l})
}

func (h *Handlers) deleteListing(w http.ResponseWriter, r *http.Request) {
	if err := h.Listings.Delete(r.Context(), pathParam(r, "key")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Listing deleted successfully"})
}

func (h *Handlers) seoReviews(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Listings.SEO(r.Context(), pathParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeCached(w, r, "application/ld+json; charset=utf-8", doc)
}
