// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct {
	Reviews    *app.ReviewService
	Moderation *app.ModerationService
	Listings   *app.ListingService

	validate *validator.Validate
}

func NewHandlers(r *app.ReviewService, m *app.ModerationService, l *app.ListingService) *Handlers {
	return &Handlers{Reviews: r, Moderation: m, Listings: l, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// MountHandlers registers the API. Listing and SEO routes are read by
// property pages and embeds on other origins, so they carry CORS headers.
func (s *Server) MountHandlers(h *Handlers, origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	public := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         86400,
	})

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api/reviews", func(r chi.Router) {
		r.Get("/hostaway", h.listHostaway)
		r.Get("/places", h.listPlaces)
		r.Post("/bulk", h.bulkModerate)
		r.Patch("/{id}", h.patchReview)
	})
	s.mux.Route("/api/listings", func(r chi.Router) {
		r.Use(public)
		r.Get("/", h.listListings)
		r.Post("/", h.createListing)
		// {key} is the slug on reads and the id on writes.
		r.Get("/{key}", h.getListing)
		r.Patch("/{key}", h.updateListing)
		r.Delete("/{key}", h.deleteListing)
	})
	s.mux.Route("/api/seo", func(r chi.Router) {
		r.Use(public)
		r.Get("/reviews/{key}", h.seoReviews)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain sentinels to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", err.Error())
	case errors.Is(err, domain.ErrConfig):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("missing configuration")
		writeProblem(w, http.StatusInternalServerError, "Service Misconfigured", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v with a weak ETag, answering 304 when the client already has it.
func writeCached(w http.ResponseWriter, r *http.Request, contentType string, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

// decodeBody reads a JSON body into dst and validates struct tags when asked.
func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, dst any, validate bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body (%v): %w", err, domain.ErrInvalidInput)
	}
	if validate {
		if err := h.validate.Struct(dst); err != nil {
			return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
		}
	}
	return nil
}

type success struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}
