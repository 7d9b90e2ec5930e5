package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"flex_reviews/internal/domain"
)

const listingColumns = `id, name, slug, hostaway_map_id, google_place_id, description, location, created_at, updated_at`

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(&l.ID, &l.Name, &l.Slug, &l.HostawayMapID, &l.GooglePlaceID,
		&l.Description, &l.Location, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return domain.Listing{}, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return l, nil
}

func (r *Repo) listingWhere(ctx context.Context, col, v string) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRow(ctx, "SELECT "+listingColumns+" FROM listings WHERE "+col+" = $1", v))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Listing{}, fmt.Errorf("listing %s=%q: %w", col, v, domain.ErrNotFound)
	}
	return l, err
}

func (r *Repo) ListingBySlug(ctx context.Context, slug string) (domain.Listing, error) {
	return r.listingWhere(ctx, "slug", slug)
}

func (r *Repo) ListingByID(ctx context.Context, id string) (domain.Listing, error) {
	return r.listingWhere(ctx, "id", id)
}

func (r *Repo) ListListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx, "SELECT "+listingColumns+" FROM listings ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) CreateListing(ctx context.Context, l domain.Listing) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO listings (`+listingColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.Name, l.Slug, l.HostawayMapID, l.GooglePlaceID, l.Description, l.Location, l.CreatedAt, l.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("slug %q: %w", l.Slug, domain.ErrConflict)
	}
	return err
}

func (r *Repo) UpdateListing(ctx context.Context, l domain.Listing) error {
	tag, err := r.db.Exec(ctx, `
UPDATE listings
SET name = $1, slug = $2, hostaway_map_id = $3, google_place_id = $4, description = $5, location = $6, updated_at = $7
WHERE id = $8`,
		l.Name, l.Slug, l.HostawayMapID, l.GooglePlaceID, l.Description, l.Location, l.UpdatedAt, l.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("slug %q: %w", l.Slug, domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %q: %w", l.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) DeleteListing(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM listings WHERE slug = $1 AND id <> $2)`, slug, exceptID).Scan(&taken)
	return taken, err
}
