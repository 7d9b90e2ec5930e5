package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flex_reviews/internal/domain"
)

func scanListing(s rowScanner) (domain.Listing, error) {
	var (
		l                       domain.Listing
		mapID                   sql.NullInt64
		placeID, desc, location sql.NullString
	)
	if err := s.Scan(&l.ID, &l.Name, &l.Slug, &mapID, &placeID, &desc, &location, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return domain.Listing{}, err
	}
	if mapID.Valid {
		v := int(mapID.Int64)
		l.HostawayMapID = &v
	}
	l.GooglePlaceID = strPtr(placeID)
	l.Description = strPtr(desc)
	l.Location = strPtr(location)
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return l, nil
}

func (r *Repo) listingWhere(ctx context.Context, col, v string) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, "SELECT "+listingColumns+" FROM listings WHERE "+col+" = ?", v))
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := r.db.QueryContext(ctx, "SELECT "+listingColumns+" FROM listings ORDER BY name, id")
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
	_, err := r.db.ExecContext(ctx, insertListingSQL,
		l.ID, l.Name, l.Slug,
		valInt(l.HostawayMapID),
		valStr(l.GooglePlaceID),
		valStr(l.Description),
		valStr(l.Location),
		l.CreatedAt, l.UpdatedAt,
	)
	if isDuplicate(err) {
		return fmt.Errorf("slug %q: %w", l.Slug, domain.ErrConflict)
	}
	return err
}

func (r *Repo) UpdateListing(ctx context.Context, l domain.Listing) error {
	res, err := r.db.ExecContext(ctx, updateListingSQL,
		l.Name, l.Slug,
		valInt(l.HostawayMapID),
		valStr(l.GooglePlaceID),
		valStr(l.Description),
		valStr(l.Location),
		l.UpdatedAt, l.ID,
	)
	if isDuplicate(err) {
		return fmt.Errorf("slug %q: %w", l.Slug, domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows for no-op updates, so confirm existence separately.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.ListingByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) DeleteListing(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("listing %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, slugTakenSQL, slug, exceptID).Scan(&taken)
	return taken, err
}
