package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"flex_reviews/internal/domain"
)

const reviewColumns = `id, listing_id, source, channel, type, rating, rating_raw, categories, text,
language_code, author_name, submitted_at, approved, pinned, created_at, updated_at`

func scanRecord(row pgx.Row) (domain.ModerationRecord, error) {
	var (
		rec        domain.ModerationRecord
		categories []byte
	)
	if err := row.Scan(
		&rec.ID, &rec.ListingID, &rec.Source, &rec.Channel, &rec.Type,
		&rec.Rating, &rec.RatingRaw, &categories, &rec.Text, &rec.LanguageCode, &rec.AuthorName,
		&rec.SubmittedAt, &rec.Approved, &rec.Pinned, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return domain.ModerationRecord{}, err
	}
	if len(categories) > 0 {
		rec.Categories = categories
	}
	if rec.SubmittedAt != nil {
		t := rec.SubmittedAt.UTC()
		rec.SubmittedAt = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (r *Repo) FindModeration(ctx context.Context, ids []string) ([]domain.ModerationState, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, approved, pinned FROM reviews WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find moderation: %w", err)
	}
	defer rows.Close()

	var out []domain.ModerationState
	for rows.Next() {
		var st domain.ModerationState
		if err := rows.Scan(&st.ID, &st.Approved, &st.Pinned); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpsertModeration inserts the row or updates only the columns present in u.
func (r *Repo) UpsertModeration(ctx context.Context, id string, u domain.ModerationUpdate) (domain.ModerationRecord, error) {
	cols := []string{"id", "source"}
	args := []any{id, u.CreateSource()}
	updates := []string{"updated_at = now()"}
	if u.HasSource() {
		updates = append(updates, "source = EXCLUDED.source")
	}

	add := func(col string, set bool, v any) {
		if !set {
			return
		}
		cols = append(cols, col)
		args = append(args, v)
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	add("approved", u.Approved.Set, valOpt(u.Approved))
	add("pinned", u.Pinned.Set, valOpt(u.Pinned))
	add("listing_id", u.ListingID.Set, valOpt(u.ListingID))
	add("channel", u.Channel.Set, valOpt(u.Channel))
	add("type", u.Type.Set, valOpt(u.Type))
	add("rating", u.Rating.Set, valOpt(u.Rating))
	add("rating_raw", u.RatingRaw.Set, valOpt(u.RatingRaw))
	add("categories", u.Categories.Set, valJSON(u.Categories))
	add("text", u.Text.Set, valOpt(u.Text))
	add("language_code", u.LanguageCode.Set, valOpt(u.LanguageCode))
	add("author_name", u.AuthorName.Set, valOpt(u.AuthorName))
	add("submitted_at", u.SubmittedAt.Set, valOpt(u.SubmittedAt))

	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	q := "INSERT INTO reviews (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(ph, ", ") +
		") ON CONFLICT (id) DO UPDATE SET " + strings.Join(updates, ", ") + " RETURNING " + reviewColumns

	rec, err := scanRecord(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return domain.ModerationRecord{}, fmt.Errorf("upsert review %s: %w", id, err)
	}
	return rec, nil
}

// ListApproved returns approved records for a listing; limit <= 0 means all.
func (r *Repo) ListApproved(ctx context.Context, listingID string, limit int) ([]domain.ModerationRecord, error) {
	q := `SELECT ` + reviewColumns + `
FROM reviews
WHERE listing_id = $1 AND approved
ORDER BY pinned DESC, submitted_at DESC NULLS LAST, id`
	args := []any{listingID}
	if limit > 0 {
		q += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ModerationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) ListingStats(ctx context.Context, listingID string) (domain.ListingStats, error) {
	var st domain.ListingStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), AVG(rating), MAX(created_at) FROM reviews WHERE listing_id = $1`, listingID,
	).Scan(&st.ReviewsCount, &st.AverageRating, &st.LastSync)
	if err != nil {
		return domain.ListingStats{}, err
	}
	if st.LastSync != nil {
		t := st.LastSync.UTC()
		st.LastSync = &t
	}
	return st, nil
}
