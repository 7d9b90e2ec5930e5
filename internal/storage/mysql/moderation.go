package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flex_reviews/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (domain.ModerationRecord, error) {
	var (
		rec                                      domain.ModerationRecord
		listingID, channel, typ, text, lang, who sql.NullString
		rating, ratingRaw                        sql.NullFloat64
		categories                               []byte
		submittedAt                              sql.NullTime
	)
	if err := s.Scan(
		&rec.ID, &listingID, &rec.Source, &channel, &typ,
		&rating, &ratingRaw, &categories, &text, &lang, &who,
		&submittedAt, &rec.Approved, &rec.Pinned, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return domain.ModerationRecord{}, err
	}
	rec.ListingID = strPtr(listingID)
	rec.Channel = strPtr(channel)
	rec.Type = strPtr(typ)
	rec.Rating = f64Ptr(rating)
	rec.RatingRaw = f64Ptr(ratingRaw)
	if len(categories) > 0 {
		rec.Categories = append([]byte(nil), categories...)
	}
	rec.Text = strPtr(text)
	rec.LanguageCode = strPtr(lang)
	rec.AuthorName = strPtr(who)
	rec.SubmittedAt = timePtr(submittedAt)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (r *Repo) FindModeration(ctx context.Context, ids []string) ([]domain.ModerationState, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT id, approved, pinned FROM reviews WHERE id IN (?" + strings.Repeat(",?", len(ids)-1) + ")"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
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
	updates := []string{"updated_at = CURRENT_TIMESTAMP(3)"}
	if u.HasSource() {
		updates = append(updates, "source = VALUES(source)")
	}

	add := func(col string, set bool, v any) {
		if !set {
			return
		}
		cols = append(cols, col)
		args = append(args, v)
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", col, col))
	}
	add("approved", u.Approved.Set, valOpt(u.Approved))
	add("pinned", u.Pinned.Set, valOpt(u.Pinned))
	add("listing_id", u.ListingID.Set, valOpt(u.ListingID))
	add("channel", u.Channel.Set, valOpt(u.Channel))
	add("`type`", u.Type.Set, valOpt(u.Type))
	add("rating", u.Rating.Set, valOpt(u.Rating))
	add("rating_raw", u.RatingRaw.Set, valOpt(u.RatingRaw))
	add("categories", u.Categories.Set, valJSON(u.Categories))
	add("`text`", u.Text.Set, valOpt(u.Text))
	add("language_code", u.LanguageCode.Set, valOpt(u.LanguageCode))
	add("author_name", u.AuthorName.Set, valOpt(u.AuthorName))
	add("submitted_at", u.SubmittedAt.Set, valOpt(u.SubmittedAt))

	q := "INSERT INTO reviews (" + strings.Join(cols, ", ") + ") VALUES (?" +
		strings.Repeat(", ?", len(cols)-1) + ") ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ModerationRecord{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return domain.ModerationRecord{}, err
	}
	rec, err := scanRecord(tx.QueryRowContext(ctx, getReviewSQL, id))
	if err != nil {
		return domain.ModerationRecord{}, err
	}
	return rec, tx.Commit()
}

// ListApproved returns approved records for a listing; limit <= 0 means all.
func (r *Repo) ListApproved(ctx context.Context, listingID string, limit int) ([]domain.ModerationRecord, error) {
	q, args := listApprovedSQL, []any{listingID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
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
	var (
		st   domain.ListingStats
		avg  sql.NullFloat64
		last sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, listingStatsSQL, listingID).Scan(&st.ReviewsCount, &avg, &last); err != nil {
		return domain.ListingStats{}, err
	}
	st.AverageRating = f64Ptr(avg)
	st.LastSync = timePtr(last)
	return st, nil
}
