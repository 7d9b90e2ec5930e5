package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

// Merge overlays stored moderation state on items with one batched lookup.
// Items without a record, and all items when the lookup fails, get approved=false, pinned=false.
// The input slice is not modified.
func Merge(ctx context.Context, store domain.ModerationStore, items []domain.Review) []domain.Review {
	out := make([]domain.Review, len(items))
	copy(out, items)
	if len(out) == 0 {
		return out
	}

	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	states, err := store.FindModeration(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Int("ids", len(ids)).Msg("moderation lookup failed, using defaults")
		states = nil
	}

	byID := make(map[string]domain.ModerationState, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}
	for i := range out {
		st := byID[out[i].ID]
		out[i].Approved = st.Approved
		out[i].Pinned = st.Pinned
	}
	return out
}
