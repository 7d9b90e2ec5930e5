package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func reviews(ids ...string) []domain.Review {
	out := make([]domain.Review, len(ids))
	for i, id := range ids {
		out[i] = domain.Review{ID: id, Source: domain.SourceHostaway}
	}
	return out
}

func TestMerge_LeftJoinWithDefaults(t *testing.T) {
	store := newMemModeration()
	store.recs["hostaway:1"] = domain.ModerationRecord{ID: "hostaway:1", Approved: true, Pinned: true}

	in := reviews("hostaway:1", "hostaway:2")
	got := app.Merge(context.Background(), store, in)

	if !got[0].Approved || !got[0].Pinned {
		t.Fatalf("stored state not applied: %+v", got[0])
	}
	if got[1].Approved || got[1].Pinned {
		t.Fatalf("missing record must default to false: %+v", got[1])
	}
	if in[0].Approved {
		t.Fatal("input slice was mutated")
	}
	if store.finds != 1 {
		t.Fatalf("expected one batched lookup, got %d", store.finds)
	}
}

func TestMerge_IsIdempotent(t *testing.T) {
	store := newMemModeration()
	store.recs["hostaway:2"] = domain.ModerationRecord{ID: "hostaway:2", Approved: true}

	once := app.Merge(context.Background(), store, reviews("hostaway:1", "hostaway:2"))
	twice := app.Merge(context.Background(), store, once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\n%+v\n%+v", once, twice)
	}
}

func TestMerge_StoreFailureDegrades(t *testing.T) {
	store := newMemModeration()
	store.findErr = errors.New("db down")

	in := reviews("hostaway:1")
	in[0].Approved = true
	got := app.Merge(context.Background(), store, in)
	if got[0].Approved || got[0].Pinned {
		t.Fatalf("expected defaults on store failure, got %+v", got[0])
	}
}

func TestMerge_Empty(t *testing.T) {
	store := newMemModeration()
	if got := app.Merge(context.Background(), store, nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
	if store.finds != 0 {
		t.Fatal("empty input should not query the store")
	}
}
