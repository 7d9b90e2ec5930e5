package domain

import (
	"encoding/json"
	"time"
)

// ModerationState is the slice of a moderation record the merge step needs.
type ModerationState struct {
	ID       string
	Approved bool
	Pinned   bool
}

type ModerationRecord struct {
	ID           string          `json:"id"`
	ListingID    *string         `json:"listingId"`
	Source       string          `json:"source"`
	Channel      *string         `json:"channel"`
	Type         *string         `json:"type"`
	Rating       *float64        `json:"rating"`
	RatingRaw    *float64        `json:"ratingRaw"`
	Categories   json.RawMessage `json:"categories"`
	Text         *string         `json:"text"`
	LanguageCode *string         `json:"languageCode"`
	AuthorName   *string         `json:"authorName"`
	SubmittedAt  *time.Time      `json:"submittedAt"`
	Approved     bool            `json:"approved"`
	Pinned       bool            `json:"pinned"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Opt carries presence separately from the value so that "absent" and
// "explicitly null" never collapse into one state.
type Opt[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Opt[T] { return Opt[T]{Set: true, Value: v} }

func Null[T any]() Opt[T] { return Opt[T]{Set: true, Null: true} }

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ModerationPatch is the client-facing sparse patch for one review id.
type ModerationPatch struct {
	Approved     Opt[bool]            `json:"approved"`
	Pinned       Opt[bool]            `json:"pinned"`
	ListingID    Opt[string]          `json:"listingId"`
	ListingSlug  Opt[string]          `json:"listingSlug"`
	Source       Opt[string]          `json:"source"`
	Channel      Opt[string]          `json:"channel"`
	Type         Opt[string]          `json:"type"`
	Rating       Opt[float64]         `json:"rating"`
	RatingRaw    Opt[float64]         `json:"ratingRaw"`
	Categories   Opt[json.RawMessage] `json:"categories"`
	Text         Opt[string]          `json:"text"`
	LanguageCode Opt[string]          `json:"languageCode"`
	AuthorName   Opt[string]          `json:"authorName"`
	SubmittedAt  Opt[string]          `json:"submittedAt"`
}

// ModerationUpdate is the resolved set of columns a store writes.
// Unset fields are left untouched on update; Null clears the column.
type ModerationUpdate struct {
	Approved     Opt[bool]
	Pinned       Opt[bool]
	ListingID    Opt[string]
	Source       Opt[string]
	Channel      Opt[string]
	Type         Opt[string]
	Rating       Opt[float64]
	RatingRaw    Opt[float64]
	Categories   Opt[json.RawMessage]
	Text         Opt[string]
	LanguageCode Opt[string]
	AuthorName   Opt[string]
	SubmittedAt  Opt[time.Time]
}

// HasSource reports whether u carries a non-empty source to write.
func (u ModerationUpdate) HasSource() bool {
	return u.Source.Set && !u.Source.Null && u.Source.Value != ""
}

// CreateSource is the source written when the row does not exist yet.
func (u ModerationUpdate) CreateSource() string {
	if u.HasSource() {
		return u.Source.Value
	}
	return "unknown"
}
