package mysql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	drv "github.com/go-sql-driver/mysql"

	"flex_reviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// valOpt maps a present patch field to its column value; Null becomes SQL NULL.
func valOpt[T any](o domain.Opt[T]) any {
	if o.Null {
		return nil
	}
	return o.Value
}

func valJSON(o domain.Opt[json.RawMessage]) any {
	if o.Null || len(o.Value) == 0 || string(o.Value) == "null" {
		return nil
	}
	return string(o.Value)
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
func f64Ptr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// Repo implements the moderation, listing and cache stores on MySQL.
// The DSN must carry parseTime=true.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var (
	_ domain.ModerationStore = (*Repo)(nil)
	_ domain.ListingStore    = (*Repo)(nil)
	_ domain.CacheStore      = (*Repo)(nil)
)

func isDuplicate(err error) bool {
	var me *drv.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
