package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Generation is one persisted generation request outcome.
type Generation struct {
	ID             uuid.UUID `db:"id"`
	RequestID      string    `db:"request_id"`
	UserID         *int64    `db:"user_id"`
	Source         string    `db:"source"`
	Title          string    `db:"title"`
	UsedFallback   bool      `db:"used_fallback"`
	FallbackReason *string   `db:"fallback_reason"`
	Attempts       int       `db:"attempts"`
	DurationMS     int64     `db:"duration_ms"`
	ObjectKey      *string   `db:"object_key"`
	CreatedAt      string    `db:"created_at"`
}

// InsertParams contains data for recording a generation outcome.
type InsertParams struct {
	RequestID      string
	UserID         *int64
	Source         string
	Title          string
	UsedFallback   bool
	FallbackReason *string
	Attempts       int
	DurationMS     int64
	ObjectKey      *string
}

// ListParams defines filters for listing generation history.
type ListParams struct {
	UserID *int64
	Offset int
	Limit  int
}

// Repository defines generation history storage operations.
type Repository interface {
	Insert(ctx context.Context, params InsertParams) (Generation, error)
	Get(ctx context.Context, id uuid.UUID) (Generation, error)
	List(ctx context.Context, params ListParams) ([]Generation, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
