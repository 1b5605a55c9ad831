package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrLoginFailed      = errors.New("fitness service login failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrNotLoggedIn      = errors.New("fitness service session not established")
	ErrSyncRunNotFound  = errors.New("sync run not found")
	ErrSyncRunConflict  = errors.New("sync run already recorded")
	ErrTableNotSet      = errors.New("table id not configured")
	ErrMissingAuthToken = errors.New("missing auth token")
)

// IsRateLimited reports whether err signals HTTP 429. Typed errors opt in by
// matching ErrRateLimited; anything else is judged by its text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}

type FitnessClient interface {
	// Login establishes the session used by the fetch calls.
	Login(ctx context.Context) error

	// GetDailySteps returns the daily summaries between start and end, inclusive.
	GetDailySteps(ctx context.Context, start, end time.Time) ([]DailyStepRecord, error)

	// GetSleepData returns the night of sleep attributed to date.
	GetSleepData(ctx context.Context, date time.Time) (SleepRecord, error)
}

type TableClient interface {
	// Query returns every row of tableID matching all conditions, in table order.
	Query(ctx context.Context, tableID string, filter Filter) ([]Row, error)

	Create(ctx context.Context, tableID string, props Properties) error

	// Update overwrites the given properties of an existing row.
	Update(ctx context.Context, rowID string, props Properties) error
}

type SyncRunRepository interface {
	Create(ctx context.Context, run *SyncRun) error

	Update(ctx context.Context, run *SyncRun) error

	GetByID(ctx context.Context, id string) (*SyncRun, error)

	// ListRecent returns the newest runs first.
	ListRecent(ctx context.Context, limit int) ([]*SyncRun, error)
}
