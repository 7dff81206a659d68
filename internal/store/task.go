package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/advancetodo/api/internal/domain"
	"github.com/google/uuid"
)

// TimeRange is the half-open interval of instants [From, To).
type TimeRange struct {
	From time.Time
	To   time.Time
}

// TaskFilter selects a user's tasks. The due predicates (DueOnOrBefore,
// DueWithin) and IncludeRoutine are OR-ed together; ExcludeCompletedWithin
// then removes any task with a completion inside that day range.
type TaskFilter struct {
	DueOnOrBefore          *time.Time
	DueWithin              *TimeRange
	IncludeRoutine         bool
	ExcludeCompletedWithin *domain.DateRange
}

// Empty reports whether the filter has no inclusion predicate and would
// match nothing.
func (f TaskFilter) Empty() bool {
	return f.DueOnOrBefore == nil && f.DueWithin == nil && !f.IncludeRoutine
}

// PendingFilter selects tasks that are due by at or routine and that have no
// completion on at's calendar day in loc.
func PendingFilter(at time.Time, loc *time.Location) TaskFilter {
	day := domain.DayRange(domain.DateOf(at, loc))
	return TaskFilter{
		DueOnOrBefore:          &at,
		IncludeRoutine:         true,
		ExcludeCompletedWithin: &day,
	}
}

// DateFilter selects routine tasks and tasks due on day in loc, regardless
// of completion.
func DateFilter(day domain.Date, loc *time.Location) TaskFilter {
	return TaskFilter{
		DueWithin:      &TimeRange{From: day.Start(loc), To: day.AddDays(1).Start(loc)},
		IncludeRoutine: true,
	}
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Find returns the user's tasks matching filter, ordered by due date and
	// then by insertion order. Rows with missing required fields are
	// returned as-is so the caller can decide what to do with them.
	// Returns ErrInvalidFilter if the filter is empty.
	Find(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]domain.Task, error)

	// GetByID retrieves one of the user's tasks.
	// Returns ErrTaskNotFound if it does not exist or belongs to someone else.
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// AddCompletion records that the task was ticked on day. Recording the
	// same day twice is a no-op.
	// Returns ErrTaskNotFound if the task does not exist or belongs to someone else.
	AddCompletion(ctx context.Context, userID, taskID uuid.UUID, day domain.Date) error

	// WithTx returns a TaskStore that runs its statements in tx.
	WithTx(tx *sql.Tx) TaskStore
}
