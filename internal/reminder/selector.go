package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/advancetodo/api/internal/store"
	"github.com/google/uuid"
)

// Selector computes the pending task set for one user.
type Selector struct {
	tasks  store.TaskStore
	loc    *time.Location
	logger *slog.Logger
}

// NewSelector creates a Selector that compares calendar days in loc.
// A nil loc means time.Local; a nil logger means slog.Default().
func NewSelector(tasks store.TaskStore, loc *time.Location, logger *slog.Logger) *Selector {
	if tasks == nil {
		panic("task store cannot be nil")
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		tasks:  tasks,
		loc:    loc,
		logger: logger.With(slog.String("component", "selector")),
	}
}

// Location returns the zone used for calendar-day comparisons.
func (s *Selector) Location() *time.Location {
	return s.loc
}

// Select returns the user's tasks that are pending at instant at, ordered by
// due date. Malformed tasks are logged and left out; the rest are still
// returned.
func (s *Selector) Select(ctx context.Context, userID uuid.UUID, at time.Time) ([]domain.Task, error) {
	tasks, err := s.tasks.Find(ctx, userID, store.PendingFilter(at, s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for user %s: %w", userID, err)
	}
	return domain.PendingTasks(s.dropMalformed(ctx, userID, tasks), at, s.loc), nil
}

// ForDate returns the user's routine tasks and tasks due on day, completed or
// not, ordered by due date.
func (s *Selector) ForDate(ctx context.Context, userID uuid.UUID, day domain.Date) ([]domain.Task, error) {
	tasks, err := s.tasks.Find(ctx, userID, store.DateFilter(day, s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for user %s: %w", userID, err)
	}
	return domain.TasksForDate(s.dropMalformed(ctx, userID, tasks), day, s.loc), nil
}

func (s *Selector) dropMalformed(ctx context.Context, userID uuid.UUID, tasks []domain.Task) []domain.Task {
	log := logger.FromContextOrDefault(ctx, s.logger)

	valid := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			log.Warn("skipping malformed task",
				slog.String("user_id", userID.String()),
				slog.String("task_id", tasks[i].ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		valid = append(valid, tasks[i])
	}
	return valid
}
