package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/advancetodo/api/internal/reminder"
	"github.com/advancetodo/api/internal/store"
	"github.com/google/uuid"
)

// TaskService exposes the reminder selection logic to the API.
type TaskService interface {
	// Pending returns the user's tasks that are pending right now, ordered
	// by due date. It is the same list the next reminder would contain.
	Pending(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// ForDate returns the user's routine tasks and tasks due on day,
	// completed or not.
	ForDate(ctx context.Context, userID uuid.UUID, day domain.Date) ([]domain.Task, error)

	// Tick marks the task completed for today and returns it. Ticking twice
	// on the same day is a no-op.
	Tick(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// Today returns the current calendar day in the service's zone.
	Today() domain.Date
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	tasks    store.TaskStore
	selector *reminder.Selector
	db       *sql.DB
	clock    reminder.Clock
	logger   *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService. Calendar days are taken in the
// selector's zone, so the API and the reminders agree on what "today" is.
func NewTaskService(
	tasks store.TaskStore,
	selector *reminder.Selector,
	db *sql.DB,
	clock reminder.Clock,
	logger *slog.Logger,
) (*TaskServiceImpl, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if selector == nil {
		return nil, fmt.Errorf("selector cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if clock == nil {
		clock = reminder.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:    tasks,
		selector: selector,
		db:       db,
		clock:    clock,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// Today implements TaskService
func (s *TaskServiceImpl) Today() domain.Date {
	return domain.DateOf(s.clock.Now(), s.selector.Location())
}

// Pending implements TaskService
func (s *TaskServiceImpl) Pending(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	tasks, err := s.selector.Select(ctx, userID, s.clock.Now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to select pending tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, taskError("pending", err)
	}
	return tasks, nil
}

// ForDate implements TaskService
func (s *TaskServiceImpl) ForDate(ctx context.Context, userID uuid.UUID, day domain.Date) ([]domain.Task, error) {
	if day.IsZero() {
		return nil, taskError("for_date", domain.ErrInvalidDate)
	}
	tasks, err := s.selector.ForDate(ctx, userID, day)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks for date",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("date", day.String()))
		return nil, taskError("for_date", err)
	}
	return tasks, nil
}

// Tick implements TaskService. The completion is recorded and read back in
// one transaction.
func (s *TaskServiceImpl) Tick(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	today := s.Today()

	var task *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)

		if err := txStore.AddCompletion(ctx, userID, taskID, today); err != nil {
			return err
		}

		var err error
		task, err = txStore.GetByID(ctx, userID, taskID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("tick for unknown task",
				slog.String("user_id", userID.String()),
				slog.String("task_id", taskID.String()))
		} else {
			log.Error("failed to tick task",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()),
				slog.String("task_id", taskID.String()))
		}
		return nil, taskError("tick", err)
	}

	log.Info("task ticked",
		slog.String("user_id", userID.String()),
		slog.String("task_id", taskID.String()),
		slog.String("date", today.String()))
	return task, nil
}
