package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/advancetodo/api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const taskColumns = `
		t.id, t.user_id, t.description, t.task_date, t.estimated_days, t.estimated_months,
		t.estimated_time, t.category, t.is_routine, t.created_at,
		COALESCE(
			(SELECT array_agg(c.completed_on ORDER BY c.completed_on)
			 FROM task_completions c WHERE c.task_id = t.id),
			'{}'::date[]
		) AS completed_dates`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db      store.DBTX
	typeMap *pgtype.Map
	logger  *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:      db,
		typeMap: pgtype.NewMap(),
		logger:  logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:      tx,
		typeMap: s.typeMap,
		logger:  s.logger,
	}
}

// Find implements store.TaskStore.Find
func (s *PostgresTaskStore) Find(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := buildFindQuery(userID, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("task", "find", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []domain.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, store.NewStoreError("task", "find", "scan failed", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "find", "row iteration failed", MapError(err))
	}

	log.Debug("tasks retrieved",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT` + taskColumns + `
		FROM tasks t
		WHERE t.user_id = $1 AND t.id = $2`

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, userID, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}
	return task, nil
}

// AddCompletion implements store.TaskStore.AddCompletion
func (s *PostgresTaskStore) AddCompletion(ctx context.Context, userID, taskID uuid.UUID, day domain.Date) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO task_completions (task_id, completed_on)
		SELECT t.id, $3::date FROM tasks t
		WHERE t.user_id = $1 AND t.id = $2
		ON CONFLICT (task_id, completed_on) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, userID, taskID, day.String())
	if err != nil {
		log.Error("failed to record task completion",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return store.NewStoreError("task", "complete", "insert failed", MapError(err))
	}

	err = CheckRowsAffected(result, store.ErrTaskNotFound)
	if err == nil {
		log.Info("task completion recorded",
			slog.String("task_id", taskID.String()),
			slog.String("day", day.String()))
		return nil
	}
	if !errors.Is(err, store.ErrTaskNotFound) {
		return err
	}

	// Nothing inserted: either the day was already recorded or the task is
	// not the user's.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE user_id = $1 AND id = $2)`,
		userID, taskID,
	).Scan(&exists)
	if err != nil {
		return store.NewStoreError("task", "complete", "existence check failed", MapError(err))
	}
	if !exists {
		return store.ErrTaskNotFound
	}
	log.Debug("task already completed on day",
		slog.String("task_id", taskID.String()),
		slog.String("day", day.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row selected with taskColumns. Missing description or
// category come back as empty strings; callers validate.
func (s *PostgresTaskStore) scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task          domain.Task
		description   sql.NullString
		estimatedTime sql.NullString
		category      sql.NullString
		completed     []pgtype.Date
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&description,
		&task.DueDate,
		&task.EstimatedDays,
		&task.EstimatedMonths,
		&estimatedTime,
		&category,
		&task.IsRoutine,
		&task.CreatedAt,
		s.typeMap.SQLScanner(&completed),
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.EstimatedTime = estimatedTime.String
	task.Category = category.String
	task.CompletedDates = make([]domain.Date, 0, len(completed))
	for _, d := range completed {
		if d.Valid {
			task.CompletedDates = append(task.CompletedDates, domain.DateOf(d.Time, time.UTC))
		}
	}
	return &task, nil
}

// buildFindQuery renders filter as SQL. Inclusion predicates are OR-ed; the
// completion exclusion is AND-ed on top.
func buildFindQuery(userID uuid.UUID, filter store.TaskFilter) (string, []any, error) {
	if filter.Empty() {
		return "", nil, store.ErrInvalidFilter
	}

	args := []any{userID}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var include []string
	if filter.DueOnOrBefore != nil {
		include = append(include, "t.task_date <= "+next(*filter.DueOnOrBefore))
	}
	if filter.DueWithin != nil {
		from := next(filter.DueWithin.From)
		to := next(filter.DueWithin.To)
		include = append(include, fmt.Sprintf("(t.task_date >= %s AND t.task_date < %s)", from, to))
	}
	if filter.IncludeRoutine {
		include = append(include, "t.is_routine")
	}

	var b strings.Builder
	b.WriteString("SELECT")
	b.WriteString(taskColumns)
	b.WriteString("\n\t\tFROM tasks t\n\t\tWHERE t.user_id = $1\n\t\t  AND (")
	b.WriteString(strings.Join(include, " OR "))
	b.WriteString(")")

	if r := filter.ExcludeCompletedWithin; r != nil {
		from := next(r.From.String())
		to := next(r.To.String())
		fmt.Fprintf(&b, `
		  AND NOT EXISTS (
			SELECT 1 FROM task_completions c
			WHERE c.task_id = t.id AND c.completed_on >= %s::date AND c.completed_on < %s::date
		  )`, from, to)
	}

	b.WriteString("\n\t\tORDER BY t.task_date, t.created_at, t.id")
	return b.String(), args, nil
}
