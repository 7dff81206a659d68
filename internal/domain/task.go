package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID      = errors.New("task user ID cannot be empty")
	ErrEmptyTaskDescription = errors.New("task description cannot be empty")
	ErrEmptyTaskDueDate     = errors.New("task due date cannot be empty")
	ErrEmptyTaskCategory    = errors.New("task category cannot be empty")
)

// Task is a to-do item owned by exactly one user. Routine tasks recur daily:
// their due date only matters for ordering, while completion is tracked per
// calendar day in CompletedDates.
type Task struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Description     string    `json:"description"`
	DueDate         time.Time `json:"task_date"`
	EstimatedDays   int       `json:"estimated_days"`
	EstimatedMonths int       `json:"estimated_months"`
	EstimatedTime   string    `json:"estimated_time,omitempty"`
	Category        string    `json:"category"`
	IsRoutine       bool      `json:"is_routine"`
	CompletedDates  []Date    `json:"completed_dates"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks that every required field is present.
// A task failing validation is treated as malformed by the reminder batch.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if t.Description == "" {
		return ErrEmptyTaskDescription
	}
	if t.DueDate.IsZero() {
		return ErrEmptyTaskDueDate
	}
	if t.Category == "" {
		return ErrEmptyTaskCategory
	}
	return nil
}

// CompletedOn reports whether the task was ticked on day d.
func (t *Task) CompletedOn(d Date) bool {
	for _, c := range t.CompletedDates {
		if c == d {
			return true
		}
	}
	return false
}

// Tick records a completion for day d. It is idempotent and reports whether
// the completion set changed.
func (t *Task) Tick(d Date) bool {
	if t.CompletedOn(d) {
		return false
	}
	t.CompletedDates = append(t.CompletedDates, d)
	sort.SliceStable(t.CompletedDates, func(i, j int) bool {
		return t.CompletedDates[i].Before(t.CompletedDates[j])
	})
	return true
}

// IsDueBy reports whether the task counts as due at instant at:
// either its due date has been reached (inclusive) or it is a routine.
func (t *Task) IsDueBy(at time.Time) bool {
	return t.IsRoutine || !t.DueDate.After(at)
}

// IsPendingAt reports whether the task is due at instant at and has not
// been completed on at's calendar day in loc.
func (t *Task) IsPendingAt(at time.Time, loc *time.Location) bool {
	return t.IsDueBy(at) && !t.CompletedOn(DateOf(at, loc))
}

// PendingTasks returns the tasks pending at instant at, ordered ascending by
// due date. Ties keep their input order.
func PendingTasks(tasks []Task, at time.Time, loc *time.Location) []Task {
	pending := make([]Task, 0, len(tasks))
	for i := range tasks {
		if tasks[i].IsPendingAt(at, loc) {
			pending = append(pending, tasks[i])
		}
	}
	SortByDueDate(pending)
	return pending
}

// TasksForDate returns the tasks scheduled on day (due that day) plus every
// routine task, regardless of completion state, ordered by due date.
// This backs the interactive day view and is deliberately distinct from
// PendingTasks.
func TasksForDate(tasks []Task, day Date, loc *time.Location) []Task {
	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		if tasks[i].IsRoutine || DateOf(tasks[i].DueDate, loc) == day {
			out = append(out, tasks[i])
		}
	}
	SortByDueDate(out)
	return out
}

// SortByDueDate sorts tasks ascending by due date, keeping the relative order
// of equal due dates.
func SortByDueDate(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}
