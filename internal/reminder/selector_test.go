package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/mocks"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(userID uuid.UUID, description string, due time.Time, routine bool, completed ...domain.Date) domain.Task {
	return domain.Task{
		ID:             uuid.New(),
		UserID:         userID,
		Description:    description,
		DueDate:        due,
		Category:       "Work",
		IsRoutine:      routine,
		CompletedDates: completed,
		CreatedAt:      due,
	}
}

func descriptions(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Description)
	}
	return out
}

func TestSelector_Select(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2026, 10, 16, 8, 30, 0, 0, loc)
	today := domain.DateOf(at, loc)
	userID := uuid.New()

	tasks := &mocks.MockTaskStore{Tasks: map[uuid.UUID][]domain.Task{
		userID: {
			newTask(userID, "later today", at.Add(time.Hour), false),
			newTask(userID, "overdue", at.Add(-48*time.Hour), false),
			newTask(userID, "routine done", at.AddDate(0, -1, 0), true, today),
			newTask(userID, "routine open", at.AddDate(0, 1, 0), true, today.AddDays(-1)),
		},
	}}
	sel := NewSelector(tasks, loc, logger.Discard())

	got, err := sel.Select(context.Background(), userID, at)

	require.NoError(t, err)
	assert.Equal(t, []string{"overdue", "routine open"}, descriptions(got))

	calls := tasks.FindCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, userID, calls[0].UserID)
	require.NotNil(t, calls[0].Filter.DueOnOrBefore)
	assert.True(t, calls[0].Filter.DueOnOrBefore.Equal(at))
	assert.True(t, calls[0].Filter.IncludeRoutine)
	require.NotNil(t, calls[0].Filter.ExcludeCompletedWithin)
	assert.True(t, calls[0].Filter.ExcludeCompletedWithin.Contains(today))
}

func TestSelector_DropsMalformedTasks(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)
	userID := uuid.New()

	broken := newTask(userID, "no category", at.Add(-time.Hour), false)
	broken.Category = ""
	tasks := &mocks.MockTaskStore{Tasks: map[uuid.UUID][]domain.Task{
		userID: {broken, newTask(userID, "fine", at.Add(-2*time.Hour), false)},
	}}
	log, buf := logger.GetTestLogger(t)
	sel := NewSelector(tasks, time.UTC, log)

	got, err := sel.Select(context.Background(), userID, at)

	require.NoError(t, err)
	assert.Equal(t, []string{"fine"}, descriptions(got))
	assert.Equal(t, 1, buf.CountMessages(t, "skipping malformed task"))
	logger.AssertLogContains(t, buf, broken.ID.String())
}

func TestSelector_StoreError(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection refused")
	sel := NewSelector(&mocks.MockTaskStore{Err: dbErr}, time.UTC, logger.Discard())

	got, err := sel.Select(context.Background(), uuid.New(), time.Now())

	assert.Nil(t, got)
	assert.ErrorIs(t, err, dbErr)
}

func TestSelector_ForDate(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	day := domain.NewDate(2026, time.October, 16)
	noon := day.Start(loc).Add(12 * time.Hour)
	userID := uuid.New()

	tasks := &mocks.MockTaskStore{Tasks: map[uuid.UUID][]domain.Task{
		userID: {
			newTask(userID, "today done", noon, false, day),
			newTask(userID, "yesterday", noon.AddDate(0, 0, -1), false),
			newTask(userID, "routine", noon.AddDate(0, 0, -30), true),
		},
	}}
	sel := NewSelector(tasks, loc, nil)

	got, err := sel.ForDate(context.Background(), userID, day)

	require.NoError(t, err)
	assert.Equal(t, []string{"routine", "today done"}, descriptions(got))

	calls := tasks.FindCalls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Filter.DueWithin)
	assert.Equal(t, day.Start(loc), calls[0].Filter.DueWithin.From)
	assert.Equal(t, day.AddDays(1).Start(loc), calls[0].Filter.DueWithin.To)
	assert.Nil(t, calls[0].Filter.ExcludeCompletedWithin)
}

func TestNewSelector_DefaultsLocation(t *testing.T) {
	t.Parallel()

	sel := NewSelector(&mocks.MockTaskStore{}, nil, nil)
	assert.Equal(t, time.Local, sel.Location())

	assert.Panics(t, func() { NewSelector(nil, time.UTC, nil) })
}
