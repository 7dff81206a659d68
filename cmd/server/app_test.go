package main

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/advancetodo/api/internal/config"
	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/mocks"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/advancetodo/api/internal/reminder"
	"github.com/advancetodo/api/internal/service"
	"github.com/advancetodo/api/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "valid-token"

// testApp is an application wired to in-memory fakes.
type testApp struct {
	*application
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
	sender *mocks.MockSender
	dbMock sqlmock.Sqlmock
	userID uuid.UUID
	now    time.Time
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	now := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	clock := reminder.FixedClock(now)
	log := logger.Discard()

	userID := uuid.New()
	users := &mocks.MockUserStore{Users: []domain.User{{ID: userID, Name: "Asha", Email: "asha@example.com"}}}
	tasks := &mocks.MockTaskStore{Tasks: map[uuid.UUID][]domain.Task{
		userID: {{
			ID:          uuid.New(),
			UserID:      userID,
			Description: "file taxes",
			DueDate:     now.Add(-24 * time.Hour),
			Category:    "Personal",
			CreatedAt:   now.Add(-48 * time.Hour),
		}},
	}}
	sender := &mocks.MockSender{}

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: 5000, LogLevel: "info", BaseURL: "http://localhost:3000"},
		Scheduler: config.SchedulerConfig{Enabled: true, Morning: "08:30", Evening: "21:00", Timezone: "UTC", Concurrency: 2},
	}

	selector := reminder.NewSelector(tasks, time.UTC, log)
	notifier := reminder.NewNotifier(users, selector, sender, reminder.NotifierConfig{BaseURL: cfg.Server.BaseURL}, log)
	scheduler, err := reminder.NewScheduler(notifier, reminder.DefaultScheduleConfig(), time.UTC, clock, log)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(tasks, selector, db, clock, log)
	require.NoError(t, err)

	jwt := &mocks.MockJWTService{ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
		if token != testToken {
			return nil, auth.ErrInvalidToken
		}
		return &auth.Claims{UserID: userID}, nil
	}}

	app := &application{
		config:      cfg,
		logger:      log,
		db:          db,
		clock:       clock,
		userStore:   users,
		taskStore:   tasks,
		selector:    selector,
		sender:      sender,
		notifier:    notifier,
		scheduler:   scheduler,
		jwtService:  jwt,
		taskService: taskService,
	}
	t.Cleanup(func() {
		_ = scheduler.Stop(context.Background())
		_ = db.Close()
	})

	return &testApp{
		application: app,
		users:       users,
		tasks:       tasks,
		sender:      sender,
		dbMock:      dbMock,
		userID:      userID,
		now:         now,
	}
}

func TestApplication_RunOnce(t *testing.T) {
	app := newTestApplication(t)

	require.NoError(t, app.runOnce(context.Background(), domain.TriggerMorning))

	sent := app.sender.SentTo("asha@example.com")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "file taxes")
}

func TestApplication_RunOnceUserLoadFailure(t *testing.T) {
	app := newTestApplication(t)
	app.users.Err = sql.ErrConnDone

	err := app.runOnce(context.Background(), domain.TriggerEvening)

	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Empty(t, app.sender.Sent())
}

func TestApplication_CleanupStopsSchedulerAndClosesDB(t *testing.T) {
	app := newTestApplication(t)
	require.NoError(t, app.scheduler.Start())
	app.dbMock.ExpectClose()

	app.cleanup(context.Background())

	assert.NoError(t, app.dbMock.ExpectationsWereMet())
	_, err := app.scheduler.RunNow(context.Background(), domain.TriggerMorning)
	assert.ErrorIs(t, err, reminder.ErrSchedulerStopped)
}
