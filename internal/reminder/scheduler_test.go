package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runCall struct {
	trigger domain.Trigger
	at      time.Time
}

// fakeRunner records batches and optionally blocks inside them.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	fn    func(ctx context.Context) error
}

func (r *fakeRunner) RunBatch(ctx context.Context, trigger domain.Trigger, at time.Time) (*BatchReport, error) {
	r.mu.Lock()
	r.calls = append(r.calls, runCall{trigger: trigger, at: at})
	r.mu.Unlock()

	if r.fn != nil {
		if err := r.fn(ctx); err != nil {
			return nil, err
		}
	}
	return &BatchReport{Trigger: trigger, At: at}, nil
}

func (r *fakeRunner) Calls() []runCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runCall(nil), r.calls...)
}

// blockingRunner returns a runner whose batches signal started and then wait
// for release or cancellation.
func blockingRunner() (r *fakeRunner, started chan struct{}, release chan struct{}) {
	started = make(chan struct{}, 8)
	release = make(chan struct{})
	r = &fakeRunner{fn: func(ctx context.Context) error {
		started <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}}
	return r, started, release
}

func newTestScheduler(t *testing.T, runner BatchRunner, now time.Time) *Scheduler {
	t.Helper()

	s, err := NewScheduler(runner, DefaultScheduleConfig(), now.Location(), FixedClock(now), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func assertInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
	assert.Equal(t, want.Location().String(), got.Location().String())
}

func TestNewScheduler_InvalidTimes(t *testing.T) {
	t.Parallel()

	for _, cfg := range []ScheduleConfig{
		{Morning: "8:30", Evening: "21:00"},
		{Morning: "08:30", Evening: "24:00"},
		{Morning: "", Evening: "21:00"},
	} {
		_, err := NewScheduler(&fakeRunner{}, cfg, time.UTC, nil, nil)
		assert.Error(t, err, "config %+v", cfg)
	}
}

func TestScheduler_NextRun(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("IST", 5*3600+1800)

	early := newTestScheduler(t, &fakeRunner{}, time.Date(2026, 10, 16, 7, 0, 0, 0, loc))
	assertInstant(t, time.Date(2026, 10, 16, 8, 30, 0, 0, loc), early.NextRun(domain.TriggerMorning))
	assertInstant(t, time.Date(2026, 10, 16, 21, 0, 0, 0, loc), early.NextRun(domain.TriggerEvening))

	late := newTestScheduler(t, &fakeRunner{}, time.Date(2026, 10, 16, 22, 0, 0, 0, loc))
	assertInstant(t, time.Date(2026, 10, 17, 8, 30, 0, 0, loc), late.NextRun(domain.TriggerMorning))
	assertInstant(t, time.Date(2026, 10, 17, 21, 0, 0, 0, loc), late.NextRun(domain.TriggerEvening))

	assert.True(t, late.NextRun(domain.Trigger("noon")).IsZero())
}

func TestScheduler_NextRunUsesConfiguredZone(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("PST", -8*3600)
	// 15:00 UTC is 07:00 in loc, so the morning trigger is still ahead today.
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

	s, err := NewScheduler(&fakeRunner{}, ScheduleConfig{Morning: "07:45", Evening: "20:15"}, loc, FixedClock(now), nil)
	require.NoError(t, err)

	assertInstant(t, time.Date(2026, 10, 16, 7, 45, 0, 0, loc), s.NextRun(domain.TriggerMorning))
	assert.Equal(t, loc, s.Location())
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)
	runner := &fakeRunner{}
	s := newTestScheduler(t, runner, now)

	report, err := s.RunNow(context.Background(), domain.TriggerEvening)

	require.NoError(t, err)
	assert.Equal(t, domain.TriggerEvening, report.Trigger)
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.TriggerEvening, calls[0].trigger)
	assertInstant(t, now, calls[0].at)
	assert.False(t, s.Running())

	_, err = s.RunNow(context.Background(), domain.Trigger("noon"))
	assert.ErrorIs(t, err, domain.ErrInvalidTrigger)
}

func TestScheduler_StartStopLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t, &fakeRunner{}, time.Now())

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrSchedulerStarted)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()), "second stop is a no-op")
	assert.ErrorIs(t, s.Start(), ErrSchedulerStopped)

	_, err := s.RunNow(context.Background(), domain.TriggerMorning)
	assert.ErrorIs(t, err, ErrSchedulerStopped)
}

func TestScheduler_StopWaitsForInFlightBatch(t *testing.T) {
	t.Parallel()

	runner, started, release := blockingRunner()
	s := newTestScheduler(t, runner, time.Now())
	require.NoError(t, s.Start())

	runErr := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), domain.TriggerMorning)
		runErr <- err
	}()
	<-started
	assert.True(t, s.Running())

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a batch was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-stopped)
	require.NoError(t, <-runErr)
	assert.False(t, s.Running())
}

func TestScheduler_StopTimeoutCancelsBatch(t *testing.T) {
	t.Parallel()

	runner, started, _ := blockingRunner()
	s := newTestScheduler(t, runner, time.Now())

	runErr := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), domain.TriggerEvening)
		runErr <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
	assert.ErrorIs(t, <-runErr, context.Canceled)
}

func TestScheduler_OverlappingFiringIsSkipped(t *testing.T) {
	t.Parallel()

	runner, started, release := blockingRunner()
	s := newTestScheduler(t, runner, time.Now())
	job := s.jobs[domain.TriggerMorning]

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// The same trigger firing again while the first run is going is dropped.
	job.Run()
	assert.Len(t, runner.Calls(), 1)

	// A different trigger is not held up.
	go s.jobs[domain.TriggerEvening].Run()
	<-started
	assert.Len(t, runner.Calls(), 2)

	close(release)
	<-done
	job.Run()
	assert.Len(t, runner.Calls(), 3)
}

func TestScheduler_RecoversFromPanickingBatch(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fn: func(context.Context) error { panic("boom") }}
	log, buf := logger.GetTestLogger(t)
	s, err := NewScheduler(runner, DefaultScheduleConfig(), time.UTC, nil, log)
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.jobs[domain.TriggerMorning].Run() })
	logger.AssertLogContains(t, buf, "cron: panic")
}
