package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/advancetodo/api/internal/config"
	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/redact"
	"github.com/robfig/cron/v3"
)

// Scheduler errors
var (
	ErrSchedulerStarted = errors.New("scheduler already started")
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

// BatchRunner runs one reminder batch. *Notifier implements it.
type BatchRunner interface {
	RunBatch(ctx context.Context, trigger domain.Trigger, at time.Time) (*BatchReport, error)
}

var _ BatchRunner = (*Notifier)(nil)

// ScheduleConfig holds the local wall-clock times, in HH:MM form, at which
// each trigger fires.
type ScheduleConfig struct {
	Morning string
	Evening string
}

// DefaultScheduleConfig fires at 08:30 and 21:00.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{Morning: "08:30", Evening: "21:00"}
}

func (c ScheduleConfig) clockFor(t domain.Trigger) string {
	if t == domain.TriggerMorning {
		return c.Morning
	}
	return c.Evening
}

// Scheduler fires the morning and evening batches every day. A firing that
// arrives while the previous run of the same trigger is still going is
// skipped.
type Scheduler struct {
	runner BatchRunner
	cron   *cron.Cron
	loc    *time.Location
	clock  Clock
	logger *slog.Logger

	entries map[domain.Trigger]cron.EntryID
	jobs    map[domain.Trigger]cron.Job

	// ctx is the parent of every batch and is cancelled when Stop gives up.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup
	running atomic.Int32
}

// NewScheduler registers both triggers on a cron instance running in loc.
// A nil loc means time.Local, a nil clock means SystemClock and a nil logger
// means slog.Default().
func NewScheduler(
	runner BatchRunner,
	cfg ScheduleConfig,
	loc *time.Location,
	clock Clock,
	logger *slog.Logger,
) (*Scheduler, error) {
	if runner == nil {
		panic("batch runner cannot be nil")
	}
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scheduler"))

	cl := cronLogger{logger}
	chain := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner:  runner,
		cron:    cron.New(cron.WithLocation(loc), cron.WithLogger(cl)),
		loc:     loc,
		clock:   clock,
		logger:  logger,
		entries: make(map[domain.Trigger]cron.EntryID, len(domain.Triggers)),
		jobs:    make(map[domain.Trigger]cron.Job, len(domain.Triggers)),
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, trigger := range domain.Triggers {
		spec, err := cronSpec(cfg.clockFor(trigger))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("invalid %s trigger time: %w", trigger, err)
		}
		schedule, err := cron.ParseStandard(spec)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to parse %s schedule %q: %w", trigger, spec, err)
		}

		job := chain.Then(cron.FuncJob(func() { s.fire(trigger) }))
		s.jobs[trigger] = job
		s.entries[trigger] = s.cron.Schedule(schedule, job)
	}

	return s, nil
}

// cronSpec converts HH:MM into a daily five-field cron expression.
func cronSpec(clock string) (string, error) {
	hour, minute, err := config.ParseClock(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Start begins firing triggers. It returns immediately.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	if s.started {
		return ErrSchedulerStarted
	}
	s.started = true
	s.cron.Start()

	s.logger.Info("reminder scheduler started",
		slog.String("timezone", s.loc.String()),
		slog.Time("next_morning", s.NextRun(domain.TriggerMorning)),
		slog.Time("next_evening", s.NextRun(domain.TriggerEvening)))
	return nil
}

// Stop prevents further firings and waits for in-flight batches. If ctx
// expires first the batches are cancelled and ctx's error is returned.
// Stop is safe to call more than once.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("reminder scheduler stop timed out, cancelling in-flight batches")
		return ctx.Err()
	}
}

// RunNow runs one batch for trigger synchronously, at the clock's current
// instant. It does not count as a scheduled firing.
func (s *Scheduler) RunNow(ctx context.Context, trigger domain.Trigger) (*BatchReport, error) {
	if !trigger.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTrigger, trigger)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrSchedulerStopped
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	return s.run(runCtx, trigger)
}

// NextRun returns the next firing time of trigger after the clock's current
// instant, in the scheduler's zone.
func (s *Scheduler) NextRun(trigger domain.Trigger) time.Time {
	id, ok := s.entries[trigger]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Schedule.Next(s.clock.Now().In(s.loc))
}

// Running reports whether any batch is in progress.
func (s *Scheduler) Running() bool {
	return s.running.Load() > 0
}

// Location returns the zone the triggers fire in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

func (s *Scheduler) fire(trigger domain.Trigger) {
	if _, err := s.run(s.ctx, trigger); err != nil {
		s.logger.Error("scheduled reminder batch failed",
			slog.String("trigger", string(trigger)),
			slog.String("error", redact.Error(err)))
	}
}

func (s *Scheduler) run(ctx context.Context, trigger domain.Trigger) (*BatchReport, error) {
	s.running.Add(1)
	defer s.running.Add(-1)

	at := s.clock.Now().In(s.loc)
	s.logger.Info("reminder batch starting",
		slog.String("trigger", string(trigger)),
		slog.Time("at", at))

	return s.runner.RunBatch(ctx, trigger, at)
}

// cronLogger adapts slog to cron.Logger. Cron's own info messages are noisy,
// so they are logged at debug level.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{slog.String("error", redact.Error(err))}, keysAndValues...)
	l.log.Error("cron: "+msg, args...)
}
