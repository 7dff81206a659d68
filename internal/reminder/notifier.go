package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/mail"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/advancetodo/api/internal/redact"
	"github.com/advancetodo/api/internal/store"
	"golang.org/x/sync/errgroup"
)

// NotifierConfig tunes a batch run.
type NotifierConfig struct {
	// Concurrency bounds how many users are processed at once. Defaults to 4.
	Concurrency int
	// SendTimeout bounds a single delivery. Defaults to 30s.
	SendTimeout time.Duration
	// BaseURL is linked from every message.
	BaseURL string
}

// Notifier runs reminder batches.
type Notifier struct {
	users    store.UserStore
	selector *Selector
	sender   mail.Sender
	cfg      NotifierConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewNotifier wires a Notifier. A nil logger means slog.Default().
func NewNotifier(
	users store.UserStore,
	selector *Selector,
	sender mail.Sender,
	cfg NotifierConfig,
	logger *slog.Logger,
) *Notifier {
	if users == nil || selector == nil || sender == nil {
		panic("notifier dependencies cannot be nil")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		users:    users,
		selector: selector,
		sender:   sender,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "notifier")),
		now:      time.Now,
	}
}

// RunBatch sends trigger's reminder to every user with pending tasks at
// instant at. A failure for one user never affects another. The only error
// returned is failing to load the user list, in which case nothing is sent.
func (n *Notifier) RunBatch(ctx context.Context, trigger domain.Trigger, at time.Time) (*BatchReport, error) {
	if !trigger.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTrigger, trigger)
	}
	log := logger.FromContextOrDefault(ctx, n.logger).With(slog.String("trigger", string(trigger)))

	report := &BatchReport{Trigger: trigger, At: at, StartedAt: n.now()}

	users, err := n.users.FindAll(ctx)
	if err != nil {
		log.Error("failed to load users, aborting batch", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	report.Results = make([]UserResult, len(users))
	var g errgroup.Group
	g.SetLimit(n.cfg.Concurrency)
	for i := range users {
		g.Go(func() error {
			report.Results[i] = n.notifyUser(ctx, log, trigger, at, users[i])
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = n.now()
	log.Info("reminder batch finished", slog.Any("report", report))
	return report, nil
}

func (n *Notifier) notifyUser(
	ctx context.Context,
	log *slog.Logger,
	trigger domain.Trigger,
	at time.Time,
	user domain.User,
) (res UserResult) {
	res = UserResult{UserID: user.ID}
	log = log.With(slog.String("user_id", user.ID.String()))

	// A panic in the store or gateway fails this user only.
	defer func() {
		if r := recover(); r != nil {
			res = n.fail(log, res, ReasonPanic, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return n.fail(log, res, ReasonCancelled, err)
	}

	tasks, err := n.selector.Select(ctx, user.ID, at)
	if err != nil {
		return n.fail(log, res, ReasonSelectFailed, err)
	}
	res.TaskCount = len(tasks)
	if len(tasks) == 0 {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonNoPendingTasks
		log.Debug("no pending tasks")
		return res
	}

	if err := user.ValidateContact(); err != nil {
		return n.fail(log, res, ReasonInvalidContact, err)
	}

	content := Format(user.DisplayName(), trigger, tasks, n.cfg.BaseURL)
	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
	defer cancel()

	err = n.sender.Send(sendCtx, mail.Message{
		To:      user.Email,
		Subject: content.Subject,
		Body:    content.Body,
	})
	switch {
	case errors.Is(err, mail.ErrDisabled):
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonMailDisabled
		log.Debug("reminder skipped, mail disabled", slog.Int("task_count", res.TaskCount))
		return res
	case err != nil:
		return n.fail(log, res, ReasonSendFailed, err)
	}

	res.Outcome = OutcomeSent
	log.Info("reminder sent", slog.Int("task_count", res.TaskCount))
	return res
}

func (n *Notifier) fail(log *slog.Logger, res UserResult, reason string, err error) UserResult {
	res.Outcome = OutcomeFailed
	res.Reason = reason
	res.Err = err
	log.Error("reminder failed",
		slog.String("reason", reason),
		slog.String("error", redact.Error(err)))
	return res
}
