package reminder

import (
	"log/slog"
	"time"

	"github.com/advancetodo/api/internal/domain"
	"github.com/google/uuid"
)

// Outcome is the result of one user's step in a batch.
type Outcome string

// Possible outcomes
const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Reasons attached to skipped and failed results
const (
	ReasonNoPendingTasks = "no_pending_tasks"
	ReasonMailDisabled   = "mail_disabled"
	ReasonInvalidContact = "invalid_contact"
	ReasonSelectFailed   = "select_failed"
	ReasonSendFailed     = "send_failed"
	ReasonCancelled      = "cancelled"
	ReasonPanic          = "panic"
)

// UserResult records what happened to one user in a batch.
type UserResult struct {
	UserID    uuid.UUID
	Outcome   Outcome
	Reason    string
	TaskCount int
	Err       error
}

// Counts tallies results by outcome.
type Counts struct {
	Sent    int
	Skipped int
	Failed  int
}

// Total is the number of users processed.
func (c Counts) Total() int {
	return c.Sent + c.Skipped + c.Failed
}

// BatchReport summarizes one run over every user. Results are in the order
// the users were loaded.
type BatchReport struct {
	Trigger    domain.Trigger
	At         time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []UserResult
}

// Counts tallies the report's results by outcome.
func (r *BatchReport) Counts() Counts {
	var c Counts
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeSent:
			c.Sent++
		case OutcomeSkipped:
			c.Skipped++
		case OutcomeFailed:
			c.Failed++
		}
	}
	return c
}

// Result returns the result for userID, if present.
func (r *BatchReport) Result(userID uuid.UUID) (UserResult, bool) {
	for _, res := range r.Results {
		if res.UserID == userID {
			return res, true
		}
	}
	return UserResult{}, false
}

// LogValue implements slog.LogValuer with a summary of the batch.
func (r *BatchReport) LogValue() slog.Value {
	c := r.Counts()
	return slog.GroupValue(
		slog.String("trigger", string(r.Trigger)),
		slog.Time("at", r.At),
		slog.Int("users", c.Total()),
		slog.Int("sent", c.Sent),
		slog.Int("skipped", c.Skipped),
		slog.Int("failed", c.Failed),
		slog.Int64("duration_ms", r.FinishedAt.Sub(r.StartedAt).Milliseconds()),
	)
}
