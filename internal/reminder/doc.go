// Package reminder sends the twice-daily pending task digest.
//
// A Selector computes a user's pending tasks for an instant, Format renders
// them as a plain-text message, a Notifier runs one batch over every user and
// records a per-user outcome, and a Scheduler fires the morning and evening
// batches on a cron schedule.
package reminder
