package reminder

import (
	"strings"

	"github.com/advancetodo/api/internal/domain"
)

// DefaultBaseURL is linked from reminders when no base URL is configured.
const DefaultBaseURL = "http://localhost:3000"

// Message is the rendered subject and plain-text body of a reminder.
type Message struct {
	Subject string
	Body    string
}

// Format renders the reminder for name's pending tasks. It is a pure
// function of its inputs; tasks are listed in the order given.
func Format(name string, trigger domain.Trigger, tasks []domain.Task, baseURL string) Message {
	if name == "" {
		name = "User"
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var b strings.Builder
	b.WriteString("Hi ")
	b.WriteString(name)
	b.WriteString(",\n\nHere are your pending tasks for today:\n\n")
	for i, t := range tasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(singleLine(t.Description))
		b.WriteString(" (")
		b.WriteString(singleLine(t.Category))
		b.WriteString(")")
	}
	b.WriteString("\n\nComplete them in Advance Todo: ")
	b.WriteString(baseURL)
	b.WriteString("\n\nStay productive!")

	return Message{
		Subject: trigger.Title() + " Task Reminder",
		Body:    b.String(),
	}
}

// singleLine collapses runs of whitespace, line breaks included, into single
// spaces so every task stays on its own line.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
