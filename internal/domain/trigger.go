package domain

import "fmt"

// Trigger labels one of the two daily reminder runs.
type Trigger string

// Possible trigger values
const (
	TriggerMorning Trigger = "morning"
	TriggerEvening Trigger = "evening"
)

// Triggers lists every trigger in firing order.
var Triggers = []Trigger{TriggerMorning, TriggerEvening}

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	return t == TriggerMorning || t == TriggerEvening
}

// Title returns the capitalized label used in email subjects.
func (t Trigger) Title() string {
	if t == TriggerMorning {
		return "Morning"
	}
	return "Evening"
}

// ParseTrigger converts a label into a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	t := Trigger(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTrigger, s)
	}
	return t, nil
}
