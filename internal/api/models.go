package api

import (
	"time"

	"github.com/advancetodo/api/internal/domain"
)

// TaskResponse is the wire form of a task. Field names follow the web
// client's existing contract.
type TaskResponse struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"`
	TaskDate        time.Time `json:"taskDate"`
	EstimatedDays   int       `json:"estimatedDays"`
	EstimatedMonths int       `json:"estimatedMonths"`
	EstimatedTime   string    `json:"estimatedTime,omitempty"`
	Category        string    `json:"category"`
	IsRoutine       bool      `json:"isRoutine"`
	CompletedDates  []string  `json:"completedDates"`
	CompletedToday  bool      `json:"completedToday"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TickResponse is returned by the tick endpoint.
type TickResponse struct {
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// TasksQuery holds the query parameters of GET /api/tasks.
type TasksQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

func taskToResponse(t *domain.Task, today domain.Date) TaskResponse {
	dates := make([]string, 0, len(t.CompletedDates))
	for _, d := range t.CompletedDates {
		dates = append(dates, d.String())
	}
	return TaskResponse{
		ID:              t.ID.String(),
		Description:     t.Description,
		TaskDate:        t.DueDate,
		EstimatedDays:   t.EstimatedDays,
		EstimatedMonths: t.EstimatedMonths,
		EstimatedTime:   t.EstimatedTime,
		Category:        t.Category,
		IsRoutine:       t.IsRoutine,
		CompletedDates:  dates,
		CompletedToday:  t.CompletedOn(today),
		CreatedAt:       t.CreatedAt,
	}
}

func tasksToResponse(tasks []domain.Task, today domain.Date) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskToResponse(&tasks[i], today))
	}
	return out
}
