package api

import (
	"log/slog"
	"net/http"

	"github.com/advancetodo/api/internal/api/shared"
	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/advancetodo/api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("task service cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// GetPending handles GET /api/tasks/pending.
// It returns the tasks the next reminder would list for the caller.
func (h *TaskHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	tasks, err := h.tasks.Pending(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("pending tasks listed", slog.Int("count", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks, h.tasks.Today()))
}

// GetForDate handles GET /api/tasks?date=YYYY-MM-DD.
// It returns routine tasks and tasks due that day, completed or not.
func (h *TaskHandler) GetForDate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	query := TasksQuery{Date: r.URL.Query().Get("date")}
	if err := shared.ValidateRequest(query); err != nil {
		handleError(w, r, err)
		return
	}
	day, err := domain.ParseDate(query.Date)
	if err != nil {
		handleError(w, r, err)
		return
	}

	tasks, err := h.tasks.ForDate(r.Context(), userID, day)
	if err != nil {
		handleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks, h.tasks.Today()))
}

// Tick handles PATCH /api/tasks/{id}/tick.
// It marks the task done for today; repeating it the same day changes nothing.
func (h *TaskHandler) Tick(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	task, err := h.tasks.Tick(r.Context(), userID, taskID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TickResponse{
		Message: "Ticked for today",
		Task:    taskToResponse(task, h.tasks.Today()),
	})
}
