package api

import (
	"log/slog"
	"net/http"

	"github.com/huzaifanaeem1/todostream/internal/api/shared"
	"github.com/huzaifanaeem1/todostream/internal/service"
)

// TaskHandler handles task CRUD API requests. Every successful mutation
// publishes the matching lifecycle event through the task service.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	priority, dueDate, frequency, err := parseTaskFields(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}

	result, err := h.tasks.CreateTask(r.Context(), userID, service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		DueDate:     dueDate,
		IsRecurring: req.IsRecurring,
		Frequency:   frequency,
		Tags:        req.Tags,
	})
	if err != nil {
		h.handleTaskError(w, r, err, "failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, toTaskResponse(result))
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	results, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		h.handleTaskError(w, r, err, "failed to list tasks")
		return
	}

	responses := make([]TaskResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, toTaskResponse(result))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	result, err := h.tasks.GetTask(r.Context(), taskID, userID)
	if err != nil {
		h.handleTaskError(w, r, err, "failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(result))
}

// Update handles PUT /api/tasks/{id} as a full replace.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	priority, dueDate, frequency, err := parseTaskFields(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}

	result, err := h.tasks.UpdateTask(r.Context(), taskID, userID, service.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Priority:    priority,
		DueDate:     dueDate,
		IsRecurring: req.IsRecurring,
		Frequency:   frequency,
		Tags:        req.Tags,
	})
	if err != nil {
		h.handleTaskError(w, r, err, "failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(result))
}

// Complete handles PATCH /api/tasks/{id}.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	result, err := h.tasks.CompleteTask(r.Context(), taskID, userID)
	if err != nil {
		h.handleTaskError(w, r, err, "failed to complete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(result))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID, userID); err != nil {
		h.handleTaskError(w, r, err, "failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) handleTaskError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		slog.Error(logMsg, "error", err, "path", r.URL.Path)
	}
	shared.RespondWithError(w, r, status, GetSafeErrorMessage(err))
}
