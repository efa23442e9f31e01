package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// TaskHandler handles task-related HTTP requests. Every operation acts on
// behalf of the authenticated user; the handler never exposes another
// user's tasks, not even as a 403.
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		taskStore: taskStore,
		logger:    log,
	}
}

// Create handles POST /api/tasks requests.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Title == "" {
		HandleAPIError(w, r, domain.ErrEmptyTaskTitle, "Title is required")
		return
	}

	task, err := domain.NewTask(
		userID,
		req.Title,
		req.Description,
		domain.TaskStatus(req.Status),
		domain.TaskPriority(req.Priority),
		req.DueDate,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, Response{
		Success: true,
		Message: "Task created",
		Data:    task,
	})
}

// List handles GET /api/tasks requests. Results are always filtered by the
// authenticated user, then by the optional status/priority query filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	opts := parseTaskListOptions(r)

	tasks, total, err := h.taskStore.List(r.Context(), userID, opts)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}

	totalPages := 0
	if opts.Limit > 0 {
		totalPages = (total + opts.Limit - 1) / opts.Limit
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Success: true,
		Data:    tasks,
		Pagination: Pagination{
			Total:      total,
			Page:       opts.Page,
			Limit:      opts.Limit,
			TotalPages: totalPages,
		},
	})
}

// Update handles PUT /api/tasks/{id} requests. Only the fields present in
// the body overwrite; everything else keeps its current value.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}

	if err := patch.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.Update(r.Context(), taskID, userID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: "Task updated",
		Data:    task,
	})
}

// UpdateStatus handles PATCH /api/tasks/{id}/status requests.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Status == "" {
		HandleAPIError(w, r, domain.ErrInvalidTaskStatus, "Status is required")
		return
	}

	status := domain.TaskStatus(req.Status)
	if !domain.IsValidTaskStatus(status) {
		HandleAPIError(w, r, domain.ErrInvalidTaskStatus, "")
		return
	}

	task, err := h.taskStore.UpdateStatus(r.Context(), taskID, userID, status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: "Task status updated",
		Data:    task,
	})
}

// Delete handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), taskID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: "Task deleted",
	})
}

// parseTaskListOptions reads the filter, sort and pagination query
// parameters. Unknown sort fields and out-of-range page/limit values fall
// back to the store defaults.
func parseTaskListOptions(r *http.Request) store.TaskListOptions {
	q := r.URL.Query()

	opts := store.TaskListOptions{
		Status:   domain.TaskStatus(q.Get("status")),
		Priority: domain.TaskPriority(q.Get("priority")),
		Page:     1,
		Limit:    10,
	}

	switch q.Get("sort") {
	case store.TaskSortDueDate:
		opts.SortField = store.TaskSortDueDate
	case store.TaskSortCreatedAt:
		opts.SortField = store.TaskSortCreatedAt
	}
	opts.SortDesc = q.Get("order") == "desc"

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page >= 1 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 1 {
		opts.Limit = limit
	}

	return opts
}
