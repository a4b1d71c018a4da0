package api

import (
	"net/http"
	"strconv"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/taskservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *taskservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *taskservice.Service) *Handler {
	return &Handler{svc: svc}
}

func writeTask(w http.ResponseWriter, status int, t models.Task) {
	w.Header().Set("ETag", etag(t.Version))
	writeJSON(w, status, t)
}

// ListTasks handles GET /api/tasks.
//
//	@Summary		List tasks, newest first
//	@Tags			tasks
//	@Produce		json
//	@Param			status		query		string	false	"Filter by status"	Enums(todo, doing, done, carryover_candidate, needs_redefine, snoozed)
//	@Param			task_type	query		string	false	"Filter by task type"	Enums(research, decision, execution)
//	@Param			priority	query		string	false	"Filter by priority"	Enums(must, should)
//	@Param			parent_id	query		int		false	"Filter by parent task"
//	@Success		200			{object}	TaskListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.TaskFilter{
		Status:   models.Status(q.Get("status")),
		TaskType: models.TaskType(q.Get("task_type")),
		Priority: models.Priority(q.Get("priority")),
	}
	if raw := q.Get("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, "list tasks", apperr.Validation("parent_id %q is not a valid id", raw))
			return
		}
		f.ParentID = &id
	}

	tasks, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// CreateTask handles POST /api/tasks.
//
//	@Summary		Create a task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTaskRequest	true	"Task to create"
//	@Success		201		{object}	models.Task
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "create task", err)
		return
	}
	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, "create task", err)
		return
	}
	writeTask(w, http.StatusCreated, t)
}

// GetTask handles GET /api/tasks/{id}.
//
//	@Summary		Get a task with children, checklist, origin and completion history
//	@Tags			tasks
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		200	{object}	TaskDetail
//	@Header			200	{string}	ETag	"Task version"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id} [get]
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "get task", err)
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "get task", err)
		return
	}
	w.Header().Set("ETag", etag(d.Version))
	writeJSON(w, http.StatusOK, d)
}

// UpdateTask handles PATCH /api/tasks/{id}.
//
//	@Summary		Patch a task with optimistic concurrency
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Task ID"
//	@Param			If-Match	header		string				false	"Task version from ETag"
//	@Param			body		body		UpdateTaskRequest	true	"Fields to change"
//	@Success		200			{object}	models.Task
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id} [patch]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "update task", err)
		return
	}
	version, err := ifMatch(r)
	if err != nil {
		writeError(w, r, "update task", err)
		return
	}
	var req UpdateTaskRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "update task", err)
		return
	}
	t, err := h.svc.Update(r.Context(), id, req, version)
	if err != nil {
		writeError(w, r, "update task", err)
		return
	}
	writeTask(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/tasks/{id}.
//
//	@Summary		Delete a task; children become top-level tasks
//	@Tags			tasks
//	@Param			id	path	int	true	"Task ID"
//	@Success		204	"Task deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "delete task", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListChildren handles GET /api/tasks/{id}/children.
//
//	@Summary		List direct children of a task
//	@Tags			tasks
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		200	{object}	TaskListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/children [get]
func (h *Handler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "list children", err)
		return
	}
	tasks, err := h.svc.Children(r.Context(), id)
	if err != nil {
		writeError(w, r, "list children", err)
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// CreateChild handles POST /api/tasks/{id}/children.
//
//	@Summary		Create a child task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Parent task ID"
//	@Param			body	body		CreateTaskRequest	true	"Task to create"
//	@Success		201		{object}	models.Task
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/children [post]
func (h *Handler) CreateChild(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "create child", err)
		return
	}
	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "create child", err)
		return
	}
	t, err := h.svc.CreateChild(r.Context(), id, req)
	if err != nil {
		writeError(w, r, "create child", err)
		return
	}
	writeTask(w, http.StatusCreated, t)
}

// CompleteTask handles POST /api/tasks/{id}/complete.
//
//	@Summary		Complete a task and log the completion
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Task ID"
//	@Param			If-Match	header		string				false	"Task version from ETag"
//	@Param			body		body		CompleteTaskRequest	false	"Optional completion note"
//	@Success		200			{object}	models.Task
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/complete [post]
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "complete task", err)
		return
	}
	version, err := ifMatch(r)
	if err != nil {
		writeError(w, r, "complete task", err)
		return
	}
	var req CompleteTaskRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, "complete task", err)
		return
	}
	t, err := h.svc.Complete(r.Context(), id, req.Note, version)
	if err != nil {
		writeError(w, r, "complete task", err)
		return
	}
	writeTask(w, http.StatusOK, t)
}

// CompletionLog handles GET /api/tasks/{id}/completion-log.
//
//	@Summary		List completion history of a task, newest first
//	@Tags			tasks
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		200	{object}	CompletionLogResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/completion-log [get]
func (h *Handler) CompletionLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "completion log", err)
		return
	}
	logs, err := h.svc.CompletionLogs(r.Context(), id)
	if err != nil {
		writeError(w, r, "completion log", err)
		return
	}
	writeJSON(w, http.StatusOK, CompletionLogResponse{Logs: logs})
}

// ListStale handles GET /api/tasks/stale.
//
//	@Summary		List open tasks past their staleness threshold
//	@Tags			rules
//	@Produce		json
//	@Param			priority	query		string	false	"Filter by priority"	Enums(must, should)
//	@Success		200			{object}	StaleListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/stale [get]
func (h *Handler) ListStale(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListStale(r.Context(), models.Priority(r.URL.Query().Get("priority")))
	if err != nil {
		writeError(w, r, "list stale", err)
		return
	}
	writeJSON(w, http.StatusOK, StaleListResponse{Tasks: tasks})
}

// ListCarryoverCandidates handles GET /api/tasks/carryover-candidates.
//
//	@Summary		List overdue tasks awaiting a carryover decision
//	@Tags			rules
//	@Produce		json
//	@Success		200	{object}	CarryoverListResponse
//	@Security		BearerAuth
//	@Router			/tasks/carryover-candidates [get]
func (h *Handler) ListCarryoverCandidates(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.CarryoverCandidates(r.Context())
	if err != nil {
		writeError(w, r, "list carryover candidates", err)
		return
	}
	writeJSON(w, http.StatusOK, CarryoverListResponse{Tasks: tasks})
}

// Carryover handles POST /api/tasks/{id}/carryover.
//
//	@Summary		Apply a carryover action to a task
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Task ID"
//	@Param			If-Match	header		string				false	"Task version from ETag"
//	@Param			body		body		CarryoverRequest	true	"Carryover action"
//	@Success		200			{object}	models.Task
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/carryover [post]
func (h *Handler) Carryover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "carryover", err)
		return
	}
	version, err := ifMatch(r)
	if err != nil {
		writeError(w, r, "carryover", err)
		return
	}
	var req CarryoverRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "carryover", err)
		return
	}
	t, err := h.svc.Carryover(r.Context(), id, req.Action, version)
	if err != nil {
		writeError(w, r, "carryover", err)
		return
	}
	writeTask(w, http.StatusOK, t)
}

// Convergence handles GET /api/tasks/{id}/convergence.
//
//	@Summary		Evaluate whether a decision task may converge
//	@Tags			rules
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		200	{object}	models.ConvergenceInfo
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/convergence [get]
func (h *Handler) Convergence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "convergence", err)
		return
	}
	info, err := h.svc.Convergence(r.Context(), id)
	if err != nil {
		writeError(w, r, "convergence", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
