package api

import "github.com/starford/raido/internal/models"

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest = models.TaskSpec

// UpdateTaskRequest is the request body for patching a task. Omitted fields are
// left alone; explicit nulls clear nullable fields.
type UpdateTaskRequest = models.TaskPatch

// CompleteTaskRequest is the optional request body for completing a task.
type CompleteTaskRequest struct {
	Note *string `json:"note" example:"shipped to prod"`
}

// CarryoverRequest is the request body for applying a carryover action.
type CarryoverRequest struct {
	Action string `json:"action" example:"plus_2d" enums:"today,plus_2d,plus_7d,needs_redefine" validate:"required"`
}

// TaskDetail is the full task response type (aliased from the domain layer).
type TaskDetail = models.TaskDetail

// TaskListResponse wraps task listings.
type TaskListResponse struct {
	Tasks []models.Task `json:"tasks" validate:"required"`
}

// StaleListResponse wraps the staleness view.
type StaleListResponse struct {
	Tasks []models.StaleTask `json:"tasks" validate:"required"`
}

// CarryoverListResponse wraps the carryover candidate view.
type CarryoverListResponse struct {
	Tasks []models.CarryoverCandidate `json:"tasks" validate:"required"`
}

// CompletionLogResponse wraps a task's completion history.
type CompletionLogResponse struct {
	Logs []models.CompletionLog `json:"logs" validate:"required"`
}

// ChecklistResponse wraps a task's checklist.
type ChecklistResponse struct {
	Items []models.ChecklistItem `json:"items" validate:"required"`
}

// CaptureListResponse wraps capture listings.
type CaptureListResponse struct {
	Captures []models.CaptureItem `json:"captures" validate:"required"`
}
