package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CaptureItem is a freeform inbox note.
type CaptureItem struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	RelatedTaskID *int64    `json:"related_task_id"`
	IsResolved    bool      `json:"is_resolved"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate checks field-level invariants of a capture.
func (c CaptureItem) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Text, notBlank),
	)
}

// CaptureSpec is the input for creating a capture.
type CaptureSpec struct {
	Text          string `json:"text"`
	RelatedTaskID *int64 `json:"related_task_id"`
}

// CapturePatch is a partial capture update.
type CapturePatch struct {
	Text          *string         `json:"text"`
	IsResolved    *bool           `json:"is_resolved"`
	RelatedTaskID Optional[int64] `json:"related_task_id"`
}

// PromoteRequest turns a capture into a task. Empty fields fall back to what the
// capture text declares.
type PromoteRequest struct {
	TaskType     TaskType `json:"task_type"`
	Priority     Priority `json:"priority"`
	DoneCriteria string   `json:"done_criteria"`
	DueDate      *Date    `json:"due_date"`
	ParentID     *int64   `json:"parent_id"`
}

// PromoteResult is the task created from a capture plus the resolved capture.
type PromoteResult struct {
	Task      Task            `json:"task"`
	Checklist []ChecklistItem `json:"checklist"`
	Capture   CaptureItem     `json:"capture"`
}

// CompletionLog is an append-only record of a task entering done.
type CompletionLog struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
	Note        *string   `json:"note"`
}
