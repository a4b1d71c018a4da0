package models

import validation "github.com/go-ozzo/ozzo-validation/v4"

// ChecklistItem is one line of a task's checklist.
type ChecklistItem struct {
	ID              int64  `json:"id"`
	TaskID          int64  `json:"task_id"`
	Text            string `json:"text"`
	IsDone          bool   `json:"is_done"`
	OrderNo         int    `json:"order_no"`
	ExtractedTaskID *int64 `json:"extracted_task_id"`
}

// Validate checks field-level invariants of a checklist item.
func (c ChecklistItem) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Text, notBlank),
		validation.Field(&c.OrderNo, validation.Min(0)),
	)
}

// Extracted reports whether the item has already been promoted to a task.
func (c ChecklistItem) Extracted() bool { return c.ExtractedTaskID != nil }

// ChecklistItemSpec is the input for adding a checklist item. A nil OrderNo
// appends after the current last item.
type ChecklistItemSpec struct {
	Text    string `json:"text"`
	OrderNo *int   `json:"order_no"`
}

// ChecklistItemPatch is a partial checklist item update.
type ChecklistItemPatch struct {
	Text    *string `json:"text"`
	IsDone  *bool   `json:"is_done"`
	OrderNo *int    `json:"order_no"`
}

// ExtractOverrides replaces the defaults an extracted task inherits.
type ExtractOverrides struct {
	Title        *string   `json:"title"`
	TaskType     *TaskType `json:"task_type"`
	Priority     *Priority `json:"priority"`
	DueDate      *Date     `json:"due_date"`
	DoneCriteria *string   `json:"done_criteria"`
	// Standalone creates a top-level task instead of a child of the source task.
	Standalone bool `json:"standalone"`
}

// ExtractResult is the outcome of promoting a checklist item.
type ExtractResult struct {
	ExtractedTask Task          `json:"extracted_task"`
	ChecklistItem ChecklistItem `json:"checklist_item"`
}
