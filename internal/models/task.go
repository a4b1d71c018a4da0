package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Task is the aggregate root: it owns its checklist items.
type Task struct {
	ID                    int64     `json:"id"`
	Title                 string    `json:"title"`
	TaskType              TaskType  `json:"task_type"`
	Category              *string   `json:"category"`
	Priority              Priority  `json:"priority"`
	Status                Status    `json:"status"`
	DueDate               *Date     `json:"due_date"`
	ParentID              *int64    `json:"parent_id"`
	DoneCriteria          string    `json:"done_criteria"`
	DecisionCriteria      *string   `json:"decision_criteria"`
	Reversible            *bool     `json:"reversible"`
	ExplorationLimit      *int      `json:"exploration_limit"`
	OriginChecklistItemID *int64    `json:"origin_checklist_item_id"`
	Version               int64     `json:"version"`
	LastUpdatedAt         time.Time `json:"last_updated_at"`
	CreatedAt             time.Time `json:"created_at"`
}

var notBlank = validation.By(func(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// Validate checks field-level invariants of a task record.
func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, notBlank),
		validation.Field(&t.TaskType, validation.Required, validation.In(toAny(AllTaskTypes)...)),
		validation.Field(&t.Priority, validation.Required, validation.In(toAny(AllPriorities)...)),
		validation.Field(&t.Status, validation.Required, validation.In(toAny(AllStatuses)...)),
		validation.Field(&t.DoneCriteria, notBlank),
		validation.Field(&t.ExplorationLimit, validation.Min(0)),
	)
}

// IsDecision reports whether convergence rules apply to t.
func (t Task) IsDecision() bool { return t.TaskType == TaskTypeDecision }

// TaskSpec is the input for creating a task.
type TaskSpec struct {
	Title            string   `json:"title"`
	TaskType         TaskType `json:"task_type"`
	Category         *string  `json:"category"`
	Priority         Priority `json:"priority"`
	DueDate          *Date    `json:"due_date"`
	ParentID         *int64   `json:"parent_id"`
	DoneCriteria     string   `json:"done_criteria"`
	DecisionCriteria *string  `json:"decision_criteria"`
	Reversible       *bool    `json:"reversible"`
	ExplorationLimit *int     `json:"exploration_limit"`
}

// TaskPatch is a partial update. Nil pointers and unset Optionals leave the field alone.
type TaskPatch struct {
	Title            *string          `json:"title"`
	TaskType         *TaskType        `json:"task_type"`
	Category         Optional[string] `json:"category"`
	Priority         *Priority        `json:"priority"`
	Status           *Status          `json:"status"`
	DueDate          Optional[Date]   `json:"due_date"`
	ParentID         Optional[int64]  `json:"parent_id"`
	DoneCriteria     *string          `json:"done_criteria"`
	DecisionCriteria Optional[string] `json:"decision_criteria"`
	Reversible       Optional[bool]   `json:"reversible"`
	ExplorationLimit Optional[int]    `json:"exploration_limit"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.TaskType == nil && !p.Category.Set && p.Priority == nil &&
		p.Status == nil && !p.DueDate.Set && !p.ParentID.Set && p.DoneCriteria == nil &&
		!p.DecisionCriteria.Set && !p.Reversible.Set && !p.ExplorationLimit.Set
}

// Apply returns a copy of t with the patch fields written over it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.Category.Set {
		t.Category = p.Category.Value
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.ParentID.Set {
		t.ParentID = p.ParentID.Value
	}
	if p.DoneCriteria != nil {
		t.DoneCriteria = *p.DoneCriteria
	}
	if p.DecisionCriteria.Set {
		t.DecisionCriteria = p.DecisionCriteria.Value
	}
	if p.Reversible.Set {
		t.Reversible = p.Reversible.Value
	}
	if p.ExplorationLimit.Set {
		t.ExplorationLimit = p.ExplorationLimit.Value
	}
	return t
}

// TaskFilter narrows task listings. Zero fields match everything.
type TaskFilter struct {
	Status   Status
	TaskType TaskType
	Priority Priority
	ParentID *int64
}
