package rules

import (
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// NewTask builds a fresh todo task from spec. It does not validate.
func NewTask(spec models.TaskSpec, now time.Time) models.Task {
	return models.Task{
		Title:            strings.TrimSpace(spec.Title),
		TaskType:         spec.TaskType,
		Category:         spec.Category,
		Priority:         spec.Priority,
		Status:           models.StatusTodo,
		DueDate:          spec.DueDate,
		ParentID:         spec.ParentID,
		DoneCriteria:     strings.TrimSpace(spec.DoneCriteria),
		DecisionCriteria: spec.DecisionCriteria,
		Reversible:       spec.Reversible,
		ExplorationLimit: spec.ExplorationLimit,
		Version:          1,
		LastUpdatedAt:    now,
		CreatedAt:        now,
	}
}

// CheckStatusChange validates a status transition requested through a plain update.
// Completion has its own operation, and done is terminal.
func CheckStatusChange(from, to models.Status) error {
	if from == to {
		return nil
	}
	if to == models.StatusDone {
		return apperr.Validation("status %q can only be set by completing the task", models.StatusDone)
	}
	if from == models.StatusDone {
		return apperr.Conflict("task is done; status cannot change to %q", to)
	}
	return nil
}

// OpenChecklistItems counts unfinished items that have not been extracted.
func OpenChecklistItems(items []models.ChecklistItem) int {
	n := 0
	for _, it := range items {
		if !it.IsDone && !it.Extracted() {
			n++
		}
	}
	return n
}

// CheckComplete validates that t may transition into done. When blockOpen is set,
// open checklist items also prevent completion.
func CheckComplete(t models.Task, checklist []models.ChecklistItem, blockOpen bool) error {
	if t.Status == models.StatusDone {
		return apperr.Conflict("task %d is already done", t.ID)
	}
	if blockOpen {
		if n := OpenChecklistItems(checklist); n > 0 {
			return apperr.Conflict("task %d has %d open checklist items", t.ID, n)
		}
	}
	return nil
}

// ParentLookup returns the parent id of task id, and whether the task exists.
type ParentLookup func(id int64) (parentID *int64, exists bool, err error)

// CheckParent verifies that parentID may become the parent of taskID: it must exist,
// must not be taskID itself, and taskID must not be one of its ancestors. Use 0 for
// a task that has not been stored yet.
func CheckParent(taskID, parentID int64, lookup ParentLookup) error {
	if taskID != 0 && parentID == taskID {
		return apperr.Validation("task %d cannot be its own parent", taskID)
	}
	seen := map[int64]struct{}{}
	cur := parentID
	for {
		next, exists, err := lookup(cur)
		if err != nil {
			return err
		}
		if !exists {
			if cur == parentID {
				return apperr.Validation("parent task %d does not exist", parentID)
			}
			return nil
		}
		seen[cur] = struct{}{}
		if next == nil {
			return nil
		}
		if taskID != 0 && *next == taskID {
			return apperr.Validation("parent %d would make task %d its own ancestor", parentID, taskID)
		}
		if _, loop := seen[*next]; loop {
			return nil
		}
		cur = *next
	}
}
