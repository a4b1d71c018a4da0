package rules

import (
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// CheckExtractable validates that item, addressed through taskID, may be promoted.
func CheckExtractable(taskID int64, item models.ChecklistItem) error {
	if item.TaskID != taskID {
		return apperr.NotFound("checklist item %d not found on task %d", item.ID, taskID)
	}
	if item.Extracted() {
		return apperr.Conflict("checklist item %d was already extracted to task %d", item.ID, *item.ExtractedTaskID)
	}
	return nil
}

// BuildExtractedTask derives the task promoted from item. Unset overrides inherit
// from the source task; the checklist text becomes the title.
func BuildExtractedTask(source models.Task, item models.ChecklistItem, ov models.ExtractOverrides, now time.Time) models.Task {
	spec := models.TaskSpec{
		Title:    item.Text,
		TaskType: source.TaskType,
		Priority: source.Priority,
		DueDate:  source.DueDate,
	}
	if ov.Title != nil && strings.TrimSpace(*ov.Title) != "" {
		spec.Title = *ov.Title
	}
	if ov.TaskType != nil {
		spec.TaskType = *ov.TaskType
	}
	if ov.Priority != nil {
		spec.Priority = *ov.Priority
	}
	if ov.DueDate != nil {
		spec.DueDate = ov.DueDate
	}
	spec.DoneCriteria = spec.Title
	if ov.DoneCriteria != nil && strings.TrimSpace(*ov.DoneCriteria) != "" {
		spec.DoneCriteria = *ov.DoneCriteria
	}
	if !ov.Standalone {
		parentID := source.ID
		spec.ParentID = &parentID
	}

	t := NewTask(spec, now)
	itemID := item.ID
	t.OriginChecklistItemID = &itemID
	return t
}
