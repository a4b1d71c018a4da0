package taskservice

import (
	"context"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/store"
)

// ListChecklist returns the checklist of task id in order.
func (s *Service) ListChecklist(ctx context.Context, taskID int64) ([]models.ChecklistItem, error) {
	var out []models.ChecklistItem
	err := s.db.View(ctx, func(r store.Repository) error {
		if _, err := r.GetTask(ctx, taskID); err != nil {
			return err
		}
		var err error
		out, err = r.Checklist(ctx, taskID)
		return err
	})
	return out, err
}

// CreateChecklistItem appends an item to task taskID, or places it at spec.OrderNo.
func (s *Service) CreateChecklistItem(ctx context.Context, taskID int64, spec models.ChecklistItemSpec) (models.ChecklistItem, error) {
	var it models.ChecklistItem
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		if _, err := r.GetTask(ctx, taskID); err != nil {
			return err
		}
		it = models.ChecklistItem{TaskID: taskID, Text: strings.TrimSpace(spec.Text)}
		if spec.OrderNo != nil {
			it.OrderNo = *spec.OrderNo
		} else {
			n, err := r.NextOrderNo(ctx, taskID)
			if err != nil {
				return err
			}
			it.OrderNo = n
		}
		if err := it.Validate(); err != nil {
			return invalid(err)
		}
		if err := r.InsertChecklistItem(ctx, &it); err != nil {
			return err
		}
		c.add("checklist_item.created", it.ID)
		return nil
	})
	return it, err
}

// UpdateChecklistItem edits an item of task taskID.
func (s *Service) UpdateChecklistItem(ctx context.Context, taskID, itemID int64, patch models.ChecklistItemPatch) (models.ChecklistItem, error) {
	var it models.ChecklistItem
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		var err error
		if it, err = ownedItem(ctx, r, taskID, itemID); err != nil {
			return err
		}
		if patch.Text != nil {
			it.Text = strings.TrimSpace(*patch.Text)
		}
		if patch.IsDone != nil {
			it.IsDone = *patch.IsDone
		}
		if patch.OrderNo != nil {
			it.OrderNo = *patch.OrderNo
		}
		if err := it.Validate(); err != nil {
			return invalid(err)
		}
		if err := r.UpdateChecklistItem(ctx, it); err != nil {
			return err
		}
		c.add("checklist_item.updated", it.ID)
		return nil
	})
	return it, err
}

// DeleteChecklistItem removes an item of task taskID. An extracted item is kept as
// provenance while the task it produced still exists.
func (s *Service) DeleteChecklistItem(ctx context.Context, taskID, itemID int64) error {
	return s.update(ctx, func(r store.Repository, c *changes) error {
		it, err := ownedItem(ctx, r, taskID, itemID)
		if err != nil {
			return err
		}
		if it.Extracted() {
			live, err := taskExists(ctx, r, *it.ExtractedTaskID)
			if err != nil {
				return err
			}
			if live {
				return apperr.Conflict("checklist item %d was extracted to task %d and cannot be deleted", itemID, *it.ExtractedTaskID)
			}
		}
		if err := r.DeleteChecklistItem(ctx, itemID); err != nil {
			return err
		}
		c.add("checklist_item.deleted", itemID)
		return nil
	})
}

// Extract promotes checklist item itemID of task taskID into its own task. The new
// task and the item's back-reference are written together, at most once per item.
func (s *Service) Extract(ctx context.Context, taskID, itemID int64, ov models.ExtractOverrides) (models.ExtractResult, error) {
	var res models.ExtractResult
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		source, err := r.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		item, err := r.GetChecklistItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := rules.CheckExtractable(taskID, item); err != nil {
			return err
		}

		t := rules.BuildExtractedTask(source, item, ov, s.now())
		if err := t.Validate(); err != nil {
			return invalid(err)
		}
		if err := r.InsertTask(ctx, &t); err != nil {
			return err
		}
		item.ExtractedTaskID = &t.ID
		if err := r.UpdateChecklistItem(ctx, item); err != nil {
			return err
		}

		res = models.ExtractResult{ExtractedTask: t, ChecklistItem: item}
		c.add("task.created", t.ID)
		c.add("checklist_item.updated", item.ID)
		return nil
	})
	return res, err
}

func ownedItem(ctx context.Context, r store.Repository, taskID, itemID int64) (models.ChecklistItem, error) {
	if _, err := r.GetTask(ctx, taskID); err != nil {
		return models.ChecklistItem{}, err
	}
	it, err := r.GetChecklistItem(ctx, itemID)
	if err != nil {
		return models.ChecklistItem{}, err
	}
	if it.TaskID != taskID {
		return models.ChecklistItem{}, apperr.NotFound("checklist item %d not found on task %d", itemID, taskID)
	}
	return it, nil
}
