package taskservice

import (
	"context"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/store"
)

// ListCaptures returns captures newest first, optionally filtered by resolution.
func (s *Service) ListCaptures(ctx context.Context, resolved *bool) ([]models.CaptureItem, error) {
	var out []models.CaptureItem
	err := s.db.View(ctx, func(r store.Repository) error {
		var err error
		out, err = r.ListCaptures(ctx, resolved)
		return err
	})
	return out, err
}

// CreateCapture stores an unresolved capture.
func (s *Service) CreateCapture(ctx context.Context, spec models.CaptureSpec) (models.CaptureItem, error) {
	var cp models.CaptureItem
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		cp = models.CaptureItem{
			Text:          strings.TrimSpace(spec.Text),
			RelatedTaskID: spec.RelatedTaskID,
			CreatedAt:     s.now(),
		}
		if err := cp.Validate(); err != nil {
			return invalid(err)
		}
		if err := relatedExists(ctx, r, cp.RelatedTaskID); err != nil {
			return err
		}
		if err := r.InsertCapture(ctx, &cp); err != nil {
			return err
		}
		c.add("capture.created", cp.ID)
		return nil
	})
	return cp, err
}

// ImportCapture stores a note dropped into the inbox folder. A frontmatter task
// reference links the capture when that task exists.
func (s *Service) ImportCapture(ctx context.Context, data []byte) (models.CaptureItem, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return models.CaptureItem{}, apperr.Validation("%v", err)
	}
	spec := models.CaptureSpec{Text: string(data)}
	if res.TaskID != nil {
		err := s.db.View(ctx, func(r store.Repository) error {
			_, err := r.GetTask(ctx, *res.TaskID)
			return err
		})
		switch {
		case err == nil:
			spec.RelatedTaskID = res.TaskID
		case apperr.KindOf(err) != apperr.KindNotFound:
			return models.CaptureItem{}, err
		}
	}
	return s.CreateCapture(ctx, spec)
}

// UpdateCapture edits capture id. Linking it to a task resolves it unless the patch
// sets is_resolved itself.
func (s *Service) UpdateCapture(ctx context.Context, id int64, patch models.CapturePatch) (models.CaptureItem, error) {
	var cp models.CaptureItem
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		var err error
		if cp, err = r.GetCapture(ctx, id); err != nil {
			return err
		}
		if patch.Text != nil {
			cp.Text = strings.TrimSpace(*patch.Text)
		}
		if patch.RelatedTaskID.Set {
			if err := relatedExists(ctx, r, patch.RelatedTaskID.Value); err != nil {
				return err
			}
			cp.RelatedTaskID = patch.RelatedTaskID.Value
			if cp.RelatedTaskID != nil && patch.IsResolved == nil {
				cp.IsResolved = true
			}
		}
		if patch.IsResolved != nil {
			cp.IsResolved = *patch.IsResolved
		}
		if err := cp.Validate(); err != nil {
			return invalid(err)
		}
		if err := r.UpdateCapture(ctx, cp); err != nil {
			return err
		}
		c.add("capture.updated", id)
		return nil
	})
	return cp, err
}

// DeleteCapture removes capture id.
func (s *Service) DeleteCapture(ctx context.Context, id int64) error {
	return s.update(ctx, func(r store.Repository, c *changes) error {
		if err := r.DeleteCapture(ctx, id); err != nil {
			return err
		}
		c.add("capture.deleted", id)
		return nil
	})
}

// PromoteCapture turns capture id into a task. The capture text is read as Markdown:
// its title, done criteria, tags and checklist lines seed the new task, and the
// capture ends up linked and resolved.
func (s *Service) PromoteCapture(ctx context.Context, id int64, req models.PromoteRequest) (models.PromoteResult, error) {
	var res models.PromoteResult
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		cp, err := r.GetCapture(ctx, id)
		if err != nil {
			return err
		}
		if cp.IsResolved {
			return apperr.Conflict("capture %d is already resolved", id)
		}
		note, err := parser.Parse([]byte(cp.Text))
		if err != nil {
			return apperr.Validation("capture %d: %v", id, err)
		}

		spec := promotedSpec(cp, note, req)
		t, err := s.createTx(ctx, r, spec)
		if err != nil {
			return err
		}
		c.add("task.created", t.ID)

		res.Checklist = []models.ChecklistItem{}
		for i, line := range note.Checklist {
			it := models.ChecklistItem{TaskID: t.ID, Text: line.Text, IsDone: line.Done, OrderNo: i + 1}
			if err := r.InsertChecklistItem(ctx, &it); err != nil {
				return err
			}
			res.Checklist = append(res.Checklist, it)
			c.add("checklist_item.created", it.ID)
		}

		cp.RelatedTaskID = &t.ID
		cp.IsResolved = true
		if err := r.UpdateCapture(ctx, cp); err != nil {
			return err
		}
		c.add("capture.updated", cp.ID)

		res.Task = t
		res.Capture = cp
		return nil
	})
	return res, err
}

func promotedSpec(cp models.CaptureItem, note *parser.Result, req models.PromoteRequest) models.TaskSpec {
	spec := models.TaskSpec{
		Title:        note.Title,
		TaskType:     req.TaskType,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ParentID:     req.ParentID,
		DoneCriteria: req.DoneCriteria,
	}
	if spec.Title == "" && len(note.Checklist) > 0 {
		spec.Title = note.Checklist[0].Text
	}
	if spec.Title == "" {
		spec.Title, _, _ = strings.Cut(strings.TrimSpace(cp.Text), "\n")
	}
	if spec.TaskType == "" {
		spec.TaskType = models.TaskTypeExecution
	}
	if spec.Priority == "" {
		spec.Priority = models.PriorityShould
	}
	if strings.TrimSpace(spec.DoneCriteria) == "" {
		spec.DoneCriteria = note.DoneCriteria
	}
	if strings.TrimSpace(spec.DoneCriteria) == "" {
		spec.DoneCriteria = spec.Title
	}
	if len(note.Tags) > 0 {
		category := note.Tags[0]
		spec.Category = &category
	}
	return spec
}

func relatedExists(ctx context.Context, r store.Repository, taskID *int64) error {
	if taskID == nil {
		return nil
	}
	exists, err := taskExists(ctx, r, *taskID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.Validation("related task %d does not exist", *taskID)
	}
	return nil
}

func taskExists(ctx context.Context, r store.Repository, id int64) (bool, error) {
	_, exists, err := r.ParentOf(ctx, id)
	return exists, err
}
