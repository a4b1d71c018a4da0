package taskservice

import (
	"context"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/store"
)

// Create stores a new todo task. A parent_id must reference an existing task.
func (s *Service) Create(ctx context.Context, spec models.TaskSpec) (models.Task, error) {
	var t models.Task
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		var err error
		t, err = s.createTx(ctx, r, spec)
		if err != nil {
			return err
		}
		c.add("task.created", t.ID)
		return nil
	})
	return t, err
}

// CreateChild stores a new task under parentID.
func (s *Service) CreateChild(ctx context.Context, parentID int64, spec models.TaskSpec) (models.Task, error) {
	var t models.Task
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		if _, err := r.GetTask(ctx, parentID); err != nil {
			return err
		}
		spec.ParentID = &parentID
		var err error
		t, err = s.createTx(ctx, r, spec)
		if err != nil {
			return err
		}
		c.add("task.created", t.ID)
		return nil
	})
	return t, err
}

func (s *Service) createTx(ctx context.Context, r store.Repository, spec models.TaskSpec) (models.Task, error) {
	t := rules.NewTask(spec, s.now())
	t.Category = nonBlank(t.Category)
	if err := t.Validate(); err != nil {
		return models.Task{}, invalid(err)
	}
	if t.ParentID != nil {
		if err := rules.CheckParent(0, *t.ParentID, parentLookup(ctx, r)); err != nil {
			return models.Task{}, err
		}
	}
	if err := r.InsertTask(ctx, &t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Get returns the task with its children, checklist, origin and completion history.
func (s *Service) Get(ctx context.Context, id int64) (models.TaskDetail, error) {
	var d models.TaskDetail
	err := s.db.View(ctx, func(r store.Repository) error {
		t, err := r.GetTask(ctx, id)
		if err != nil {
			return err
		}
		d.Task = t
		if d.Children, err = r.Children(ctx, id); err != nil {
			return err
		}
		if d.Checklist, err = r.Checklist(ctx, id); err != nil {
			return err
		}
		if d.CompletionLogs, err = r.CompletionLogs(ctx, id); err != nil {
			return err
		}
		if t.OriginChecklistItemID == nil {
			return nil
		}
		item, err := r.GetChecklistItem(ctx, *t.OriginChecklistItemID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return nil
			}
			return err
		}
		source, err := r.GetTask(ctx, item.TaskID)
		if err != nil {
			return err
		}
		d.Origin = &models.OriginInfo{
			ParentTaskID:      source.ID,
			ParentTaskTitle:   source.Title,
			ChecklistItemText: item.Text,
		}
		return nil
	})
	return d, err
}

// List returns tasks matching f, newest first.
func (s *Service) List(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("unknown status %q", f.Status)
	}
	if f.TaskType != "" && !f.TaskType.Valid() {
		return nil, apperr.Validation("unknown task_type %q", f.TaskType)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, apperr.Validation("unknown priority %q", f.Priority)
	}
	var out []models.Task
	err := s.db.View(ctx, func(r store.Repository) error {
		var err error
		out, err = r.ListTasks(ctx, f)
		return err
	})
	return out, err
}

// Children returns the direct children of task id.
func (s *Service) Children(ctx context.Context, id int64) ([]models.Task, error) {
	var out []models.Task
	err := s.db.View(ctx, func(r store.Repository) error {
		if _, err := r.GetTask(ctx, id); err != nil {
			return err
		}
		var err error
		out, err = r.Children(ctx, id)
		return err
	})
	return out, err
}

// Update applies patch to task id. ifVersion, when set, must match the stored version.
func (s *Service) Update(ctx context.Context, id int64, patch models.TaskPatch, ifVersion *int64) (models.Task, error) {
	var t models.Task
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		cur, err := r.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if err := checkVersion(cur, ifVersion); err != nil {
			return err
		}
		if patch.Empty() {
			t = cur
			return nil
		}
		if patch.Status != nil {
			if err := rules.CheckStatusChange(cur.Status, *patch.Status); err != nil {
				return err
			}
		}

		next := patch.Apply(cur)
		next.Title = strings.TrimSpace(next.Title)
		next.DoneCriteria = strings.TrimSpace(next.DoneCriteria)
		next.Category = nonBlank(next.Category)
		if err := next.Validate(); err != nil {
			return invalid(err)
		}
		if patch.ParentID.Set && next.ParentID != nil {
			if err := rules.CheckParent(id, *next.ParentID, parentLookup(ctx, r)); err != nil {
				return err
			}
		}

		if err := s.save(ctx, r, &next, cur.Version); err != nil {
			return err
		}
		t = next
		c.add("task.updated", id)
		return nil
	})
	return t, err
}

// Complete moves task id into done and appends one completion log entry.
func (s *Service) Complete(ctx context.Context, id int64, note *string, ifVersion *int64) (models.Task, error) {
	var t models.Task
	err := s.update(ctx, func(r store.Repository, c *changes) error {
		cur, err := r.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if err := checkVersion(cur, ifVersion); err != nil {
			return err
		}
		checklist, err := r.Checklist(ctx, id)
		if err != nil {
			return err
		}
		if err := rules.CheckComplete(cur, checklist, s.blockOpenChecklist); err != nil {
			return err
		}

		next := cur
		next.Status = models.StatusDone
		if err := s.save(ctx, r, &next, cur.Version); err != nil {
			return err
		}
		entry := models.CompletionLog{TaskID: id, CompletedAt: next.LastUpdatedAt, Note: nonBlank(note)}
		if err := r.InsertCompletionLog(ctx, &entry); err != nil {
			return err
		}
		t = next
		c.add("task.completed", id)
		return nil
	})
	return t, err
}

// Delete removes task id. Children become top-level tasks, tasks extracted from its
// checklist lose their origin, linked captures are unlinked and completion logs stay.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.update(ctx, func(r store.Repository, c *changes) error {
		if _, err := r.GetTask(ctx, id); err != nil {
			return err
		}
		children, err := r.Children(ctx, id)
		if err != nil {
			return err
		}
		checklist, err := r.Checklist(ctx, id)
		if err != nil {
			return err
		}
		captures, err := r.ListCaptures(ctx, nil)
		if err != nil {
			return err
		}
		if err := r.DeleteTask(ctx, id); err != nil {
			return err
		}

		c.add("task.deleted", id)
		for _, child := range children {
			c.add("task.updated", child.ID)
		}
		for _, it := range checklist {
			if it.Extracted() && *it.ExtractedTaskID != id {
				c.add("task.updated", *it.ExtractedTaskID)
			}
		}
		for _, cp := range captures {
			if cp.RelatedTaskID != nil && *cp.RelatedTaskID == id {
				c.add("capture.updated", cp.ID)
			}
		}
		return nil
	})
}

// CompletionLogs returns the completion history of task id, newest first. History
// outlives the task, so an unknown id yields an empty list.
func (s *Service) CompletionLogs(ctx context.Context, id int64) ([]models.CompletionLog, error) {
	var out []models.CompletionLog
	err := s.db.View(ctx, func(r store.Repository) error {
		var err error
		out, err = r.CompletionLogs(ctx, id)
		return err
	})
	return out, err
}

// save bumps version and last_updated_at and writes t against expectVersion.
func (s *Service) save(ctx context.Context, r store.Repository, t *models.Task, expectVersion int64) error {
	t.Version = expectVersion + 1
	t.LastUpdatedAt = s.now()
	return r.UpdateTask(ctx, *t, expectVersion)
}
