package taskservice

import (
	"context"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/store"
)

// ListStale returns open tasks past their staleness threshold, most stale first.
// An empty priority covers both must and should.
func (s *Service) ListStale(ctx context.Context, priority models.Priority) ([]models.StaleTask, error) {
	if priority != "" && !priority.Valid() {
		return nil, apperr.Validation("unknown priority %q", priority)
	}
	var tasks []models.Task
	err := s.db.View(ctx, func(r store.Repository) error {
		var err error
		tasks, err = r.OpenTasks(ctx, priority)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rules.DetectStale(tasks, s.now()), nil
}

// CarryoverCandidates returns overdue actionable tasks, most overdue first.
func (s *Service) CarryoverCandidates(ctx context.Context) ([]models.CarryoverCandidate, error) {
	var tasks []models.Task
	err := s.db.View(ctx, func(r store.Repository) error {
		var err error
		tasks, err = r.DatedOpenTasks(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rules.CarryoverCandidates(tasks, s.Today()), nil
}

// Carryover applies one carryover action to task id. Done tasks are terminal and
// cannot be carried over.
func (s *Service) Carryover(ctx context.Context, id int64, action string, ifVersion *int64) (models.Task, error) {
	a, err := rules.ParseAction(action)
	if err != nil {
		return models.Task{}, err
	}
	var t models.Task
	err = s.update(ctx, func(r store.Repository, c *changes) error {
		cur, err := r.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if err := checkVersion(cur, ifVersion); err != nil {
			return err
		}
		if cur.Status == models.StatusDone {
			return apperr.Conflict("task %d is done and cannot be carried over", id)
		}
		next, err := rules.ApplyCarryover(cur, a, s.Today())
		if err != nil {
			return err
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

// Convergence evaluates decision task id against its exploration limit, structure
// and reversibility.
func (s *Service) Convergence(ctx context.Context, id int64) (models.ConvergenceInfo, error) {
	var (
		t     models.Task
		count int
	)
	err := s.db.View(ctx, func(r store.Repository) error {
		var err error
		if t, err = r.GetTask(ctx, id); err != nil {
			return err
		}
		count, err = r.CountChildren(ctx, id)
		return err
	})
	if err != nil {
		return models.ConvergenceInfo{}, err
	}
	return rules.EvaluateConvergence(t, count, s.policy)
}
