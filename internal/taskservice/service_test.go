package taskservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/testutil"
)

var start = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	svc   *Service
	clock *testutil.Clock
	rec   *testutil.Recorder
}

func newEnv(t *testing.T, opts ...Option) env {
	t.Helper()
	clock := testutil.NewClock(start)
	rec := &testutil.Recorder{}
	opts = append([]Option{WithClock(clock.Now), WithLocation(time.UTC), WithNotifier(rec)}, opts...)
	return env{svc: NewService(testutil.TestDB(t), opts...), clock: clock, rec: rec}
}

func ptr[T any](v T) *T { return &v }

func execSpec(title string) models.TaskSpec {
	return models.TaskSpec{
		Title:        title,
		TaskType:     models.TaskTypeExecution,
		Priority:     models.PriorityMust,
		DoneCriteria: title + " is done",
	}
}

func mustCreate(t *testing.T, e env, spec models.TaskSpec) models.Task {
	t.Helper()
	task, err := e.svc.Create(context.Background(), spec)
	require.NoError(t, err)
	return task
}

func TestCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	task, err := e.svc.Create(ctx, execSpec("  Write report  "))
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, int64(1), task.Version)
	assert.True(t, task.CreatedAt.Equal(start))
	assert.True(t, task.LastUpdatedAt.Equal(start))
	assert.Equal(t, []string{"task.created:1"}, e.rec.Snapshot())
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := map[string]func(*models.TaskSpec){
		"blank title":         func(s *models.TaskSpec) { s.Title = "   " },
		"blank done criteria": func(s *models.TaskSpec) { s.DoneCriteria = "" },
		"unknown type":        func(s *models.TaskSpec) { s.TaskType = "chore" },
		"missing priority":    func(s *models.TaskSpec) { s.Priority = "" },
		"missing parent":      func(s *models.TaskSpec) { s.ParentID = ptr(int64(99)) },
		"negative limit":      func(s *models.TaskSpec) { s.ExplorationLimit = ptr(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spec := execSpec("task")
			mutate(&spec)
			_, err := e.svc.Create(ctx, spec)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
	tasks, err := e.svc.List(ctx, models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks, "failed creates must not persist anything")
	assert.Empty(t, e.rec.Snapshot())
}

func TestCreateChild(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parent := mustCreate(t, e, execSpec("parent"))

	spec := execSpec("child")
	spec.ParentID = ptr(int64(12345))
	child, err := e.svc.CreateChild(ctx, parent.ID, spec)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID, "parent id is forced")

	_, err = e.svc.CreateChild(ctx, 404, execSpec("orphan"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	children, err := e.svc.Children(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)
}

func TestUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("draft"))

	e.clock.Advance(time.Hour)
	got, err := e.svc.Update(ctx, task.ID, models.TaskPatch{
		Title:   ptr("final"),
		Status:  ptr(models.StatusDoing),
		DueDate: models.Some(models.NewDate(2026, 4, 1)),
	}, ptr(task.Version))
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, models.StatusDoing, got.Status)
	assert.Equal(t, "2026-04-01", got.DueDate.String())
	assert.Equal(t, int64(2), got.Version)
	assert.True(t, got.LastUpdatedAt.Equal(start.Add(time.Hour)))

	cleared, err := e.svc.Update(ctx, task.ID, models.TaskPatch{DueDate: models.Null[models.Date]()}, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
}

func TestUpdate_Rules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("task"))

	_, err := e.svc.Update(ctx, task.ID, models.TaskPatch{Status: ptr(models.StatusDone)}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation, "done only via Complete")

	_, err = e.svc.Update(ctx, task.ID, models.TaskPatch{DoneCriteria: ptr(" ")}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.svc.Update(ctx, 404, models.TaskPatch{Title: ptr("x")}, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.svc.Update(ctx, task.ID, models.TaskPatch{Title: ptr("x")}, ptr(int64(7)))
	assert.ErrorIs(t, err, apperr.ErrConflict, "stale If-Match version")

	_, err = e.svc.Complete(ctx, task.ID, nil, nil)
	require.NoError(t, err)
	_, err = e.svc.Update(ctx, task.ID, models.TaskPatch{Status: ptr(models.StatusTodo)}, nil)
	assert.ErrorIs(t, err, apperr.ErrConflict, "done is terminal")
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("task"))

	e.clock.Advance(time.Hour)
	got, err := e.svc.Update(ctx, task.ID, models.TaskPatch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, task.Version, got.Version)
	assert.True(t, got.LastUpdatedAt.Equal(task.LastUpdatedAt))
	assert.Equal(t, []string{"task.created:1"}, e.rec.Snapshot())
}

func TestUpdate_ParentCycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e, execSpec("a"))
	b, err := e.svc.CreateChild(ctx, a.ID, execSpec("b"))
	require.NoError(t, err)
	c, err := e.svc.CreateChild(ctx, b.ID, execSpec("c"))
	require.NoError(t, err)

	_, err = e.svc.Update(ctx, a.ID, models.TaskPatch{ParentID: models.Some(c.ID)}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation, "cycle")
	_, err = e.svc.Update(ctx, a.ID, models.TaskPatch{ParentID: models.Some(a.ID)}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation, "self")
	_, err = e.svc.Update(ctx, a.ID, models.TaskPatch{ParentID: models.Some(int64(404))}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation, "missing")

	moved, err := e.svc.Update(ctx, c.ID, models.TaskPatch{ParentID: models.Null[int64]()}, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestComplete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("ship"))

	e.clock.Advance(2 * time.Hour)
	done, err := e.svc.Complete(ctx, task.ID, ptr("shipped on time"), ptr(int64(1)))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, done.Status)

	logs, err := e.svc.CompletionLogs(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "shipped on time", *logs[0].Note)
	assert.True(t, logs[0].CompletedAt.Equal(start.Add(2*time.Hour)))

	_, err = e.svc.Complete(ctx, task.ID, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	logs, err = e.svc.CompletionLogs(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "failed completion appends no row")

	_, err = e.svc.Complete(ctx, 404, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComplete_BlockOpenChecklist(t *testing.T) {
	e := newEnv(t, WithBlockOpenChecklist(true))
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("checklist"))
	item, err := e.svc.CreateChecklistItem(ctx, task.ID, models.ChecklistItemSpec{Text: "step"})
	require.NoError(t, err)

	_, err = e.svc.Complete(ctx, task.ID, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.svc.UpdateChecklistItem(ctx, task.ID, item.ID, models.ChecklistItemPatch{IsDone: ptr(true)})
	require.NoError(t, err)
	_, err = e.svc.Complete(ctx, task.ID, nil, nil)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parent := mustCreate(t, e, execSpec("parent"))
	child, err := e.svc.CreateChild(ctx, parent.ID, execSpec("child"))
	require.NoError(t, err)
	item, err := e.svc.CreateChecklistItem(ctx, parent.ID, models.ChecklistItemSpec{Text: "spin off"})
	require.NoError(t, err)
	extracted, err := e.svc.Extract(ctx, parent.ID, item.ID, models.ExtractOverrides{Standalone: true})
	require.NoError(t, err)
	capture, err := e.svc.CreateCapture(ctx, models.CaptureSpec{Text: "about parent", RelatedTaskID: &parent.ID})
	require.NoError(t, err)
	_, err = e.svc.Complete(ctx, parent.ID, nil, nil)
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, parent.ID))

	_, err = e.svc.Get(ctx, parent.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	orphan, err := e.svc.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.ParentID)
	assert.Equal(t, int64(2), orphan.Version, "orphaning bumps the version")

	spun, err := e.svc.Get(ctx, extracted.ExtractedTask.ID)
	require.NoError(t, err)
	assert.Nil(t, spun.OriginChecklistItemID)
	assert.Nil(t, spun.Origin)

	captures, err := e.svc.ListCaptures(ctx, nil)
	require.NoError(t, err)
	require.Len(t, captures, 1)
	assert.Equal(t, capture.ID, captures[0].ID)
	assert.Nil(t, captures[0].RelatedTaskID)

	logs, err := e.svc.CompletionLogs(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "completion history survives deletion")

	assert.Subset(t, e.rec.Snapshot(), []string{
		"task.deleted:1",
		"task.updated:2",
		"task.updated:3",
		"capture.updated:1",
	})

	assert.ErrorIs(t, e.svc.Delete(ctx, parent.ID), apperr.ErrNotFound)
}

func TestGet_Detail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parent := mustCreate(t, e, execSpec("Plan trip"))
	_, err := e.svc.CreateChecklistItem(ctx, parent.ID, models.ChecklistItemSpec{Text: "book hotel"})
	require.NoError(t, err)
	item, err := e.svc.CreateChecklistItem(ctx, parent.ID, models.ChecklistItemSpec{Text: "renew passport"})
	require.NoError(t, err)
	assert.Equal(t, 2, item.OrderNo)

	res, err := e.svc.Extract(ctx, parent.ID, item.ID, models.ExtractOverrides{})
	require.NoError(t, err)

	d, err := e.svc.Get(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, d.Checklist, 2)
	require.Len(t, d.Children, 1)
	assert.Equal(t, res.ExtractedTask.ID, d.Children[0].ID)
	assert.Empty(t, d.CompletionLogs)

	cd, err := e.svc.Get(ctx, res.ExtractedTask.ID)
	require.NoError(t, err)
	require.NotNil(t, cd.Origin)
	assert.Equal(t, models.OriginInfo{
		ParentTaskID:      parent.ID,
		ParentTaskTitle:   "Plan trip",
		ChecklistItemText: "renew passport",
	}, *cd.Origin)
}

func TestList_Filters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e, execSpec("a"))
	spec := execSpec("b")
	spec.Priority = models.PriorityShould
	spec.TaskType = models.TaskTypeResearch
	b := mustCreate(t, e, spec)

	got, err := e.svc.List(ctx, models.TaskFilter{Priority: models.PriorityShould})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	got, err = e.svc.List(ctx, models.TaskFilter{TaskType: models.TaskTypeExecution})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	_, err = e.svc.List(ctx, models.TaskFilter{Status: "finished"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEndToEnd_StaleAndCarryover(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a := mustCreate(t, e, execSpec("A"))
	e.clock.Advance(8 * 24 * time.Hour)
	today := e.svc.Today()

	specB := execSpec("B")
	specB.Priority = models.PriorityShould
	specB.DueDate = ptr(today.AddDays(-3))
	b := mustCreate(t, e, specB)

	stale, err := e.svc.ListStale(ctx, models.PriorityMust)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, a.ID, stale[0].ID)
	assert.Equal(t, 8, stale[0].StaleDays)
	assert.Equal(t, 7, stale[0].ThresholdDays)

	candidates, err := e.svc.CarryoverCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, b.ID, candidates[0].ID)
	assert.Equal(t, 3, candidates[0].OverdueDays)

	moved, err := e.svc.Carryover(ctx, b.ID, string(rules.ActionPlus2Days), nil)
	require.NoError(t, err)
	assert.Equal(t, today.AddDays(2).String(), moved.DueDate.String())
	assert.Equal(t, models.StatusTodo, moved.Status)
	assert.True(t, moved.LastUpdatedAt.Equal(e.clock.Now()))

	candidates, err = e.svc.CarryoverCandidates(ctx)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCarryover_DeterministicFromToday(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spec := execSpec("recurring slip")
	spec.DueDate = ptr(e.svc.Today().AddDays(-1))
	task := mustCreate(t, e, spec)

	first, err := e.svc.Carryover(ctx, task.ID, "plus_7d", nil)
	require.NoError(t, err)
	e.clock.Advance(24 * time.Hour)
	second, err := e.svc.Carryover(ctx, task.ID, "plus_7d", nil)
	require.NoError(t, err)

	assert.Equal(t, models.NewDate(2026, 3, 22).String(), first.DueDate.String())
	assert.Equal(t, models.NewDate(2026, 3, 23).String(), second.DueDate.String())
}

func TestCarryoverCandidates_SnoozedExcludedAlthoughOverdue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spec := execSpec("renew insurance")
	spec.DueDate = ptr(e.svc.Today().AddDays(-3))
	task := mustCreate(t, e, spec)

	candidates, err := e.svc.CarryoverCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	_, err = e.svc.Update(ctx, task.ID, models.TaskPatch{Status: ptr(models.StatusSnoozed)}, nil)
	require.NoError(t, err)
	candidates, err = e.svc.CarryoverCandidates(ctx)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCarryover_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spec := execSpec("late")
	spec.DueDate = ptr(e.svc.Today().AddDays(-2))
	task := mustCreate(t, e, spec)

	_, err := e.svc.Carryover(ctx, task.ID, "tomorrow", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.svc.Carryover(ctx, 404, "today", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	redefined, err := e.svc.Carryover(ctx, task.ID, "needs_redefine", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNeedsRedefine, redefined.Status)
	assert.Equal(t, spec.DueDate.String(), redefined.DueDate.String(), "due date untouched")

	candidates, err := e.svc.CarryoverCandidates(ctx)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, err = e.svc.Complete(ctx, task.ID, nil, nil)
	require.NoError(t, err)
	_, err = e.svc.Carryover(ctx, task.ID, "today", nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestConvergence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spec := execSpec("Choose a database")
	spec.TaskType = models.TaskTypeDecision
	spec.ExplorationLimit = ptr(3)
	spec.Reversible = ptr(false)
	decision := mustCreate(t, e, spec)

	for i := 0; i < 3; i++ {
		_, err := e.svc.CreateChild(ctx, decision.ID, execSpec("option"))
		require.NoError(t, err)
	}
	info, err := e.svc.Convergence(ctx, decision.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, info.ExplorationUsed)
	require.NotNil(t, info.ExplorationRemaining)
	assert.Equal(t, 0, *info.ExplorationRemaining)
	assert.True(t, info.Checklist.OptionsWithinLimit)
	assert.True(t, info.Checklist.StructureSimplified)
	assert.False(t, info.Checklist.ReversibleConfirmed)
	assert.False(t, info.IsConvergeable)

	_, err = e.svc.CreateChild(ctx, decision.ID, execSpec("one more"))
	require.NoError(t, err)
	_, err = e.svc.Update(ctx, decision.ID, models.TaskPatch{DecisionCriteria: models.Some("lowest ops cost")}, nil)
	require.NoError(t, err)
	info, err = e.svc.Convergence(ctx, decision.ID)
	require.NoError(t, err)
	assert.False(t, info.Checklist.OptionsWithinLimit)
	assert.False(t, info.Checklist.StructureSimplified)
	assert.True(t, info.Checklist.ReversibleConfirmed)

	plain := mustCreate(t, e, execSpec("not a decision"))
	_, err = e.svc.Convergence(ctx, plain.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestConvergence_InjectedPolicy(t *testing.T) {
	e := newEnv(t, WithStructurePolicy(rules.StructurePolicyFunc(func(models.Task, int) bool { return false })))
	spec := execSpec("decide")
	spec.TaskType = models.TaskTypeDecision
	spec.Reversible = ptr(true)
	decision := mustCreate(t, e, spec)

	info, err := e.svc.Convergence(context.Background(), decision.ID)
	require.NoError(t, err)
	assert.False(t, info.Checklist.StructureSimplified)
	assert.False(t, info.IsConvergeable)
}

func TestExtract_AtMostOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spec := execSpec("Move house")
	spec.DueDate = ptr(models.NewDate(2026, 5, 1))
	parent := mustCreate(t, e, spec)
	item, err := e.svc.CreateChecklistItem(ctx, parent.ID, models.ChecklistItemSpec{Text: "hire movers"})
	require.NoError(t, err)

	res, err := e.svc.Extract(ctx, parent.ID, item.ID, models.ExtractOverrides{Priority: ptr(models.PriorityShould)})
	require.NoError(t, err)
	assert.Equal(t, "hire movers", res.ExtractedTask.Title)
	assert.Equal(t, "hire movers", res.ExtractedTask.DoneCriteria)
	assert.Equal(t, models.PriorityShould, res.ExtractedTask.Priority)
	assert.Equal(t, "2026-05-01", res.ExtractedTask.DueDate.String())
	require.NotNil(t, res.ChecklistItem.ExtractedTaskID)
	assert.Equal(t, res.ExtractedTask.ID, *res.ChecklistItem.ExtractedTaskID)
	assert.False(t, res.ChecklistItem.IsDone, "extraction is not completion")

	_, err = e.svc.Extract(ctx, parent.ID, item.ID, models.ExtractOverrides{})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	items, err := e.svc.ListChecklist(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, res.ExtractedTask.ID, *items[0].ExtractedTaskID)

	err = e.svc.DeleteChecklistItem(ctx, parent.ID, item.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestDeleteChecklistItem_AfterExtractedTaskDeleted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	source := mustCreate(t, e, execSpec("Plan party"))
	item, err := e.svc.CreateChecklistItem(ctx, source.ID, models.ChecklistItemSpec{Text: "order cake"})
	require.NoError(t, err)
	res, err := e.svc.Extract(ctx, source.ID, item.ID, models.ExtractOverrides{})
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, res.ExtractedTask.ID))

	// The back-reference stays, so the item still cannot be extracted a second time.
	_, err = e.svc.Extract(ctx, source.ID, item.ID, models.ExtractOverrides{})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// With the produced task gone there is no provenance left to protect.
	require.NoError(t, e.svc.DeleteChecklistItem(ctx, source.ID, item.ID))
	items, err := e.svc.ListChecklist(ctx, source.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExtract_NotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e, execSpec("a"))
	b := mustCreate(t, e, execSpec("b"))
	item, err := e.svc.CreateChecklistItem(ctx, a.ID, models.ChecklistItemSpec{Text: "step"})
	require.NoError(t, err)

	_, err = e.svc.Extract(ctx, b.ID, item.ID, models.ExtractOverrides{})
	assert.ErrorIs(t, err, apperr.ErrNotFound, "item of another task")
	_, err = e.svc.Extract(ctx, a.ID, 404, models.ExtractOverrides{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.svc.Extract(ctx, 404, item.ID, models.ExtractOverrides{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChecklist_CRUD(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("task"))

	first, err := e.svc.CreateChecklistItem(ctx, task.ID, models.ChecklistItemSpec{Text: "one", OrderNo: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, first.OrderNo)
	second, err := e.svc.CreateChecklistItem(ctx, task.ID, models.ChecklistItemSpec{Text: "two"})
	require.NoError(t, err)
	assert.Equal(t, 6, second.OrderNo)

	_, err = e.svc.CreateChecklistItem(ctx, task.ID, models.ChecklistItemSpec{Text: "dup", OrderNo: ptr(5)})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = e.svc.CreateChecklistItem(ctx, task.ID, models.ChecklistItemSpec{Text: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.svc.CreateChecklistItem(ctx, 404, models.ChecklistItemSpec{Text: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := e.svc.UpdateChecklistItem(ctx, task.ID, second.ID, models.ChecklistItemPatch{Text: ptr("two!"), IsDone: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "two!", updated.Text)
	assert.True(t, updated.IsDone)

	require.NoError(t, e.svc.DeleteChecklistItem(ctx, task.ID, first.ID))
	items, err := e.svc.ListChecklist(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestCaptures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("task"))

	c, err := e.svc.CreateCapture(ctx, models.CaptureSpec{Text: "  look into this  "})
	require.NoError(t, err)
	assert.Equal(t, "look into this", c.Text)
	assert.False(t, c.IsResolved)

	_, err = e.svc.CreateCapture(ctx, models.CaptureSpec{Text: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.svc.CreateCapture(ctx, models.CaptureSpec{Text: "x", RelatedTaskID: ptr(int64(404))})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	linked, err := e.svc.UpdateCapture(ctx, c.ID, models.CapturePatch{RelatedTaskID: models.Some(task.ID)})
	require.NoError(t, err)
	assert.True(t, linked.IsResolved, "linking resolves")

	reopened, err := e.svc.UpdateCapture(ctx, c.ID, models.CapturePatch{IsResolved: ptr(false)})
	require.NoError(t, err)
	assert.False(t, reopened.IsResolved)
	assert.Equal(t, task.ID, *reopened.RelatedTaskID)

	open, err := e.svc.ListCaptures(ctx, ptr(false))
	require.NoError(t, err)
	assert.Len(t, open, 1)

	require.NoError(t, e.svc.DeleteCapture(ctx, c.ID))
	err = e.svc.DeleteCapture(ctx, c.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPromoteCapture(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parent := mustCreate(t, e, execSpec("Garden"))
	c, err := e.svc.CreateCapture(ctx, models.CaptureSpec{
		Text: "---\ndone_criteria: beds ready\n---\n# Prepare beds #outdoor\n- [ ] buy soil\n- [x] pick spot\n",
	})
	require.NoError(t, err)

	res, err := e.svc.PromoteCapture(ctx, c.ID, models.PromoteRequest{ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Equal(t, "Prepare beds #outdoor", res.Task.Title)
	assert.Equal(t, "beds ready", res.Task.DoneCriteria)
	assert.Equal(t, models.TaskTypeExecution, res.Task.TaskType)
	assert.Equal(t, models.PriorityShould, res.Task.Priority)
	assert.Equal(t, parent.ID, *res.Task.ParentID)
	require.Len(t, res.Checklist, 2)
	assert.Equal(t, "buy soil", res.Checklist[0].Text)
	assert.True(t, res.Checklist[1].IsDone)
	assert.True(t, res.Capture.IsResolved)
	assert.Equal(t, res.Task.ID, *res.Capture.RelatedTaskID)

	_, err = e.svc.PromoteCapture(ctx, c.ID, models.PromoteRequest{})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestPromoteCapture_ChecklistOnlyTitle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c, err := e.svc.CreateCapture(ctx, models.CaptureSpec{Text: "- [ ] buy milk\n- [ ] buy eggs\n"})
	require.NoError(t, err)

	res, err := e.svc.PromoteCapture(ctx, c.ID, models.PromoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", res.Task.Title)
	assert.Equal(t, "buy milk", res.Task.DoneCriteria)
	require.Len(t, res.Checklist, 2)
	assert.Equal(t, "buy eggs", res.Checklist[1].Text)
}

func TestImportCapture(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task := mustCreate(t, e, execSpec("task"))

	linked, err := e.svc.ImportCapture(ctx, []byte("---\ntask: 1\n---\nfollow up\n"))
	require.NoError(t, err)
	assert.Equal(t, task.ID, *linked.RelatedTaskID)

	dangling, err := e.svc.ImportCapture(ctx, []byte("---\ntask: 99\n---\nfollow up\n"))
	require.NoError(t, err)
	assert.Nil(t, dangling.RelatedTaskID)

	_, err = e.svc.ImportCapture(ctx, []byte("\n\n"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
