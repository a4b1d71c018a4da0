package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

const taskColumns = `id, title, task_type, category, priority, status, due_date, parent_id,
	done_criteria, decision_criteria, reversible, exploration_limit, origin_checklist_item_id,
	version, last_updated_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (models.Task, error) {
	var (
		t          models.Task
		category   sql.NullString
		due        models.Date
		parentID   sql.NullInt64
		decision   sql.NullString
		reversible sql.NullBool
		limit      sql.NullInt64
		originItem sql.NullInt64
	)
	err := s.Scan(&t.ID, &t.Title, &t.TaskType, &category, &t.Priority, &t.Status, &due, &parentID,
		&t.DoneCriteria, &decision, &reversible, &limit, &originItem,
		&t.Version, &t.LastUpdatedAt, &t.CreatedAt)
	if err != nil {
		return models.Task{}, err
	}
	t.Category = fromNullString(category)
	if !due.IsZero() {
		t.DueDate = &due
	}
	t.ParentID = fromNullInt64(parentID)
	t.DecisionCriteria = fromNullString(decision)
	if reversible.Valid {
		t.Reversible = &reversible.Bool
	}
	if limit.Valid {
		n := int(limit.Int64)
		t.ExplorationLimit = &n
	}
	t.OriginChecklistItemID = fromNullInt64(originItem)
	return t, nil
}

func (tx *Tx) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := tx.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query tasks: %w", err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTask returns the task with id.
func (tx *Tx) GetTask(ctx context.Context, id int64) (models.Task, error) {
	row := tx.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, notFoundOr(err, "task %d", id)
	}
	return t, nil
}

// ParentOf returns the parent id of task id and whether the task exists.
func (tx *Tx) ParentOf(ctx context.Context, id int64) (*int64, bool, error) {
	var parent sql.NullInt64
	err := tx.q.QueryRowContext(ctx, `SELECT parent_id FROM tasks WHERE id = ?`, id).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: parent of %d: %w", id, err)
	}
	return fromNullInt64(parent), true, nil
}

// ListTasks returns tasks matching f, newest first.
func (tx *Tx) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.TaskType != "" {
		where = append(where, "task_type = ?")
		args = append(args, f.TaskType)
	}
	if f.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.ParentID != nil {
		where = append(where, "parent_id = ?")
		args = append(args, *f.ParentID)
	}

	q := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`
	return tx.queryTasks(ctx, q, args...)
}

// OpenTasks returns every task that is not done, optionally limited to one priority.
func (tx *Tx) OpenTasks(ctx context.Context, priority models.Priority) ([]models.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE status != ?`
	args := []any{models.StatusDone}
	if priority != "" {
		q += ` AND priority = ?`
		args = append(args, priority)
	}
	return tx.queryTasks(ctx, q+` ORDER BY id`, args...)
}

// DatedOpenTasks returns open tasks that have a due date.
func (tx *Tx) DatedOpenTasks(ctx context.Context) ([]models.Task, error) {
	return tx.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE status != ? AND due_date IS NOT NULL ORDER BY id`, models.StatusDone)
}

// Children returns the direct children of task id in creation order.
func (tx *Tx) Children(ctx context.Context, id int64) ([]models.Task, error) {
	return tx.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY id`, id)
}

// CountChildren returns the number of direct children of task id.
func (tx *Tx) CountChildren(ctx context.Context, id int64) (int, error) {
	var n int
	if err := tx.q.QueryRowContext(ctx, `SELECT count(*) FROM tasks WHERE parent_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count children of %d: %w", id, err)
	}
	return n, nil
}

// InsertTask stores t and sets its ID.
func (tx *Tx) InsertTask(ctx context.Context, t *models.Task) error {
	res, err := tx.q.ExecContext(ctx, `
		INSERT INTO tasks (title, task_type, category, priority, status, due_date, parent_id,
			done_criteria, decision_criteria, reversible, exploration_limit, origin_checklist_item_id,
			version, last_updated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Title, t.TaskType, t.Category, t.Priority, t.Status, dateArg(t.DueDate), t.ParentID,
		t.DoneCriteria, t.DecisionCriteria, t.Reversible, t.ExplorationLimit, t.OriginChecklistItemID,
		t.Version, t.LastUpdatedAt.UTC(), t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: insert task id: %w", err)
	}
	t.ID = id
	return nil
}

// UpdateTask writes t if the stored version still equals expectVersion.
func (tx *Tx) UpdateTask(ctx context.Context, t models.Task, expectVersion int64) error {
	res, err := tx.q.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, task_type = ?, category = ?, priority = ?, status = ?, due_date = ?,
			parent_id = ?, done_criteria = ?, decision_criteria = ?, reversible = ?,
			exploration_limit = ?, origin_checklist_item_id = ?, version = ?, last_updated_at = ?
		WHERE id = ? AND version = ?
	`, t.Title, t.TaskType, t.Category, t.Priority, t.Status, dateArg(t.DueDate),
		t.ParentID, t.DoneCriteria, t.DecisionCriteria, t.Reversible,
		t.ExplorationLimit, t.OriginChecklistItemID, t.Version, t.LastUpdatedAt.UTC(),
		t.ID, expectVersion)
	if err != nil {
		return fmt.Errorf("store: update task %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update task %d: %w", t.ID, err)
	}
	if n == 0 {
		return apperr.Conflict("task %d was modified concurrently", t.ID)
	}
	return nil
}

// DeleteTask removes task id and its checklist. Children are orphaned and provenance
// links into its checklist are cleared, both bumping the affected versions. Captures
// are unlinked and completion logs are kept.
func (tx *Tx) DeleteTask(ctx context.Context, id int64) error {
	stmts := []struct {
		what, sql string
	}{
		{"orphan children", `UPDATE tasks SET parent_id = NULL, version = version + 1 WHERE parent_id = ?`},
		{"clear origins", `UPDATE tasks SET origin_checklist_item_id = NULL, version = version + 1
			WHERE origin_checklist_item_id IN (SELECT id FROM checklist_items WHERE task_id = ?)`},
		{"unlink captures", `UPDATE capture_items SET related_task_id = NULL WHERE related_task_id = ?`},
		{"delete checklist", `DELETE FROM checklist_items WHERE task_id = ?`},
	}
	for _, s := range stmts {
		if _, err := tx.q.ExecContext(ctx, s.sql, id); err != nil {
			return fmt.Errorf("store: delete task %d: %s: %w", id, s.what, err)
		}
	}

	res, err := tx.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("task %d", id)
	}
	return nil
}

func dateArg(d *models.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func fromNullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
