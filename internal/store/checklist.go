package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

const checklistColumns = `id, task_id, text, is_done, order_no, extracted_task_id`

func scanChecklistItem(s rowScanner) (models.ChecklistItem, error) {
	var (
		it        models.ChecklistItem
		extracted sql.NullInt64
	)
	if err := s.Scan(&it.ID, &it.TaskID, &it.Text, &it.IsDone, &it.OrderNo, &extracted); err != nil {
		return models.ChecklistItem{}, err
	}
	it.ExtractedTaskID = fromNullInt64(extracted)
	return it, nil
}

// Checklist returns the items of task id in processing order.
func (tx *Tx) Checklist(ctx context.Context, taskID int64) ([]models.ChecklistItem, error) {
	rows, err := tx.q.QueryContext(ctx, `SELECT `+checklistColumns+` FROM checklist_items
		WHERE task_id = ? ORDER BY order_no, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("store: checklist of %d: %w", taskID, err)
	}
	defer rows.Close()

	out := []models.ChecklistItem{}
	for rows.Next() {
		it, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan checklist item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetChecklistItem returns checklist item id regardless of which task owns it.
func (tx *Tx) GetChecklistItem(ctx context.Context, id int64) (models.ChecklistItem, error) {
	row := tx.q.QueryRowContext(ctx, `SELECT `+checklistColumns+` FROM checklist_items WHERE id = ?`, id)
	it, err := scanChecklistItem(row)
	if err != nil {
		return models.ChecklistItem{}, notFoundOr(err, "checklist item %d", id)
	}
	return it, nil
}

// NextOrderNo returns the order number that appends to the end of task id's checklist.
func (tx *Tx) NextOrderNo(ctx context.Context, taskID int64) (int, error) {
	var last sql.NullInt64
	err := tx.q.QueryRowContext(ctx, `SELECT max(order_no) FROM checklist_items WHERE task_id = ?`, taskID).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("store: next order no for %d: %w", taskID, err)
	}
	if !last.Valid {
		return 1, nil
	}
	return int(last.Int64) + 1, nil
}

// InsertChecklistItem stores it and sets its ID.
func (tx *Tx) InsertChecklistItem(ctx context.Context, it *models.ChecklistItem) error {
	res, err := tx.q.ExecContext(ctx, `
		INSERT INTO checklist_items (task_id, text, is_done, order_no, extracted_task_id)
		VALUES (?, ?, ?, ?, ?)
	`, it.TaskID, it.Text, it.IsDone, it.OrderNo, it.ExtractedTaskID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("order_no %d is already used on task %d", it.OrderNo, it.TaskID)
		}
		return fmt.Errorf("store: insert checklist item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: insert checklist item id: %w", err)
	}
	it.ID = id
	return nil
}

// UpdateChecklistItem writes every mutable column of it.
func (tx *Tx) UpdateChecklistItem(ctx context.Context, it models.ChecklistItem) error {
	res, err := tx.q.ExecContext(ctx, `
		UPDATE checklist_items SET text = ?, is_done = ?, order_no = ?, extracted_task_id = ?
		WHERE id = ?
	`, it.Text, it.IsDone, it.OrderNo, it.ExtractedTaskID, it.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("order_no %d is already used on task %d", it.OrderNo, it.TaskID)
		}
		return fmt.Errorf("store: update checklist item %d: %w", it.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("checklist item %d", it.ID)
	}
	return nil
}

// DeleteChecklistItem removes checklist item id.
func (tx *Tx) DeleteChecklistItem(ctx context.Context, id int64) error {
	if _, err := tx.q.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete checklist item %d: %w", id, err)
	}
	return nil
}
