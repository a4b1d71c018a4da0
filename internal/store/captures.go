package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

const captureColumns = `id, text, related_task_id, is_resolved, created_at`

func scanCapture(s rowScanner) (models.CaptureItem, error) {
	var (
		c       models.CaptureItem
		related sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.Text, &related, &c.IsResolved, &c.CreatedAt); err != nil {
		return models.CaptureItem{}, err
	}
	c.RelatedTaskID = fromNullInt64(related)
	return c, nil
}

// ListCaptures returns captures newest first, optionally filtered by resolution.
func (tx *Tx) ListCaptures(ctx context.Context, resolved *bool) ([]models.CaptureItem, error) {
	q := `SELECT ` + captureColumns + ` FROM capture_items`
	var args []any
	if resolved != nil {
		q += ` WHERE is_resolved = ?`
		args = append(args, *resolved)
	}
	rows, err := tx.q.QueryContext(ctx, q+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list captures: %w", err)
	}
	defer rows.Close()

	out := []models.CaptureItem{}
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan capture: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCapture returns capture id.
func (tx *Tx) GetCapture(ctx context.Context, id int64) (models.CaptureItem, error) {
	row := tx.q.QueryRowContext(ctx, `SELECT `+captureColumns+` FROM capture_items WHERE id = ?`, id)
	c, err := scanCapture(row)
	if err != nil {
		return models.CaptureItem{}, notFoundOr(err, "capture %d", id)
	}
	return c, nil
}

// InsertCapture stores c and sets its ID.
func (tx *Tx) InsertCapture(ctx context.Context, c *models.CaptureItem) error {
	res, err := tx.q.ExecContext(ctx, `
		INSERT INTO capture_items (text, related_task_id, is_resolved, created_at)
		VALUES (?, ?, ?, ?)
	`, c.Text, c.RelatedTaskID, c.IsResolved, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert capture: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: insert capture id: %w", err)
	}
	c.ID = id
	return nil
}

// UpdateCapture writes every mutable column of c.
func (tx *Tx) UpdateCapture(ctx context.Context, c models.CaptureItem) error {
	res, err := tx.q.ExecContext(ctx, `
		UPDATE capture_items SET text = ?, related_task_id = ?, is_resolved = ? WHERE id = ?
	`, c.Text, c.RelatedTaskID, c.IsResolved, c.ID)
	if err != nil {
		return fmt.Errorf("store: update capture %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("capture %d", c.ID)
	}
	return nil
}

// DeleteCapture removes capture id.
func (tx *Tx) DeleteCapture(ctx context.Context, id int64) error {
	res, err := tx.q.ExecContext(ctx, `DELETE FROM capture_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete capture %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("capture %d", id)
	}
	return nil
}
