package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/raido/internal/models"
)

// InsertCompletionLog appends l and sets its ID. Completion logs are never updated.
func (tx *Tx) InsertCompletionLog(ctx context.Context, l *models.CompletionLog) error {
	res, err := tx.q.ExecContext(ctx, `
		INSERT INTO completion_logs (task_id, completed_at, note) VALUES (?, ?, ?)
	`, l.TaskID, l.CompletedAt.UTC(), l.Note)
	if err != nil {
		return fmt.Errorf("store: insert completion log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: insert completion log id: %w", err)
	}
	l.ID = id
	return nil
}

// CompletionLogs returns the completion history of task id, newest first. Logs
// outlive their task, so this never reports not found.
func (tx *Tx) CompletionLogs(ctx context.Context, taskID int64) ([]models.CompletionLog, error) {
	rows, err := tx.q.QueryContext(ctx, `SELECT id, task_id, completed_at, note FROM completion_logs
		WHERE task_id = ? ORDER BY completed_at DESC, id DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("store: completion logs of %d: %w", taskID, err)
	}
	defer rows.Close()

	out := []models.CompletionLog{}
	for rows.Next() {
		var (
			l    models.CompletionLog
			note sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.TaskID, &l.CompletedAt, &note); err != nil {
			return nil, fmt.Errorf("store: scan completion log: %w", err)
		}
		l.Note = fromNullString(note)
		out = append(out, l)
	}
	return out, rows.Err()
}
