package store

import (
	"context"

	"github.com/starford/raido/internal/models"
)

// Repository is the transactional surface the task service works against.
// Consumers should depend on this interface rather than *Tx to allow fakes in tests.
type Repository interface {
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ParentOf(ctx context.Context, id int64) (*int64, bool, error)
	ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error)
	OpenTasks(ctx context.Context, priority models.Priority) ([]models.Task, error)
	DatedOpenTasks(ctx context.Context) ([]models.Task, error)
	Children(ctx context.Context, id int64) ([]models.Task, error)
	CountChildren(ctx context.Context, id int64) (int, error)
	InsertTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t models.Task, expectVersion int64) error
	DeleteTask(ctx context.Context, id int64) error

	Checklist(ctx context.Context, taskID int64) ([]models.ChecklistItem, error)
	GetChecklistItem(ctx context.Context, id int64) (models.ChecklistItem, error)
	NextOrderNo(ctx context.Context, taskID int64) (int, error)
	InsertChecklistItem(ctx context.Context, it *models.ChecklistItem) error
	UpdateChecklistItem(ctx context.Context, it models.ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, id int64) error

	ListCaptures(ctx context.Context, resolved *bool) ([]models.CaptureItem, error)
	GetCapture(ctx context.Context, id int64) (models.CaptureItem, error)
	InsertCapture(ctx context.Context, c *models.CaptureItem) error
	UpdateCapture(ctx context.Context, c models.CaptureItem) error
	DeleteCapture(ctx context.Context, id int64) error

	InsertCompletionLog(ctx context.Context, l *models.CompletionLog) error
	CompletionLogs(ctx context.Context, taskID int64) ([]models.CompletionLog, error)
}

// Verify *Tx satisfies Repository at compile time.
var _ Repository = (*Tx)(nil)
