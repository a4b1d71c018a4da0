// Package store is the SQLite system of record for tasks, checklists, captures and
// completion logs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/raido/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	title                    TEXT NOT NULL,
	task_type                TEXT NOT NULL,
	category                 TEXT,
	priority                 TEXT NOT NULL,
	status                   TEXT NOT NULL DEFAULT 'todo',
	due_date                 TEXT,
	parent_id                INTEGER REFERENCES tasks(id),
	done_criteria            TEXT NOT NULL,
	decision_criteria        TEXT,
	reversible               BOOLEAN,
	exploration_limit        INTEGER,
	origin_checklist_item_id INTEGER,
	version                  INTEGER NOT NULL DEFAULT 1,
	last_updated_at          DATETIME NOT NULL,
	created_at               DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS checklist_items (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id           INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	text              TEXT NOT NULL,
	is_done           BOOLEAN NOT NULL DEFAULT 0,
	order_no          INTEGER NOT NULL,
	extracted_task_id INTEGER,
	UNIQUE(task_id, order_no)
);

CREATE TABLE IF NOT EXISTS capture_items (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	text            TEXT NOT NULL,
	related_task_id INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
	is_resolved     BOOLEAN NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS completion_logs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id      INTEGER NOT NULL,
	completed_at DATETIME NOT NULL,
	note         TEXT
);

CREATE INDEX IF NOT EXISTS idx_completion_logs_task ON completion_logs(task_id);
`

// DB wraps a sql.DB with task-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// Transactions take the write lock up front so commands on the same task serialize.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx scopes store operations to one transaction.
type Tx struct {
	q querier
}

// View runs fn against a consistent snapshot. Writes made by fn are discarded.
func (db *DB) View(ctx context.Context, fn func(Repository) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // read-only
	return fn(&Tx{q: tx})
}

// Update runs fn in a transaction and commits only if fn returns nil.
func (db *DB) Update(ctx context.Context, fn func(Repository) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := fn(&Tx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(format, args...)
	}
	return fmt.Errorf("store: "+format+": %w", append(args, err)...)
}
