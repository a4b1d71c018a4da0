package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/store"
	"github.com/starford/raido/internal/taskservice"
)

// Runtime is the task service wired from configuration, plus the resources
// backing it.
type Runtime struct {
	Config  *Config
	Logger  *slog.Logger
	Service *taskservice.Service
	DB      *store.DB

	closers []io.Closer
}

// Open builds a Runtime from the given options. extra options are applied to
// the task service after the configured ones.
func Open(opts []Option, extra ...taskservice.Option) (*Runtime, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	rt := &Runtime{Config: cfg}

	logger, logFile := newLogger(cfg.App, app.logOutput)
	rt.Logger = logger
	if logFile != nil {
		rt.closers = append(rt.closers, logFile)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		rt.Close()
		return nil, err
	}

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			rt.Close()
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	rt.DB = db
	rt.closers = append(rt.closers, db)

	svcOpts := []taskservice.Option{
		taskservice.WithLocation(loc),
		taskservice.WithStructurePolicy(rules.MaxChildren(cfg.Rules.StructureMaxChildren)),
		taskservice.WithBlockOpenChecklist(cfg.Rules.BlockOpenChecklist),
	}
	rt.Service = taskservice.NewService(db, append(svcOpts, extra...)...)
	return rt, nil
}

// Close releases the database and log file, newest first.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// newLogger builds the JSON logger. With a log file configured, records go to
// both out and a size-rotated file.
func newLogger(cfg ApplicationConfig, out io.Writer) (*slog.Logger, io.Closer) {
	var file *lumberjack.Logger
	if cfg.LogFile.Enabled() {
		file = &lumberjack.Logger{
			Filename:   cfg.LogFile.Path,
			MaxSize:    cfg.LogFile.MaxSizeMB,
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAge:     cfg.LogFile.MaxAgeDays,
		}
		out = io.MultiWriter(out, file)
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	if file == nil {
		return logger, nil
	}
	return logger, file
}
