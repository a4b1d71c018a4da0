// Package inbox imports notes dropped into a folder as captures.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Folders that imported and rejected notes are moved to, relative to the inbox root.
const (
	ProcessedDir = "processed"
	RejectedDir  = "rejected"
)

const defaultDebounce = 250 * time.Millisecond

// Importer stores the content of one note as a capture.
type Importer interface {
	ImportCapture(ctx context.Context, data []byte) (models.CaptureItem, error)
}

// Inbox turns note files in root into captures and files them under processed/.
type Inbox struct {
	root     string
	store    storage.Provider
	imp      Importer
	logger   *slog.Logger
	debounce time.Duration

	mu sync.Mutex
	// stuck holds checksums of notes that were imported but could not be moved,
	// so they are not imported twice.
	stuck map[string]string
}

// New creates an Inbox over root.
func New(root string, store storage.Provider, imp Importer, logger *slog.Logger) *Inbox {
	return &Inbox{
		root:     root,
		store:    store,
		imp:      imp,
		logger:   logger,
		debounce: defaultDebounce,
		stuck:    make(map[string]string),
	}
}

// Sweep imports every note currently waiting in the inbox.
func (in *Inbox) Sweep(ctx context.Context) error {
	entries, err := in.store.List("")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		in.importEntry(ctx, e)
	}
	return nil
}

// Watch imports notes as they appear until ctx is cancelled. Events are debounced
// so a note is read once its writer has finished.
func (in *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(in.root); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", in.root, err)
	}
	in.logger.Info("inbox: watching", slog.String("root", in.root))

	var (
		timer   *time.Timer
		flushCh <-chan time.Time
	)
	pending := make(map[string]struct{})
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(in.debounce)
			flushCh = timer.C
		} else {
			timer.Reset(in.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-flushCh:
			if len(pending) == 0 {
				continue
			}
			// One listing gives current checksums and drops files that vanished.
			entries, err := in.store.List("")
			if err != nil {
				in.logger.Warn("inbox: list failed", slog.String("error", err.Error()))
				continue
			}
			for _, e := range entries {
				if _, ok := pending[e.Path]; ok {
					in.importEntry(ctx, e)
				}
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if filepath.Dir(ev.Name) != filepath.Clean(in.root) || !storage.IsNote(name) {
				continue
			}
			pending[name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func (in *Inbox) importEntry(ctx context.Context, e storage.Entry) {
	in.mu.Lock()
	defer in.mu.Unlock()

	log := in.logger.With(slog.String("path", e.Path), slog.String("checksum", e.Checksum))
	if in.stuck[e.Path] == e.Checksum {
		in.fileAway(e.Path, path.Join(ProcessedDir, e.Path), log)
		return
	}

	data, err := in.store.Read(e.Path)
	if err != nil {
		log.Warn("inbox: read failed", slog.String("error", err.Error()))
		return
	}

	c, err := in.imp.ImportCapture(ctx, data)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			log.Warn("inbox: note rejected", slog.String("error", err.Error()))
			in.fileAway(e.Path, path.Join(RejectedDir, e.Path), log)
			return
		}
		log.Error("inbox: import failed", slog.String("error", err.Error()))
		return
	}
	log.Info("inbox: imported", slog.Int64("capture_id", c.ID))

	dest := path.Join(ProcessedDir, fmt.Sprintf("%d-%s", c.ID, e.Path))
	if !in.fileAway(e.Path, dest, log) {
		// Key on what was imported; the file may have changed since it was listed.
		in.stuck[e.Path] = checksum.Sum(data)
	}
}

// fileAway moves src to dest and reports whether it succeeded.
func (in *Inbox) fileAway(src, dest string, log *slog.Logger) bool {
	if err := in.store.Move(src, dest); err != nil {
		log.Warn("inbox: move failed", slog.String("dest", dest), slog.String("error", err.Error()))
		return false
	}
	delete(in.stuck, src)
	return true
}
