package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

type fakeImporter struct {
	mu     sync.Mutex
	nextID int64
	texts  []string
}

func (f *fakeImporter) ImportCapture(_ context.Context, data []byte) (models.CaptureItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text := strings.TrimSpace(string(data))
	if text == "" {
		return models.CaptureItem{}, apperr.Validation("text: cannot be blank")
	}
	f.nextID++
	f.texts = append(f.texts, text)
	return models.CaptureItem{ID: f.nextID, Text: text}, nil
}

func (f *fakeImporter) imported() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSweep_ImportsAndFilesNotes(t *testing.T) {
	dir, store := testutil.TestInbox(t)
	testutil.WriteNote(t, dir, "call-bank.md", "# Call the bank\n")
	testutil.WriteNote(t, dir, "idea.txt", "try the new planner")
	testutil.WriteNote(t, dir, "empty.md", "  \n")
	testutil.WriteNote(t, dir, "photo.png", "png")

	imp := &fakeImporter{}
	in := New(dir, store, imp, quietLogger())
	require.NoError(t, in.Sweep(context.Background()))

	assert.ElementsMatch(t, []string{"# Call the bank", "try the new planner"}, imp.imported())

	left, err := store.List("")
	require.NoError(t, err)
	assert.Empty(t, left, "imported and rejected notes leave the inbox")

	processed, err := store.List(ProcessedDir)
	require.NoError(t, err)
	assert.Len(t, processed, 2)

	rejected, err := store.List(RejectedDir)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, filepath.Join(RejectedDir, "empty.md"), rejected[0].Path)

	_, err = os.Stat(filepath.Join(dir, "photo.png"))
	assert.NoError(t, err, "non-note files are left alone")
}

func TestSweep_SecondRunIsNoop(t *testing.T) {
	dir, store := testutil.TestInbox(t)
	testutil.WriteNote(t, dir, "a.md", "a")

	imp := &fakeImporter{}
	in := New(dir, store, imp, quietLogger())
	require.NoError(t, in.Sweep(context.Background()))
	require.NoError(t, in.Sweep(context.Background()))

	assert.Len(t, imp.imported(), 1)
}

func TestWatch_ImportsNewNote(t *testing.T) {
	dir, store := testutil.TestInbox(t)
	imp := &fakeImporter{}
	in := New(dir, store, imp, quietLogger())
	in.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- in.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.md"), []byte("renew passport"), 0o644))

	assert.Eventually(t, func() bool {
		return len(imp.imported()) == 1
	}, 5*time.Second, 50*time.Millisecond, "note not imported by watcher")

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, ProcessedDir, "1-new.md"))
		return err == nil
	}, 2*time.Second, 50*time.Millisecond, "note not moved to processed/")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
