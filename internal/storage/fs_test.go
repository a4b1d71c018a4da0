package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempInbox(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func put(t *testing.T, fs *FS, rel, content string) {
	t.Helper()
	p := filepath.Join(fs.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	s := tempInbox(t)
	put(t, s, "note.md", "# Hello\nWorld\n")
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\nWorld\n" {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := s.Read("missing.md"); err == nil {
		t.Error("expected error reading a missing file")
	}
}

func TestMove_CreatesTargetDir(t *testing.T) {
	s := tempInbox(t)
	put(t, s, "old.md", "data")
	if err := s.Move("old.md", "processed/3-old.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("processed/3-old.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList(t *testing.T) {
	s := tempInbox(t)
	put(t, s, "a.md", "a")
	put(t, s, "sub/b.md", "b")
	put(t, s, "call.txt", "call")
	put(t, s, "photo.png", "png")
	put(t, s, ".hidden.md", "h")

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	for _, it := range items {
		if filepath.Dir(it.Path) != "." {
			t.Errorf("List descended into %s", it.Path)
		}
		if len(it.Checksum) != 64 {
			t.Errorf("checksum of %s = %q", it.Path, it.Checksum)
		}
	}

	sub, err := s.List("sub")
	if err != nil {
		t.Fatalf("List sub: %v", err)
	}
	if len(sub) != 1 || sub[0].Path != filepath.Join("sub", "b.md") {
		t.Errorf("List(sub) = %+v", sub)
	}
}

func TestList_SameContentSameChecksum(t *testing.T) {
	s := tempInbox(t)
	put(t, s, "one.md", "same")
	put(t, s, "two.md", "same")
	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Checksum != items[1].Checksum {
		t.Errorf("checksums differ: %+v", items)
	}
}

func TestIsNote(t *testing.T) {
	cases := map[string]bool{
		"a.md":     true,
		"a.txt":    true,
		"a.md.bak": false,
		".md":      false,
		".x.txt":   false,
		"a.png":    false,
	}
	for name, want := range cases {
		if got := IsNote(name); got != want {
			t.Errorf("IsNote(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempInbox(t)
	put(t, s, "inside.md", "x")

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Move("inside.md", p); err == nil {
			t.Errorf("expected error for move to %q", p)
		}
		if _, err := s.List(p); err == nil {
			t.Errorf("expected error for list of %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/raido-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "raido-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
