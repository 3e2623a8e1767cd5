package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempPostsDir(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempPostsDir(t)
	content := []byte("---\ntitle: \"Hello\"\n---\n\nbody\n")
	if err := s.Write("hello_post.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("hello_post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempPostsDir(t)
	if err := s.Write("drafts/2026/idea.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("drafts/2026/idea.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempPostsDir(t)
	_ = s.Write("gone.md", []byte("bye"))
	if err := s.Delete("gone.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("gone.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMove(t *testing.T) {
	s := tempPostsDir(t)
	_ = s.Write("draft.md", []byte("data"))
	if err := s.Move("draft.md", "archive/draft.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("archive/draft.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("draft.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestListOnlyMarkdown(t *testing.T) {
	s := tempPostsDir(t)
	_ = s.Write("one.md", []byte("a"))
	_ = s.Write("nested/two.md", []byte("b"))
	_ = s.Write("cover.png", []byte{0x89, 0x50})

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Checksum == "" {
			t.Errorf("missing checksum for %s", it.Path)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempPostsDir(t)

	cases := []string{
		"../../etc/passwd",
		"../escape.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempPostsDir(t)
	_ = s.Write("post.md", []byte("original"))
	if err := s.Write("post.md", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("post.md")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".blogster-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/blogster-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "blogster-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
