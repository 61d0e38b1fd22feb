package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"type":"user","content":"hi"}`+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRootCollectsSessionFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "-home-me-proj", "abc.jsonl"))
	touch(t, filepath.Join(root, "-home-me-proj", "def.jsonl"))
	touch(t, filepath.Join(root, "-home-me-other", "ghi.jsonl"))
	touch(t, filepath.Join(root, "-home-me-proj", "notes.txt"))
	touch(t, filepath.Join(root, "-home-me-proj", "sessions-index.jsonl"))
	touch(t, filepath.Join(root, "-home-me-proj", "agent-xyz.jsonl"))
	touch(t, filepath.Join(root, "-home-me-proj", "subagents", "sub.jsonl"))

	files, err := Root(root, "")
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %+v", len(files), files)
	}
	for _, f := range files {
		if f.Workspace == "" {
			t.Fatalf("missing workspace label: %+v", f)
		}
		if f.Size == 0 || f.Mtime.IsZero() {
			t.Fatalf("missing file metadata: %+v", f)
		}
	}
}

func TestRootWorkspaceFilter(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "-home-me-proj", "abc.jsonl"))
	touch(t, filepath.Join(root, "-home-me-other", "def.jsonl"))

	files, err := Root(root, "-home-me-other")
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if len(files) != 1 || files[0].Workspace != "-home-me-other" {
		t.Fatalf("filter failed: %+v", files)
	}
}

func TestRootMissingDir(t *testing.T) {
	files, err := Root(filepath.Join(t.TempDir(), "nope"), "")
	if err != nil {
		t.Fatalf("missing root should not error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %+v", files)
	}
}

func TestWorkspaces(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "ws-a", "x.jsonl"))
	touch(t, filepath.Join(root, "ws-b", "y.jsonl"))

	names, err := Workspaces(root)
	if err != nil {
		t.Fatalf("Workspaces: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %v", names)
	}
}
