package history

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGroupFile(t *testing.T, base, group, rel, text string) {
	t.Helper()
	full := filepath.Join(base, group, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCommitAndHistory(t *testing.T) {
	base := t.TempDir()
	svc := New(base)

	writeGroupFile(t, base, "aurora", "data.json", `{"group": {"name": "Aurora"}}`)
	if err := svc.EnsureRepo("aurora"); err != nil {
		t.Fatal(err)
	}

	first, err := svc.Commit("aurora", "TP Team", "Initial store import", "data.json", "blueprints")
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Hash) != 7 || first.Author != "TP Team" {
		t.Fatalf("commit = %+v", first)
	}

	writeGroupFile(t, base, "aurora", "data.json", `{"group": {"name": "Aurora Group"}}`)
	writeGroupFile(t, base, "aurora", "blueprints/aurora-de-2025.json", `{"schema_version": "0.5.0"}`)
	second, err := svc.Commit("aurora", "TP Team", "Rewrote the objective", "data.json", "blueprints")
	if err != nil {
		t.Fatal(err)
	}
	if second.Hash == first.Hash {
		t.Fatal("second commit did not advance head")
	}

	entries, err := svc.History("aurora", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("history = %d entries", len(entries))
	}
	if entries[0].Message != "Rewrote the objective" {
		t.Fatalf("newest first expected, got %q", entries[0].Message)
	}
}

func TestCommitWithoutChangesReturnsHead(t *testing.T) {
	base := t.TempDir()
	svc := New(base)
	writeGroupFile(t, base, "aurora", "data.json", `{}`)
	if err := svc.EnsureRepo("aurora"); err != nil {
		t.Fatal(err)
	}
	first, err := svc.Commit("aurora", "TP Team", "Import", "data.json")
	if err != nil {
		t.Fatal(err)
	}
	again, err := svc.Commit("aurora", "TP Team", "No changes", "data.json")
	if err != nil {
		t.Fatal(err)
	}
	if again.Hash != first.Hash {
		t.Fatal("clean worktree should not create a commit")
	}
}

func TestFileAt(t *testing.T) {
	base := t.TempDir()
	svc := New(base)
	writeGroupFile(t, base, "aurora", "data.json", `{"v": 1}`)
	if err := svc.EnsureRepo("aurora"); err != nil {
		t.Fatal(err)
	}
	first, err := svc.Commit("aurora", "TP Team", "v1", "data.json")
	if err != nil {
		t.Fatal(err)
	}
	writeGroupFile(t, base, "aurora", "data.json", `{"v": 2}`)
	if _, err := svc.Commit("aurora", "TP Team", "v2", "data.json"); err != nil {
		t.Fatal(err)
	}

	raw, err := svc.FileAt("aurora", first.Hash, "data.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"v": 1}` {
		t.Fatalf("got %s", raw)
	}
}

func TestEnsureRepoIdempotent(t *testing.T) {
	base := t.TempDir()
	svc := New(base)
	if err := svc.EnsureRepo("aurora"); err != nil {
		t.Fatal(err)
	}
	if err := svc.EnsureRepo("aurora"); err != nil {
		t.Fatal(err)
	}
}
