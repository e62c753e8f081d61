package repo

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// Test 1: DiffCommits classifies added, modified, and removed paths.
func TestDiffCommits(t *testing.T) {
	r := initRepoWithFile(t, "keep.txt", []byte("same\n"))
	if err := os.WriteFile(filepath.Join(r.RootDir, "mod.txt"), []byte("v1\n"), 0o644); err != nil {
		t.Fatalf("write mod.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(r.RootDir, "gone.txt"), []byte("bye\n"), 0o644); err != nil {
		t.Fatalf("write gone.txt: %v", err)
	}
	if err := r.Add([]string{"mod.txt", "gone.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	first, err := r.Commit("first")
	if err != nil {
		t.Fatalf("Commit (first): %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.RootDir, "mod.txt"), []byte("v2\n"), 0o644); err != nil {
		t.Fatalf("rewrite mod.txt: %v", err)
	}
	if err := r.Add([]string{"mod.txt"}); err != nil {
		t.Fatalf("Add mod.txt: %v", err)
	}
	if _, err := r.Remove([]string{"gone.txt"}, RemoveOptions{}); err != nil {
		t.Fatalf("Remove gone.txt: %v", err)
	}
	commitFile(t, r, "fresh.txt", "hi\n", "second")
	second, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}

	res, err := r.DiffCommits(first, second)
	if err != nil {
		t.Fatalf("DiffCommits: %v", err)
	}
	want := map[string]string{
		"fresh.txt": "A",
		"mod.txt":   "M",
		"gone.txt":  "D",
	}
	if got := res.NameStatus(); !reflect.DeepEqual(got, want) {
		t.Errorf("NameStatus = %v, want %v", got, want)
	}
	// Changes come back in path order.
	if got := res.Paths(); !reflect.DeepEqual(got, []string{"fresh.txt", "gone.txt", "mod.txt"}) {
		t.Errorf("Paths = %v, want sorted", got)
	}
}

// Test 2: DiffCommitWorktree sees edits and deletions on disk.
func TestDiffCommitWorktree(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("v1\n"))
	commitFile(t, r, "b.txt", "v1\n", "two files")
	head, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.RootDir, "a.txt"), []byte("v2\n"), 0o644); err != nil {
		t.Fatalf("rewrite a.txt: %v", err)
	}
	if err := os.Remove(filepath.Join(r.RootDir, "b.txt")); err != nil {
		t.Fatalf("remove b.txt: %v", err)
	}

	res, err := r.DiffCommitWorktree(head)
	if err != nil {
		t.Fatalf("DiffCommitWorktree: %v", err)
	}
	want := map[string]string{
		"a.txt": "M",
		"b.txt": "D",
	}
	if got := res.NameStatus(); !reflect.DeepEqual(got, want) {
		t.Errorf("NameStatus = %v, want %v", got, want)
	}
}

// Test 3: WorktreeTOC skips missing files and directory-shadowed paths.
func TestWorktreeTOC(t *testing.T) {
	r := initRepoWithFile(t, "real.txt", []byte("x\n"))

	// A directory where a file is expected.
	if err := os.MkdirAll(filepath.Join(r.RootDir, "shadow.txt"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	toc, err := r.WorktreeTOC([]string{"real.txt", "missing.txt", "shadow.txt"})
	if err != nil {
		t.Fatalf("WorktreeTOC: %v", err)
	}
	if len(toc) != 1 {
		t.Fatalf("WorktreeTOC = %v, want only real.txt", toc)
	}
	if _, ok := toc["real.txt"]; !ok {
		t.Errorf("WorktreeTOC missing real.txt: %v", toc)
	}
}
