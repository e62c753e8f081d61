package repo

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// Test 1: a freshly committed repo reports nothing.
func TestStatus_Clean(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Branch != "main" {
		t.Errorf("Branch = %q, want main", st.Branch)
	}
	if st.Detached {
		t.Error("Detached = true on a branch")
	}
	if !st.Staged.Empty() || !st.Unstaged.Empty() {
		t.Errorf("staged = %v, unstaged = %v, want both empty", st.Staged.Changes, st.Unstaged.Changes)
	}
	if len(st.Untracked) != 0 || len(st.Conflicted) != 0 {
		t.Errorf("untracked = %v, conflicted = %v, want both empty", st.Untracked, st.Conflicted)
	}
}

// Test 2: staged, unstaged, and untracked files land in their sections.
func TestStatus_Classification(t *testing.T) {
	r := initRepoWithFile(t, "tracked.txt", []byte("v1\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Staged addition.
	if err := os.WriteFile(filepath.Join(r.RootDir, "staged.txt"), []byte("new\n"), 0o644); err != nil {
		t.Fatalf("write staged.txt: %v", err)
	}
	if err := r.Add([]string{"staged.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Unstaged edit of a tracked file.
	if err := os.WriteFile(filepath.Join(r.RootDir, "tracked.txt"), []byte("v2\n"), 0o644); err != nil {
		t.Fatalf("write tracked.txt: %v", err)
	}
	// Untracked file.
	if err := os.WriteFile(filepath.Join(r.RootDir, "loose.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write loose.txt: %v", err)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	if got := st.Staged.NameStatus(); !reflect.DeepEqual(got, map[string]string{"staged.txt": "A"}) {
		t.Errorf("staged = %v, want staged.txt added", got)
	}
	if got := st.Unstaged.NameStatus(); !reflect.DeepEqual(got, map[string]string{"tracked.txt": "M"}) {
		t.Errorf("unstaged = %v, want tracked.txt modified", got)
	}
	if want := []string{"loose.txt"}; !reflect.DeepEqual(st.Untracked, want) {
		t.Errorf("Untracked = %v, want %v", st.Untracked, want)
	}
}

// Test 3: staged removals show up as deletions.
func TestStatus_StagedRemoval(t *testing.T) {
	r := initRepoWithFile(t, "doomed.txt", []byte("bye\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := r.Remove([]string{"doomed.txt"}, RemoveOptions{}); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got := st.Staged.NameStatus(); !reflect.DeepEqual(got, map[string]string{"doomed.txt": "D"}) {
		t.Errorf("staged = %v, want doomed.txt deleted", got)
	}
}

// Test 4: a merge conflict surfaces in the conflicted section only.
func TestStatus_Conflicted(t *testing.T) {
	r, _ := setupMergeRepo(t)

	commitFile(t, r, "a.txt", "2\n", "ours edits a")
	if _, err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout(feature): %v", err)
	}
	theirsHead := commitFile(t, r, "a.txt", "3\n", "theirs edits a")
	if _, err := r.Checkout("main"); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	if _, err := r.Merge("feature"); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if want := []string{"a.txt"}; !reflect.DeepEqual(st.Conflicted, want) {
		t.Errorf("Conflicted = %v, want %v", st.Conflicted, want)
	}
	if st.MergeHead != theirsHead {
		t.Errorf("MergeHead = %s, want %s", st.MergeHead, theirsHead)
	}
	// The conflicted path must not double-report as staged.
	if _, ok := st.Staged.NameStatus()["a.txt"]; ok {
		t.Errorf("a.txt also listed as staged: %v", st.Staged.Changes)
	}
	// The marker file on disk must not count as an unstaged edit.
	if _, ok := st.Unstaged.NameStatus()["a.txt"]; ok {
		t.Errorf("a.txt also listed as unstaged: %v", st.Unstaged.Changes)
	}
}

// Test 5: detached HEAD is reported with no branch name.
func TestStatus_Detached(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	h, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := r.Checkout(string(h)); err != nil {
		t.Fatalf("Checkout(hash): %v", err)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Detached {
		t.Error("Detached = false after hash checkout")
	}
	if st.Branch != "" {
		t.Errorf("Branch = %q on detached HEAD, want empty", st.Branch)
	}
	if st.Head != h {
		t.Errorf("Head = %s, want %s", st.Head, h)
	}
}

// Test 6: ignored files stay out of the untracked list.
func TestStatus_IgnoredNotUntracked(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.RootDir, ignoreFileName), []byte("*.log\n"), 0o644); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(r.RootDir, "noise.log"), []byte("zzz\n"), 0o644); err != nil {
		t.Fatalf("write noise.log: %v", err)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, p := range st.Untracked {
		if p == "noise.log" {
			t.Errorf("ignored file listed as untracked: %v", st.Untracked)
		}
	}
}
