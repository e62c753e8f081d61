package repo

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// Test 1: Remove unstages the file and deletes it from the worktree.
func TestRemove_UnstagesAndDeletes(t *testing.T) {
	r := initRepoWithFile(t, "doomed.txt", []byte("bye\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	removed, err := r.Remove([]string{"doomed.txt"}, RemoveOptions{})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if want := []string{"doomed.txt"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("Remove returned %v, want %v", removed, want)
	}

	ix, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if ix.HasFile("doomed.txt") {
		t.Error("doomed.txt still staged after Remove")
	}
	if _, err := os.Stat(filepath.Join(r.RootDir, "doomed.txt")); !os.IsNotExist(err) {
		t.Errorf("doomed.txt still on disk, stat err = %v", err)
	}
}

// Test 2: removing an unknown path reports PathNotFound.
func TestRemove_PathNotFound(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	_, err := r.Remove([]string{"ghost.txt"}, RemoveOptions{})
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("Remove error = %v, want ErrPathNotFound", err)
	}
}

// Test 3: directories require the recursive flag.
func TestRemove_Directory(t *testing.T) {
	r := initRepoWithFile(t, "src/a.go", []byte("a\n"))
	commitFile(t, r, "src/sub/b.go", "b\n", "two files under src")

	if _, err := r.Remove([]string{"src"}, RemoveOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Remove(src) without -r error = %v, want ErrUnsupported", err)
	}

	removed, err := r.Remove([]string{"src"}, RemoveOptions{Recursive: true})
	if err != nil {
		t.Fatalf("Remove(src, -r): %v", err)
	}
	if want := []string{"src/a.go", "src/sub/b.go"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("Remove returned %v, want %v", removed, want)
	}
	if _, err := os.Stat(filepath.Join(r.RootDir, "src")); !os.IsNotExist(err) {
		t.Errorf("src dir not pruned, stat err = %v", err)
	}
}

// Test 4: removal of changed files is refused, forced or not.
func TestRemove_ChangedFile(t *testing.T) {
	r := initRepoWithFile(t, "edit.txt", []byte("v1\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(r.RootDir, "edit.txt"), []byte("v2\n"), 0o644); err != nil {
		t.Fatalf("write edit.txt: %v", err)
	}

	_, err := r.Remove([]string{"edit.txt"}, RemoveOptions{})
	if !errors.Is(err, ErrDirtyWorkingTree) {
		t.Fatalf("Remove error = %v, want ErrDirtyWorkingTree", err)
	}
	if !strings.Contains(err.Error(), "edit.txt") {
		t.Errorf("error %q does not name the changed path", err)
	}

	_, err = r.Remove([]string{"edit.txt"}, RemoveOptions{Force: true})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("forced Remove error = %v, want ErrUnsupported", err)
	}

	if got := readWorktreeFile(t, r, "edit.txt"); got != "v2\n" {
		t.Errorf("edit.txt = %q, local edit must survive", got)
	}
}

// Test 5: conflicted paths cannot be removed.
func TestRemove_Conflicted(t *testing.T) {
	r := initRepoWithFile(t, "fight.txt", []byte("v1\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	ix, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	ix.WriteConflict("fight.txt", "b1", "o1", "t1")
	if err := r.WriteIndex(ix); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}

	_, err = r.Remove([]string{"fight.txt"}, RemoveOptions{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Remove conflicted error = %v, want ErrUnsupported", err)
	}
}

// Test 6: a file already gone from the worktree still unstages.
func TestRemove_AlreadyDeleted(t *testing.T) {
	r := initRepoWithFile(t, "gone.txt", []byte("v1\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := os.Remove(filepath.Join(r.RootDir, "gone.txt")); err != nil {
		t.Fatalf("remove gone.txt: %v", err)
	}

	if _, err := r.Remove([]string{"gone.txt"}, RemoveOptions{}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ix, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if ix.HasFile("gone.txt") {
		t.Error("gone.txt still staged")
	}
}
