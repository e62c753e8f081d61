package repo

import (
	"errors"
	"reflect"
	"testing"

	"github.com/keelvcs/keel/pkg/object"
)

// Test 1: CreateBranch records a ref and ListBranches sorts.
func TestCreateBranch_AndList(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	h, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CreateBranch("feature", h); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if want := []string{"feature", "main"}; !reflect.DeepEqual(branches, want) {
		t.Errorf("ListBranches = %v, want %v", branches, want)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if current != "main" {
		t.Errorf("CurrentBranch = %q, want %q", current, "main")
	}

	got, err := r.ResolveRef("feature")
	if err != nil {
		t.Fatalf("ResolveRef(feature): %v", err)
	}
	if got != h {
		t.Errorf("feature points at %s, want %s", got, h)
	}
}

// Test 2: duplicate branch names are refused.
func TestCreateBranch_AlreadyExists(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	h, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CreateBranch("feature", h); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.CreateBranch("feature", h); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("second CreateBranch error = %v, want ErrAlreadyExists", err)
	}
}

// Test 3: malformed branch names are rejected.
func TestCreateBranch_InvalidNames(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	h, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	bad := []string{
		"",
		"HEAD",
		"/leading",
		"trailing/",
		"dou//ble",
		"-dash",
		"dot/./seg",
		"dot/../seg",
		"sp ace",
		"col:on",
		"sta*r",
	}
	for _, name := range bad {
		if err := r.CreateBranch(name, h); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("CreateBranch(%q) error = %v, want ErrInvalidRef", name, err)
		}
	}
}

// Test 4: branches cannot be created before the first commit.
func TestCreateBranch_BeforeFirstCommit(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	head, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if err := r.CreateBranch("feature", head); !errors.Is(err, ErrUnsupported) {
		t.Errorf("CreateBranch on unborn HEAD error = %v, want ErrUnsupported", err)
	}
}

// Test 5: DeleteBranch removes refs but protects the current branch.
func TestDeleteBranch(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	h, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CreateBranch("feature", h); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.DeleteBranch("feature"); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if want := []string{"main"}; !reflect.DeepEqual(branches, want) {
		t.Errorf("ListBranches = %v, want %v", branches, want)
	}

	if err := r.DeleteBranch("main"); err == nil {
		t.Error("DeleteBranch(main) succeeded while main is checked out")
	}
	if err := r.DeleteBranch("ghost"); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("DeleteBranch(ghost) error = %v, want ErrNotFound", err)
	}
}
