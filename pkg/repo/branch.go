package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keelvcs/keel/pkg/object"
)

// validBranchName rejects names that would escape refs/heads or collide
// with ref machinery: empty names, "HEAD", dot segments, separators at
// the ends, leading dashes, and whitespace or control characters.
// Slashes inside the name are allowed ("feature/x").
func validBranchName(name string) error {
	if name == "" || name == "HEAD" {
		return fmt.Errorf("branch name %q: %w", name, ErrInvalidRef)
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "//") {
		return fmt.Errorf("branch name %q: %w", name, ErrInvalidRef)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("branch name %q: %w", name, ErrInvalidRef)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("branch name %q: %w", name, ErrInvalidRef)
		}
	}
	for _, c := range name {
		if c <= ' ' || c == 0x7f || strings.ContainsRune(`:?*[\~^`, c) {
			return fmt.Errorf("branch name %q: %w", name, ErrInvalidRef)
		}
	}
	return nil
}

// CreateBranch creates a new branch pointing at the given target hash.
// It writes the hash to .keel/refs/heads/<name>. Fails with
// ErrAlreadyExists if the branch exists and ErrInvalidRef for malformed
// names.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	if err := validBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if target == "" {
		return fmt.Errorf("create branch %q: %w before the first commit", name, ErrUnsupported)
	}
	if _, ok, err := r.readRefHash("refs/heads/" + name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	} else if ok {
		return fmt.Errorf("create branch: branch %q %w", name, ErrAlreadyExists)
	}
	if err := r.UpdateRef("refs/heads/"+name, target); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	return nil
}

// DeleteBranch removes the branch ref file .keel/refs/heads/<name>.
// The current branch cannot be deleted.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}

	if _, ok, err := r.readRefHash("refs/heads/" + name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	} else if !ok {
		return fmt.Errorf("delete branch: branch %q: %w", name, object.ErrNotFound)
	}
	if err := r.RemoveRef("refs/heads/" + name); err != nil {
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns the branch names under refs/heads sorted
// alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	heads, err := r.LocalHeads()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(heads))
	for name := range heads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch reads HEAD and returns the branch name if HEAD is a
// symbolic ref (e.g. "ref: refs/heads/main" yields "main"). If HEAD is
// detached, it returns "".
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}

	const prefix = "refs/heads/"
	if strings.HasPrefix(head, prefix) {
		return strings.TrimPrefix(head, prefix), nil
	}

	// Detached HEAD or unexpected format.
	return "", nil
}
