package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keelvcs/keel/pkg/diff"
)

// Apply materializes a diff in the working tree: added and modified
// files are written from the store, removed files are deleted and their
// emptied parent directories pruned. Paths absent from the diff are
// never touched, so untracked files survive.
func (r *Repo) Apply(changes *diff.Result) error {
	if err := r.ensureWorktree("apply"); err != nil {
		return err
	}
	for _, ch := range changes.Changes {
		absPath := r.worktreePath(ch.Path)

		if ch.Type == diff.Removed {
			if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("apply: remove %q: %w", ch.Path, err)
			}
			// Clean up empty parent directories.
			r.removeEmptyParents(filepath.Dir(absPath))
			continue
		}

		blob, err := r.Store.ReadBlob(ch.After)
		if err != nil {
			return fmt.Errorf("apply: read blob for %q: %w", ch.Path, err)
		}
		if err := r.writeWorktreeFile(ch.Path, blob.Data); err != nil {
			return fmt.Errorf("apply: %w", err)
		}
	}
	return nil
}

// writeWorktreeFile writes content to a repo-relative path, creating
// parent directories as needed.
func (r *Repo) writeWorktreeFile(relPath string, content []byte) error {
	absPath := r.worktreePath(relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("write %q: mkdir: %w", relPath, err)
	}
	if err := os.WriteFile(absPath, content, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", relPath, err)
	}
	return nil
}

// removeEmptyParents removes empty directories up to (but not including)
// the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		// Never remove the repo root itself.
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir) {
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}

		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
