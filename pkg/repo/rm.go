package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RemoveOptions controls Remove.
type RemoveOptions struct {
	Recursive bool // allow directory arguments
	Force     bool // requested forced removal
}

// Remove unstages the named paths and deletes their working files,
// returning the removed paths sorted.
//
// Constraints:
//   - arguments matching nothing in the index fail with ErrPathNotFound
//   - directory arguments require Recursive
//   - conflicted paths cannot be removed
//   - files whose working copy differs from the staged content are
//     refused, and forcing the removal of changed files is not
//     supported either
func (r *Repo) Remove(paths []string, opts RemoveOptions) ([]string, error) {
	if err := r.ensureWorktree("rm"); err != nil {
		return nil, err
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("rm: %w", err)
	}

	targetSet := make(map[string]struct{})
	for _, raw := range paths {
		rel, err := r.repoRelPath(raw)
		if err != nil {
			return nil, fmt.Errorf("rm: resolve path %q: %w", raw, err)
		}
		matches := ix.MatchingFiles(rel)
		if len(matches) == 0 {
			return nil, fmt.Errorf("rm %q: %w", raw, ErrPathNotFound)
		}
		// Prefix matches without an exact entry mean rel names a directory.
		if !ix.HasFile(rel) && !opts.Recursive {
			return nil, fmt.Errorf("rm %q: %w without -r for directories", raw, ErrUnsupported)
		}
		for _, m := range matches {
			targetSet[m] = struct{}{}
		}
	}
	targets := sortedPathSet(targetSet)

	for _, p := range targets {
		if ix.IsFileInConflict(p) {
			return nil, fmt.Errorf("rm %q: %w for conflicted entries", p, ErrUnsupported)
		}
	}

	// Refuse when working copies differ from the staged content. Files
	// already gone from the working tree are fine to unstage.
	workTOC, err := r.WorktreeTOC(targets)
	if err != nil {
		return nil, fmt.Errorf("rm: %w", err)
	}
	var changed []string
	for _, p := range targets {
		workHash, onDisk := workTOC[p]
		if onDisk && workHash != ix.Entries[p].Hash {
			changed = append(changed, p)
		}
	}
	if len(changed) > 0 {
		if opts.Force {
			return nil, fmt.Errorf("rm: %w: forced removal of changed files (%s)", ErrUnsupported, strings.Join(changed, ", "))
		}
		return nil, fmt.Errorf("rm: %w: %s", ErrDirtyWorkingTree, strings.Join(changed, ", "))
	}

	for _, p := range targets {
		if err := ix.WriteRm(p); err != nil {
			return nil, fmt.Errorf("rm: %w", err)
		}
		absPath := r.worktreePath(p)
		if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("rm: remove %q: %w", p, err)
		}
		r.removeEmptyParents(filepath.Dir(absPath))
	}

	if err := r.WriteIndex(ix); err != nil {
		return nil, fmt.Errorf("rm: %w", err)
	}
	return targets, nil
}

func sortedPathSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
