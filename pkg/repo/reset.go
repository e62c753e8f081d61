package repo

import (
	"fmt"
	"strings"

	"github.com/keelvcs/keel/pkg/object"
)

// Reset restores the named paths to their state at HEAD, in both the
// index and the working copy. Paths absent from HEAD are unstaged and
// their working files are left in place as untracked. With no
// arguments every staged path is reset.
func (r *Repo) Reset(paths []string) error {
	if err := r.ensureWorktree("reset"); err != nil {
		return err
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return fmt.Errorf("reset: resolve HEAD: %w", err)
	}
	headTOC, err := r.CommitTOC(headHash)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	targets, err := r.resolveResetTargets(paths, ix, headTOC)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	for _, p := range targets {
		if ix.IsFileInConflict(p) {
			return fmt.Errorf("reset %q: %w for conflicted entries", p, ErrUnsupported)
		}
	}

	for _, p := range targets {
		headBlob, inHead := headTOC[p]
		if !inHead {
			delete(ix.Entries, p)
			continue
		}
		ix.Entries[p] = &IndexEntry{Path: p, Hash: headBlob}
		blob, err := r.Store.ReadBlob(headBlob)
		if err != nil {
			return fmt.Errorf("reset: read blob for %q: %w", p, err)
		}
		if err := r.writeWorktreeFile(p, blob.Data); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	if err := r.WriteIndex(ix); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// resolveResetTargets expands path arguments against the union of
// index and HEAD paths. Directory arguments match by whole path
// segment. No arguments selects everything.
func (r *Repo) resolveResetTargets(paths []string, ix *Index, headTOC map[string]object.Hash) ([]string, error) {
	all := make(map[string]struct{}, len(ix.Entries)+len(headTOC))
	for p := range ix.Entries {
		all[p] = struct{}{}
	}
	for p := range headTOC {
		all[p] = struct{}{}
	}

	if len(paths) == 0 {
		return sortedPathSet(all), nil
	}

	targets := make(map[string]struct{})
	for _, raw := range paths {
		rel, err := r.repoRelPath(raw)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", raw, err)
		}
		rel = strings.TrimSuffix(rel, "/")

		matched := false
		if _, ok := all[rel]; ok {
			targets[rel] = struct{}{}
			matched = true
		}
		prefix := rel + "/"
		for p := range all {
			if strings.HasPrefix(p, prefix) {
				targets[p] = struct{}{}
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("path %q: %w", raw, ErrPathNotFound)
		}
	}
	return sortedPathSet(targets), nil
}
