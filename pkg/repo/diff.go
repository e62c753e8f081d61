package repo

import (
	"errors"
	"fmt"
	"os"

	"github.com/keelvcs/keel/pkg/diff"
	"github.com/keelvcs/keel/pkg/object"
)

// CommitTOC returns the flattened path-to-blob table of the tree behind
// a commit. The empty hash yields an empty table, standing in for the
// state before the first commit.
func (r *Repo) CommitTOC(commitHash object.Hash) (map[string]object.Hash, error) {
	if commitHash == "" {
		return map[string]object.Hash{}, nil
	}
	c, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		return nil, fmt.Errorf("commit toc: %w", err)
	}
	toc, err := r.Store.Flatten(c.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("commit toc: %w", err)
	}
	return toc, nil
}

// WorktreeTOC hashes the working copies of the given repo-relative
// paths. Paths missing from the working tree are left out, which makes
// deletions visible to diff.Compare. Hashing writes nothing to the
// store.
func (r *Repo) WorktreeTOC(paths []string) (map[string]object.Hash, error) {
	toc := make(map[string]object.Hash, len(paths))
	for _, p := range paths {
		abs := r.worktreePath(p)
		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("worktree toc: stat %q: %w", p, err)
		}
		if info.IsDir() {
			// A directory shadowing a tracked file counts as missing.
			continue
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("worktree toc: read %q: %w", p, err)
		}
		toc[p] = object.HashObject(object.TypeBlob, content)
	}
	return toc, nil
}

// DiffIndexWorktree compares the staging area against the working tree,
// restricted to indexed paths. Conflicted entries have no stage-0 hash
// and are excluded.
func (r *Repo) DiffIndexWorktree(ix *Index) (*diff.Result, error) {
	if err := r.ensureWorktree("diff"); err != nil {
		return nil, err
	}
	indexTOC := ix.TOC()
	paths := make([]string, 0, len(indexTOC))
	for p := range indexTOC {
		paths = append(paths, p)
	}
	workTOC, err := r.WorktreeTOC(paths)
	if err != nil {
		return nil, err
	}
	return diff.Compare(indexTOC, workTOC), nil
}

// DiffCommitWorktree compares a commit against the working tree. The
// scan covers paths known to the commit or to the index, so files
// staged since the commit show up as additions.
func (r *Repo) DiffCommitWorktree(commitHash object.Hash) (*diff.Result, error) {
	if err := r.ensureWorktree("diff"); err != nil {
		return nil, err
	}
	commitTOC, err := r.CommitTOC(commitHash)
	if err != nil {
		return nil, err
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}

	pathSet := make(map[string]struct{}, len(commitTOC)+len(ix.Entries))
	for p := range commitTOC {
		pathSet[p] = struct{}{}
	}
	for p := range ix.Entries {
		pathSet[p] = struct{}{}
	}
	paths := make([]string, 0, len(pathSet))
	for p := range pathSet {
		paths = append(paths, p)
	}

	workTOC, err := r.WorktreeTOC(paths)
	if err != nil {
		return nil, err
	}
	return diff.Compare(commitTOC, workTOC), nil
}

// DiffCommits compares the trees of two commits.
func (r *Repo) DiffCommits(a, b object.Hash) (*diff.Result, error) {
	aTOC, err := r.CommitTOC(a)
	if err != nil {
		return nil, err
	}
	bTOC, err := r.CommitTOC(b)
	if err != nil {
		return nil, err
	}
	return diff.Compare(aTOC, bTOC), nil
}

// checkoutOverwrites lists working files that hold content different
// from head at paths the target commit would rewrite or remove.
// Checkout refuses to run while this list is non-empty. Files the user
// deleted locally are not listed: rewriting them loses nothing.
func (r *Repo) checkoutOverwrites(headTOC, targetTOC map[string]object.Hash) ([]string, error) {
	changes := diff.Compare(headTOC, targetTOC)
	workTOC, err := r.WorktreeTOC(changes.Paths())
	if err != nil {
		return nil, err
	}

	var dirty []string
	for _, ch := range changes.Changes {
		workHash, onDisk := workTOC[ch.Path]
		if !onDisk {
			continue
		}
		headHash, inHead := headTOC[ch.Path]
		if inHead {
			if workHash != headHash {
				dirty = append(dirty, ch.Path)
			}
			continue
		}
		// Untracked file sitting where the target wants to write.
		if workHash != targetTOC[ch.Path] {
			dirty = append(dirty, ch.Path)
		}
	}
	return dirty, nil
}
