package repo

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/keelvcs/keel/pkg/diff"
	"github.com/keelvcs/keel/pkg/object"
)

// StatusReport is a snapshot of the working state.
type StatusReport struct {
	Branch     string       // current branch name, "" when detached
	Head       object.Hash  // resolved HEAD commit, "" on an unborn branch
	Detached   bool         // HEAD holds a raw hash
	MergeHead  object.Hash  // non-empty while a merge is unresolved
	Staged     *diff.Result // index TOC vs HEAD tree
	Unstaged   *diff.Result // working tree vs index, tracked paths only
	Untracked  []string     // on disk with no index record, sorted
	Conflicted []string     // paths carrying merge stages, sorted
}

// Status computes the working tree status for the repository.
//
// Algorithm:
//  1. Read the index; conflicted paths form their own section and are
//     excluded from the staged and unstaged comparisons.
//  2. Compare the index TOC against the HEAD commit tree (staged).
//  3. Compare tracked working files against the index (unstaged).
//  4. Walk the working directory, skipping ignored paths, to find
//     untracked files.
func (r *Repo) Status() (*StatusReport, error) {
	if err := r.ensureWorktree("status"); err != nil {
		return nil, err
	}

	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	conflicted := ix.ConflictedPaths()

	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return nil, fmt.Errorf("status: resolve HEAD: %w", err)
	}
	headTOC, err := r.CommitTOC(headHash)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	for _, p := range conflicted {
		delete(headTOC, p)
	}
	staged := diff.Compare(headTOC, ix.TOC())

	unstaged, err := r.DiffIndexWorktree(ix)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	untracked, err := r.untrackedFiles(ix)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	mergeHead, err := r.MergeHead()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	return &StatusReport{
		Branch:     branch,
		Head:       headHash,
		Detached:   branch == "",
		MergeHead:  mergeHead,
		Staged:     staged,
		Unstaged:   unstaged,
		Untracked:  untracked,
		Conflicted: conflicted,
	}, nil
}

// untrackedFiles walks the working directory and lists non-ignored
// regular files that have no index record, sorted.
func (r *Repo) untrackedFiles(ix *Index) ([]string, error) {
	rules, err := r.ignoreRules()
	if err != nil {
		return nil, err
	}

	var untracked []string
	err = filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if rules.Ignored(rel, true) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || rules.Ignored(rel, false) {
			return nil
		}
		if !ix.HasFile(rel) {
			untracked = append(untracked, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}

	sort.Strings(untracked)
	return untracked, nil
}
