package repo

import (
	"fmt"
	"strings"

	"github.com/keelvcs/keel/pkg/object"
)

// Commit creates a new commit from the current staging area.
//
//  1. Read the index; unresolved conflict stages abort the commit
//  2. Write the index TOC to the store as a tree
//  3. Resolve HEAD for the first parent (absent on an unborn branch)
//  4. Add MERGE_HEAD as second parent when concluding a merge
//  5. Refuse commits that would not change the tree, except merge
//     commits, which record ancestry even with an unchanged tree
//  6. Write the commit and advance the current branch, or HEAD itself
//     when detached
//  7. Clear merge state
func (r *Repo) Commit(message string) (object.Hash, error) {
	ix, err := r.ReadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if conflicted := ix.ConflictedPaths(); len(conflicted) > 0 {
		return "", fmt.Errorf("commit: %w: %s", ErrUnresolvedConflicts, strings.Join(conflicted, ", "))
	}
	toc := ix.TOC()

	parentHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("commit: resolve HEAD: %w", err)
	}
	mergeHead, err := r.MergeHead()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	if mergeHead == "" && parentHash == "" && len(toc) == 0 {
		return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
	}

	treeHash, err := r.Store.WriteTreeTOC(toc)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	if mergeHead == "" && parentHash != "" {
		parent, err := r.Store.ReadCommit(parentHash)
		if err != nil {
			return "", fmt.Errorf("commit: read parent: %w", err)
		}
		if parent.TreeHash == treeHash {
			return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
		}
	}

	var parents []object.Hash
	if parentHash != "" {
		parents = append(parents, parentHash)
	}
	if mergeHead != "" {
		parents = append(parents, mergeHead)
	}

	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash: treeHash,
		Parents:  parents,
		Message:  message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}
	if strings.HasPrefix(head, "refs/") {
		if err := r.UpdateRef(head, commitHash); err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	} else {
		// Detached HEAD advances in place.
		if err := r.SetHeadDetached(commitHash); err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	}

	if mergeHead != "" {
		if err := r.ClearMergeState(); err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	}

	return commitHash, nil
}

// LogEntry pairs a commit hash with its decoded object.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits newest first.
// limit <= 0 means no limit.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start

	for current != "" {
		if limit > 0 && len(entries) >= limit {
			break
		}
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})

		// Follow first parent.
		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return entries, nil
}
