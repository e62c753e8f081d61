package repo

import (
	"fmt"
	"strings"

	"github.com/keelvcs/keel/pkg/diff"
	"github.com/keelvcs/keel/pkg/object"
)

// CheckoutResult reports what a checkout did.
type CheckoutResult struct {
	Target   string      // branch name or ref as given
	Hash     object.Hash // commit the worktree now matches
	Detached bool        // HEAD holds a raw hash instead of a branch
}

// Checkout switches the working tree, index, and HEAD to the target,
// which may be a branch name or a commit hash.
//
// Algorithm:
//  1. Refuse mid-merge, and refuse when local changes would be
//     overwritten by the switch.
//  2. Resolve the target. Branch names keep HEAD symbolic; anything
//     else detaches it.
//  3. Apply the diff between the current and target commit trees to the
//     working tree. Paths identical in both trees are never touched, so
//     untracked files and unaffected local edits survive.
//  4. Reset the index to the target commit's TOC.
//  5. Point HEAD at the branch, or directly at the commit.
func (r *Repo) Checkout(target string) (*CheckoutResult, error) {
	if err := r.ensureWorktree("checkout"); err != nil {
		return nil, err
	}
	mergeHead, err := r.MergeHead()
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if mergeHead != "" {
		return nil, fmt.Errorf("checkout: %w while a merge is in progress", ErrUnsupported)
	}

	// Resolve target: branch name first, then anything ResolveRef takes.
	isBranch := false
	var targetHash object.Hash
	if h, ok, err := r.readRefHash("refs/heads/" + target); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	} else if ok {
		targetHash = h
		isBranch = true
	} else {
		targetHash, err = r.ResolveRef(target)
		if err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
	}
	if _, err := r.Store.ReadCommit(targetHash); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return nil, fmt.Errorf("checkout: resolve HEAD: %w", err)
	}
	headTOC, err := r.CommitTOC(headHash)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	targetTOC, err := r.CommitTOC(targetHash)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	dirty, err := r.checkoutOverwrites(headTOC, targetTOC)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if len(dirty) > 0 {
		return nil, fmt.Errorf("checkout: %w: %s", ErrDirtyWorkingTree, strings.Join(dirty, ", "))
	}

	if err := r.Apply(diff.Compare(headTOC, targetTOC)); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if err := r.WriteIndex(TOCToIndex(targetTOC)); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	if isBranch {
		if err := r.SetHeadToBranch(target); err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
	} else {
		if err := r.SetHeadDetached(targetHash); err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
	}

	return &CheckoutResult{Target: target, Hash: targetHash, Detached: !isBranch}, nil
}

// CheckoutNewBranch creates a branch at the current HEAD commit and
// switches to it. The working tree and index are left untouched.
func (r *Repo) CheckoutNewBranch(name string) (*CheckoutResult, error) {
	if err := r.ensureWorktree("checkout"); err != nil {
		return nil, err
	}
	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return nil, fmt.Errorf("checkout: resolve HEAD: %w", err)
	}
	if err := r.CreateBranch(name, headHash); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if err := r.SetHeadToBranch(name); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	return &CheckoutResult{Target: name, Hash: headHash}, nil
}
