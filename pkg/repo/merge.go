package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/keelvcs/keel/pkg/diff"
	"github.com/keelvcs/keel/pkg/object"
)

// MergeStatus classifies the outcome of a merge.
type MergeStatus int

const (
	MergeAlreadyUpToDate MergeStatus = iota
	MergeFastForward
	MergeCommitted
	MergeConflicted
)

// MergeResult reports what a merge did.
type MergeResult struct {
	Status    MergeStatus
	Commit    object.Hash // new HEAD commit after fast-forward or auto-commit
	Conflicts []string    // conflicted paths, sorted
}

// MergeHead returns the commit being merged in, or "" when no merge is
// in progress. The presence of MERGE_HEAD is the sole signal of an
// unresolved merge.
func (r *Repo) MergeHead() (object.Hash, error) {
	data, err := os.ReadFile(r.metaPath("MERGE_HEAD"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read MERGE_HEAD: %w", err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// MergeMessage returns the pending merge commit message from MERGE_MSG,
// or "" when no merge is in progress.
func (r *Repo) MergeMessage() (string, error) {
	data, err := os.ReadFile(r.metaPath("MERGE_MSG"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read MERGE_MSG: %w", err)
	}
	return string(data), nil
}

// writeMergeState records MERGE_HEAD and MERGE_MSG.
func (r *Repo) writeMergeState(theirs object.Hash, message string) error {
	if err := os.WriteFile(r.metaPath("MERGE_HEAD"), []byte(string(theirs)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write MERGE_HEAD: %w", err)
	}
	if err := os.WriteFile(r.metaPath("MERGE_MSG"), []byte(message), 0o644); err != nil {
		return fmt.Errorf("write MERGE_MSG: %w", err)
	}
	return nil
}

// ClearMergeState removes MERGE_HEAD and MERGE_MSG.
func (r *Repo) ClearMergeState() error {
	for _, name := range []string{"MERGE_HEAD", "MERGE_MSG"} {
		if err := os.Remove(r.metaPath(name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear merge state: remove %s: %w", name, err)
		}
	}
	return nil
}

// ancestorSet walks all parent links from start, returning every
// reachable commit hash including start itself.
func (r *Repo) ancestorSet(start object.Hash) (map[object.Hash]struct{}, error) {
	seen := make(map[object.Hash]struct{})
	if start == "" {
		return seen, nil
	}
	seen[start] = struct{}{}
	queue := []object.Hash{start}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("walk ancestors of %s: %w", h, err)
		}
		for _, p := range c.Parents {
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return seen, nil
}

// IsAncestor reports whether a is reachable from b, including a == b.
func (r *Repo) IsAncestor(a, b object.Hash) (bool, error) {
	if a == "" || b == "" {
		return false, nil
	}
	set, err := r.ancestorSet(b)
	if err != nil {
		return false, err
	}
	_, ok := set[a]
	return ok, nil
}

// MergeBase returns the nearest common ancestor of ours and theirs: a
// breadth-first walk from ours stops at the first commit contained in
// theirs' ancestor set. BFS order breaks ties between equally near
// ancestors. Unrelated histories yield "".
func (r *Repo) MergeBase(ours, theirs object.Hash) (object.Hash, error) {
	if ours == "" || theirs == "" {
		return "", nil
	}
	theirsAncestors, err := r.ancestorSet(theirs)
	if err != nil {
		return "", err
	}

	seen := map[object.Hash]struct{}{ours: {}}
	queue := []object.Hash{ours}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if _, ok := theirsAncestors[h]; ok {
			return h, nil
		}
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return "", fmt.Errorf("merge base: %w", err)
		}
		for _, p := range c.Parents {
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return "", nil
}

// mergeConflict records the per-side hashes of one conflicted path.
// Absent sides hold the empty hash.
type mergeConflict struct {
	path               string
	base, ours, theirs object.Hash
}

// mergeTOCs resolves the union of the three tables path by path.
// Content comparison is by hash only. The returned TOC holds resolved
// paths; conflicts carry the stage hashes of each present side, in path
// order.
func mergeTOCs(base, ours, theirs map[string]object.Hash) (map[string]object.Hash, []mergeConflict) {
	pathSet := make(map[string]struct{}, len(base)+len(ours)+len(theirs))
	for p := range base {
		pathSet[p] = struct{}{}
	}
	for p := range ours {
		pathSet[p] = struct{}{}
	}
	for p := range theirs {
		pathSet[p] = struct{}{}
	}
	paths := make([]string, 0, len(pathSet))
	for p := range pathSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	merged := make(map[string]object.Hash, len(paths))
	var conflicts []mergeConflict

	for _, p := range paths {
		b, inBase := base[p]
		o, inOurs := ours[p]
		t, inTheirs := theirs[p]

		switch {
		case inOurs && inTheirs && o == t:
			// Identical on both sides, identical additions included.
			merged[p] = o
		case !inOurs && !inTheirs:
			// Gone from both sides: stays deleted.
		case inBase && inOurs && inTheirs:
			if o == b {
				// Only theirs changed.
				merged[p] = t
			} else if t == b {
				// Only ours changed.
				merged[p] = o
			} else {
				conflicts = append(conflicts, mergeConflict{path: p, base: b, ours: o, theirs: t})
			}
		case !inBase && inOurs && inTheirs:
			// Added differently on both sides.
			conflicts = append(conflicts, mergeConflict{path: p, ours: o, theirs: t})
		case inBase && inOurs && !inTheirs:
			// Deleted by theirs.
			if o == b {
				// Ours unchanged: clean delete.
			} else {
				conflicts = append(conflicts, mergeConflict{path: p, base: b, ours: o})
			}
		case inBase && !inOurs && inTheirs:
			// Deleted by ours.
			if t == b {
				// Theirs unchanged: clean delete.
			} else {
				conflicts = append(conflicts, mergeConflict{path: p, base: b, theirs: t})
			}
		case inOurs:
			// New in ours only.
			merged[p] = o
		case inTheirs:
			// New in theirs only.
			merged[p] = t
		}
	}
	return merged, conflicts
}

// renderFileConflict renders whole-file conflict markers. Each section
// is newline-terminated; an absent side renders as an empty section.
func renderFileConflict(ours, theirs []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< ours\n")
	buf.Write(ours)
	if len(ours) > 0 && ours[len(ours)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("=======\n")
	buf.Write(theirs)
	if len(theirs) > 0 && theirs[len(theirs)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(">>>>>>> theirs\n")
	return buf.Bytes()
}

// Merge merges the commit named by ref into the current branch.
//
// Flow:
//  1. Refuse on detached HEAD and while another merge is unresolved.
//  2. Resolve theirs; it must name a commit.
//  3. Theirs already reachable from HEAD means nothing to do.
//  4. Refuse when local changes would be overwritten by the result.
//  5. HEAD unborn or an ancestor of theirs: fast-forward without
//     creating a commit.
//  6. Otherwise merge the flattened trees per path against the common
//     ancestor. Clean merges auto-commit with two parents; conflicts
//     record MERGE_HEAD and MERGE_MSG, stage conflict entries, write
//     marker files, and leave the commit to the user.
func (r *Repo) Merge(ref string) (*MergeResult, error) {
	if err := r.ensureWorktree("merge"); err != nil {
		return nil, err
	}
	detached, err := r.IsHeadDetached()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if detached {
		return nil, fmt.Errorf("merge: %w on detached HEAD", ErrUnsupported)
	}
	if mh, err := r.MergeHead(); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	} else if mh != "" {
		return nil, fmt.Errorf("merge: %w while a previous merge is unresolved", ErrUnsupported)
	}

	theirsHash, err := r.ResolveRef(ref)
	if err != nil {
		return nil, fmt.Errorf("merge: resolve %q: %w", ref, err)
	}
	if theirsHash == "" {
		return nil, fmt.Errorf("merge: resolve %q: %w", ref, object.ErrNotFound)
	}
	if _, err := r.Store.ReadCommit(theirsHash); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	oursHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return nil, fmt.Errorf("merge: resolve HEAD: %w", err)
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	if oursHash == theirsHash {
		return &MergeResult{Status: MergeAlreadyUpToDate, Commit: oursHash}, nil
	}
	if oursHash != "" {
		behind, err := r.IsAncestor(theirsHash, oursHash)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if behind {
			return &MergeResult{Status: MergeAlreadyUpToDate, Commit: oursHash}, nil
		}
	}

	oursTOC, err := r.CommitTOC(oursHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	theirsTOC, err := r.CommitTOC(theirsHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	dirty, err := r.checkoutOverwrites(oursTOC, theirsTOC)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if len(dirty) > 0 {
		return nil, fmt.Errorf("merge: %w: %s", ErrDirtyWorkingTree, strings.Join(dirty, ", "))
	}

	// Fast-forward when ours brings nothing of its own.
	fastForward := oursHash == ""
	if !fastForward {
		fastForward, err = r.IsAncestor(oursHash, theirsHash)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
	}
	if fastForward {
		if err := r.Apply(diff.Compare(oursTOC, theirsTOC)); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.WriteIndex(TOCToIndex(theirsTOC)); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.UpdateRef("refs/heads/"+branch, theirsHash); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		return &MergeResult{Status: MergeFastForward, Commit: theirsHash}, nil
	}

	baseHash, err := r.MergeBase(oursHash, theirsHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	baseTOC, err := r.CommitTOC(baseHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	merged, conflicts := mergeTOCs(baseTOC, oursTOC, theirsTOC)
	message := fmt.Sprintf("Merge %s into %s", ref, branch)

	if len(conflicts) == 0 {
		if err := r.Apply(diff.Compare(oursTOC, merged)); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.WriteIndex(TOCToIndex(merged)); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.writeMergeState(theirsHash, message); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		commitHash, err := r.Commit(message)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		return &MergeResult{Status: MergeCommitted, Commit: commitHash}, nil
	}

	// Conflicted. Apply resolved paths only; the marker files below
	// replace the conflicted ones.
	before := make(map[string]object.Hash, len(oursTOC))
	for p, h := range oursTOC {
		before[p] = h
	}
	for _, c := range conflicts {
		delete(before, c.path)
	}
	if err := r.Apply(diff.Compare(before, merged)); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	ix := TOCToIndex(merged)
	conflictPaths := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ix.WriteConflict(c.path, c.base, c.ours, c.theirs)
		conflictPaths = append(conflictPaths, c.path)

		var oursData, theirsData []byte
		if c.ours != "" {
			blob, err := r.Store.ReadBlob(c.ours)
			if err != nil {
				return nil, fmt.Errorf("merge: read ours %q: %w", c.path, err)
			}
			oursData = blob.Data
		}
		if c.theirs != "" {
			blob, err := r.Store.ReadBlob(c.theirs)
			if err != nil {
				return nil, fmt.Errorf("merge: read theirs %q: %w", c.path, err)
			}
			theirsData = blob.Data
		}
		if err := r.writeWorktreeFile(c.path, renderFileConflict(oursData, theirsData)); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
	}
	if err := r.WriteIndex(ix); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	var msg strings.Builder
	msg.WriteString(message)
	msg.WriteString("\n\nConflicts:\n")
	for _, p := range conflictPaths {
		msg.WriteString("\t" + p + "\n")
	}
	if err := r.writeMergeState(theirsHash, msg.String()); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	return &MergeResult{Status: MergeConflicted, Conflicts: conflictPaths}, nil
}
