package diff

import (
	"sort"

	"github.com/keelvcs/keel/pkg/object"
)

// ChangeType classifies what happened to a path between two content states.
type ChangeType int

const (
	Added    ChangeType = iota // Path exists only in the after state.
	Removed                    // Path exists only in the before state.
	Modified                   // Path exists in both states but its content changed.
)

// Change records a single path-level change between two content states.
type Change struct {
	Type   ChangeType
	Path   string
	Before object.Hash // empty for Added
	After  object.Hash // empty for Removed
}

// Result holds the path-level diff between two content states. Changes
// are ordered by path.
type Result struct {
	Changes []Change
}

// Compare diffs two content states, each a flat table of contents
// mapping path to content hash. It walks the union of both path sets and
// classifies every path as added, removed, or modified; paths whose
// hashes match are omitted. Content equality is hash equality, so no
// file bytes are consulted.
func Compare(before, after map[string]object.Hash) *Result {
	paths := make([]string, 0, len(before)+len(after))
	seen := make(map[string]bool, len(before)+len(after))
	for p := range before {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for p := range after {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	res := &Result{}
	for _, p := range paths {
		b, inBefore := before[p]
		a, inAfter := after[p]
		switch {
		case inBefore && !inAfter:
			res.Changes = append(res.Changes, Change{Type: Removed, Path: p, Before: b})
		case !inBefore && inAfter:
			res.Changes = append(res.Changes, Change{Type: Added, Path: p, After: a})
		case b != a:
			res.Changes = append(res.Changes, Change{Type: Modified, Path: p, Before: b, After: a})
		}
	}
	return res
}

// Empty reports whether the diff contains no changes.
func (r *Result) Empty() bool {
	return len(r.Changes) == 0
}

// Paths returns the changed paths in order.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		out[i] = c.Path
	}
	return out
}

// NameStatus maps each changed path to its single-letter classification:
// "A" added, "M" modified, "D" removed.
func (r *Result) NameStatus() map[string]string {
	out := make(map[string]string, len(r.Changes))
	for _, c := range r.Changes {
		switch c.Type {
		case Added:
			out[c.Path] = "A"
		case Modified:
			out[c.Path] = "M"
		case Removed:
			out[c.Path] = "D"
		}
	}
	return out
}
