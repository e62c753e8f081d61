package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/keelvcs/keel/pkg/object"
)

// Stage identifies a slot within an index record. Resolved entries use
// stage 0; a merge conflict replaces the record with stage 1-3 hashes
// holding the base, ours, and theirs versions.
type Stage int

const (
	StageResolved Stage = iota
	StageBase
	StageOurs
	StageTheirs
)

// IndexEntry records the staged state of a single file. Exactly one
// shape is populated: Hash for a resolved entry, or some of
// Base/Ours/Theirs for a conflicted one. A side absent from a conflict
// (delete vs modify) leaves its field empty.
type IndexEntry struct {
	Path   string      `json:"path"`
	Hash   object.Hash `json:"hash,omitempty"`
	Base   object.Hash `json:"base,omitempty"`
	Ours   object.Hash `json:"ours,omitempty"`
	Theirs object.Hash `json:"theirs,omitempty"`
}

// InConflict reports whether the entry carries conflict stages instead
// of a resolved hash.
func (e *IndexEntry) InConflict() bool {
	return e.Base != "" || e.Ours != "" || e.Theirs != ""
}

// StageHash returns the hash stored at the given stage. The result is
// empty when that side is absent.
func (e *IndexEntry) StageHash(s Stage) object.Hash {
	switch s {
	case StageResolved:
		return e.Hash
	case StageBase:
		return e.Base
	case StageOurs:
		return e.Ours
	case StageTheirs:
		return e.Theirs
	}
	return ""
}

// Index holds the full staging area for a keel repository.
type Index struct {
	Entries map[string]*IndexEntry `json:"entries"`
}

// NewIndex returns an empty staging area.
func NewIndex() *Index {
	return &Index{Entries: make(map[string]*IndexEntry)}
}

// TOCToIndex builds a fully resolved staging area from a table of
// contents, one stage-0 entry per path.
func TOCToIndex(toc map[string]object.Hash) *Index {
	ix := NewIndex()
	for p, h := range toc {
		ix.Entries[p] = &IndexEntry{Path: p, Hash: h}
	}
	return ix
}

// TOC returns the path-to-hash table of contents of resolved entries.
// Conflicted paths are excluded.
func (ix *Index) TOC() map[string]object.Hash {
	toc := make(map[string]object.Hash, len(ix.Entries))
	for p, e := range ix.Entries {
		if e.InConflict() {
			continue
		}
		toc[p] = e.Hash
	}
	return toc
}

// HasFile reports whether path has any record, resolved or conflicted.
func (ix *Index) HasFile(path string) bool {
	_, ok := ix.Entries[path]
	return ok
}

// IsFileInConflict reports whether path has an unresolved conflict record.
func (ix *Index) IsFileInConflict(path string) bool {
	e, ok := ix.Entries[path]
	return ok && e.InConflict()
}

// WriteNonConflict hashes content into the store and records a resolved
// stage-0 entry for path, replacing any conflict stages.
func (ix *Index) WriteNonConflict(store *object.Store, path string, content []byte) (object.Hash, error) {
	h, err := store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return "", fmt.Errorf("stage %q: %w", path, err)
	}
	ix.Entries[path] = &IndexEntry{Path: path, Hash: h}
	return h, nil
}

// WriteConflict replaces the record for path with conflict stages.
// Absent sides pass an empty hash.
func (ix *Index) WriteConflict(path string, base, ours, theirs object.Hash) {
	ix.Entries[path] = &IndexEntry{Path: path, Base: base, Ours: ours, Theirs: theirs}
}

// WriteRm drops the record for path. Dropping a conflicted record is
// not supported; resolve the conflict first.
func (ix *Index) WriteRm(path string) error {
	e, ok := ix.Entries[path]
	if !ok {
		return nil
	}
	if e.InConflict() {
		return fmt.Errorf("remove %q from index: %w for conflicted entries", path, ErrUnsupported)
	}
	delete(ix.Entries, path)
	return nil
}

// MatchingFiles lists recorded paths equal to prefix or under it as a
// directory. Matching is by whole path segments, so "src" matches
// "src/a.go" but not "srcdir/a.go". An empty prefix matches everything.
// Results are sorted.
func (ix *Index) MatchingFiles(prefix string) []string {
	var out []string
	for p := range ix.Entries {
		if prefix == "" || p == prefix || strings.HasPrefix(p, prefix+"/") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// ConflictedPaths lists paths with unresolved conflict records, sorted.
func (ix *Index) ConflictedPaths() []string {
	var out []string
	for p, e := range ix.Entries {
		if e.InConflict() {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// indexPath returns the filesystem path to the staging index file.
func (r *Repo) indexPath() string {
	return r.metaPath("index")
}

// ReadIndex loads the staging area from .keel/index. If the file does
// not exist, an empty Index is returned (no error).
func (r *Repo) ReadIndex() (*Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewIndex(), nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("read index: unmarshal: %w", err)
	}
	if ix.Entries == nil {
		ix.Entries = make(map[string]*IndexEntry)
	}
	return &ix, nil
}

// WriteIndex atomically writes the staging area to .keel/index.
func (r *Repo) WriteIndex(ix *Index) error {
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("write index: marshal: %w", err)
	}

	// Atomic write via temp file + rename.
	tmp, err := os.CreateTemp(r.KeelDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("write index: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write index: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: close: %w", err)
	}

	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: rename: %w", err)
	}
	return nil
}

// Add stages the given paths. Each path is resolved relative to the
// repository root; directories are walked recursively, skipping ignored
// files. Each file's content is written as a blob to the object store
// and a resolved entry replaces any previous record for the path,
// including conflict stages.
func (r *Repo) Add(paths []string) error {
	if err := r.ensureWorktree("add"); err != nil {
		return err
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	rules, err := r.ignoreRules()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: resolve path %q: %w", p, err)
		}

		info, err := os.Stat(r.worktreePath(relPath))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("add %q: %w", p, ErrPathNotFound)
			}
			return fmt.Errorf("add: stat %q: %w", relPath, err)
		}

		if info.IsDir() {
			if err := r.addDir(ix, relPath, rules); err != nil {
				return err
			}
			continue
		}
		if err := r.addFile(ix, relPath); err != nil {
			return err
		}
	}

	if err := r.WriteIndex(ix); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// addDir stages every non-ignored regular file under relDir.
func (r *Repo) addDir(ix *Index, relDir string, rules *ignoreMatcher) error {
	absDir := r.worktreePath(relDir)
	err := filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
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
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || rules.Ignored(rel, false) {
			return nil
		}
		return r.addFile(ix, rel)
	})
	if err != nil {
		return fmt.Errorf("add: walk %q: %w", relDir, err)
	}
	return nil
}

// addFile reads one file from the working tree and stages it.
func (r *Repo) addFile(ix *Index, relPath string) error {
	content, err := os.ReadFile(r.worktreePath(relPath))
	if err != nil {
		return fmt.Errorf("add: read %q: %w", relPath, err)
	}
	if _, err := ix.WriteNonConflict(r.Store, relPath, content); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// repoRelPath converts a path (absolute, or relative to CWD) into a path
// relative to the repository root. If the path is already relative and
// does not resolve inside the repo root, it is assumed to already be
// repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
		return filepath.ToSlash(rel), nil
	}

	// Try to resolve via CWD.
	cwd, err := os.Getwd()
	if err != nil {
		// Fall through to treating p as repo-relative.
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	abs := filepath.Join(cwd, p)
	// Check if the absolute path lives within the repo root.
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	// If the relative path starts with "..", p is outside the repo.
	// In that case, treat the original p as already repo-relative.
	if len(rel) >= 2 && rel[:2] == ".." {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	return filepath.ToSlash(rel), nil
}
