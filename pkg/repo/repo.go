package repo

import (
	"fmt"
	"path/filepath"

	"github.com/keelvcs/keel/pkg/object"
)

// MetaDirName is the metadata directory created inside a repository's
// working tree. Bare repositories keep the same files at their root.
const MetaDirName = ".keel"

// DefaultBranch is the branch HEAD points at after init.
const DefaultBranch = "main"

// Repo represents an opened keel repository.
type Repo struct {
	RootDir string        // working tree root; equals KeelDir for bare repos
	KeelDir string        // metadata directory
	Bare    bool          // no working tree
	Store   *object.Store // content-addressed object store
}

// ensureWorktree fails with ErrBareRepository when the repository has no
// working tree.
func (r *Repo) ensureWorktree(op string) error {
	if r.Bare {
		return fmt.Errorf("%s: %w", op, ErrBareRepository)
	}
	return nil
}

// metaPath returns the path of a file inside the metadata directory.
func (r *Repo) metaPath(name string) string {
	return filepath.Join(r.KeelDir, name)
}

// worktreePath returns the absolute working-tree path for a
// slash-separated repository-relative path.
func (r *Repo) worktreePath(rel string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(rel))
}
