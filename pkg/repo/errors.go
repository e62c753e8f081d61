package repo

import "errors"

// Sentinel errors for repository operations. Callers match them with
// errors.Is; the command layer renders them verbatim.
var (
	// ErrNotARepository reports that no repository was found at or above
	// the requested path.
	ErrNotARepository = errors.New("not a keel repository")

	// ErrBareRepository reports a working-tree operation attempted on a
	// bare repository.
	ErrBareRepository = errors.New("bare repository has no working tree")

	// ErrPathNotFound reports that a path argument matched no files.
	ErrPathNotFound = errors.New("no matching files")

	// ErrInvalidRef reports a malformed reference or branch name.
	ErrInvalidRef = errors.New("invalid ref name")

	// ErrAlreadyExists reports a name collision (repository, branch,
	// remote).
	ErrAlreadyExists = errors.New("already exists")

	// ErrDirtyWorkingTree reports local uncommitted changes that the
	// operation would overwrite or discard.
	ErrDirtyWorkingTree = errors.New("local changes would be overwritten")

	// ErrUnresolvedConflicts reports a commit attempted while the index
	// holds conflict entries.
	ErrUnresolvedConflicts = errors.New("unresolved merge conflicts")

	// ErrUnsupported reports an explicitly unsupported combination, such
	// as removing a conflicted path.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrNothingToCommit reports a commit that would not change the
	// committed state.
	ErrNothingToCommit = errors.New("nothing to commit")
)
