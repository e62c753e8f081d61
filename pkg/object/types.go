package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of record stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object: a named reference to a blob
// or a subtree.
type TreeEntry struct {
	Name string
	Kind ObjectType // TypeBlob or TypeTree
	Hash Hash
}

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// CommitObj points a message at a tree snapshot. Parents holds zero
// hashes for a root commit, one for a normal commit, two for a merge.
type CommitObj struct {
	TreeHash Hash
	Parents  []Hash
	Message  string
}
