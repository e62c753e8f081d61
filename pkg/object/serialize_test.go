package object

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalUnmarshalBlob(t *testing.T) {
	orig := &Blob{Data: []byte("hello world\nline two")}
	data := MarshalBlob(orig)
	got, err := UnmarshalBlob(data)
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("Blob round-trip mismatch: got %q, want %q", got.Data, orig.Data)
	}
}

func TestMarshalBlobDeterminism(t *testing.T) {
	b := &Blob{Data: []byte("deterministic")}
	d1 := MarshalBlob(b)
	d2 := MarshalBlob(b)
	if !bytes.Equal(d1, d2) {
		t.Error("Blob marshal not deterministic")
	}
}

func TestMarshalTreeSortsEntries(t *testing.T) {
	tr := &TreeObj{
		Entries: []TreeEntry{
			{Name: "zebra", Kind: TypeBlob, Hash: Hash(strings.Repeat("b", 64))},
			{Name: "alpha", Kind: TypeBlob, Hash: Hash(strings.Repeat("a", 64))},
		},
	}
	data := MarshalTree(tr)

	swapped := &TreeObj{
		Entries: []TreeEntry{tr.Entries[1], tr.Entries[0]},
	}
	if !bytes.Equal(data, MarshalTree(swapped)) {
		t.Error("Tree marshal depends on entry insertion order")
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Line count: got %d, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], " alpha") || !strings.HasSuffix(lines[1], " zebra") {
		t.Errorf("Entries not sorted by name:\n%s", data)
	}
}

func TestMarshalUnmarshalTreeNameWithSpaces(t *testing.T) {
	orig := &TreeObj{
		Entries: []TreeEntry{
			{Name: "release notes.txt", Kind: TypeBlob, Hash: Hash(strings.Repeat("a", 64))},
		},
	}
	got, err := UnmarshalTree(MarshalTree(orig))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Name != "release notes.txt" {
		t.Errorf("Name with spaces lost: %+v", got.Entries)
	}
}

func TestUnmarshalTreeEmpty(t *testing.T) {
	got, err := UnmarshalTree(nil)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Errorf("Empty tree gained entries: %+v", got.Entries)
	}
}

func TestUnmarshalTreeMalformed(t *testing.T) {
	if _, err := UnmarshalTree([]byte("blob only-two-fields\n")); err == nil {
		t.Error("Malformed tree entry should fail")
	}
	if _, err := UnmarshalTree([]byte("widget " + strings.Repeat("a", 64) + " name\n")); err == nil {
		t.Error("Unknown entry kind should fail")
	}
}

func TestMarshalUnmarshalCommit(t *testing.T) {
	orig := &CommitObj{
		TreeHash: Hash(strings.Repeat("a", 64)),
		Parents:  []Hash{Hash(strings.Repeat("b", 64)), Hash(strings.Repeat("c", 64))},
		Message:  "merge branch\n\nbody line\n",
	}
	got, err := UnmarshalCommit(MarshalCommit(orig))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if got.TreeHash != orig.TreeHash {
		t.Errorf("TreeHash: got %q, want %q", got.TreeHash, orig.TreeHash)
	}
	if len(got.Parents) != 2 || got.Parents[0] != orig.Parents[0] || got.Parents[1] != orig.Parents[1] {
		t.Errorf("Parents: got %v, want %v", got.Parents, orig.Parents)
	}
	if got.Message != orig.Message {
		t.Errorf("Message: got %q, want %q", got.Message, orig.Message)
	}
}

func TestMarshalCommitNoParents(t *testing.T) {
	orig := &CommitObj{
		TreeHash: Hash(strings.Repeat("a", 64)),
		Message:  "root",
	}
	got, err := UnmarshalCommit(MarshalCommit(orig))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if len(got.Parents) != 0 {
		t.Errorf("Root commit gained parents: %v", got.Parents)
	}
	if got.Message != "root" {
		t.Errorf("Message: got %q, want %q", got.Message, "root")
	}
}

func TestUnmarshalCommitMalformed(t *testing.T) {
	if _, err := UnmarshalCommit([]byte("tree abc")); err == nil {
		t.Error("Commit without header/message separator should fail")
	}
	if _, err := UnmarshalCommit([]byte("tree abc\nwhen now\n\nmsg")); err == nil {
		t.Error("Commit with unknown header key should fail")
	}
}
