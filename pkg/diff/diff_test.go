package diff

import (
	"strings"
	"testing"

	"github.com/keelvcs/keel/pkg/object"
)

func h(seed string) object.Hash {
	return object.HashObject(object.TypeBlob, []byte(seed))
}

func TestCompareClassification(t *testing.T) {
	before := map[string]object.Hash{
		"kept.txt":    h("same"),
		"changed.txt": h("old"),
		"gone.txt":    h("bye"),
	}
	after := map[string]object.Hash{
		"kept.txt":    h("same"),
		"changed.txt": h("new"),
		"fresh.txt":   h("hi"),
	}

	res := Compare(before, after)
	if len(res.Changes) != 3 {
		t.Fatalf("got %d changes, want 3: %+v", len(res.Changes), res.Changes)
	}

	// Changes come back sorted by path.
	wantPaths := []string{"changed.txt", "fresh.txt", "gone.txt"}
	wantTypes := []ChangeType{Modified, Added, Removed}
	for i, c := range res.Changes {
		if c.Path != wantPaths[i] || c.Type != wantTypes[i] {
			t.Errorf("change[%d] = {%v, %q}, want {%v, %q}",
				i, c.Type, c.Path, wantTypes[i], wantPaths[i])
		}
	}

	ns := res.NameStatus()
	for p, want := range map[string]string{"changed.txt": "M", "fresh.txt": "A", "gone.txt": "D"} {
		if ns[p] != want {
			t.Errorf("NameStatus[%q] = %q, want %q", p, ns[p], want)
		}
	}
	if _, ok := ns["kept.txt"]; ok {
		t.Error("Unchanged path appeared in NameStatus")
	}
}

func TestCompareIdenticalStates(t *testing.T) {
	state := map[string]object.Hash{
		"a.txt": h("a"),
		"b.txt": h("b"),
	}
	res := Compare(state, state)
	if !res.Empty() {
		t.Errorf("Diff of identical states not empty: %+v", res.Changes)
	}
}

func TestCompareEmptyStates(t *testing.T) {
	if res := Compare(nil, nil); !res.Empty() {
		t.Errorf("Diff of empty states not empty: %+v", res.Changes)
	}

	after := map[string]object.Hash{"only.txt": h("x")}
	res := Compare(nil, after)
	if len(res.Changes) != 1 || res.Changes[0].Type != Added {
		t.Errorf("Diff from empty state: %+v", res.Changes)
	}
}

func TestCompareSymmetry(t *testing.T) {
	stateA := map[string]object.Hash{
		"both.txt":   h("v1"),
		"a-only.txt": h("a"),
		"moved.txt":  h("m1"),
	}
	stateB := map[string]object.Hash{
		"both.txt":   h("v2"),
		"b-only.txt": h("b"),
		"moved.txt":  h("m2"),
	}

	ab := Compare(stateA, stateB)
	ba := Compare(stateB, stateA)

	added := func(r *Result) map[string]bool {
		out := map[string]bool{}
		for _, c := range r.Changes {
			if c.Type == Added {
				out[c.Path] = true
			}
		}
		return out
	}
	removed := func(r *Result) map[string]bool {
		out := map[string]bool{}
		for _, c := range r.Changes {
			if c.Type == Removed {
				out[c.Path] = true
			}
		}
		return out
	}

	abAdded, baRemoved := added(ab), removed(ba)
	if len(abAdded) != len(baRemoved) {
		t.Fatalf("added(A,B)=%v removed(B,A)=%v", abAdded, baRemoved)
	}
	for p := range abAdded {
		if !baRemoved[p] {
			t.Errorf("path %q added in (A,B) but not removed in (B,A)", p)
		}
	}

	abRemoved, baAdded := removed(ab), added(ba)
	if len(abRemoved) != len(baAdded) {
		t.Fatalf("removed(A,B)=%v added(B,A)=%v", abRemoved, baAdded)
	}
	for p := range abRemoved {
		if !baAdded[p] {
			t.Errorf("path %q removed in (A,B) but not added in (B,A)", p)
		}
	}
}

func TestComparePathsOrdered(t *testing.T) {
	before := map[string]object.Hash{}
	after := map[string]object.Hash{
		"z.txt":     h("z"),
		"a.txt":     h("a"),
		"dir/m.txt": h("m"),
	}
	got := Compare(before, after).Paths()
	want := []string{"a.txt", "dir/m.txt", "z.txt"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Paths: got %v, want %v", got, want)
	}
}
