package arena

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustAlloc(t *testing.T, a *Arena[string], v string) Handle {
	t.Helper()
	h, err := a.Alloc(v)
	if err != nil {
		t.Fatalf("alloc %q: %v", v, err)
	}
	return h
}

func values(a *Arena[string], hs []Handle) []string {
	r := make([]string, len(hs))
	for i, h := range hs {
		r[i] = a.Get(h)
	}
	return r
}

func expectStale(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("no panic")
		}
		if _, ok := r.(*StaleHandleError); !ok {
			t.Fatalf("panicked with %#v, not *StaleHandleError", r)
		}
	}()
	f()
}

func TestAllocExhausted(t *testing.T) {
	a := New[string](2)
	mustAlloc(t, a, "a")
	mustAlloc(t, a, "b")
	if _, err := a.Alloc("c"); !errors.Is(err, ErrExhausted) {
		t.Fatalf("third alloc gave %v, want ErrExhausted", err)
	}
	if a.Live() != 2 || a.HighWater() != 2 {
		t.Errorf("live %d high %d, want 2 2", a.Live(), a.HighWater())
	}
}

func TestAdjacency(t *testing.T) {
	a := New[string](8)
	p := mustAlloc(t, a, "p")
	x := mustAlloc(t, a, "x")
	y := mustAlloc(t, a, "y")
	z := mustAlloc(t, a, "z")
	a.Append(p, x)
	a.Append(p, z)
	a.Insert(p, 1, y)
	if diff := cmp.Diff([]string{"x", "y", "z"}, values(a, a.Children(p))); diff != "" {
		t.Errorf("children after insert (-want +got):\n%s", diff)
	}
	if a.Parent(y) != p || a.IndexOf(y) != 1 {
		t.Errorf("y has parent %v at %d", a.Parent(y), a.IndexOf(y))
	}
	a.Swap(p, 0, 2)
	if diff := cmp.Diff([]string{"z", "y", "x"}, values(a, a.Children(p))); diff != "" {
		t.Errorf("children after swap (-want +got):\n%s", diff)
	}
	d := a.Detach(p, 1)
	if d != y || !a.Parent(y).IsNil() {
		t.Errorf("detached %v with parent %v", d, a.Parent(y))
	}
	old := a.Replace(p, 0, y)
	if old != z || a.IndexOf(y) != 0 || a.IndexOf(z) != -1 {
		t.Errorf("replace returned %v, y at %d, z at %d", old, a.IndexOf(y), a.IndexOf(z))
	}
	a.Free(z)
	if err := a.Check(); err != nil {
		t.Errorf("check: %v", err)
	}
}

func TestDoubleParentPanics(t *testing.T) {
	a := New[string](4)
	p := mustAlloc(t, a, "p")
	q := mustAlloc(t, a, "q")
	x := mustAlloc(t, a, "x")
	a.Append(p, x)
	defer func() {
		if recover() == nil {
			t.Error("attaching an attached node did not panic")
		}
	}()
	a.Append(q, x)
}

func TestCyclePanics(t *testing.T) {
	a := New[string](4)
	p := mustAlloc(t, a, "p")
	x := mustAlloc(t, a, "x")
	a.Append(p, x)
	r := a.Detach(p, 0)
	a.Append(r, mustAlloc(t, a, "y"))
	defer func() {
		if recover() == nil {
			t.Error("attaching an ancestor did not panic")
		}
	}()
	a.Append(a.Child(x, 0), x)
}

func TestFreePoisonsSubtree(t *testing.T) {
	a := New[string](4)
	p := mustAlloc(t, a, "p")
	x := mustAlloc(t, a, "x")
	a.Append(p, x)
	a.Retain(p)
	a.Release(p)
	if a.Valid(p) || a.Valid(x) {
		t.Fatal("freed handles still valid")
	}
	if a.Live() != 0 {
		t.Errorf("live %d after release", a.Live())
	}
	expectStale(t, func() { a.Get(x) })
	// Reusing the slot must not revive old handles.
	y := mustAlloc(t, a, "y")
	z := mustAlloc(t, a, "z")
	if a.Valid(p) || a.Valid(x) {
		t.Error("stale handles valid after slot reuse")
	}
	if a.Get(y) != "y" || a.Get(z) != "z" {
		t.Error("wrong values after reuse")
	}
}

func TestRefs(t *testing.T) {
	a := New[string](2)
	p := mustAlloc(t, a, "p")
	a.Retain(p)
	a.Retain(p)
	a.Release(p)
	if !a.Valid(p) || a.Refs(p) != 1 {
		t.Fatalf("valid=%v refs=%d after one release", a.Valid(p), a.Refs(p))
	}
	q := mustAlloc(t, a, "q")
	a.MoveRefs(p, q)
	if a.Refs(p) != 0 || a.Refs(q) != 1 {
		t.Errorf("refs p=%d q=%d after move", a.Refs(p), a.Refs(q))
	}
	if n := a.Unref(q); n != 0 || !a.Valid(q) {
		t.Errorf("unref left %d refs, valid=%v", n, a.Valid(q))
	}
	defer func() {
		if recover() == nil {
			t.Error("attaching a referenced root did not panic")
		}
	}()
	a.Retain(q)
	a.Append(p, q)
}

func TestWalk(t *testing.T) {
	a := New[string](8)
	p := mustAlloc(t, a, "p")
	x := mustAlloc(t, a, "x")
	y := mustAlloc(t, a, "y")
	z := mustAlloc(t, a, "z")
	a.Append(p, x)
	a.Append(x, y)
	a.Append(p, z)
	var got []string
	a.Walk(p, func(h Handle) bool {
		got = append(got, a.Get(h))
		return true
	})
	if diff := cmp.Diff([]string{"p", "x", "y", "z"}, got); diff != "" {
		t.Errorf("walk order (-want +got):\n%s", diff)
	}
}
