// Package arena implements a fixed-capacity store of tree nodes addressed by
// generation-checked handles.
//
// An Arena never grows. Every node has at most one parent, and attaching a
// node that already has one is a contract violation. Freeing a node bumps the
// generation of its slot, so any handle that still names it becomes stale and
// panics on use instead of silently reading a reused slot.
package arena

import (
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ErrExhausted is returned by Alloc when every slot is in use.
var ErrExhausted = errors.New("arena: exhausted")

// Handle names a node in an arena. The zero Handle names no node.
type Handle struct {
	// index is the slot index plus one, so that the zero value is nil.
	index uint32
	gen   uint32
}

// IsNil returns whether h names no node.
func (h Handle) IsNil() bool {
	return h.index == 0
}

func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return "#" + strconv.FormatUint(uint64(h.index-1), 10) + "." + strconv.FormatUint(uint64(h.gen), 10)
}

// StaleHandleError is the panic value for a use of a handle whose node has
// been freed.
type StaleHandleError struct {
	Handle Handle
}

func (err *StaleHandleError) Error() string {
	return "arena: stale handle " + err.Handle.String()
}

type slot[T any] struct {
	value    T
	parent   Handle
	children []Handle
	refs     int32
	gen      uint32
	live     bool
}

// Arena is a fixed-capacity node store. It is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
	high  int
	// version counts mutations.
	version uint64
}

// New creates an arena with room for capacity nodes.
func New[T any](capacity int) *Arena[T] {
	if capacity <= 0 {
		panic("arena: non-positive capacity " + strconv.Itoa(capacity))
	}
	a := &Arena[T]{
		slots: make([]slot[T], capacity),
		free:  make([]uint32, capacity),
	}
	// Pop from the end so that low slots are used first.
	for i := range a.free {
		a.free[i] = uint32(capacity - 1 - i)
	}
	return a
}

// Cap returns the number of slots in the arena.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}

// Live returns the number of allocated nodes.
func (a *Arena[T]) Live() int {
	return a.live
}

// HighWater returns the largest number of nodes that have been live at once.
func (a *Arena[T]) HighWater() int {
	return a.high
}

// Version returns a counter that changes whenever the arena is mutated.
func (a *Arena[T]) Version() uint64 {
	return a.version
}

// Alloc allocates a parentless node holding v with no references.
func (a *Arena[T]) Alloc(v T) (Handle, error) {
	if len(a.free) == 0 {
		return Handle{}, ErrExhausted
	}
	i := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	s := &a.slots[i]
	s.value = v
	s.parent = Handle{}
	s.children = s.children[:0]
	s.refs = 0
	s.live = true
	a.live++
	if a.live > a.high {
		a.high = a.live
	}
	a.version++
	return Handle{index: i + 1, gen: s.gen}, nil
}

// Valid returns whether h names a live node.
func (a *Arena[T]) Valid(h Handle) bool {
	if h.IsNil() || int(h.index) > len(a.slots) {
		return false
	}
	s := &a.slots[h.index-1]
	return s.live && s.gen == h.gen
}

func (a *Arena[T]) slot(h Handle) *slot[T] {
	if !a.Valid(h) {
		panic(&StaleHandleError{Handle: h})
	}
	return &a.slots[h.index-1]
}

// HandleAt returns the handle of the node in slot i, if that slot is live.
func (a *Arena[T]) HandleAt(i int) (Handle, bool) {
	s := &a.slots[i]
	if !s.live {
		return Handle{}, false
	}
	return Handle{index: uint32(i) + 1, gen: s.gen}, true
}

// Get returns the value of a node.
func (a *Arena[T]) Get(h Handle) T {
	return a.slot(h).value
}

// Set replaces the value of a node.
func (a *Arena[T]) Set(h Handle, v T) {
	a.slot(h).value = v
	a.version++
}

// Parent returns the parent of a node, or the nil handle for a root.
func (a *Arena[T]) Parent(h Handle) Handle {
	return a.slot(h).parent
}

// NumChildren returns the number of children of a node.
func (a *Arena[T]) NumChildren(h Handle) int {
	return len(a.slot(h).children)
}

// Child returns the i-th child of a node.
func (a *Arena[T]) Child(h Handle, i int) Handle {
	return a.slot(h).children[i]
}

// Children returns a copy of the children of a node.
func (a *Arena[T]) Children(h Handle) []Handle {
	return append([]Handle(nil), a.slot(h).children...)
}

// IndexOf returns the position of child among the children of its parent, or
// -1 if child is a root.
func (a *Arena[T]) IndexOf(child Handle) int {
	p := a.slot(child).parent
	if p.IsNil() {
		return -1
	}
	for i, c := range a.slot(p).children {
		if c == child {
			return i
		}
	}
	panic("arena: " + child.String() + " missing from its parent " + p.String())
}

func (a *Arena[T]) adopt(parent, child Handle) {
	c := a.slot(child)
	if !c.parent.IsNil() {
		panic("arena: " + child.String() + " already has parent " + c.parent.String())
	}
	if c.refs > 0 {
		panic("arena: attaching referenced root " + child.String())
	}
	if parent == child {
		panic("arena: " + child.String() + " cannot be its own child")
	}
	for p := parent; !p.IsNil(); p = a.slot(p).parent {
		if p == child {
			panic("arena: attaching " + child.String() + " under " + parent.String() + " would create a cycle")
		}
	}
	c.parent = parent
}

// Append attaches a root node as the last child of parent.
func (a *Arena[T]) Append(parent, child Handle) {
	a.Insert(parent, a.NumChildren(parent), child)
}

// Insert attaches a root node as the i-th child of parent.
func (a *Arena[T]) Insert(parent Handle, i int, child Handle) {
	p := a.slot(parent)
	a.adopt(parent, child)
	p.children = append(p.children, Handle{})
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = child
	a.version++
}

// Detach removes the i-th child of parent and returns it as a root.
func (a *Arena[T]) Detach(parent Handle, i int) Handle {
	p := a.slot(parent)
	c := p.children[i]
	p.children = append(p.children[:i], p.children[i+1:]...)
	a.slot(c).parent = Handle{}
	a.version++
	return c
}

// Replace puts a root node in place of the i-th child of parent and returns
// the old child as a root.
func (a *Arena[T]) Replace(parent Handle, i int, child Handle) Handle {
	p := a.slot(parent)
	old := p.children[i]
	if old == child {
		return old
	}
	a.adopt(parent, child)
	p.children[i] = child
	a.slot(old).parent = Handle{}
	a.version++
	return old
}

// Swap exchanges two children of parent.
func (a *Arena[T]) Swap(parent Handle, i, j int) {
	p := a.slot(parent)
	p.children[i], p.children[j] = p.children[j], p.children[i]
	a.version++
}

// Retain adds a reference to a root node.
func (a *Arena[T]) Retain(h Handle) {
	a.slot(h).refs++
}

// Refs returns the number of references to a node.
func (a *Arena[T]) Refs(h Handle) int {
	return int(a.slot(h).refs)
}

// MoveRefs transfers the references held on one root to another.
func (a *Arena[T]) MoveRefs(from, to Handle) {
	f := a.slot(from)
	a.slot(to).refs += f.refs
	f.refs = 0
}

// Unref drops a reference to a node without freeing it, e.g. to hand the node
// over to a parent. It returns the number of references that remain.
func (a *Arena[T]) Unref(h Handle) int {
	s := a.slot(h)
	if s.refs <= 0 {
		panic("arena: unref of unreferenced " + h.String())
	}
	s.refs--
	return int(s.refs)
}

// Release drops a reference to a root node. The node and its descendants are
// freed when no references remain.
func (a *Arena[T]) Release(h Handle) {
	s := a.slot(h)
	if s.refs <= 0 {
		panic("arena: release of unreferenced " + h.String())
	}
	s.refs--
	if s.refs == 0 {
		a.Free(h)
	}
}

// Free frees a parentless, unreferenced node and all of its descendants.
func (a *Arena[T]) Free(h Handle) {
	s := a.slot(h)
	if !s.parent.IsNil() {
		panic("arena: free of attached node " + h.String())
	}
	if s.refs > 0 {
		panic("arena: free of referenced node " + h.String())
	}
	a.free1(h)
}

func (a *Arena[T]) free1(h Handle) {
	s := a.slot(h)
	for _, c := range s.children {
		a.slot(c).parent = Handle{}
		a.free1(c)
	}
	var zero T
	s.value = zero
	s.children = s.children[:0]
	s.parent = Handle{}
	s.refs = 0
	s.live = false
	s.gen++
	a.free = append(a.free, h.index-1)
	a.live--
	a.version++
}

// Walk calls f for h and each of its descendants in depth-first pre-order.
// Walk stops and returns false if f returns false. f must not mutate the
// arena.
func (a *Arena[T]) Walk(h Handle, f func(Handle) bool) bool {
	if !f(h) {
		return false
	}
	for _, c := range a.slot(h).children {
		if !a.Walk(c, f) {
			return false
		}
	}
	return true
}

// Check verifies the adjacency invariants of every live node and returns
// every violation found.
func (a *Arena[T]) Check() error {
	var err error
	seen := make(map[Handle]Handle)
	live := 0
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		live++
		h := Handle{index: uint32(i) + 1, gen: s.gen}
		if !s.parent.IsNil() {
			if !a.Valid(s.parent) {
				err = multierr.Append(err, errors.Errorf("%v has dead parent %v", h, s.parent))
			} else if !containsHandle(a.slots[s.parent.index-1].children, h) {
				err = multierr.Append(err, errors.Errorf("%v names parent %v which does not list it", h, s.parent))
			}
		}
		for _, c := range s.children {
			if !a.Valid(c) {
				err = multierr.Append(err, errors.Errorf("%v has dead child %v", h, c))
				continue
			}
			if prev, ok := seen[c]; ok {
				err = multierr.Append(err, errors.Errorf("%v is a child of both %v and %v", c, prev, h))
			}
			seen[c] = h
			if p := a.slots[c.index-1].parent; p != h {
				err = multierr.Append(err, errors.Errorf("%v lists child %v whose parent is %v", h, c, p))
			}
		}
	}
	if live != a.live {
		err = multierr.Append(err, errors.Errorf("live count %d but %d live slots", a.live, live))
	}
	if live+len(a.free) != len(a.slots) {
		err = multierr.Append(err, errors.Errorf("%d live and %d free slots in an arena of %d", live, len(a.free), len(a.slots)))
	}
	return err
}

func containsHandle(hs []Handle, h Handle) bool {
	for _, x := range hs {
		if x == h {
			return true
		}
	}
	return false
}
