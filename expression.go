package symbolic

import (
	"math/big"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// Expression is a handle to an expression tree in a Pool.
//
// An owning Expression holds a reference to the root of its tree; the tree is
// freed when every owning handle to it has been released. A borrowed
// Expression, obtained from Child, is a view of a node inside another tree.
// Borrowed views do not keep their node alive: any operation that rewrites an
// ancestor may free the node, after which using the view panics with
// *arena.StaleHandleError.
//
// Reduce, Beautify, and Simplify rewrite a tree in place. The root node keeps
// its identity through those rewrites, so every owning handle to the tree
// sees the result.
type Expression struct {
	p     *Pool
	h     arena.Handle
	owned bool
}

// own wraps a fresh root in an owning handle.
func (p *Pool) own(h arena.Handle) *Expression {
	p.a.Retain(h)
	return &Expression{p: p, h: h, owned: true}
}

// Pool returns the pool the expression lives in.
func (e *Expression) Pool() *Pool {
	return e.p
}

// IsNil returns whether e names no tree, e.g. because it has been released or
// consumed by a builder.
func (e *Expression) IsNil() bool {
	return e == nil || e.h.IsNil()
}

// Owned returns whether e is an owning handle.
func (e *Expression) Owned() bool {
	return e.owned
}

// Kind returns the kind of the expression's root node.
func (e *Expression) Kind() Kind {
	return e.p.kind(e.h)
}

// NumChildren returns the number of operands of the root node.
func (e *Expression) NumChildren() int {
	return e.p.numChildren(e.h)
}

// Child returns a borrowed view of the i-th operand.
func (e *Expression) Child(i int) *Expression {
	return &Expression{p: e.p, h: e.p.child(e.h, i)}
}

// Name returns the name of a Symbol, Function, or Constant, or the empty
// string for other kinds.
func (e *Expression) Name() string {
	return e.p.node(e.h).name
}

// Rat returns a copy of the exact value of a Rational or Decimal, or nil for
// other kinds.
func (e *Expression) Rat() *big.Rat {
	n := e.p.node(e.h)
	switch n.kind {
	case Rational:
		return new(big.Rat).Set(n.rat)
	case Decimal:
		return decimalRat(n)
	default:
		return nil
	}
}

// Float64 returns the value of a Float, or the signed infinity of an Infinity.
// The second result is false for other kinds.
func (e *Expression) Float64() (float64, bool) {
	n := e.p.node(e.h)
	switch n.kind {
	case Float:
		return n.f, true
	case Infinity:
		if n.neg {
			return negInf, true
		}
		return posInf, true
	default:
		return 0, false
	}
}

// Columns returns the number of columns of a Matrix, or 0 for other kinds.
func (e *Expression) Columns() int {
	return e.p.node(e.h).cols
}

// Release drops e's reference to its tree and makes e nil. Releasing a
// borrowed view only makes it nil.
func (e *Expression) Release() {
	if e.IsNil() {
		return
	}
	if e.owned {
		e.p.a.Release(e.h)
	}
	e.h = arena.Handle{}
	e.owned = false
}

// Share returns another owning handle to the same tree. Both handles observe
// in-place rewrites. Share panics on a borrowed view; use Clone instead.
func (e *Expression) Share() *Expression {
	if !e.owned {
		panic("symbolic: Share of borrowed expression")
	}
	return e.p.own(e.h)
}

// Clone returns an owning handle to a deep copy of e in the same pool.
func (e *Expression) Clone() (*Expression, error) {
	h, err := e.p.clone(e.h)
	if err != nil {
		return nil, err
	}
	return e.p.own(h), nil
}

// Import deep-copies an expression from any pool into p.
func (p *Pool) Import(e *Expression) (*Expression, error) {
	h, err := p.importFrom(e.p, e.h)
	if err != nil {
		return nil, err
	}
	return p.own(h), nil
}

// Identical returns whether two expressions have the same structure and
// payloads. They may live in different pools.
func (e *Expression) Identical(o *Expression) bool {
	return identical(e.p, e.h, o.p, o.h)
}

func identical(p *Pool, a arena.Handle, q *Pool, b arena.Handle) bool {
	x, y := p.node(a), q.node(b)
	if !samePayload(x, y) {
		return false
	}
	n := p.numChildren(a)
	if n != q.numChildren(b) {
		return false
	}
	for i := 0; i < n; i++ {
		if !identical(p, p.child(a, i), q, q.child(b, i)) {
			return false
		}
	}
	return true
}

func samePayload(x, y node) bool {
	if x.kind != y.kind {
		return false
	}
	switch x.kind {
	case Rational:
		return x.rat.Cmp(y.rat) == 0
	case Decimal:
		return x.exp == y.exp && x.mant.Cmp(y.mant) == 0
	case Float:
		return x.f == y.f || (x.f != x.f && y.f != y.f)
	case Infinity:
		return x.neg == y.neg
	case Symbol, Function, Constant:
		return x.name == y.name
	case Matrix:
		return x.cols == y.cols
	default:
		return true
	}
}

// take prepares builder operands. Operands from other pools and borrowed or
// shared operands are copied. The result holds unreferenced roots; commit
// must be called once the parent exists, or discard on failure.
type operands struct {
	p   *Pool
	in  []*Expression
	hs  []arena.Handle
	cpy []bool
}

func (p *Pool) take(in []*Expression) (*operands, error) {
	o := &operands{p: p, in: in, hs: make([]arena.Handle, len(in)), cpy: make([]bool, len(in))}
	for i, e := range in {
		if e.IsNil() {
			panic("symbolic: nil operand")
		}
		if e.p == p && e.owned && p.a.Refs(e.h) == 1 && !o.taken(e.h, i) {
			o.hs[i] = e.h
			continue
		}
		h, err := p.importFrom(e.p, e.h)
		if err != nil {
			o.discard()
			return nil, err
		}
		o.hs[i] = h
		o.cpy[i] = true
	}
	return o, nil
}

// taken returns whether one of the first n operands consumes h.
func (o *operands) taken(h arena.Handle, n int) bool {
	for j := 0; j < n; j++ {
		if o.hs[j] == h && !o.cpy[j] {
			return true
		}
	}
	return false
}

// discard frees copies made by take. Consumable operands are untouched.
func (o *operands) discard() {
	for i, h := range o.hs {
		if o.cpy[i] && !h.IsNil() {
			o.p.a.Free(h)
		}
	}
}

// commit consumes owned operands and attaches every operand to parent.
func (o *operands) commit(parent arena.Handle) {
	for i, e := range o.in {
		switch {
		case !o.cpy[i]:
			o.p.a.Unref(e.h)
			e.h = arena.Handle{}
			e.owned = false
		case e.owned:
			e.Release()
		}
		o.p.a.Append(parent, o.hs[i])
	}
}

// New builds an expression of kind k over operands. Owned operands are
// consumed: their handles become nil. Borrowed operands and operands from
// other pools are copied. If the pool runs out of nodes, New returns an error
// wrapping ErrPoolExhausted and leaves every operand untouched. New panics if
// the number of operands is not valid for k or k carries a payload that New
// cannot supply.
func (p *Pool) New(k Kind, children ...*Expression) (*Expression, error) {
	switch k {
	case Uninitialized, Rational, Decimal, Float, Infinity, Symbol, Constant, Function, Matrix:
		panic("symbolic: New cannot build " + k.String() + "; use its builder")
	}
	if k >= numKinds || !k.arityOK(len(children)) {
		panic("symbolic: wrong number of operands for " + k.String())
	}
	return p.newNode(node{kind: k}, children)
}

func (p *Pool) newNode(n node, children []*Expression) (*Expression, error) {
	o, err := p.take(children)
	if err != nil {
		return nil, err
	}
	h, err := p.alloc(n)
	if err != nil {
		o.discard()
		return nil, err
	}
	o.commit(h)
	return p.own(h), nil
}

func (p *Pool) leaf(n node) (*Expression, error) {
	h, err := p.alloc(n)
	if err != nil {
		return nil, err
	}
	return p.own(h), nil
}

// Integer builds a Rational with an integer value.
func (p *Pool) Integer(n int64) (*Expression, error) {
	return p.leaf(intNode(n))
}

// Rational builds the Rational num/den. Panics if den is zero.
func (p *Pool) Rational(num, den int64) (*Expression, error) {
	return p.leaf(ratNode(big.NewRat(num, den)))
}

// RationalBig builds a Rational holding a copy of r.
func (p *Pool) RationalBig(r *big.Rat) (*Expression, error) {
	return p.leaf(ratNode(new(big.Rat).Set(r)))
}

// Decimal builds the exact decimal mant×10^exp.
func (p *Pool) Decimal(mant *big.Int, exp int) (*Expression, error) {
	return p.leaf(node{kind: Decimal, mant: new(big.Int).Set(mant), exp: exp})
}

// Float builds an approximate number.
func (p *Pool) Float(f float64) (*Expression, error) {
	return p.leaf(node{kind: Float, f: f})
}

// Infinity builds ∞, or -∞ if neg.
func (p *Pool) Infinity(neg bool) (*Expression, error) {
	return p.leaf(node{kind: Infinity, neg: neg})
}

// Undefined builds the undefined value.
func (p *Pool) Undefined() (*Expression, error) {
	return p.leaf(node{kind: Undefined})
}

// Unreal builds the value of a real-only computation with a non-real result.
func (p *Pool) Unreal() (*Expression, error) {
	return p.leaf(node{kind: Unreal})
}

// Constant builds one of the constants ConstantPi, ConstantE, or ConstantI.
// Panics for other names.
func (p *Pool) Constant(name string) (*Expression, error) {
	constantIndex(name)
	return p.leaf(node{kind: Constant, name: name})
}

// Symbol builds a named variable.
func (p *Pool) Symbol(name string) (*Expression, error) {
	if name == "" {
		panic("symbolic: empty symbol name")
	}
	return p.leaf(node{kind: Symbol, name: name})
}

// Empty builds an empty placeholder expression.
func (p *Pool) Empty() (*Expression, error) {
	return p.leaf(node{kind: EmptyExpression})
}

// Function builds an application of a context-defined function to arg,
// consuming arg as New does.
func (p *Pool) Function(name string, arg *Expression) (*Expression, error) {
	if name == "" {
		panic("symbolic: empty function name")
	}
	return p.newNode(node{kind: Function, name: name}, []*Expression{arg})
}

// Matrix builds a matrix from entries in row-major order, consuming them as
// New does. Panics unless len(entries) is a positive multiple of cols.
func (p *Pool) Matrix(cols int, entries ...*Expression) (*Expression, error) {
	if cols <= 0 || len(entries) == 0 || len(entries)%cols != 0 {
		panic("symbolic: bad matrix shape")
	}
	return p.newNode(node{kind: Matrix, cols: cols}, entries)
}
