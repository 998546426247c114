package symbolic

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// reducer holds the state of one reduction request.
type reducer struct {
	order
	rc ReductionContext
	// expanding is the stack of symbol and function names being substituted,
	// used to detect circular definitions.
	expanding []string
}

func newReducer(ctx context.Context, p *Pool, rc ReductionContext) *reducer {
	return &reducer{order: order{ctx: ctx, p: p}, rc: rc}
}

// Reduce rewrites e in place into reduced form: canonical for the System
// target, simplified for User. changed reports whether the tree was modified.
//
// On ErrInterrupted or ErrPoolExhausted the tree is left consistent, with the
// rewrites completed before the failure applied.
func (e *Expression) Reduce(ctx context.Context, rc ReductionContext) (changed bool, err error) {
	start := time.Now()
	v := e.p.a.Version()
	r := newReducer(ctx, e.p, rc)
	err = r.reduce(e.h)
	changed = e.p.a.Version() != v
	e.p.finish(ctx, "reduce", e.h, changed, err, start)
	return changed, err
}

// Simplify reduces e for the User target and beautifies the result.
func (e *Expression) Simplify(ctx context.Context, rc ReductionContext) (changed bool, err error) {
	start := time.Now()
	v := e.p.a.Version()
	rc = rc.WithTarget(User)
	r := newReducer(ctx, e.p, rc)
	err = r.reduce(e.h)
	if err == nil {
		err = r.beautify(e.h)
	}
	changed = e.p.a.Version() != v
	e.p.finish(ctx, "simplify", e.h, changed, err, start)
	return changed, err
}

// finish logs and observes the end of a top-level rewrite.
func (p *Pool) finish(ctx context.Context, op string, h arena.Handle, changed bool, err error, start time.Time) {
	var o Outcome
	switch {
	case err == nil && changed:
		o = OutcomeChanged
	case err == nil:
		o = OutcomeUnchanged
	case errors.Is(err, ErrInterrupted):
		o = OutcomeInterrupted
	case errors.Is(err, ErrPoolExhausted):
		o = OutcomeExhausted
	default:
		panic("symbolic: unexpected reduction error: " + err.Error())
	}
	if err != nil {
		p.logAbort(ctx, op, h, err)
	}
	p.obs.ObserveReduction(o, time.Since(start))
	p.observe()
}

// reduce reduces the operands of h and then h itself.
func (r *reducer) reduce(h arena.Handle) error {
	if err := poll(r.ctx); err != nil {
		return err
	}
	k := r.p.kind(h)
	n := r.p.numChildren(h)
	first := 0
	switch {
	case kinds[k].binding:
		// Only the bounds are evaluated before the node itself; the body and
		// bound variable stay as written.
		first = 2
	case k == Store:
		n = 1
	}
	for i := first; i < n; i++ {
		if err := r.reduce(r.p.child(h, i)); err != nil {
			return err
		}
	}
	return r.shallow(h)
}

// shallow applies the rewrite rules of h's kind, assuming its operands are
// already reduced.
func (r *reducer) shallow(h arena.Handle) error {
	if err := poll(r.ctx); err != nil {
		return err
	}
	k := r.p.kind(h)
	if k != Matrix {
		if u := r.undefinedOperand(h); u != Uninitialized {
			r.p.becomeLeaf(h, node{kind: u})
			return nil
		}
	}
	switch k {
	case Undefined, Unreal, Rational, Float, Infinity, EmptyExpression,
		Random, Randint, Store, Equal, Matrix, Derivative, Integral, Sum, Product:
		return nil
	case Decimal:
		r.p.becomeLeaf(h, ratNode(decimalRat(r.p.node(h))))
		return nil
	case Parenthesis:
		r.p.becomeChild(h, 0)
		return nil
	case Constant:
		if r.p.node(h).name == ConstantI && r.rc.complex == Real {
			r.p.becomeLeaf(h, node{kind: Unreal})
		}
		return nil
	case Symbol:
		return r.substituteSymbol(h)
	case Function:
		return r.substituteFunction(h)
	case Multiplication, MultiplicationImplicit:
		return r.multiplication(h)
	case Addition:
		return r.addition(h)
	case Power:
		return r.power(h)
	case Opposite:
		return r.opposite(h)
	case Subtraction:
		return r.subtraction(h)
	case Division:
		return r.division(h)
	case SquareRoot:
		return r.squareRoot(h)
	case NthRoot:
		return r.nthRoot(h)
	case Sine, Cosine, Tangent:
		return r.trig(h)
	case ArcSine, ArcCosine, ArcTangent:
		return r.arcTrig(h)
	case HyperbolicSine, HyperbolicCosine, HyperbolicTangent,
		HyperbolicArcSine, HyperbolicArcCosine, HyperbolicArcTangent:
		return r.hyperbolic(h)
	case NaperianLogarithm:
		return r.naperianLogarithm(h)
	case Logarithm:
		return r.logarithm(h)
	case AbsoluteValue:
		return r.absoluteValue(h)
	case Floor, Ceiling, FracPart:
		return r.rounding(h)
	case Round:
		return r.round(h)
	case SignFunction:
		return r.signFunction(h)
	case RealPart, ImaginaryPart, ComplexArgument, Conjugate:
		return r.complexPart(h)
	case ComplexCartesian:
		return r.complexCartesian(h)
	case ComplexPolar:
		return r.complexPolar(h)
	case Factorial:
		return r.factorial(h)
	case BinomialCoefficient, PermuteCoefficient:
		return r.combinatorics(h)
	case DivisionQuotient, DivisionRemainder, GreatCommonDivisor, LeastCommonMultiple:
		return r.integerBinary(h)
	case Factor:
		return r.factor(h)
	case Determinant, MatrixTrace, MatrixTranspose, MatrixInverse, MatrixIdentity, MatrixDimension:
		return r.matrixFunction(h)
	case ConfidenceInterval, PredictionInterval:
		return r.interval(h)
	default:
		panic("symbolic: no reduction for kind " + k.String())
	}
}

// undefinedOperand returns Undefined or Unreal if an operand of h is one,
// with Undefined taking precedence, or Uninitialized otherwise.
func (r *reducer) undefinedOperand(h arena.Handle) Kind {
	u := Uninitialized
	n := r.p.numChildren(h)
	for i := 0; i < n; i++ {
		switch r.p.kind(r.p.child(h, i)) {
		case Undefined:
			return Undefined
		case Unreal:
			u = Unreal
		}
	}
	return u
}

// rat returns the value of h if it is a Rational.
func (r *reducer) rat(h arena.Handle) (*big.Rat, bool) {
	n := r.p.node(h)
	if n.kind != Rational {
		return nil, false
	}
	return n.rat, true
}

// integer returns the value of h if it is an integral Rational.
func (r *reducer) integer(h arena.Handle) (*big.Int, bool) {
	q, ok := r.rat(h)
	if !ok || !q.IsInt() {
		return nil, false
	}
	return q.Num(), true
}

// smallInt returns the value of h if it is an integral Rational that fits in
// an int.
func (r *reducer) smallInt(h arena.Handle) (int, bool) {
	n, ok := r.integer(h)
	if !ok || !n.IsInt64() {
		return 0, false
	}
	v := n.Int64()
	if int64(int(v)) != v {
		return 0, false
	}
	return int(v), true
}

func (r *reducer) isRat(h arena.Handle, v int64) bool {
	q, ok := r.rat(h)
	return ok && q.IsInt() && q.Num().IsInt64() && q.Num().Int64() == v
}

func (r *reducer) isConstant(h arena.Handle, name string) bool {
	n := r.p.node(h)
	return n.kind == Constant && n.name == name
}

// setRat replaces the subtree at h with a rational, or with Undefined if the
// value is too large to keep exact.
func (r *reducer) setRat(h arena.Handle, q *big.Rat) {
	if ratTooBig(q) {
		r.p.becomeLeaf(h, node{kind: Undefined})
		return
	}
	r.p.becomeLeaf(h, ratNode(q))
}

func (r *reducer) setInt(h arena.Handle, n int64) {
	r.p.becomeLeaf(h, intNode(n))
}

func (r *reducer) setUndefined(h arena.Handle) {
	r.p.becomeLeaf(h, node{kind: Undefined})
}

// replace reduces the detached root t and puts it in place of h.
func (r *reducer) replace(h, t arena.Handle) error {
	if err := r.shallow(t); err != nil {
		r.p.free(t)
		return err
	}
	r.p.become(h, t)
	return nil
}

// newRat allocates a rational leaf.
func (r *reducer) newRat(q *big.Rat) (arena.Handle, error) {
	return r.p.alloc(ratNode(q))
}

func (r *reducer) newInt(n int64) (arena.Handle, error) {
	return r.p.alloc(intNode(n))
}

// cloneAll clones a list of subtrees. On failure every clone made is freed.
func (r *reducer) cloneAll(hs ...arena.Handle) ([]arena.Handle, error) {
	out := make([]arena.Handle, 0, len(hs))
	for _, h := range hs {
		c, err := r.p.clone(h)
		if err != nil {
			r.p.free(out...)
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// mulOf builds a reduced product of detached roots.
func (r *reducer) mulOf(factors ...arena.Handle) (arena.Handle, error) {
	m, err := r.p.build(node{kind: Multiplication}, factors...)
	if err != nil {
		return arena.Handle{}, err
	}
	if err := r.shallow(m); err != nil {
		r.p.free(m)
		return arena.Handle{}, err
	}
	return m, nil
}

// addOf builds a reduced sum of detached roots.
func (r *reducer) addOf(terms ...arena.Handle) (arena.Handle, error) {
	a, err := r.p.build(node{kind: Addition}, terms...)
	if err != nil {
		return arena.Handle{}, err
	}
	if err := r.shallow(a); err != nil {
		r.p.free(a)
		return arena.Handle{}, err
	}
	return a, nil
}

// powOf builds a reduced power of detached roots.
func (r *reducer) powOf(base, exp arena.Handle) (arena.Handle, error) {
	w, err := r.p.build(node{kind: Power}, base, exp)
	if err != nil {
		return arena.Handle{}, err
	}
	if err := r.shallow(w); err != nil {
		r.p.free(w)
		return arena.Handle{}, err
	}
	return w, nil
}

// scaled builds the reduced product q·t of a rational and a detached root.
func (r *reducer) scaled(q *big.Rat, t arena.Handle) (arena.Handle, error) {
	c, err := r.newRat(q)
	if err != nil {
		r.p.free(t)
		return arena.Handle{}, err
	}
	return r.mulOf(c, t)
}
