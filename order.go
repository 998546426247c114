package symbolic

import (
	"cmp"
	"context"
	"strings"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// order is the canonical-order comparator. It polls its context on every
// comparison so that deep trees cannot stall a cancelled reduction.
type order struct {
	ctx context.Context
	p   *Pool
}

// SimplificationOrder compares two expressions in the canonical order used to
// sort the operands of sums and products. The result is negative if e1 sorts
// before e2, positive if after, and zero if they are equivalent for ordering.
// With ascending false the order is reversed. The expressions must be in the
// same pool. The only error is ErrInterrupted.
func SimplificationOrder(ctx context.Context, e1, e2 *Expression, ascending bool) (int, error) {
	if e1.p != e2.p {
		panic("symbolic: SimplificationOrder across pools")
	}
	o := order{ctx: ctx, p: e1.p}
	c, err := o.cmp(e1.h, e2.h)
	if err != nil {
		return 0, err
	}
	if !ascending {
		c = -c
	}
	return c, nil
}

// cmp compares a and b in ascending order.
func (o *order) cmp(a, b arena.Handle) (int, error) {
	if err := poll(o.ctx); err != nil {
		return 0, err
	}
	ka, kb := o.p.kind(a), o.p.kind(b)
	switch {
	case ka > kb:
		c, err := o.greaterType(b, a)
		return -c, err
	case ka < kb:
		return o.greaterType(a, b)
	default:
		return o.sameType(a, b)
	}
}

// greaterType compares a with b where b has a greater kind than a. Products
// and sums compare by their last operand so that 2x sits next to x, and powers
// compare by their base so that x² sits next to x.
func (o *order) greaterType(a, b arena.Handle) (int, error) {
	switch o.p.kind(a) {
	case Multiplication, MultiplicationImplicit, Addition:
		n := o.p.numChildren(a)
		c, err := o.cmp(o.p.child(a, n-1), b)
		if err != nil || c != 0 {
			return c, err
		}
		if n > 1 {
			return 1, nil
		}
		return 0, nil
	case Power:
		c, err := o.cmp(o.p.child(a, 0), b)
		if err != nil || c != 0 {
			return c, err
		}
		return o.cmpOne(o.p.child(a, 1)), nil
	default:
		return -1, nil
	}
}

// cmpOne compares h with the rational 1.
func (o *order) cmpOne(h arena.Handle) int {
	switch k := o.p.kind(h); {
	case k < Rational:
		return -1
	case k > Rational:
		return 1
	default:
		return o.p.node(h).rat.Cmp(ratOne)
	}
}

func (o *order) sameType(a, b arena.Handle) (int, error) {
	x, y := o.p.node(a), o.p.node(b)
	switch x.kind {
	case Rational:
		return x.rat.Cmp(y.rat), nil
	case Decimal:
		return decimalRat(x).Cmp(decimalRat(y)), nil
	case Float:
		return cmp.Compare(x.f, y.f), nil
	case Infinity:
		switch {
		case x.neg == y.neg:
			return 0, nil
		case x.neg:
			return -1, nil
		default:
			return 1, nil
		}
	case Symbol:
		return strings.Compare(x.name, y.name), nil
	case Constant:
		return cmp.Compare(constantIndex(x.name), constantIndex(y.name)), nil
	case Function:
		if c := strings.Compare(x.name, y.name); c != 0 {
			return c, nil
		}
		return o.children(a, b)
	case Matrix:
		if c := cmp.Compare(o.p.numChildren(a)/x.cols, o.p.numChildren(b)/y.cols); c != 0 {
			return c, nil
		}
		if c := cmp.Compare(x.cols, y.cols); c != 0 {
			return c, nil
		}
		return o.children(a, b)
	case Multiplication, MultiplicationImplicit, Addition:
		return o.childrenReverse(a, b)
	case Undefined, Unreal, EmptyExpression, Random,
		Power, Factorial, Division, Store, Equal, Sine, Cosine, Tangent,
		AbsoluteValue, ArcCosine, ArcSine, ArcTangent, BinomialCoefficient,
		Ceiling, ComplexArgument, ComplexPolar, Conjugate, Derivative,
		Determinant, DivisionQuotient, DivisionRemainder, Factor, Floor,
		FracPart, GreatCommonDivisor, HyperbolicArcCosine, HyperbolicArcSine,
		HyperbolicArcTangent, HyperbolicCosine, HyperbolicSine,
		HyperbolicTangent, ImaginaryPart, Integral, LeastCommonMultiple,
		Logarithm, MatrixTrace, NaperianLogarithm, NthRoot, Opposite,
		Parenthesis, PermuteCoefficient, Product, Randint, RealPart, Round,
		SignFunction, SquareRoot, Subtraction, Sum, ComplexCartesian,
		ConfidenceInterval, MatrixDimension, MatrixIdentity, MatrixInverse,
		MatrixTranspose, PredictionInterval:
		return o.children(a, b)
	default:
		panic("symbolic: no order for kind " + x.kind.String())
	}
}

// children compares operands from first to last. A missing operand is least.
func (o *order) children(a, b arena.Handle) (int, error) {
	m, n := o.p.numChildren(a), o.p.numChildren(b)
	for i := 0; i < m && i < n; i++ {
		c, err := o.cmp(o.p.child(a, i), o.p.child(b, i))
		if err != nil || c != 0 {
			return c, err
		}
	}
	return cmp.Compare(m, n), nil
}

// childrenReverse compares operands from last to first. Sorted sums and
// products keep their most significant operands last.
func (o *order) childrenReverse(a, b arena.Handle) (int, error) {
	m, n := o.p.numChildren(a), o.p.numChildren(b)
	for i := 1; i <= m && i <= n; i++ {
		c, err := o.cmp(o.p.child(a, m-i), o.p.child(b, n-i))
		if err != nil || c != 0 {
			return c, err
		}
	}
	return cmp.Compare(m, n), nil
}

// sortChildren sorts the operands of h, ascending unless desc. Each step is a
// single swap, so an interruption leaves a consistent, partly sorted node.
func (o *order) sortChildren(h arena.Handle, desc bool) error {
	n := o.p.numChildren(h)
	for i := 1; i < n; i++ {
		for j := i; j > 0; j-- {
			c, err := o.cmp(o.p.child(h, j-1), o.p.child(h, j))
			if err != nil {
				return err
			}
			if desc {
				c = -c
			}
			if c <= 0 {
				break
			}
			o.p.a.Swap(h, j-1, j)
		}
	}
	return nil
}
