package symbolic

import (
	"github.com/zephyrtronium/symbolic/internal/arena"
)

// Sign infers the sign of e without approximating it. Zero and values whose
// sign cannot be shown are Unknown. Nonnegative functions such as |x| count as
// Positive.
func (e *Expression) Sign(ctx Context) Sign {
	return e.p.sign(ctx, e.h)
}

// IsReal returns whether e can be shown to be real without approximating it.
func (e *Expression) IsReal(ctx Context) bool {
	return e.p.isReal(ctx, e.h)
}

func (p *Pool) sign(ctx Context, h arena.Handle) Sign {
	n := p.node(h)
	switch n.kind {
	case Rational:
		return Sign(n.rat.Sign())
	case Decimal:
		return Sign(n.mant.Sign())
	case Float:
		switch {
		case n.f > 0:
			return Positive
		case n.f < 0:
			return Negative
		}
		return Unknown
	case Infinity:
		if n.neg {
			return Negative
		}
		return Positive
	case Constant:
		if n.name == ConstantI {
			return Unknown
		}
		return Positive
	case Symbol:
		if ctx == nil {
			return Unknown
		}
		def := ctx.ExpressionForSymbol(n.name)
		if def.IsNil() || def.p.hasSymbol(def.h) {
			return Unknown
		}
		return def.p.sign(ctx, def.h)
	case Multiplication, MultiplicationImplicit, Division:
		s := Positive
		for _, c := range p.a.Children(h) {
			s *= p.sign(ctx, c)
		}
		return s
	case Addition:
		s := p.sign(ctx, p.child(h, 0))
		for i := 1; i < p.numChildren(h) && s != Unknown; i++ {
			if p.sign(ctx, p.child(h, i)) != s {
				s = Unknown
			}
		}
		return s
	case Power:
		b := p.sign(ctx, p.child(h, 0))
		if b == Positive {
			return Positive
		}
		e := p.node(p.child(h, 1))
		if b == Unknown || e.kind != Rational || !e.rat.IsInt() {
			return Unknown
		}
		if e.rat.Num().Bit(0) == 0 {
			return Positive
		}
		return b
	case Opposite:
		return -p.sign(ctx, p.child(h, 0))
	case Subtraction:
		a, b := p.sign(ctx, p.child(h, 0)), p.sign(ctx, p.child(h, 1))
		if a == -b {
			return a
		}
		return Unknown
	case SquareRoot:
		if p.sign(ctx, p.child(h, 0)) == Positive {
			return Positive
		}
		return Unknown
	case NthRoot:
		if p.sign(ctx, p.child(h, 0)) == Positive && p.sign(ctx, p.child(h, 1)) == Positive {
			return Positive
		}
		return Unknown
	case Parenthesis, Factor, Floor, Ceiling, SignFunction, ArcTangent, HyperbolicSine, HyperbolicTangent,
		HyperbolicArcSine, HyperbolicArcTangent, ArcSine:
		// Odd, monotone functions keep the sign of their argument.
		switch n.kind {
		case Floor:
			if p.sign(ctx, p.child(h, 0)) == Negative {
				return Negative
			}
			return Unknown
		case Ceiling:
			if p.sign(ctx, p.child(h, 0)) == Positive {
				return Positive
			}
			return Unknown
		}
		return p.sign(ctx, p.child(h, 0))
	case AbsoluteValue, Factorial, HyperbolicCosine:
		return Positive
	case NaperianLogarithm, Logarithm, Round:
		return Unknown
	case Undefined, Unreal, Store, Equal, Sine, Cosine, Tangent, ArcCosine,
		BinomialCoefficient, ComplexArgument, ComplexPolar, Conjugate, Derivative,
		Determinant, DivisionQuotient, DivisionRemainder, FracPart, Function,
		GreatCommonDivisor, HyperbolicArcCosine, ImaginaryPart, Integral,
		LeastCommonMultiple, MatrixTrace, PermuteCoefficient, Product, Random,
		Randint, RealPart, Sum, ComplexCartesian, ConfidenceInterval,
		MatrixDimension, MatrixIdentity, MatrixInverse, MatrixTranspose,
		PredictionInterval, Matrix, EmptyExpression:
		return Unknown
	default:
		panic("symbolic: no sign for kind " + n.kind.String())
	}
}

// hasSymbol returns whether the tree at h contains a symbol or function call.
// Definitions that do are not followed, so circular definitions terminate.
func (p *Pool) hasSymbol(h arena.Handle) bool {
	found := false
	p.a.Walk(h, func(c arena.Handle) bool {
		k := p.kind(c)
		found = k == Symbol || k == Function
		return !found
	})
	return found
}

func (p *Pool) isReal(ctx Context, h arena.Handle) bool {
	n := p.node(h)
	all := func() bool {
		for _, c := range p.a.Children(h) {
			if !p.isReal(ctx, c) {
				return false
			}
		}
		return true
	}
	switch n.kind {
	case Rational, Decimal, Float, Infinity:
		return true
	case Constant:
		return n.name != ConstantI
	case Symbol:
		if ctx == nil {
			return false
		}
		def := ctx.ExpressionForSymbol(n.name)
		return !def.IsNil() && !def.p.hasSymbol(def.h) && def.p.isReal(ctx, def.h)
	case Power:
		if !all() {
			return false
		}
		e := p.node(p.child(h, 1))
		return e.kind == Rational && e.rat.IsInt() || p.sign(ctx, p.child(h, 0)) == Positive
	case SquareRoot:
		return p.sign(ctx, p.child(h, 0)) == Positive
	case AbsoluteValue, RealPart, ImaginaryPart, ComplexArgument, SignFunction,
		Floor, Ceiling, FracPart, Round, Random, Randint:
		return true
	case Multiplication, MultiplicationImplicit, Addition, Subtraction, Division,
		Opposite, Parenthesis, Factorial, Sine, Cosine, Tangent, ArcTangent,
		HyperbolicSine, HyperbolicCosine, HyperbolicTangent, HyperbolicArcSine,
		BinomialCoefficient, PermuteCoefficient, DivisionQuotient,
		DivisionRemainder, GreatCommonDivisor, LeastCommonMultiple, Factor,
		Conjugate:
		return all()
	case NaperianLogarithm:
		return p.sign(ctx, p.child(h, 0)) == Positive
	default:
		return false
	}
}
