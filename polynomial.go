package symbolic

import (
	"context"
	"math"
	"math/big"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// MaxPolynomialDegree is the highest degree PolynomialCoefficients handles.
const MaxPolynomialDegree = 2

// maxDefinitionDepth bounds how deeply symbol definitions are followed when
// computing degrees.
const maxDefinitionDepth = 16

// PolynomialDegree returns the degree of e as a polynomial in symbol, or -1 if
// e is not a polynomial in it. Symbols defined in ctx have the degree of
// their definitions.
func (e *Expression) PolynomialDegree(ctx Context, symbol string) int {
	return e.p.degree(ctx, e.h, symbol, 0)
}

func (p *Pool) degree(ctx Context, h arena.Handle, sym string, depth int) int {
	n := p.node(h)
	children := func(from int) int {
		for i := from; i < p.numChildren(h); i++ {
			if p.degree(ctx, p.child(h, i), sym, depth) != 0 {
				return -1
			}
		}
		return 0
	}
	switch n.kind {
	case Rational, Decimal, Float, Infinity, Constant, Random, EmptyExpression:
		return 0
	case Undefined, Unreal:
		return -1
	case Symbol:
		if n.name == sym {
			return 1
		}
		if ctx != nil && depth < maxDefinitionDepth {
			if def := ctx.ExpressionForSymbol(n.name); !def.IsNil() {
				return def.p.degree(ctx, def.h, sym, depth+1)
			}
		}
		return 0
	case Addition, Subtraction:
		d := 0
		for _, c := range p.a.Children(h) {
			k := p.degree(ctx, c, sym, depth)
			if k < 0 {
				return -1
			}
			d = max(d, k)
		}
		return d
	case Multiplication, MultiplicationImplicit:
		d := 0
		for _, c := range p.a.Children(h) {
			k := p.degree(ctx, c, sym, depth)
			if k < 0 {
				return -1
			}
			d += k
		}
		return d
	case Power:
		b := p.degree(ctx, p.child(h, 0), sym, depth)
		x := p.degree(ctx, p.child(h, 1), sym, depth)
		switch {
		case b < 0 || x != 0:
			return -1
		case b == 0:
			return 0
		}
		e := p.node(p.child(h, 1))
		if e.kind != Rational || !e.rat.IsInt() || e.rat.Sign() < 0 || !e.rat.Num().IsInt64() {
			return -1
		}
		k := e.rat.Num().Int64()
		if k > math.MaxInt32/int64(b) {
			return -1
		}
		return b * int(k)
	case Division:
		if p.degree(ctx, p.child(h, 1), sym, depth) != 0 {
			return -1
		}
		return p.degree(ctx, p.child(h, 0), sym, depth)
	case Opposite, Parenthesis:
		return p.degree(ctx, p.child(h, 0), sym, depth)
	case Derivative, Integral, Sum, Product:
		if b, ok := p.boundName(h); ok && b == sym {
			return children(2)
		}
		return children(0)
	case Matrix, MatrixDimension, MatrixIdentity, MatrixInverse, MatrixTranspose,
		ConfidenceInterval, PredictionInterval, Store, Equal:
		return -1
	case Factorial, Sine, Cosine, Tangent, AbsoluteValue, ArcCosine, ArcSine,
		ArcTangent, BinomialCoefficient, Ceiling, ComplexArgument, ComplexPolar,
		Conjugate, Determinant, DivisionQuotient, DivisionRemainder, Factor,
		Floor, FracPart, Function, GreatCommonDivisor, HyperbolicArcCosine,
		HyperbolicArcSine, HyperbolicArcTangent, HyperbolicCosine,
		HyperbolicSine, HyperbolicTangent, ImaginaryPart, LeastCommonMultiple,
		Logarithm, MatrixTrace, NaperianLogarithm, NthRoot, PermuteCoefficient,
		Randint, RealPart, Round, SignFunction, SquareRoot, ComplexCartesian:
		return children(0)
	default:
		panic("symbolic: no polynomial degree for kind " + n.kind.String())
	}
}

// PolynomialCoefficients returns the reduced coefficients of e as a
// polynomial in symbol, lowest degree first. The result is nil if e is not a
// polynomial in symbol of degree at most MaxPolynomialDegree. e is unchanged;
// the coefficients are new owning handles in e's pool.
func (e *Expression) PolynomialCoefficients(ctx context.Context, rc ReductionContext, symbol string) ([]*Expression, error) {
	if d := e.PolynomialDegree(rc.symbols, symbol); d < 0 || d > MaxPolynomialDegree {
		return nil, nil
	}
	p := e.p
	h, err := p.clone(e.h)
	if err != nil {
		return nil, err
	}
	defer p.free(h)
	r := newReducer(ctx, p, rc.WithTarget(System))
	if err := r.reduce(h); err != nil {
		return nil, err
	}
	if d := p.degree(rc.symbols, h, symbol, 0); d < 0 || d > MaxPolynomialDegree {
		return nil, nil
	}
	cs, ok, err := r.coefficients(h, symbol)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]*Expression, len(cs))
	for i, c := range cs {
		out[i] = p.own(c)
	}
	return out, nil
}

// coefficients splits the reduced tree at h into detached, reduced
// coefficient trees.
func (r *reducer) coefficients(h arena.Handle, sym string) ([]arena.Handle, bool, error) {
	p := r.p
	if p.degree(r.rc.symbols, h, sym, 0) == 0 {
		c, err := p.clone(h)
		if err != nil {
			return nil, false, err
		}
		return []arena.Handle{c}, true, nil
	}
	switch p.kind(h) {
	case Symbol:
		if p.node(h).name != sym {
			return nil, false, nil
		}
		z, err := r.newInt(0)
		if err != nil {
			return nil, false, err
		}
		o, err := r.newInt(1)
		if err != nil {
			p.free(z)
			return nil, false, err
		}
		return []arena.Handle{z, o}, true, nil
	case Addition:
		var terms [][]arena.Handle
		fail := func() {
			for _, ts := range terms {
				p.free(ts...)
			}
		}
		for _, c := range p.a.Children(h) {
			cp, ok, err := r.coefficients(c, sym)
			if err != nil || !ok {
				fail()
				return nil, ok, err
			}
			for len(terms) < len(cp) {
				terms = append(terms, nil)
			}
			for i, t := range cp {
				terms[i] = append(terms[i], t)
			}
		}
		return r.sumTerms(terms)
	case Multiplication:
		one, err := r.newInt(1)
		if err != nil {
			return nil, false, err
		}
		acc := []arena.Handle{one}
		for _, c := range p.a.Children(h) {
			cp, ok, err := r.coefficients(c, sym)
			if err != nil || !ok {
				p.free(acc...)
				return nil, ok, err
			}
			acc, err = r.mulPoly(acc, cp)
			if err != nil {
				return nil, false, err
			}
		}
		return acc, true, nil
	case Power:
		n, ok := r.smallInt(p.child(h, 1))
		if !ok || n < 0 {
			return nil, false, nil
		}
		one, err := r.newInt(1)
		if err != nil {
			return nil, false, err
		}
		acc := []arena.Handle{one}
		for ; n > 0; n-- {
			b, ok, err := r.coefficients(p.child(h, 0), sym)
			if err != nil || !ok {
				p.free(acc...)
				return nil, ok, err
			}
			acc, err = r.mulPoly(acc, b)
			if err != nil {
				return nil, false, err
			}
		}
		return acc, true, nil
	}
	return nil, false, nil
}

// sumTerms adds the terms of each degree. The terms are consumed.
func (r *reducer) sumTerms(terms [][]arena.Handle) ([]arena.Handle, bool, error) {
	out := make([]arena.Handle, len(terms))
	for i, ts := range terms {
		var err error
		if len(ts) == 0 {
			out[i], err = r.newInt(0)
		} else {
			out[i], err = r.addOf(ts...)
		}
		if err != nil {
			r.p.free(out[:i]...)
			for _, rest := range terms[i+1:] {
				r.p.free(rest...)
			}
			return nil, false, err
		}
	}
	return out, true, nil
}

// mulPoly multiplies two coefficient lists. Both are consumed.
func (r *reducer) mulPoly(a, b []arena.Handle) ([]arena.Handle, error) {
	defer r.p.free(a...)
	defer r.p.free(b...)
	terms := make([][]arena.Handle, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			cs, err := r.cloneAll(x, y)
			if err == nil {
				var m arena.Handle
				m, err = r.mulOf(cs...)
				if err == nil {
					terms[i+j] = append(terms[i+j], m)
					continue
				}
			}
			for _, ts := range terms {
				r.p.free(ts...)
			}
			return nil, err
		}
	}
	out, _, err := r.sumTerms(terms)
	return out, err
}

// Denominator returns the reduced denominator of e: the product of its
// factors with negative rational exponents, inverted, and the denominator of
// its rational coefficient. The result is nil if the denominator is 1.
func (e *Expression) Denominator(ctx context.Context, rc ReductionContext) (*Expression, error) {
	p := e.p
	h, err := p.clone(e.h)
	if err != nil {
		return nil, err
	}
	defer p.free(h)
	r := newReducer(ctx, p, rc.WithTarget(System))
	if err := r.reduce(h); err != nil {
		return nil, err
	}
	factors := []arena.Handle{h}
	if p.kind(h) == Multiplication {
		factors = p.a.Children(h)
	}
	var parts []arena.Handle
	for _, f := range factors {
		var t arena.Handle
		var err error
		switch p.kind(f) {
		case Rational:
			d := p.node(f).rat.Denom()
			if d.Cmp(bigOne) == 0 {
				continue
			}
			t, err = r.newRat(new(big.Rat).SetInt(d))
		case Power:
			x, ok := r.rat(p.child(f, 1))
			if !ok || x.Sign() >= 0 {
				continue
			}
			var c arena.Handle
			c, err = p.clone(p.child(f, 0))
			if err == nil {
				t, err = r.ratExponent(c, new(big.Rat).Neg(x))
			}
		default:
			continue
		}
		if err != nil {
			p.free(parts...)
			return nil, err
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return nil, nil
	}
	d, err := r.mulOf(parts...)
	if err != nil {
		return nil, err
	}
	return p.own(d), nil
}

// ratExponent builds the reduced power base^x of a detached root and a
// rational.
func (r *reducer) ratExponent(base arena.Handle, x *big.Rat) (arena.Handle, error) {
	e, err := r.newRat(x)
	if err != nil {
		r.p.free(base)
		return arena.Handle{}, err
	}
	return r.powOf(base, e)
}

// CharacteristicXRange returns a range of UnknownX over which e shows its
// interesting behavior: one period for trigonometric functions of a linear
// argument, the largest such period among the operands otherwise, or NaN if
// there is none.
func (e *Expression) CharacteristicXRange(ctx Context, au AngleUnit) float64 {
	return e.p.xRange(ctx, au, e.h)
}

func (p *Pool) xRange(ctx Context, au AngleUnit, h arena.Handle) float64 {
	switch k := p.kind(h); k {
	case Sine, Cosine, Tangent:
		arg := p.child(h, 0)
		if p.degree(ctx, arg, UnknownX, 0) != 1 {
			return math.NaN()
		}
		f0 := p.evalAt(ctx, au, arg, UnknownX, 0)
		f1 := p.evalAt(ctx, au, arg, UnknownX, 1)
		a := math.Abs(f1 - f0)
		if a == 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			return math.NaN()
		}
		period := 2 * au.halfTurn()
		if k == Tangent {
			period = au.halfTurn()
		}
		return period / a
	}
	r := math.NaN()
	for _, c := range p.a.Children(h) {
		v := p.xRange(ctx, au, c)
		if !math.IsNaN(v) && (math.IsNaN(r) || v > r) {
			r = v
		}
	}
	return r
}
