package symbolic

import (
	"math/big"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// CreateLayout builds the display layout of e. Approximate numbers use format
// ff with the given number of significant digits; digits ≤ 0 requests the
// shortest exact text. The expression is not modified.
func (e *Expression) CreateLayout(ff FloatFormat, digits int) *Layout {
	lp := layouter{p: e.p, ff: ff, digits: digits}
	return lp.layout(e.h)
}

// String renders e on one line in the notation Parse reads.
func (e *Expression) String() string {
	if e.IsNil() {
		return "<nil>"
	}
	return e.CreateLayout(DecimalFormat, 0).String()
}

type layouter struct {
	p      *Pool
	ff     FloatFormat
	digits int
}

func (lp *layouter) layout(h arena.Handle) *Layout {
	p := lp.p
	n := p.node(h)
	switch n.kind {
	case Undefined:
		return text("undef")
	case Unreal:
		return text("nonreal")
	case Rational:
		if n.rat.IsInt() {
			return text(n.rat.Num().String())
		}
		num := new(big.Int).Abs(n.rat.Num())
		f := wrap(LayoutFraction, text(num.String()), text(n.rat.Denom().String()))
		if n.rat.Sign() < 0 {
			return horizontal(text("-"), f)
		}
		return f
	case Decimal:
		return text(decimalText(n, lp.ff, lp.digits))
	case Float:
		return text(floatText(n.f, lp.ff, lp.digits))
	case Infinity:
		if n.neg {
			return text("-∞")
		}
		return text("∞")
	case Constant, Symbol:
		return text(n.name)
	case Multiplication, MultiplicationImplicit:
		return lp.product(h)
	case Addition:
		r := horizontal()
		for i, c := range p.a.Children(h) {
			if i > 0 {
				r.Children = append(r.Children, text("+"))
			}
			r.Children = append(r.Children, lp.operand(h, i, c))
		}
		return r
	case Subtraction:
		return lp.infix(h, "-")
	case Store:
		return lp.infix(h, "→")
	case Equal:
		return lp.infix(h, "=")
	case Power:
		return wrap(LayoutSuperscript, lp.operand(h, 0, p.child(h, 0)), lp.layout(p.child(h, 1)))
	case Division:
		return wrap(LayoutFraction, lp.layout(p.child(h, 0)), lp.layout(p.child(h, 1)))
	case Factorial:
		return horizontal(lp.operand(h, 0, p.child(h, 0)), text("!"))
	case Opposite:
		return horizontal(text("-"), lp.operand(h, 0, p.child(h, 0)))
	case Parenthesis:
		return wrap(LayoutParenthesis, lp.layout(p.child(h, 0)))
	case SquareRoot:
		return wrap(LayoutNthRoot, lp.layout(p.child(h, 0)))
	case NthRoot:
		return wrap(LayoutNthRoot, lp.layout(p.child(h, 0)), lp.layout(p.child(h, 1)))
	case AbsoluteValue:
		return wrap(LayoutAbsoluteValue, lp.layout(p.child(h, 0)))
	case Ceiling:
		return wrap(LayoutCeiling, lp.layout(p.child(h, 0)))
	case Floor:
		return wrap(LayoutFloor, lp.layout(p.child(h, 0)))
	case Conjugate:
		return wrap(LayoutConjugate, lp.layout(p.child(h, 0)))
	case BinomialCoefficient:
		return wrap(LayoutBinomial, lp.layout(p.child(h, 0)), lp.layout(p.child(h, 1)))
	case Sum:
		return wrap(LayoutSum, lp.all(h)...)
	case Product:
		return wrap(LayoutProduct, lp.all(h)...)
	case Integral:
		return wrap(LayoutIntegral, lp.all(h)...)
	case Logarithm:
		sub := wrap(LayoutSubscript, text(kinds[Logarithm].fn), lp.layout(p.child(h, 1)))
		return horizontal(sub, wrap(LayoutParenthesis, lp.layout(p.child(h, 0))))
	case Matrix:
		return &Layout{Kind: LayoutMatrix, Children: lp.all(h), Columns: n.cols}
	case Function:
		return lp.call(n.name, h)
	case EmptyExpression:
		return &Layout{Kind: LayoutEmpty}
	case ArcCosine, ArcSine, ArcTangent, ComplexArgument, ComplexPolar,
		Cosine, Derivative, Determinant, DivisionQuotient, DivisionRemainder,
		Factor, FracPart, GreatCommonDivisor, HyperbolicArcCosine,
		HyperbolicArcSine, HyperbolicArcTangent, HyperbolicCosine,
		HyperbolicSine, HyperbolicTangent, ImaginaryPart, LeastCommonMultiple,
		MatrixTrace, NaperianLogarithm, PermuteCoefficient, Random, Randint,
		RealPart, Round, SignFunction, Sine, Tangent, ComplexCartesian,
		ConfidenceInterval, MatrixDimension, MatrixIdentity, MatrixInverse,
		MatrixTranspose, PredictionInterval:
		return lp.call(kinds[n.kind].fn, h)
	default:
		panic("symbolic: no layout for kind " + n.kind.String())
	}
}

func (lp *layouter) all(h arena.Handle) []*Layout {
	cs := lp.p.a.Children(h)
	r := make([]*Layout, len(cs))
	for i, c := range cs {
		r[i] = lp.layout(c)
	}
	return r
}

// call lays out name(args...). The arguments are separated by commas inside
// one pair of parentheses.
func (lp *layouter) call(name string, h arena.Handle) *Layout {
	args := horizontal()
	for i, c := range lp.p.a.Children(h) {
		if i > 0 {
			args.Children = append(args.Children, text(","))
		}
		args.Children = append(args.Children, lp.layout(c))
	}
	return horizontal(text(name), wrap(LayoutParenthesis, args))
}

func (lp *layouter) infix(h arena.Handle, op string) *Layout {
	p := lp.p
	return horizontal(lp.operand(h, 0, p.child(h, 0)), text(op), lp.operand(h, 1, p.child(h, 1)))
}

// product lays out a product, omitting the multiplication sign between a
// leading natural number and a following name.
func (lp *layouter) product(h arena.Handle) *Layout {
	p := lp.p
	r := horizontal()
	for i, c := range p.a.Children(h) {
		if i > 0 && !lp.juxtaposed(p.child(h, i-1), c) {
			r.Children = append(r.Children, text("×"))
		}
		r.Children = append(r.Children, lp.operand(h, i, c))
	}
	return r
}

func (lp *layouter) juxtaposed(left, right arena.Handle) bool {
	p := lp.p
	l := p.node(left)
	if l.kind != Rational || !l.rat.IsInt() || l.rat.Sign() <= 0 {
		return false
	}
	if p.kind(right) == Power {
		right = p.child(right, 0)
	}
	switch p.kind(right) {
	case Symbol, Constant:
		// 2E5 would read as a number.
		name := p.node(right).name
		return name[0] != 'e' && name[0] != 'E'
	}
	return false
}

// operand lays out the i-th child c of h, in parentheses if
// childNeedsUserParentheses says so.
func (lp *layouter) operand(h arena.Handle, i int, c arena.Handle) *Layout {
	l := lp.layout(c)
	if lp.childNeedsUserParentheses(h, i, c) {
		return wrap(LayoutParenthesis, l)
	}
	return l
}

// childNeedsUserParentheses reports whether the i-th child c of h must be
// bracketed for its layout to read with the same meaning under the usual
// precedence rules.
func (lp *layouter) childNeedsUserParentheses(h arena.Handle, i int, c arena.Handle) bool {
	p := lp.p
	ck := p.kind(c)
	if ck == Store || ck == Equal {
		// Assignments and equations bind loosest of all.
		return true
	}
	neg := lp.startsNegative(c)
	switch p.kind(h) {
	case Addition:
		return i > 0 && neg
	case Subtraction:
		return i > 0 && (neg || ck == Addition || ck == Subtraction)
	case Multiplication, MultiplicationImplicit:
		return ck == Addition || ck == Subtraction || i > 0 && neg
	case Opposite:
		return neg || ck == Addition || ck == Subtraction
	case Power:
		// Only the base is laid out through operand.
		switch ck {
		case Rational:
			return !p.node(c).rat.IsInt() || neg
		case Decimal, Float, Infinity:
			return neg
		case Addition, Subtraction, Multiplication, MultiplicationImplicit,
			Division, Opposite, Power:
			return true
		}
		return false
	case Factorial:
		switch ck {
		case Rational:
			return !p.node(c).rat.IsInt() || neg
		case Decimal, Float, Infinity:
			return neg
		case Addition, Subtraction, Multiplication, MultiplicationImplicit,
			Division, Opposite, Power, Factorial:
			return true
		}
		return false
	}
	return false
}

// startsNegative reports whether the layout of h begins with a minus sign.
func (lp *layouter) startsNegative(h arena.Handle) bool {
	p := lp.p
	n := p.node(h)
	switch n.kind {
	case Rational:
		return n.rat.Sign() < 0
	case Decimal:
		return n.mant.Sign() < 0
	case Float:
		return n.f < 0
	case Infinity:
		return n.neg
	case Opposite:
		return true
	case Multiplication, MultiplicationImplicit, Subtraction, Addition:
		// The first operand of these is never bracketed.
		return !lp.childNeedsUserParentheses(h, 0, p.child(h, 0)) && lp.startsNegative(p.child(h, 0))
	case Division:
		return false
	}
	return false
}
