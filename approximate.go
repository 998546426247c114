package symbolic

import (
	"context"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"reflect"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// MaxNumberOfSteps bounds the number of terms of a sum or product and the
// number of integrand evaluations of an integral.
const MaxNumberOfSteps = 10000

// Complex is an approximate complex value at the precision of T.
type Complex[T constraints.Float] struct {
	Re, Im T
}

// UndefinedComplex returns the undefined value, with both parts NaN.
func UndefinedComplex[T constraints.Float]() Complex[T] {
	nan := T(math.NaN())
	return Complex[T]{nan, nan}
}

// IsUndefined returns whether c is undefined.
func (c Complex[T]) IsUndefined() bool {
	return c.Re != c.Re || c.Im != c.Im
}

// Complex128 converts c to a complex128.
func (c Complex[T]) Complex128() complex128 {
	return complex(float64(c.Re), float64(c.Im))
}

// ToExpression builds an expression for c in p: a Float in the Real format, a
// sum a+b·i in the Cartesian format, or a product r·e^(θ·i) in the Polar
// format with θ in radians.
func (c Complex[T]) ToExpression(p *Pool, cf ComplexFormat) (*Expression, error) {
	if c.IsUndefined() {
		return p.Undefined()
	}
	re, im := float64(c.Re), float64(c.Im)
	switch cf {
	case Real:
		if im != 0 {
			return p.Unreal()
		}
		return p.Float(re)
	case Polar:
		r, theta := cmplx.Polar(c.Complex128())
		if theta == 0 {
			return p.Float(r)
		}
		return p.compose(Multiplication, func() (*Expression, error) { return p.Float(r) }, func() (*Expression, error) {
			return p.compose(Power,
				func() (*Expression, error) { return p.Constant(ConstantE) },
				func() (*Expression, error) { return p.imaginary(theta) })
		})
	default:
		switch {
		case im == 0:
			return p.Float(re)
		case re == 0:
			return p.imaginary(im)
		}
		return p.compose(Addition, func() (*Expression, error) { return p.Float(re) }, func() (*Expression, error) { return p.imaginary(im) })
	}
}

// imaginary builds v·i.
func (p *Pool) imaginary(v float64) (*Expression, error) {
	return p.compose(Multiplication, func() (*Expression, error) { return p.Float(v) }, func() (*Expression, error) { return p.Constant(ConstantI) })
}

// compose makes a node of kind k from operands produced in order. Operands
// already built are released if a later one fails.
func (p *Pool) compose(k Kind, operands ...func() (*Expression, error)) (*Expression, error) {
	ops := make([]*Expression, 0, len(operands))
	release := func() {
		for _, o := range ops {
			o.Release()
		}
	}
	for _, f := range operands {
		o, err := f()
		if err != nil {
			release()
			return nil, err
		}
		ops = append(ops, o)
	}
	e, err := p.New(k, ops...)
	if err != nil {
		release()
		return nil, err
	}
	return e, nil
}

// ApproximationOption is an option used when approximating an expression.
type ApproximationOption interface {
	approxOption()
}

type (
	seedopt uint64
	randopt struct{ r *rand.Rand }
)

func (seedopt) approxOption() {}
func (randopt) approxOption() {}

// WithSeed seeds the source of random and randint.
func WithSeed(seed uint64) ApproximationOption {
	return seedopt(seed)
}

// WithRand sets the source of random and randint.
func WithRand(r *rand.Rand) ApproximationOption {
	return randopt{r}
}

// evaluator holds the state of one approximation.
type evaluator struct {
	ctx     context.Context
	symbols Context
	cf      ComplexFormat
	au      AngleUnit
	single  bool
	rng     *rand.Rand
	// scope holds the values of bound variables, innermost last.
	scope     []binding
	expanding []string
	err       error
}

type binding struct {
	name string
	v    complex128
}

var undef = cmplx.NaN()

// Approximate evaluates e numerically at the precision of T. Values outside
// the domain of an operation are undefined, as are non-real values in the
// Real complex format. The only error is ErrInterrupted.
func Approximate[T constraints.Float](ctx context.Context, e *Expression, symbols Context, cf ComplexFormat, au AngleUnit, opts ...ApproximationOption) (Complex[T], error) {
	start := time.Now()
	ev := evaluator{
		ctx:     ctx,
		symbols: symbols,
		cf:      cf,
		au:      au,
		single:  reflect.TypeFor[T]().Kind() == reflect.Float32,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case seedopt:
			ev.rng = rand.New(rand.NewPCG(uint64(opt), uint64(opt)))
		case randopt:
			ev.rng = opt.r
		default:
			panic("symbolic: unknown option type")
		}
	}
	if ev.rng == nil {
		ev.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	v := ev.finish(ev.eval(e.p, e.h))
	if ev.err != nil {
		e.p.logAbort(ctx, "approximate", e.h, ev.err)
		return UndefinedComplex[T](), ev.err
	}
	c := Complex[T]{T(real(v)), T(imag(v))}
	e.p.obs.ObserveApproximation(c.IsUndefined(), time.Since(start))
	return c, nil
}

// finish applies the complex format to a final value.
func (ev *evaluator) finish(v complex128) complex128 {
	if cmplx.IsNaN(v) {
		return undef
	}
	if ev.cf == Real && imag(v) != 0 {
		if math.Abs(imag(v)) > 1e-12*math.Max(1, math.Abs(real(v))) {
			return undef
		}
		v = complex(real(v), 0)
	}
	return v
}

// approxReal approximates a constant subtree during reduction. It reports
// false for subtrees that are not real numbers or depend on symbols or
// randomness.
func (r *reducer) approxReal(h arena.Handle) (float64, bool) {
	if r.p.hasSymbol(h) || r.p.hasRandom(h) {
		return 0, false
	}
	ev := evaluator{ctx: r.ctx, symbols: r.rc.symbols, cf: r.rc.complex, au: r.rc.angle}
	v := ev.eval(r.p, h)
	if ev.err != nil || imag(v) != 0 || math.IsNaN(real(v)) || math.IsInf(real(v), 0) {
		return 0, false
	}
	return real(v), true
}

func (p *Pool) hasRandom(h arena.Handle) bool {
	found := false
	p.a.Walk(h, func(c arena.Handle) bool {
		found = p.kind(c).isRandom()
		return !found
	})
	return found
}

// evalAt approximates the real value of h with one symbol bound to v.
func (p *Pool) evalAt(symbols Context, au AngleUnit, h arena.Handle, name string, v float64) float64 {
	ev := evaluator{ctx: context.Background(), symbols: symbols, cf: Real, au: au}
	ev.scope = append(ev.scope, binding{name, complex(v, 0)})
	r := ev.finish(ev.eval(p, h))
	return real(r)
}

func (ev *evaluator) eval(p *Pool, h arena.Handle) complex128 {
	if ev.err != nil {
		return undef
	}
	if err := poll(ev.ctx); err != nil {
		ev.err = err
		return undef
	}
	v := ev.node(p, h)
	if ev.single {
		v = complex(float64(float32(real(v))), float64(float32(imag(v))))
	}
	return v
}

// args evaluates every operand of h.
func (ev *evaluator) args(p *Pool, h arena.Handle) []complex128 {
	n := p.numChildren(h)
	v := make([]complex128, n)
	for i := range v {
		v[i] = ev.eval(p, p.child(h, i))
	}
	return v
}

// isRealValue returns whether v has no imaginary part.
func isRealValue(v complex128) bool {
	return imag(v) == 0 && !math.IsNaN(real(v))
}

// realInteger returns the value of v if it is a real integer.
func realInteger(v complex128) (float64, bool) {
	x := real(v)
	return x, isRealValue(v) && x == math.Trunc(x) && !math.IsInf(x, 0)
}

func (ev *evaluator) toRadians(v complex128) complex128 {
	if ev.au == Radian {
		return v
	}
	return v * complex(math.Pi/ev.au.halfTurn(), 0)
}

func (ev *evaluator) fromRadians(v complex128) complex128 {
	if ev.au == Radian {
		return v
	}
	return v * complex(ev.au.halfTurn()/math.Pi, 0)
}

func (ev *evaluator) node(p *Pool, h arena.Handle) complex128 {
	n := p.node(h)
	switch n.kind {
	case Undefined, Unreal, EmptyExpression, Equal, Matrix, MatrixDimension,
		MatrixIdentity, MatrixInverse, MatrixTranspose, ConfidenceInterval,
		PredictionInterval:
		return undef
	case Rational:
		f, _ := n.rat.Float64()
		return complex(f, 0)
	case Decimal:
		f, _ := decimalRat(n).Float64()
		return complex(f, 0)
	case Float:
		return complex(n.f, 0)
	case Infinity:
		if n.neg {
			return complex(negInf, 0)
		}
		return complex(posInf, 0)
	case Constant:
		switch n.name {
		case ConstantPi:
			return math.Pi
		case ConstantE:
			return math.E
		default:
			return 1i
		}
	case Symbol:
		return ev.symbol(p, n.name)
	case Function:
		return ev.function(p, h, n.name)
	case Multiplication, MultiplicationImplicit:
		v := complex(1, 0)
		for _, c := range p.a.Children(h) {
			v *= ev.eval(p, c)
		}
		return v
	case Addition:
		v := complex(0, 0)
		for _, c := range p.a.Children(h) {
			v += ev.eval(p, c)
		}
		return v
	case Subtraction:
		a := ev.args(p, h)
		return a[0] - a[1]
	case Opposite:
		return -ev.eval(p, p.child(h, 0))
	case Parenthesis, Factor, Store:
		return ev.eval(p, p.child(h, 0))
	case Division:
		a := ev.args(p, h)
		if a[1] == 0 {
			return undef
		}
		return a[0] / a[1]
	case Power:
		a := ev.args(p, h)
		return power(a[0], a[1])
	case SquareRoot:
		x := ev.eval(p, p.child(h, 0))
		if isRealValue(x) && real(x) >= 0 {
			return complex(math.Sqrt(real(x)), 0)
		}
		return cmplx.Sqrt(x)
	case NthRoot:
		a := ev.args(p, h)
		if k, ok := realInteger(a[1]); ok && ev.cf == Real && isRealValue(a[0]) && real(a[0]) < 0 && math.Mod(k, 2) != 0 {
			return complex(-math.Pow(-real(a[0]), 1/k), 0)
		}
		if a[1] == 0 {
			return undef
		}
		return power(a[0], 1/a[1])
	case Factorial:
		x := ev.eval(p, p.child(h, 0))
		if !isRealValue(x) || real(x) < 0 {
			return undef
		}
		return complex(math.Gamma(real(x)+1), 0)
	case Sine, Cosine, Tangent:
		return ev.trig(n.kind, ev.eval(p, p.child(h, 0)))
	case ArcSine, ArcCosine, ArcTangent:
		return ev.arcTrig(n.kind, ev.eval(p, p.child(h, 0)))
	case HyperbolicSine, HyperbolicCosine, HyperbolicTangent,
		HyperbolicArcSine, HyperbolicArcCosine, HyperbolicArcTangent:
		return hyperbolic(n.kind, ev.eval(p, p.child(h, 0)))
	case NaperianLogarithm:
		x := ev.eval(p, p.child(h, 0))
		return logarithm(x)
	case Logarithm:
		a := ev.args(p, h)
		d := logarithm(a[1])
		if d == 0 {
			return undef
		}
		return logarithm(a[0]) / d
	case AbsoluteValue:
		return complex(cmplx.Abs(ev.eval(p, p.child(h, 0))), 0)
	case Floor, Ceiling, FracPart:
		x := ev.eval(p, p.child(h, 0))
		if !isRealValue(x) {
			return undef
		}
		switch n.kind {
		case Floor:
			return complex(math.Floor(real(x)), 0)
		case Ceiling:
			return complex(math.Ceil(real(x)), 0)
		}
		return complex(real(x)-math.Floor(real(x)), 0)
	case Round:
		a := ev.args(p, h)
		d, ok := realInteger(a[1])
		if !ok || !isRealValue(a[0]) {
			return undef
		}
		s := math.Pow(10, d)
		return complex(math.Round(real(a[0])*s)/s, 0)
	case SignFunction:
		x := ev.eval(p, p.child(h, 0))
		if !isRealValue(x) {
			return undef
		}
		switch {
		case real(x) > 0:
			return 1
		case real(x) < 0:
			return -1
		}
		return 0
	case RealPart:
		return complex(real(ev.eval(p, p.child(h, 0))), 0)
	case ImaginaryPart:
		return complex(imag(ev.eval(p, p.child(h, 0))), 0)
	case ComplexArgument:
		x := ev.eval(p, p.child(h, 0))
		if x == 0 {
			return undef
		}
		return ev.fromRadians(complex(cmplx.Phase(x), 0))
	case Conjugate:
		return cmplx.Conj(ev.eval(p, p.child(h, 0)))
	case ComplexCartesian:
		a := ev.args(p, h)
		return a[0] + a[1]*1i
	case ComplexPolar:
		a := ev.args(p, h)
		return a[0] * cmplx.Exp(ev.toRadians(a[1])*1i)
	case BinomialCoefficient, PermuteCoefficient:
		a := ev.args(p, h)
		return combinatorics(n.kind, a[0], a[1])
	case DivisionQuotient, DivisionRemainder, GreatCommonDivisor, LeastCommonMultiple:
		a := ev.args(p, h)
		return integerFunction(n.kind, a[0], a[1])
	case Random:
		return complex(ev.random().Float64(), 0)
	case Randint:
		a := ev.args(p, h)
		lo, ok1 := realInteger(a[0])
		hi, ok2 := realInteger(a[1])
		if !ok1 || !ok2 || lo > hi || hi-lo >= 1<<62 {
			return undef
		}
		return complex(lo+float64(ev.random().Int64N(int64(hi-lo)+1)), 0)
	case Sum, Product:
		return ev.iterate(p, h, n.kind == Product)
	case Integral:
		return ev.integral(p, h)
	case Derivative:
		return ev.derivative(p, h)
	case Determinant, MatrixTrace:
		return ev.matrixScalar(p, h, n.kind)
	default:
		panic("symbolic: no approximation for kind " + n.kind.String())
	}
}

func (ev *evaluator) random() *rand.Rand {
	if ev.rng == nil {
		ev.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return ev.rng
}

func (ev *evaluator) lookup(name string) (complex128, bool) {
	for i := len(ev.scope) - 1; i >= 0; i-- {
		if ev.scope[i].name == name {
			return ev.scope[i].v, true
		}
	}
	return 0, false
}

// definition evaluates a definition from the context with only the given
// bindings in scope.
func (ev *evaluator) definition(name string, def *Expression, scope []binding) complex128 {
	for _, s := range ev.expanding {
		if s == name {
			return undef
		}
	}
	saved := ev.scope
	ev.scope = scope
	ev.expanding = append(ev.expanding, name)
	v := ev.eval(def.p, def.h)
	ev.expanding = ev.expanding[:len(ev.expanding)-1]
	ev.scope = saved
	return v
}

func (ev *evaluator) symbol(p *Pool, name string) complex128 {
	if v, ok := ev.lookup(name); ok {
		return v
	}
	if ev.symbols == nil {
		return undef
	}
	def := ev.symbols.ExpressionForSymbol(name)
	if def.IsNil() {
		return undef
	}
	return ev.definition(name, def, nil)
}

func (ev *evaluator) function(p *Pool, h arena.Handle, name string) complex128 {
	if ev.symbols == nil {
		return undef
	}
	def := ev.symbols.ExpressionForFunction(name)
	if def.IsNil() {
		return undef
	}
	x := ev.eval(p, p.child(h, 0))
	return ev.definition(name, def, []binding{{UnknownX, x}})
}

// power computes b^x, keeping real arithmetic where the result is real.
func power(b, x complex128) complex128 {
	if b == 0 {
		if isRealValue(x) && real(x) > 0 {
			return 0
		}
		return undef
	}
	if isRealValue(b) && isRealValue(x) {
		if real(b) > 0 || real(x) == math.Trunc(real(x)) {
			return complex(math.Pow(real(b), real(x)), 0)
		}
	}
	return cmplx.Pow(b, x)
}

func logarithm(x complex128) complex128 {
	switch {
	case x == 0:
		return undef
	case isRealValue(x) && real(x) > 0:
		return complex(math.Log(real(x)), 0)
	}
	return cmplx.Log(x)
}

// trig computes trigonometric functions of an angle in the evaluator's unit.
// Real multiples of a quarter turn give exact results.
func (ev *evaluator) trig(k Kind, x complex128) complex128 {
	if isRealValue(x) && !math.IsInf(real(x), 0) {
		q := real(x) / (ev.au.halfTurn() / 2)
		if q == math.Trunc(q) && ev.au != Radian {
			// sin, cos of n quarter turns
			n := int64(math.Mod(q, 4))
			if n < 0 {
				n += 4
			}
			s := [4]float64{0, 1, 0, -1}[n]
			c := [4]float64{1, 0, -1, 0}[n]
			switch k {
			case Sine:
				return complex(s, 0)
			case Cosine:
				return complex(c, 0)
			default:
				if c == 0 {
					return undef
				}
				return complex(s/c, 0)
			}
		}
		r := real(ev.toRadians(x))
		switch k {
		case Sine:
			return complex(math.Sin(r), 0)
		case Cosine:
			return complex(math.Cos(r), 0)
		default:
			// Near a pole the result depends only on rounding of the angle.
			tol := 1e-12
			if ev.single {
				tol = 1e-6
			}
			if math.Abs(math.Cos(r)) < tol {
				return undef
			}
			return complex(math.Tan(r), 0)
		}
	}
	z := ev.toRadians(x)
	switch k {
	case Sine:
		return cmplx.Sin(z)
	case Cosine:
		return cmplx.Cos(z)
	default:
		return cmplx.Tan(z)
	}
}

func (ev *evaluator) arcTrig(k Kind, x complex128) complex128 {
	var z complex128
	real1 := isRealValue(x) && math.Abs(real(x)) <= 1
	switch {
	case k == ArcTangent && isRealValue(x):
		z = complex(math.Atan(real(x)), 0)
	case k == ArcTangent:
		z = cmplx.Atan(x)
	case k == ArcSine && real1:
		z = complex(math.Asin(real(x)), 0)
	case k == ArcSine:
		z = cmplx.Asin(x)
	case real1:
		z = complex(math.Acos(real(x)), 0)
	default:
		z = cmplx.Acos(x)
	}
	return ev.fromRadians(z)
}

func hyperbolic(k Kind, x complex128) complex128 {
	if isRealValue(x) {
		r := real(x)
		switch {
		case k == HyperbolicSine:
			return complex(math.Sinh(r), 0)
		case k == HyperbolicCosine:
			return complex(math.Cosh(r), 0)
		case k == HyperbolicTangent:
			return complex(math.Tanh(r), 0)
		case k == HyperbolicArcSine:
			return complex(math.Asinh(r), 0)
		case k == HyperbolicArcCosine && r >= 1:
			return complex(math.Acosh(r), 0)
		case k == HyperbolicArcTangent && math.Abs(r) < 1:
			return complex(math.Atanh(r), 0)
		}
	}
	switch k {
	case HyperbolicSine:
		return cmplx.Sinh(x)
	case HyperbolicCosine:
		return cmplx.Cosh(x)
	case HyperbolicTangent:
		return cmplx.Tanh(x)
	case HyperbolicArcSine:
		return cmplx.Asinh(x)
	case HyperbolicArcCosine:
		return cmplx.Acosh(x)
	default:
		return cmplx.Atanh(x)
	}
}

func combinatorics(k Kind, nv, kv complex128) complex128 {
	n, nok := real(nv), isRealValue(nv)
	r, rok := realInteger(kv)
	if !nok || !rok || r < 0 || r > MaxNumberOfSteps {
		return undef
	}
	v := 1.0
	for i := 0.0; i < r; i++ {
		if k == BinomialCoefficient {
			v *= (n - i) / (i + 1)
		} else {
			v *= n - i
		}
	}
	if k == BinomialCoefficient && n == math.Trunc(n) {
		v = math.Round(v)
	}
	return complex(v, 0)
}

func integerFunction(k Kind, av, bv complex128) complex128 {
	a, aok := realInteger(av)
	b, bok := realInteger(bv)
	if !aok || !bok || math.Abs(a) > 1<<53 || math.Abs(b) > 1<<53 {
		return undef
	}
	switch k {
	case DivisionQuotient, DivisionRemainder:
		if b == 0 {
			return undef
		}
		m := math.Mod(a, math.Abs(b))
		if m < 0 {
			m += math.Abs(b)
		}
		if k == DivisionRemainder {
			return complex(m, 0)
		}
		return complex((a-m)/b, 0)
	}
	x, y := math.Abs(a), math.Abs(b)
	for y != 0 {
		x, y = y, math.Mod(x, y)
	}
	if k == GreatCommonDivisor {
		return complex(x, 0)
	}
	if x == 0 {
		return 0
	}
	return complex(math.Abs(a*b)/x, 0)
}
