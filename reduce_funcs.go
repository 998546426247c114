package symbolic

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// exactValue is sign·coef·√rad, the form of tabulated trigonometric values.
type exactValue struct {
	coef *big.Rat
	rad  int64
}

// sinTable holds sin(nπ/12) for n in [0, 12]. Entries with a nil coef have
// no short exact form.
var sinTable = [13]exactValue{
	0:  {big.NewRat(0, 1), 1},
	2:  {big.NewRat(1, 2), 1},
	3:  {big.NewRat(1, 2), 2},
	4:  {big.NewRat(1, 2), 3},
	6:  {big.NewRat(1, 1), 1},
	8:  {big.NewRat(1, 2), 3},
	9:  {big.NewRat(1, 2), 2},
	10: {big.NewRat(1, 2), 1},
	12: {big.NewRat(0, 1), 1},
}

// tanTable holds tan(nπ/12) for n in [0, 12). Entry 6 is the pole.
var tanTable = [12]exactValue{
	0:  {big.NewRat(0, 1), 1},
	2:  {big.NewRat(1, 3), 3},
	3:  {big.NewRat(1, 1), 1},
	4:  {big.NewRat(1, 1), 3},
	8:  {big.NewRat(-1, 1), 3},
	9:  {big.NewRat(-1, 1), 1},
	10: {big.NewRat(-1, 3), 3},
}

// sinExact returns sin(nπ/12) for any integer n.
func sinExact(n int64) (exactValue, bool) {
	n = ((n % 24) + 24) % 24
	neg := n >= 12
	if neg {
		n -= 12
	}
	v := sinTable[n]
	if v.coef == nil {
		return v, false
	}
	if neg {
		v.coef = new(big.Rat).Neg(v.coef)
	}
	return v, true
}

func tanExact(n int64) (exactValue, bool) {
	n = ((n % 12) + 12) % 12
	v := tanTable[n]
	return v, v.coef != nil
}

// angleTwelfths returns the angle at h as a number of twelfths of π, if it is
// an exact multiple of one.
func (r *reducer) angleTwelfths(h arena.Handle) (int64, bool) {
	var t *big.Rat
	if q, ok := r.rat(h); ok {
		switch r.rc.angle {
		case Radian:
			if q.Sign() != 0 {
				return 0, false
			}
			t = q
		case Degree:
			t = new(big.Rat).Quo(q, big.NewRat(180, 1))
		case Gradian:
			t = new(big.Rat).Quo(q, big.NewRat(200, 1))
		}
	} else if r.rc.angle == Radian {
		switch {
		case r.isConstant(h, ConstantPi):
			t = ratOne
		case r.p.kind(h) == Multiplication && r.p.numChildren(h) == 2 && r.isConstant(r.p.child(h, 1), ConstantPi):
			q, ok := r.rat(r.p.child(h, 0))
			if !ok {
				return 0, false
			}
			t = q
		default:
			return 0, false
		}
	} else {
		return 0, false
	}
	n := new(big.Rat).Mul(t, big.NewRat(12, 1))
	if !n.IsInt() || !n.Num().IsInt64() {
		return 0, false
	}
	return n.Num().Int64(), true
}

// buildAngle builds n twelfths of π in the context's angle unit.
func (r *reducer) buildAngle(n int64) (arena.Handle, error) {
	t := big.NewRat(n, 12)
	switch r.rc.angle {
	case Degree:
		return r.newRat(t.Mul(t, big.NewRat(180, 1)))
	case Gradian:
		return r.newRat(t.Mul(t, big.NewRat(200, 1)))
	}
	if n == 0 {
		return r.newInt(0)
	}
	pi, err := r.p.alloc(node{kind: Constant, name: ConstantPi})
	if err != nil {
		return arena.Handle{}, err
	}
	return r.scaled(t, pi)
}

// buildExact builds a tabulated value.
func (r *reducer) buildExact(v exactValue) (arena.Handle, error) {
	if v.rad == 1 {
		return r.newRat(v.coef)
	}
	w, err := r.ratPow(big.NewRat(v.rad, 1), ratHalf)
	if err != nil {
		return arena.Handle{}, err
	}
	return r.scaled(v.coef, w)
}

// exactOf recognizes a value of the form c or c·√k at h.
func (r *reducer) exactOf(h arena.Handle) (exactValue, bool) {
	if q, ok := r.rat(h); ok {
		return exactValue{q, 1}, true
	}
	var c *big.Rat
	w := h
	if r.p.kind(h) == Multiplication && r.p.numChildren(h) == 2 {
		q, ok := r.rat(r.p.child(h, 0))
		if !ok {
			return exactValue{}, false
		}
		c, w = q, r.p.child(h, 1)
	} else {
		c = ratOne
	}
	if r.p.kind(w) != Power {
		return exactValue{}, false
	}
	k, ok := r.smallInt(r.p.child(w, 0))
	if !ok || k <= 1 {
		return exactValue{}, false
	}
	if e, ok := r.rat(r.p.child(w, 1)); !ok || e.Cmp(ratHalf) != 0 {
		return exactValue{}, false
	}
	return exactValue{c, int64(k)}, true
}

func (v exactValue) equal(w exactValue) bool {
	if v.coef.Sign() == 0 && w.coef.Sign() == 0 {
		return true
	}
	return v.rad == w.rad && v.coef.Cmp(w.coef) == 0
}

// negativeArgument reports whether h is written with a negative sign: a
// negative rational or a product with a negative rational coefficient.
func (r *reducer) negativeArgument(h arena.Handle) bool {
	if q, ok := r.rat(h); ok {
		return q.Sign() < 0
	}
	if r.p.kind(h) == Multiplication {
		q, ok := r.rat(r.p.child(h, 0))
		return ok && q.Sign() < 0
	}
	return false
}

// negateArgument negates a node for which negativeArgument is true, without
// allocating.
func (r *reducer) negateArgument(h arena.Handle) {
	if q, ok := r.rat(h); ok {
		r.p.becomeLeaf(h, ratNode(new(big.Rat).Neg(q)))
		return
	}
	c := r.p.child(h, 0)
	q := new(big.Rat).Neg(r.p.node(c).rat)
	if q.Cmp(ratOne) == 0 {
		r.removeChild(h, 0)
		r.collapse(h, 1)
		return
	}
	r.p.becomeLeaf(c, ratNode(q))
}

// oddSymmetry rewrites f(-x) as -f(x) for an odd function f.
func (r *reducer) oddSymmetry(h arena.Handle) error {
	m, err := r.newInt(-1)
	if err != nil {
		return err
	}
	f, err := r.p.alloc(node{kind: r.p.kind(h)})
	if err != nil {
		r.p.free(m)
		return err
	}
	arg := r.p.a.Detach(h, 0)
	r.negateArgument(arg)
	r.p.a.Append(f, arg)
	r.p.setKind(h, Multiplication)
	r.p.a.Append(h, m)
	r.p.a.Append(h, f)
	if err := r.shallow(f); err != nil {
		return err
	}
	return r.multiplication(h)
}

// evenSymmetry rewrites f(-x) as f(x) for an even function f.
func (r *reducer) evenSymmetry(h arena.Handle) error {
	r.negateArgument(r.p.child(h, 0))
	return r.shallow(h)
}

func (r *reducer) trig(h arena.Handle) error {
	k := r.p.kind(h)
	arg := r.p.child(h, 0)
	if n, ok := r.angleTwelfths(arg); ok {
		var v exactValue
		switch k {
		case Sine:
			v, ok = sinExact(n)
		case Cosine:
			v, ok = sinExact(n + 6)
		case Tangent:
			if ((n%12)+12)%12 == 6 {
				r.setUndefined(h)
				return nil
			}
			v, ok = tanExact(n)
		}
		if ok {
			return r.rebuild(h, func() (arena.Handle, error) { return r.buildExact(v) })
		}
	}
	inverse := map[Kind]Kind{Sine: ArcSine, Cosine: ArcCosine, Tangent: ArcTangent}[k]
	if r.p.kind(arg) == inverse {
		// sin(asin(x)) = x
		r.p.become(h, r.p.a.Detach(arg, 0))
		return nil
	}
	if r.negativeArgument(arg) {
		if k == Cosine {
			return r.evenSymmetry(h)
		}
		return r.oddSymmetry(h)
	}
	return nil
}

func (r *reducer) arcTrig(h arena.Handle) error {
	k := r.p.kind(h)
	arg := r.p.child(h, 0)
	v, ok := r.exactOf(arg)
	if !ok {
		if k != ArcCosine && r.negativeArgument(arg) {
			return r.oddSymmetry(h)
		}
		return nil
	}
	if k != ArcTangent && v.rad == 1 && new(big.Rat).Abs(v.coef).Cmp(ratOne) > 0 {
		if r.rc.complex == Real {
			r.p.becomeLeaf(h, node{kind: Unreal})
		}
		return nil
	}
	// Search the principal range for a tabulated angle.
	lo, hi := int64(-6), int64(6)
	if k == ArcCosine {
		lo, hi = 0, 12
	}
	for n := lo; n <= hi; n++ {
		var w exactValue
		var ok bool
		switch k {
		case ArcSine:
			w, ok = sinExact(n)
		case ArcCosine:
			w, ok = sinExact(n + 6)
		case ArcTangent:
			if n == -6 || n == 6 {
				continue
			}
			w, ok = tanExact(n)
		}
		if ok && w.equal(v) {
			return r.rebuild(h, func() (arena.Handle, error) { return r.buildAngle(n) })
		}
	}
	return nil
}

func (r *reducer) hyperbolic(h arena.Handle) error {
	k := r.p.kind(h)
	arg := r.p.child(h, 0)
	switch {
	case k == HyperbolicCosine && r.isRat(arg, 0):
		r.setInt(h, 1)
		return nil
	case k == HyperbolicArcCosine && r.isRat(arg, 1):
		r.setInt(h, 0)
		return nil
	case k != HyperbolicCosine && k != HyperbolicArcCosine && r.isRat(arg, 0):
		r.setInt(h, 0)
		return nil
	}
	inverse := map[Kind]Kind{
		HyperbolicSine:    HyperbolicArcSine,
		HyperbolicCosine:  HyperbolicArcCosine,
		HyperbolicTangent: HyperbolicArcTangent,
	}[k]
	if inverse != Uninitialized && r.p.kind(arg) == inverse {
		r.p.become(h, r.p.a.Detach(arg, 0))
		return nil
	}
	if r.negativeArgument(arg) {
		switch k {
		case HyperbolicCosine:
			return r.evenSymmetry(h)
		case HyperbolicArcCosine:
			return nil
		default:
			return r.oddSymmetry(h)
		}
	}
	return nil
}

func (r *reducer) naperianLogarithm(h arena.Handle) error {
	arg := r.p.child(h, 0)
	switch {
	case r.isRat(arg, 1):
		r.setInt(h, 0)
	case r.isRat(arg, 0):
		r.setUndefined(h)
	case r.isConstant(arg, ConstantE):
		r.setInt(h, 1)
	case r.p.kind(arg) == Power && r.isConstant(r.p.child(arg, 0), ConstantE):
		if _, ok := r.rat(r.p.child(arg, 1)); ok {
			r.p.become(h, r.p.a.Detach(arg, 1))
		}
	case r.rc.complex == Real && r.negativeArgument(arg) && r.p.kind(arg) == Rational:
		r.p.becomeLeaf(h, node{kind: Unreal})
	}
	return nil
}

func (r *reducer) logarithm(h arena.Handle) error {
	x, b := r.p.child(h, 0), r.p.child(h, 1)
	bq, bRat := r.rat(b)
	xq, xRat := r.rat(x)
	switch {
	case bRat && (bq.Sign() <= 0 && r.rc.complex == Real || bq.Sign() == 0 || bq.Cmp(ratOne) == 0):
		r.setUndefined(h)
		return nil
	case xRat && xq.Sign() == 0:
		r.setUndefined(h)
		return nil
	case xRat && xq.Cmp(ratOne) == 0:
		r.setInt(h, 0)
		return nil
	case identical(r.p, x, r.p, b):
		r.setInt(h, 1)
		return nil
	case r.isConstant(b, ConstantE):
		r.removeChild(h, 1)
		r.p.setKind(h, NaperianLogarithm)
		return r.naperianLogarithm(h)
	case r.p.kind(x) == Power && identical(r.p, r.p.child(x, 0), r.p, b):
		// log_b(b^y) = y for rational y
		if _, ok := r.rat(r.p.child(x, 1)); ok {
			r.p.become(h, r.p.a.Detach(x, 1))
		}
		return nil
	case xRat && bRat && xq.Sign() > 0 && bq.Sign() > 0 && bq.IsInt():
		var k int64
		var ok bool
		switch {
		case xq.IsInt():
			k, ok = integerLog(xq.Num(), bq.Num())
		case xq.Num().Cmp(bigOne) == 0:
			k, ok = integerLog(xq.Denom(), bq.Num())
			k = -k
		}
		if ok {
			r.setInt(h, k)
		}
		return nil
	case xRat && xq.Sign() < 0 && r.rc.complex == Real:
		r.p.becomeLeaf(h, node{kind: Unreal})
		return nil
	}
	return nil
}

func (r *reducer) absoluteValue(h arena.Handle) error {
	arg := r.p.child(h, 0)
	switch k := r.p.kind(arg); {
	case k == Rational:
		r.p.becomeLeaf(h, ratNode(new(big.Rat).Abs(r.p.node(arg).rat)))
	case k == Infinity:
		r.p.becomeLeaf(h, node{kind: Infinity})
	case k == AbsoluteValue:
		r.p.becomeChild(h, 0)
	case r.isConstant(arg, ConstantI):
		r.setInt(h, 1)
	default:
		switch r.p.sign(r.rc.symbols, arg) {
		case Positive:
			r.p.becomeChild(h, 0)
		case Negative:
			return r.opposite(h)
		}
	}
	return nil
}

// floorRat computes ⌊q⌋.
func floorRat(q *big.Rat) *big.Int {
	z := new(big.Int)
	z.Div(q.Num(), q.Denom())
	return z
}

func (r *reducer) rounding(h arena.Handle) error {
	k := r.p.kind(h)
	arg := r.p.child(h, 0)
	q, ok := r.rat(arg)
	if !ok {
		// Numeric arguments far from integers round exactly.
		v, ok := r.approxReal(arg)
		if !ok || math.Abs(v) > 1<<52 || math.Abs(v-math.Round(v)) < 1e-9 {
			return nil
		}
		if k == FracPart {
			return nil
		}
		if k == Floor {
			r.setInt(h, int64(math.Floor(v)))
		} else {
			r.setInt(h, int64(math.Ceil(v)))
		}
		return nil
	}
	fl := floorRat(q)
	switch k {
	case Floor:
		r.setRat(h, new(big.Rat).SetInt(fl))
	case Ceiling:
		if !q.IsInt() {
			fl.Add(fl, bigOne)
		}
		r.setRat(h, new(big.Rat).SetInt(fl))
	case FracPart:
		r.setRat(h, new(big.Rat).Sub(q, new(big.Rat).SetInt(fl)))
	}
	return nil
}

func (r *reducer) round(h arena.Handle) error {
	q, ok := r.rat(r.p.child(h, 0))
	if !ok {
		return nil
	}
	d, ok := r.smallInt(r.p.child(h, 1))
	if !ok {
		if _, isRat := r.rat(r.p.child(h, 1)); isRat {
			r.setUndefined(h)
		}
		return nil
	}
	if d < -maxIntegerBits || d > maxIntegerBits {
		return nil
	}
	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(d))), nil))
	if d < 0 {
		scale.Inv(scale)
	}
	v := new(big.Rat).Mul(q, scale)
	// Round half away from zero.
	neg := v.Sign() < 0
	v.Abs(v)
	v.Add(v, ratHalf)
	n := new(big.Rat).SetInt(floorRat(v))
	if neg {
		n.Neg(n)
	}
	r.setRat(h, n.Quo(n, scale))
	return nil
}

func (r *reducer) signFunction(h arena.Handle) error {
	arg := r.p.child(h, 0)
	if r.isRat(arg, 0) {
		r.setInt(h, 0)
		return nil
	}
	switch r.p.sign(r.rc.symbols, arg) {
	case Positive:
		r.setInt(h, 1)
	case Negative:
		r.setInt(h, -1)
	}
	return nil
}

// imaginaryTerm recognizes a term of the form i or i·(real factors) and
// returns the real factors.
func (r *reducer) imaginaryTerm(h arena.Handle) ([]arena.Handle, bool) {
	if r.isConstant(h, ConstantI) {
		return nil, true
	}
	if r.p.kind(h) != Multiplication {
		return nil, false
	}
	var rest []arena.Handle
	found := false
	for _, c := range r.p.a.Children(h) {
		switch {
		case r.isConstant(c, ConstantI) && !found:
			found = true
		case r.p.isReal(r.rc.symbols, c):
			rest = append(rest, c)
		default:
			return nil, false
		}
	}
	return rest, found
}

// cartesian splits h into real and imaginary terms. The imaginary terms are
// given by their real factors.
func (r *reducer) cartesian(h arena.Handle) (re []arena.Handle, im [][]arena.Handle, ok bool) {
	terms := []arena.Handle{h}
	if r.p.kind(h) == Addition {
		terms = r.p.a.Children(h)
	}
	for _, t := range terms {
		if r.p.isReal(r.rc.symbols, t) {
			re = append(re, t)
			continue
		}
		f, ok := r.imaginaryTerm(t)
		if !ok {
			return nil, nil, false
		}
		im = append(im, f)
	}
	return re, im, true
}

// sumOfClones builds the reduced sum of clones of terms, each a product of
// factors. An empty product is 1 and an empty sum is 0.
func (r *reducer) sumOfClones(terms [][]arena.Handle, scale *big.Rat) (arena.Handle, error) {
	var built []arena.Handle
	for _, fs := range terms {
		cs, err := r.cloneAll(fs...)
		if err != nil {
			r.p.free(built...)
			return arena.Handle{}, err
		}
		c, err := r.newRat(scale)
		if err != nil {
			r.p.free(cs...)
			r.p.free(built...)
			return arena.Handle{}, err
		}
		t, err := r.mulOf(append([]arena.Handle{c}, cs...)...)
		if err != nil {
			r.p.free(built...)
			return arena.Handle{}, err
		}
		built = append(built, t)
	}
	if len(built) == 0 {
		return r.newInt(0)
	}
	return r.addOf(built...)
}

func (r *reducer) complexPart(h arena.Handle) error {
	k := r.p.kind(h)
	arg := r.p.child(h, 0)
	re, im, ok := r.cartesian(arg)
	if !ok {
		return nil
	}
	wrap := func(hs []arena.Handle) [][]arena.Handle {
		v := make([][]arena.Handle, len(hs))
		for i, x := range hs {
			v[i] = []arena.Handle{x}
		}
		return v
	}
	switch k {
	case RealPart:
		if len(im) == 0 {
			r.p.becomeChild(h, 0)
			return nil
		}
		return r.rebuild(h, func() (arena.Handle, error) { return r.sumOfClones(wrap(re), ratOne) })
	case ImaginaryPart:
		return r.rebuild(h, func() (arena.Handle, error) { return r.sumOfClones(im, ratOne) })
	case Conjugate:
		if len(im) == 0 {
			r.p.becomeChild(h, 0)
			return nil
		}
		return r.rebuild(h, func() (arena.Handle, error) {
			a, err := r.sumOfClones(wrap(re), ratOne)
			if err != nil {
				return arena.Handle{}, err
			}
			b, err := r.sumOfClones(im, ratMinus1)
			if err != nil {
				r.p.free(a)
				return arena.Handle{}, err
			}
			ci, err := r.p.alloc(node{kind: Constant, name: ConstantI})
			if err != nil {
				r.p.free(a, b)
				return arena.Handle{}, err
			}
			bi, err := r.mulOf(b, ci)
			if err != nil {
				r.p.free(a)
				return arena.Handle{}, err
			}
			return r.addOf(a, bi)
		})
	case ComplexArgument:
		var n int64
		switch {
		case len(im) == 0 && r.p.sign(r.rc.symbols, arg) == Positive:
			n = 0
		case len(im) == 0 && r.p.sign(r.rc.symbols, arg) == Negative:
			n = 12
		case len(re) == 0 && len(im) == 1:
			s := Positive
			for _, f := range im[0] {
				s *= r.p.sign(r.rc.symbols, f)
			}
			switch s {
			case Positive:
				n = 6
			case Negative:
				n = -6
			default:
				return nil
			}
		default:
			return nil
		}
		return r.rebuild(h, func() (arena.Handle, error) { return r.buildAngle(n) })
	}
	return nil
}

// complexCartesian rewrites complex(a, b) as a+b·i.
func (r *reducer) complexCartesian(h arena.Handle) error {
	ci, err := r.p.alloc(node{kind: Constant, name: ConstantI})
	if err != nil {
		return err
	}
	m, err := r.p.alloc(node{kind: Multiplication})
	if err != nil {
		r.p.free(ci)
		return err
	}
	r.p.a.Append(m, r.p.a.Detach(h, 1))
	r.p.a.Append(m, ci)
	r.p.setKind(h, Addition)
	r.p.a.Append(h, m)
	if err := r.reduce(ci); err != nil {
		return err
	}
	if err := r.shallow(m); err != nil {
		return err
	}
	return r.shallow(h)
}

// complexPolar rewrites polar(ρ, θ) as ρ·cos(θ)+ρ·sin(θ)·i.
func (r *reducer) complexPolar(h arena.Handle) error {
	rho, theta := r.p.child(h, 0), r.p.child(h, 1)
	return r.rebuild(h, func() (arena.Handle, error) {
		var parts [2]arena.Handle
		for i, k := range [...]Kind{Cosine, Sine} {
			cs, err := r.cloneAll(rho, theta)
			if err != nil {
				r.p.free(parts[:i]...)
				return arena.Handle{}, err
			}
			f, err := r.p.build(node{kind: k}, cs[1])
			if err != nil {
				r.p.free(cs[0])
				r.p.free(parts[:i]...)
				return arena.Handle{}, err
			}
			if err := r.shallow(f); err != nil {
				r.p.free(cs[0], f)
				r.p.free(parts[:i]...)
				return arena.Handle{}, err
			}
			factors := []arena.Handle{cs[0], f}
			if k == Sine {
				ci, err := r.p.alloc(node{kind: Constant, name: ConstantI})
				if err != nil {
					r.p.free(cs[0], f, parts[0])
					return arena.Handle{}, err
				}
				if err := r.shallow(ci); err != nil {
					r.p.free(cs[0], f, parts[0], ci)
					return arena.Handle{}, err
				}
				factors = append(factors, ci)
			}
			t, err := r.mulOf(factors...)
			if err != nil {
				r.p.free(parts[:i]...)
				return arena.Handle{}, err
			}
			parts[i] = t
		}
		return r.addOf(parts[0], parts[1])
	})
}

func (r *reducer) factorial(h arena.Handle) error {
	q, ok := r.rat(r.p.child(h, 0))
	if !ok {
		return nil
	}
	if !q.IsInt() || q.Sign() < 0 {
		r.setUndefined(h)
		return nil
	}
	if !q.Num().IsInt64() {
		return nil
	}
	if f, ok := factorial(q.Num().Int64()); ok {
		r.setRat(h, new(big.Rat).SetInt(f))
	}
	return nil
}

func (r *reducer) combinatorics(h arena.Handle) error {
	nq, nok := r.rat(r.p.child(h, 0))
	kq, kok := r.rat(r.p.child(h, 1))
	if !nok || !kok {
		return nil
	}
	if !nq.IsInt() || !kq.IsInt() {
		r.setUndefined(h)
		return nil
	}
	if !nq.Num().IsInt64() || !kq.Num().IsInt64() {
		return nil
	}
	n, k := nq.Num().Int64(), kq.Num().Int64()
	if r.p.kind(h) == PermuteCoefficient {
		switch {
		case n < 0 || k < 0:
			r.setUndefined(h)
		case k > n:
			r.setInt(h, 0)
		default:
			if v, ok := fallingFactorial(n, k); ok {
				r.setRat(h, new(big.Rat).SetInt(v))
			}
		}
		return nil
	}
	switch {
	case k < 0:
		r.setUndefined(h)
		return nil
	case n >= 0 && k > n:
		r.setInt(h, 0)
		return nil
	}
	sign := int64(1)
	if n < 0 {
		// C(n, k) = (-1)^k C(k-n-1, k)
		n = k - n - 1
		if k%2 == 1 {
			sign = -1
		}
	}
	if n-k < k {
		k = n - k
	}
	num, ok := fallingFactorial(n, k)
	if !ok {
		return nil
	}
	den, _ := factorial(k)
	num.Quo(num, den)
	r.setRat(h, new(big.Rat).SetInt(num.Mul(num, big.NewInt(sign))))
	return nil
}

func (r *reducer) integerBinary(h arena.Handle) error {
	aq, aok := r.rat(r.p.child(h, 0))
	bq, bok := r.rat(r.p.child(h, 1))
	if !aok || !bok {
		return nil
	}
	if !aq.IsInt() || !bq.IsInt() {
		r.setUndefined(h)
		return nil
	}
	a, b := aq.Num(), bq.Num()
	var v big.Int
	switch r.p.kind(h) {
	case DivisionQuotient, DivisionRemainder:
		if b.Sign() == 0 {
			r.setUndefined(h)
			return nil
		}
		var m big.Int
		v.DivMod(a, b, &m)
		if r.p.kind(h) == DivisionRemainder {
			v.Set(&m)
		}
	case GreatCommonDivisor:
		v.GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	case LeastCommonMultiple:
		if a.Sign() == 0 || b.Sign() == 0 {
			break
		}
		var g big.Int
		g.GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
		v.Mul(a, b)
		v.Abs(&v)
		v.Quo(&v, &g)
	}
	r.setRat(h, new(big.Rat).SetInt(&v))
	return nil
}

// factor keeps factor(q) for beautification when reducing for people and
// otherwise evaluates to q itself.
func (r *reducer) factor(h arena.Handle) error {
	if r.p.kind(r.p.child(h, 0)) != Rational {
		r.setUndefined(h)
		return nil
	}
	if r.rc.target != User {
		r.p.becomeChild(h, 0)
	}
	return nil
}
