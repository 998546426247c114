package symbolic

import (
	"math/big"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// flatten splices nested operands of the same associative operator into h.
func (r *reducer) flatten(h arena.Handle, mul bool) {
	for i := 0; i < r.p.numChildren(h); {
		k := r.p.kind(r.p.child(h, i))
		if (mul && !k.isMultiplication()) || (!mul && k != Addition) {
			i++
			continue
		}
		c := r.p.a.Detach(h, i)
		for j := 0; r.p.numChildren(c) > 0; j++ {
			r.p.a.Insert(h, i+j, r.p.a.Detach(c, 0))
		}
		r.p.a.Free(c)
	}
}

// removeChild detaches and frees the i-th operand of h.
func (r *reducer) removeChild(h arena.Handle, i int) {
	r.p.a.Free(r.p.a.Detach(h, i))
}

// collapse finishes an n-ary node: with no operands it becomes the identity
// element and with one it becomes that operand.
func (r *reducer) collapse(h arena.Handle, identity int64) {
	switch r.p.numChildren(h) {
	case 0:
		r.setInt(h, identity)
	case 1:
		r.p.becomeChild(h, 0)
	}
}

func (r *reducer) multiplication(h arena.Handle) error {
	if r.p.kind(h) == MultiplicationImplicit {
		r.p.setKind(h, Multiplication)
	}
	r.flatten(h, true)
	if err := r.sortChildren(h, false); err != nil {
		return err
	}
	if done := r.foldProduct(h); done {
		return nil
	}
	merged, err := r.mergeBases(h)
	if err != nil {
		return err
	}
	if merged {
		return r.multiplication(h)
	}
	if r.p.numChildren(h) > 1 && r.isRat(r.p.child(h, 0), 1) {
		r.removeChild(h, 0)
	}
	r.collapse(h, 1)
	return nil
}

// foldProduct combines the leading rational operands of a sorted product and
// resolves zero and infinite factors. It reports whether h became a leaf.
func (r *reducer) foldProduct(h arena.Handle) bool {
	n := r.p.numChildren(h)
	nr := 0
	for nr < n && r.p.kind(r.p.child(h, nr)) == Rational {
		nr++
	}
	if nr > 1 {
		prod := new(big.Rat).Set(r.p.node(r.p.child(h, 0)).rat)
		for i := 1; i < nr; i++ {
			prod.Mul(prod, r.p.node(r.p.child(h, i)).rat)
		}
		if ratTooBig(prod) {
			r.setUndefined(h)
			return true
		}
		for i := nr - 1; i > 0; i-- {
			r.removeChild(h, i)
		}
		r.p.becomeLeaf(r.p.child(h, 0), ratNode(prod))
		nr = 1
	}
	var coef *big.Rat
	if nr == 1 {
		coef = r.p.node(r.p.child(h, 0)).rat
	}
	infs, neg := 0, false
	for i := 0; i < r.p.numChildren(h); i++ {
		c := r.p.node(r.p.child(h, i))
		if c.kind == Infinity {
			infs++
			neg = neg != c.neg
		}
	}
	switch {
	case coef != nil && coef.Sign() == 0 && infs > 0:
		r.setUndefined(h)
		return true
	case coef != nil && coef.Sign() == 0:
		r.setInt(h, 0)
		return true
	case infs == 0:
		return false
	}
	if coef != nil {
		neg = neg != (coef.Sign() < 0)
	}
	// Keep one infinity carrying the combined sign in place of every number.
	for i := r.p.numChildren(h) - 1; i >= 0; i-- {
		k := r.p.kind(r.p.child(h, i))
		if k == Rational || k == Infinity {
			if infs == 1 && k == Infinity {
				r.p.becomeLeaf(r.p.child(h, i), node{kind: Infinity, neg: neg})
				continue
			}
			if k == Infinity {
				infs--
			}
			r.removeChild(h, i)
		}
	}
	r.collapse(h, 1)
	return r.p.kind(h) == Infinity
}

// baseExp splits a factor into base and exponent. exp is nil for an implicit
// exponent of 1.
func (r *reducer) baseExp(h arena.Handle) (base, exp arena.Handle) {
	if r.p.kind(h) == Power {
		return r.p.child(h, 0), r.p.child(h, 1)
	}
	return h, arena.Handle{}
}

// mergeBases combines the first adjacent pair of factors with identical
// bases by adding their exponents. Plain rationals are coefficients and are
// never merged.
func (r *reducer) mergeBases(h arena.Handle) (bool, error) {
	n := r.p.numChildren(h)
	for i := 0; i+1 < n; i++ {
		a, b := r.p.child(h, i), r.p.child(h, i+1)
		if r.p.kind(a) == Rational || r.p.kind(b) == Rational {
			continue
		}
		ba, ea := r.baseExp(a)
		bb, eb := r.baseExp(b)
		if r.p.kind(ba).isMatrixValued() || !identical(r.p, ba, r.p, bb) {
			continue
		}
		sum, err := r.exponentSum(ea, eb)
		if err != nil {
			return false, err
		}
		base, err := r.p.clone(ba)
		if err != nil {
			r.p.free(sum)
			return false, err
		}
		w, err := r.powOf(base, sum)
		if err != nil {
			return false, err
		}
		r.p.a.Free(r.p.a.Replace(h, i, w))
		r.removeChild(h, i+1)
		return true, nil
	}
	return false, nil
}

// exponentSum builds the reduced sum of two exponents, either of which may be
// nil for 1.
func (r *reducer) exponentSum(ea, eb arena.Handle) (arena.Handle, error) {
	var terms []arena.Handle
	for _, e := range [...]arena.Handle{ea, eb} {
		var t arena.Handle
		var err error
		if e.IsNil() {
			t, err = r.newInt(1)
		} else {
			t, err = r.p.clone(e)
		}
		if err != nil {
			r.p.free(terms...)
			return arena.Handle{}, err
		}
		terms = append(terms, t)
	}
	return r.addOf(terms...)
}

func (r *reducer) addition(h arena.Handle) error {
	r.flatten(h, false)
	if err := r.sortChildren(h, false); err != nil {
		return err
	}
	if done := r.foldSum(h); done {
		return nil
	}
	merged, err := r.mergeTerms(h)
	if err != nil {
		return err
	}
	if merged {
		return r.addition(h)
	}
	if r.p.numChildren(h) > 1 && r.isRat(r.p.child(h, 0), 0) {
		r.removeChild(h, 0)
	}
	r.collapse(h, 0)
	return nil
}

// foldSum combines the leading rational terms of a sorted sum and resolves
// infinite terms. It reports whether h became a leaf.
func (r *reducer) foldSum(h arena.Handle) bool {
	n := r.p.numChildren(h)
	nr := 0
	for nr < n && r.p.kind(r.p.child(h, nr)) == Rational {
		nr++
	}
	if nr > 1 {
		sum := new(big.Rat).Set(r.p.node(r.p.child(h, 0)).rat)
		for i := 1; i < nr; i++ {
			sum.Add(sum, r.p.node(r.p.child(h, i)).rat)
		}
		if ratTooBig(sum) {
			r.setUndefined(h)
			return true
		}
		for i := nr - 1; i > 0; i-- {
			r.removeChild(h, i)
		}
		r.p.becomeLeaf(r.p.child(h, 0), ratNode(sum))
	}
	var pos, neg bool
	for i := 0; i < r.p.numChildren(h); i++ {
		c := r.p.node(r.p.child(h, i))
		if c.kind == Infinity {
			pos = pos || !c.neg
			neg = neg || c.neg
		}
	}
	switch {
	case pos && neg:
		r.setUndefined(h)
		return true
	case !pos && !neg:
		return false
	}
	// Finite numbers vanish next to an infinity.
	kept := false
	for i := r.p.numChildren(h) - 1; i >= 0; i-- {
		k := r.p.kind(r.p.child(h, i))
		if k == Rational || (k == Infinity && kept) {
			r.removeChild(h, i)
		}
		kept = kept || k == Infinity
	}
	r.collapse(h, 0)
	return r.p.kind(h) == Infinity
}

// term splits an addend into its rational coefficient and remaining factors.
func (r *reducer) term(h arena.Handle) (*big.Rat, []arena.Handle) {
	switch r.p.kind(h) {
	case Rational:
		return r.p.node(h).rat, nil
	case Multiplication:
		if q, ok := r.rat(r.p.child(h, 0)); ok {
			return q, r.p.a.Children(h)[1:]
		}
	}
	return ratOne, []arena.Handle{h}
}

// mergeTerms combines the first adjacent pair of like terms.
func (r *reducer) mergeTerms(h arena.Handle) (bool, error) {
	n := r.p.numChildren(h)
	for i := 0; i+1 < n; i++ {
		ca, ra := r.term(r.p.child(h, i))
		cb, rb := r.term(r.p.child(h, i+1))
		if len(ra) == 0 || len(ra) != len(rb) {
			continue
		}
		same := true
		for j := range ra {
			if !identical(r.p, ra[j], r.p, rb[j]) {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		sum := new(big.Rat).Add(ca, cb)
		if sum.Sign() == 0 {
			r.removeChild(h, i+1)
			r.removeChild(h, i)
			return true, nil
		}
		rest, err := r.cloneAll(ra...)
		if err != nil {
			return false, err
		}
		c, err := r.newRat(sum)
		if err != nil {
			r.p.free(rest...)
			return false, err
		}
		t, err := r.mulOf(append([]arena.Handle{c}, rest...)...)
		if err != nil {
			return false, err
		}
		r.p.a.Free(r.p.a.Replace(h, i, t))
		r.removeChild(h, i+1)
		return true, nil
	}
	return false, nil
}

func (r *reducer) power(h arena.Handle) error {
	base, exp := r.p.child(h, 0), r.p.child(h, 1)
	bk, ek := r.p.kind(base), r.p.kind(exp)
	bq, bRat := r.rat(base)
	eq, eRat := r.rat(exp)
	switch {
	case eRat && eq.Sign() == 0:
		if (bRat && bq.Sign() == 0) || bk == Infinity {
			r.setUndefined(h)
		} else {
			r.setInt(h, 1)
		}
		return nil
	case eRat && eq.Cmp(ratOne) == 0:
		r.p.becomeChild(h, 0)
		return nil
	case bRat && bq.Cmp(ratOne) == 0:
		if ek == Infinity {
			r.setUndefined(h)
		} else {
			r.setInt(h, 1)
		}
		return nil
	case bRat && bq.Sign() == 0:
		switch {
		case eRat && eq.Sign() > 0, ek == Infinity && !r.p.node(exp).neg:
			r.setInt(h, 0)
		case eRat, ek == Infinity:
			r.setUndefined(h)
		}
		return nil
	case bRat && eRat:
		return r.ratPower(h, bq, eq)
	case bRat && ek == Infinity:
		return r.ratPowerInfinity(h, bq, r.p.node(exp).neg)
	case bk == Infinity && eRat:
		switch {
		case eq.Sign() < 0:
			r.setInt(h, 0)
		case !r.p.node(base).neg:
			r.p.becomeLeaf(h, node{kind: Infinity})
		case eq.IsInt():
			odd := eq.Num().Bit(0) == 1
			r.p.becomeLeaf(h, node{kind: Infinity, neg: odd})
		default:
			r.setUndefined(h)
		}
		return nil
	case r.isConstant(base, ConstantI) && eRat && eq.IsInt():
		return r.imaginaryPower(h, eq.Num())
	case r.isConstant(base, ConstantE) && ek == NaperianLogarithm:
		r.p.become(h, r.p.a.Detach(exp, 0))
		return nil
	case bk == Power && eRat && eq.IsInt():
		return r.powerOfPower(h)
	case bk == Multiplication && eRat && eq.IsInt():
		return r.powerOfProduct(h)
	}
	return nil
}

// ratPower reduces b^x for rationals b ≠ 0, 1 and x ≠ 0, 1.
func (r *reducer) ratPower(h arena.Handle, b, x *big.Rat) error {
	if x.IsInt() {
		if v, ok := ratPowInt(b, x.Num()); ok {
			r.setRat(h, v)
		}
		return nil
	}
	if !x.Denom().IsInt64() || x.Denom().Int64() > maxRootIndex {
		return nil
	}
	q := int(x.Denom().Int64())
	ip, rem := new(big.Int).QuoRem(x.Num(), x.Denom(), new(big.Int))
	if ip.Sign() != 0 {
		// b^(i+r/q) = b^i · b^(r/q)
		coef, ok := ratPowInt(b, ip)
		if !ok {
			return nil
		}
		fx := new(big.Rat).SetFrac(rem, x.Denom())
		return r.rebuild(h, func() (arena.Handle, error) {
			bb, err := r.newRat(b)
			if err != nil {
				return arena.Handle{}, err
			}
			e, err := r.newRat(fx)
			if err != nil {
				r.p.free(bb)
				return arena.Handle{}, err
			}
			w, err := r.powOf(bb, e)
			if err != nil {
				return arena.Handle{}, err
			}
			return r.scaled(coef, w)
		})
	}
	if b.Sign() < 0 {
		return r.negativeRoot(h, b, x, q)
	}
	k := rem.Int64()
	oN, mN := extractRoot(b.Num(), q)
	oD, mD := extractRoot(b.Denom(), q)
	if oN.Cmp(bigOne) == 0 && oD.Cmp(bigOne) == 0 && b.IsInt() {
		return nil
	}
	coef, ok := ratPowInt(new(big.Rat).SetFrac(oN, oD), big.NewInt(k))
	if !ok {
		return nil
	}
	return r.rebuild(h, func() (arena.Handle, error) {
		var fs []arena.Handle
		fail := func(err error) (arena.Handle, error) {
			r.p.free(fs...)
			return arena.Handle{}, err
		}
		c, err := r.newRat(coef)
		if err != nil {
			return fail(err)
		}
		fs = append(fs, c)
		for _, f := range [...]struct {
			m   *big.Int
			exp *big.Rat
		}{{mN, x}, {mD, new(big.Rat).Neg(x)}} {
			if f.m.Cmp(bigOne) == 0 {
				continue
			}
			bb, err := r.newRat(new(big.Rat).SetInt(f.m))
			if err != nil {
				return fail(err)
			}
			e, err := r.newRat(f.exp)
			if err != nil {
				r.p.free(bb)
				return fail(err)
			}
			w, err := r.powOf(bb, e)
			if err != nil {
				return fail(err)
			}
			fs = append(fs, w)
		}
		return r.mulOf(fs...)
	})
}

// negativeRoot reduces b^x for a negative rational b and a proper fraction x
// with denominator q.
func (r *reducer) negativeRoot(h arena.Handle, b, x *big.Rat, q int) error {
	a := new(big.Rat).Neg(b)
	odd := x.Num().Bit(0) == 1
	switch {
	case r.rc.complex == Real && q%2 == 0:
		r.p.becomeLeaf(h, node{kind: Unreal})
		return nil
	case r.rc.complex == Real:
		// Odd roots of negative numbers are real.
		return r.rebuild(h, func() (arena.Handle, error) {
			w, err := r.ratPow(a, x)
			if err != nil || !odd {
				return w, err
			}
			return r.scaled(ratMinus1, w)
		})
	case q == 2:
		// (-a)^(k/2) = i^k · a^(k/2)
		return r.rebuild(h, func() (arena.Handle, error) {
			ci, err := r.p.alloc(node{kind: Constant, name: ConstantI})
			if err != nil {
				return arena.Handle{}, err
			}
			k, err := r.newRat(new(big.Rat).SetInt(x.Num()))
			if err != nil {
				r.p.free(ci)
				return arena.Handle{}, err
			}
			ik, err := r.powOf(ci, k)
			if err != nil {
				return arena.Handle{}, err
			}
			w, err := r.ratPow(a, x)
			if err != nil {
				r.p.free(ik)
				return arena.Handle{}, err
			}
			return r.mulOf(ik, w)
		})
	}
	return nil
}

// ratPow builds the reduced power a^x of two rationals.
func (r *reducer) ratPow(a, x *big.Rat) (arena.Handle, error) {
	bb, err := r.newRat(a)
	if err != nil {
		return arena.Handle{}, err
	}
	e, err := r.newRat(x)
	if err != nil {
		r.p.free(bb)
		return arena.Handle{}, err
	}
	return r.powOf(bb, e)
}

// rebuild replaces h with a tree built by f. If f fails, h is unchanged.
func (r *reducer) rebuild(h arena.Handle, f func() (arena.Handle, error)) error {
	t, err := f()
	if err != nil {
		return err
	}
	r.p.become(h, t)
	return nil
}

// ratPowerInfinity reduces b^±∞ for a rational b ≠ 0, 1.
func (r *reducer) ratPowerInfinity(h arena.Handle, b *big.Rat, neg bool) error {
	mag := new(big.Rat).Abs(b).Cmp(ratOne)
	switch {
	case b.Sign() < 0 && mag >= 0:
		r.setUndefined(h)
	case (mag > 0) != neg:
		if b.Sign() < 0 {
			r.setUndefined(h)
		} else {
			r.p.becomeLeaf(h, node{kind: Infinity})
		}
	default:
		r.setInt(h, 0)
	}
	return nil
}

// imaginaryPower reduces i^n for an integer n.
func (r *reducer) imaginaryPower(h arena.Handle, n *big.Int) error {
	switch new(big.Int).Mod(n, big.NewInt(4)).Int64() {
	case 0:
		r.setInt(h, 1)
	case 1:
		r.p.becomeChild(h, 0)
	case 2:
		r.setInt(h, -1)
	case 3:
		// -i
		m, err := r.newInt(-1)
		if err != nil {
			return err
		}
		r.removeChild(h, 1)
		r.p.setKind(h, Multiplication)
		r.p.a.Insert(h, 0, m)
	}
	return nil
}

// powerOfPower reduces (x^a)^n = x^(a·n) for an integer n.
func (r *reducer) powerOfPower(h arena.Handle) error {
	inner, n := r.p.child(h, 0), r.p.child(h, 1)
	return r.rebuild(h, func() (arena.Handle, error) {
		cs, err := r.cloneAll(r.p.child(inner, 0), r.p.child(inner, 1), n)
		if err != nil {
			return arena.Handle{}, err
		}
		e, err := r.mulOf(cs[1], cs[2])
		if err != nil {
			r.p.free(cs[0])
			return arena.Handle{}, err
		}
		return r.powOf(cs[0], e)
	})
}

// powerOfProduct reduces (x·y)^n = x^n·y^n for an integer n.
func (r *reducer) powerOfProduct(h arena.Handle) error {
	prod, n := r.p.child(h, 0), r.p.child(h, 1)
	return r.rebuild(h, func() (arena.Handle, error) {
		var fs []arena.Handle
		for _, f := range r.p.a.Children(prod) {
			cs, err := r.cloneAll(f, n)
			if err != nil {
				r.p.free(fs...)
				return arena.Handle{}, err
			}
			w, err := r.powOf(cs[0], cs[1])
			if err != nil {
				r.p.free(fs...)
				return arena.Handle{}, err
			}
			fs = append(fs, w)
		}
		return r.mulOf(fs...)
	})
}

// opposite rewrites -x as -1·x.
func (r *reducer) opposite(h arena.Handle) error {
	m, err := r.newInt(-1)
	if err != nil {
		return err
	}
	r.p.setKind(h, Multiplication)
	r.p.a.Insert(h, 0, m)
	return r.multiplication(h)
}

// subtraction rewrites a-b as a+(-1·b).
func (r *reducer) subtraction(h arena.Handle) error {
	m, err := r.newInt(-1)
	if err != nil {
		return err
	}
	mul, err := r.p.alloc(node{kind: Multiplication})
	if err != nil {
		r.p.free(m)
		return err
	}
	r.p.a.Append(mul, m)
	r.p.a.Append(mul, r.p.a.Detach(h, 1))
	r.p.setKind(h, Addition)
	r.p.a.Append(h, mul)
	if err := r.multiplication(mul); err != nil {
		return err
	}
	return r.addition(h)
}

// division rewrites a/b as a·b^-1.
func (r *reducer) division(h arena.Handle) error {
	m, err := r.newInt(-1)
	if err != nil {
		return err
	}
	w, err := r.p.alloc(node{kind: Power})
	if err != nil {
		r.p.free(m)
		return err
	}
	r.p.a.Append(w, r.p.a.Detach(h, 1))
	r.p.a.Append(w, m)
	r.p.setKind(h, Multiplication)
	r.p.a.Append(h, w)
	if err := r.power(w); err != nil {
		return err
	}
	return r.shallow(h)
}

// squareRoot rewrites √x as x^(1/2).
func (r *reducer) squareRoot(h arena.Handle) error {
	half, err := r.newRat(ratHalf)
	if err != nil {
		return err
	}
	r.p.setKind(h, Power)
	r.p.a.Append(h, half)
	return r.power(h)
}

// nthRoot rewrites root(x, n) as x^(n^-1).
func (r *reducer) nthRoot(h arena.Handle) error {
	m, err := r.newInt(-1)
	if err != nil {
		return err
	}
	w, err := r.p.alloc(node{kind: Power})
	if err != nil {
		r.p.free(m)
		return err
	}
	r.p.a.Append(w, r.p.a.Detach(h, 1))
	r.p.a.Append(w, m)
	r.p.setKind(h, Power)
	r.p.a.Append(h, w)
	if err := r.power(w); err != nil {
		return err
	}
	return r.shallow(h)
}
