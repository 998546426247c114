package symbolic

import (
	"context"
	"math/big"
	"time"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// Beautify rewrites a reduced expression into the form people write: sums in
// descending order with subtractions, quotients instead of negative powers,
// roots instead of fractional powers, and prime factorizations for factor.
// It does nothing unless rc targets User. The result is no longer reduced.
func (e *Expression) Beautify(ctx context.Context, rc ReductionContext) (changed bool, err error) {
	if rc.target != User {
		return false, nil
	}
	start := time.Now()
	v := e.p.a.Version()
	r := newReducer(ctx, e.p, rc)
	err = r.beautify(e.h)
	changed = e.p.a.Version() != v
	e.p.finish(ctx, "beautify", e.h, changed, err, start)
	return changed, err
}

// beautify rewrites h and then its operands.
func (r *reducer) beautify(h arena.Handle) error {
	if err := poll(r.ctx); err != nil {
		return err
	}
	var err error
	switch r.p.kind(h) {
	case Addition:
		err = r.beautifyAddition(h)
	case Multiplication:
		err = r.beautifyMultiplication(h)
	case Power:
		err = r.beautifyPower(h)
	case Factor:
		err = r.beautifyFactor(h)
	}
	if err != nil {
		return err
	}
	for i := 0; i < r.p.numChildren(h); i++ {
		if err := r.beautify(r.p.child(h, i)); err != nil {
			return err
		}
	}
	return nil
}

// beautifyAddition sorts a sum in descending order and turns its last
// negative term into a subtraction. Earlier negative terms are handled when
// the operands are beautified.
func (r *reducer) beautifyAddition(h arena.Handle) error {
	if err := r.sortChildren(h, true); err != nil {
		return err
	}
	n := r.p.numChildren(h)
	j := -1
	for i := n - 1; i >= 1; i-- {
		if r.negativeArgument(r.p.child(h, i)) {
			j = i
			break
		}
	}
	if j < 0 {
		return nil
	}
	s, err := r.p.alloc(node{kind: Subtraction})
	if err != nil {
		return err
	}
	left := r.p.child(h, 0)
	if j > 1 {
		left, err = r.p.alloc(node{kind: Addition})
		if err != nil {
			r.p.free(s)
			return err
		}
		for i := 0; i < j; i++ {
			r.p.a.Append(left, r.p.a.Detach(h, 0))
		}
	} else {
		r.p.a.Detach(h, 0)
	}
	t := r.p.a.Detach(h, 0)
	r.negateArgument(t)
	r.p.a.Append(s, left)
	r.p.a.Append(s, t)
	if r.p.numChildren(h) == 0 {
		r.p.become(h, s)
		return nil
	}
	r.p.a.Insert(h, 0, s)
	return nil
}

// beautifyMultiplication writes a negative coefficient as an opposite and
// moves factors with negative exponents into a denominator.
func (r *reducer) beautifyMultiplication(h arena.Handle) error {
	if r.negativeArgument(h) {
		m, err := r.p.alloc(node{kind: Multiplication})
		if err != nil {
			return err
		}
		for r.p.numChildren(h) > 0 {
			r.p.a.Append(m, r.p.a.Detach(h, 0))
		}
		r.negateArgument(m)
		r.p.setKind(h, Opposite)
		r.p.a.Append(h, m)
		// The operand is beautified as a product with the recursion.
		return nil
	}
	n := r.p.numChildren(h)
	var num *big.Int
	if q, ok := r.rat(r.p.child(h, 0)); ok && !q.IsInt() {
		num = q.Num()
	}
	toDen := make([]bool, n)
	split := num != nil
	for i := range toDen {
		c := r.p.child(h, i)
		if r.p.kind(c) != Power {
			continue
		}
		if x, ok := r.rat(r.p.child(c, 1)); ok && x.Sign() < 0 {
			toDen[i] = true
			split = true
		}
	}
	if !split {
		return nil
	}
	var cd, cn arena.Handle
	if num != nil {
		var err error
		cd, err = r.newRat(new(big.Rat).SetInt(r.p.node(r.p.child(h, 0)).rat.Denom()))
		if err != nil {
			return err
		}
		if num.Cmp(bigOne) != 0 {
			cn, err = r.newRat(new(big.Rat).SetInt(num))
			if err != nil {
				r.p.free(cd)
				return err
			}
		}
	}
	nm, err := r.p.alloc(node{kind: Multiplication})
	if err != nil {
		r.p.free(cd, cn)
		return err
	}
	dm, err := r.p.alloc(node{kind: Multiplication})
	if err != nil {
		r.p.free(cd, cn, nm)
		return err
	}
	one, err := r.newInt(1)
	if err != nil {
		r.p.free(cd, cn, nm, dm)
		return err
	}
	if !cd.IsNil() {
		r.p.a.Append(dm, cd)
	}
	if !cn.IsNil() {
		r.p.a.Append(nm, cn)
	}
	for i := 0; i < n; i++ {
		c := r.p.a.Detach(h, 0)
		switch {
		case num != nil && i == 0:
			r.p.free(c)
		case toDen[i]:
			r.invertPower(c)
			r.p.a.Append(dm, c)
		default:
			r.p.a.Append(nm, c)
		}
	}
	switch r.p.numChildren(nm) {
	case 0:
		r.p.become(nm, one)
	case 1:
		r.p.free(one)
		r.p.becomeChild(nm, 0)
	default:
		r.p.free(one)
	}
	if r.p.numChildren(dm) == 1 {
		r.p.becomeChild(dm, 0)
	}
	r.p.setKind(h, Division)
	r.p.a.Append(h, nm)
	r.p.a.Append(h, dm)
	return nil
}

// invertPower negates the rational exponent of a power in place, dropping an
// exponent of 1.
func (r *reducer) invertPower(h arena.Handle) {
	x := r.p.child(h, 1)
	q := new(big.Rat).Neg(r.p.node(x).rat)
	if q.Cmp(ratOne) == 0 {
		r.p.becomeChild(h, 0)
		return
	}
	r.p.becomeLeaf(x, ratNode(q))
}

// beautifyPower writes negative exponents as quotients and unit fractions as
// roots.
func (r *reducer) beautifyPower(h arena.Handle) error {
	x, ok := r.rat(r.p.child(h, 1))
	if !ok {
		return nil
	}
	switch {
	case x.Sign() < 0:
		one, err := r.newInt(1)
		if err != nil {
			return err
		}
		w, err := r.p.alloc(node{kind: Power})
		if err != nil {
			r.p.free(one)
			return err
		}
		r.p.a.Append(w, r.p.a.Detach(h, 0))
		r.p.a.Append(w, r.p.a.Detach(h, 0))
		r.invertPower(w)
		r.p.setKind(h, Division)
		r.p.a.Append(h, one)
		r.p.a.Append(h, w)
	case x.Cmp(ratHalf) == 0:
		r.removeChild(h, 1)
		r.p.setKind(h, SquareRoot)
	case x.Num().Cmp(bigOne) == 0 && x.Denom().IsInt64():
		r.p.becomeLeaf(r.p.child(h, 1), intNode(x.Denom().Int64()))
		r.p.setKind(h, NthRoot)
	}
	return nil
}

// beautifyFactor replaces factor(q) with the prime factorization of q.
func (r *reducer) beautifyFactor(h arena.Handle) error {
	q, ok := r.rat(r.p.child(h, 0))
	if !ok {
		return nil
	}
	a := new(big.Rat).Abs(q)
	if a.Sign() == 0 || a.Cmp(ratOne) == 0 {
		r.p.becomeChild(h, 0)
		return nil
	}
	if a.Num().BitLen() > maxIntegerBits/4 || a.Denom().BitLen() > maxIntegerBits/4 {
		r.p.becomeChild(h, 0)
		return nil
	}
	return r.rebuild(h, func() (arena.Handle, error) {
		num, err := r.factorization(a.Num())
		if err != nil {
			return arena.Handle{}, err
		}
		t := num
		if !a.IsInt() {
			den, err := r.factorization(a.Denom())
			if err != nil {
				r.p.free(num)
				return arena.Handle{}, err
			}
			t, err = r.p.build(node{kind: Division}, num, den)
			if err != nil {
				return arena.Handle{}, err
			}
		}
		if q.Sign() < 0 {
			return r.p.build(node{kind: Opposite}, t)
		}
		return t, nil
	})
}

// factorization builds the product of prime powers equal to n > 1.
func (r *reducer) factorization(n *big.Int) (arena.Handle, error) {
	if n.Cmp(bigOne) == 0 {
		return r.newInt(1)
	}
	var fs []arena.Handle
	for _, f := range factorize(n) {
		b, err := r.newRat(new(big.Rat).SetInt(f.p))
		if err != nil {
			r.p.free(fs...)
			return arena.Handle{}, err
		}
		if f.exp > 1 {
			e, err := r.newInt(int64(f.exp))
			if err != nil {
				r.p.free(b)
				r.p.free(fs...)
				return arena.Handle{}, err
			}
			b, err = r.p.build(node{kind: Power}, b, e)
			if err != nil {
				r.p.free(fs...)
				return arena.Handle{}, err
			}
		}
		fs = append(fs, b)
	}
	if len(fs) == 1 {
		return fs[0], nil
	}
	return r.p.build(node{kind: Multiplication}, fs...)
}
