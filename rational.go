package symbolic

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// maxIntegerBits bounds the size of exact integers the engine creates. Folds
// that would exceed it are left unreduced or become Undefined.
const maxIntegerBits = 1024

// maxRootIndex bounds the index of roots the engine tries to extract exactly.
const maxRootIndex = 64

// maxFactorTrials bounds trial division when factoring.
const maxFactorTrials = 1 << 20

func ratTooBig(q *big.Rat) bool {
	return q.Num().BitLen() > maxIntegerBits || q.Denom().BitLen() > maxIntegerBits
}

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// primes lists the primes below 1000.
var primes = sieve(1000)

func sieve(n int) []int64 {
	composite := make([]bool, n)
	var r []int64
	for i := 2; i < n; i++ {
		if composite[i] {
			continue
		}
		r = append(r, int64(i))
		for j := i * i; j < n; j += i {
			composite[j] = true
		}
	}
	return r
}

// ratPowInt computes q^n exactly. It reports false if q is zero with a
// negative exponent or if the result would be too large.
func ratPowInt(q *big.Rat, n *big.Int) (*big.Rat, bool) {
	if !n.IsInt64() {
		return nil, false
	}
	k := n.Int64()
	neg := k < 0
	if neg {
		k = -k
		if q.Sign() == 0 {
			return nil, false
		}
	}
	bits := q.Num().BitLen()
	if b := q.Denom().BitLen(); b > bits {
		bits = b
	}
	if bits > 1 && int64(bits-1)*k > maxIntegerBits {
		return nil, false
	}
	e := big.NewInt(k)
	num := new(big.Int).Exp(q.Num(), e, nil)
	den := new(big.Int).Exp(q.Denom(), e, nil)
	if neg {
		num, den = den, num
	}
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	r := new(big.Rat).SetFrac(num, den)
	if ratTooBig(r) {
		return nil, false
	}
	return r, true
}

// integerRoot returns the q-th root of n ≥ 0 if n is a perfect q-th power.
// The candidate comes from a high-precision floating-point root and is
// checked exactly.
func integerRoot(n *big.Int, q int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	if n.Sign() == 0 || n.Cmp(bigOne) == 0 || q == 1 {
		return new(big.Int).Set(n), true
	}
	prec := uint(n.BitLen() + 64)
	x := new(big.Float).SetPrec(prec).SetInt(n)
	e := new(big.Float).SetPrec(prec).SetRat(big.NewRat(1, int64(q)))
	bigfloat.Pow(x, x, e)
	x.Add(x, big.NewFloat(0.5).SetPrec(prec))
	c, _ := x.Int(nil)
	k := big.NewInt(int64(q))
	for _, d := range [...]int64{0, -1, 1} {
		t := new(big.Int).Add(c, big.NewInt(d))
		if t.Sign() < 0 {
			continue
		}
		if new(big.Int).Exp(t, k, nil).Cmp(n) == 0 {
			return t, true
		}
	}
	return nil, false
}

// extractRoot writes n ≥ 1 as out^q·in, pulling out every q-th power of a
// small prime and the remaining cofactor if it is itself a perfect power.
func extractRoot(n *big.Int, q int) (out, in *big.Int) {
	out = big.NewInt(1)
	in = new(big.Int).Set(n)
	k := big.NewInt(int64(q))
	var m, rem big.Int
	for _, p := range primes {
		bp := big.NewInt(p)
		pq := new(big.Int).Exp(bp, k, nil)
		if pq.Cmp(in) > 0 {
			break
		}
		e := 0
		for {
			m.QuoRem(in, bp, &rem)
			if rem.Sign() != 0 {
				break
			}
			in.Set(&m)
			e++
		}
		if e >= q {
			out.Mul(out, new(big.Int).Exp(bp, big.NewInt(int64(e/q)), nil))
		}
		if r := e % q; r > 0 {
			in.Mul(in, new(big.Int).Exp(bp, big.NewInt(int64(r)), nil))
		}
	}
	if in.Cmp(bigOne) > 0 {
		if r, ok := integerRoot(in, q); ok {
			out.Mul(out, r)
			in.SetInt64(1)
		}
	}
	return out, in
}

// integerLog returns k such that b^k = x for integers x ≥ 1 and b ≥ 2, if one
// exists. The candidate comes from floating-point logarithms and is checked
// exactly.
func integerLog(x, b *big.Int) (int64, bool) {
	if x.Cmp(bigOne) == 0 {
		return 0, true
	}
	prec := uint(x.BitLen() + 64)
	lx := bigfloat.Log(new(big.Float).SetPrec(prec), new(big.Float).SetPrec(prec).SetInt(x))
	lb := bigfloat.Log(new(big.Float).SetPrec(prec), new(big.Float).SetPrec(prec).SetInt(b))
	lx.Quo(lx, lb)
	lx.Add(lx, big.NewFloat(0.5).SetPrec(prec))
	c, _ := lx.Int64()
	if c <= 0 {
		return 0, false
	}
	if new(big.Int).Exp(b, big.NewInt(c), nil).Cmp(x) == 0 {
		return c, true
	}
	return 0, false
}

// factorial computes n! exactly, reporting false if it is too large.
func factorial(n int64) (*big.Int, bool) {
	r := big.NewInt(1)
	for i := int64(2); i <= n; i++ {
		r.Mul(r, big.NewInt(i))
		if r.BitLen() > maxIntegerBits {
			return nil, false
		}
	}
	return r, true
}

// fallingFactorial computes n·(n-1)···(n-k+1).
func fallingFactorial(n, k int64) (*big.Int, bool) {
	r := big.NewInt(1)
	for i := int64(0); i < k; i++ {
		r.Mul(r, big.NewInt(n-i))
		if r.BitLen() > maxIntegerBits {
			return nil, false
		}
	}
	return r, true
}

// primeFactor is one term p^exp of a factorization.
type primeFactor struct {
	p   *big.Int
	exp int
}

// factorize factors n ≥ 1 by trial division. If the trial budget runs out, the
// last factor is the unfactored cofactor, which may be composite.
func factorize(n *big.Int) []primeFactor {
	var r []primeFactor
	rest := new(big.Int).Set(n)
	var q, m big.Int
	try := func(d *big.Int) {
		e := 0
		for {
			q.QuoRem(rest, d, &m)
			if m.Sign() != 0 {
				break
			}
			rest.Set(&q)
			e++
		}
		if e > 0 {
			r = append(r, primeFactor{p: new(big.Int).Set(d), exp: e})
		}
	}
	try(bigTwo)
	d := big.NewInt(3)
	var sq big.Int
	for trials := 0; trials < maxFactorTrials; trials++ {
		if sq.Mul(d, d).Cmp(rest) > 0 {
			break
		}
		try(d)
		d.Add(d, bigTwo)
	}
	if rest.Cmp(bigOne) > 0 {
		r = append(r, primeFactor{p: rest, exp: 1})
	}
	return r
}
