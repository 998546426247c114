package symbolic

import (
	"math"
	"math/cmplx"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// bodyAt evaluates the body of the binding form h with its variable bound to
// t.
func (ev *evaluator) bodyAt(p *Pool, h arena.Handle, name string, t complex128) complex128 {
	ev.scope = append(ev.scope, binding{name, t})
	v := ev.eval(p, p.child(h, 0))
	ev.scope = ev.scope[:len(ev.scope)-1]
	return v
}

// iterate approximates sum(f, k, a, b) and product(f, k, a, b).
func (ev *evaluator) iterate(p *Pool, h arena.Handle, product bool) complex128 {
	name, ok := p.boundName(h)
	if !ok {
		return undef
	}
	lo, ok1 := realInteger(ev.eval(p, p.child(h, 2)))
	hi, ok2 := realInteger(ev.eval(p, p.child(h, 3)))
	if !ok1 || !ok2 || hi-lo+1 > MaxNumberOfSteps {
		return undef
	}
	acc := complex(0, 0)
	if product {
		acc = 1
	}
	for k := lo; k <= hi; k++ {
		v := ev.bodyAt(p, h, name, complex(k, 0))
		if ev.err != nil {
			return undef
		}
		if product {
			acc *= v
		} else {
			acc += v
		}
	}
	return acc
}

// simpson is the state of one adaptive Simpson integration.
type simpson struct {
	f     func(float64) complex128
	evals int
}

func (s *simpson) at(t float64) complex128 {
	s.evals++
	return s.f(t)
}

func (s *simpson) step(a, b float64, fa, fm, fb, whole complex128, eps float64, depth int) complex128 {
	m := (a + b) / 2
	lm, rm := (a+m)/2, (m+b)/2
	flm, frm := s.at(lm), s.at(rm)
	left := complex((m-a)/6, 0) * (fa + 4*flm + fm)
	right := complex((b-m)/6, 0) * (fm + 4*frm + fb)
	delta := left + right - whole
	if depth <= 0 || s.evals >= MaxNumberOfSteps || cmplx.Abs(delta) <= 15*eps {
		return left + right + delta/15
	}
	return s.step(a, m, fa, flm, fm, left, eps/2, depth-1) + s.step(m, b, fm, frm, fb, right, eps/2, depth-1)
}

// integral approximates int(f, x, a, b) by adaptive Simpson quadrature.
func (ev *evaluator) integral(p *Pool, h arena.Handle) complex128 {
	name, ok := p.boundName(h)
	if !ok {
		return undef
	}
	av, bv := ev.eval(p, p.child(h, 2)), ev.eval(p, p.child(h, 3))
	if !isRealValue(av) || !isRealValue(bv) {
		return undef
	}
	a, b := real(av), real(bv)
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return undef
	}
	if a == b {
		return 0
	}
	s := simpson{f: func(t float64) complex128 { return ev.bodyAt(p, h, name, complex(t, 0)) }}
	eps := 1e-12
	if ev.single {
		eps = 1e-6
	}
	fa, fm, fb := s.at(a), s.at((a+b)/2), s.at(b)
	whole := complex((b-a)/6, 0) * (fa + 4*fm + fb)
	v := s.step(a, b, fa, fm, fb, whole, eps*math.Max(1, math.Abs(b-a)), 50)
	if ev.err != nil || s.evals > MaxNumberOfSteps {
		return undef
	}
	return v
}

// derivative approximates diff(f, x, a) by Richardson extrapolation of
// central differences.
func (ev *evaluator) derivative(p *Pool, h arena.Handle) complex128 {
	const (
		ntab = 10
		con  = 1.4
		con2 = con * con
		safe = 2.0
	)
	name, ok := p.boundName(h)
	if !ok {
		return undef
	}
	av := ev.eval(p, p.child(h, 2))
	if !isRealValue(av) {
		return undef
	}
	x := real(av)
	f := func(t float64) complex128 { return ev.bodyAt(p, h, name, complex(t, 0)) }
	step := 0.01 * math.Max(1, math.Abs(x))
	var tab [ntab][ntab]complex128
	tab[0][0] = (f(x+step) - f(x-step)) / complex(2*step, 0)
	best, errBest := tab[0][0], math.Inf(1)
	for i := 1; i < ntab; i++ {
		step /= con
		tab[0][i] = (f(x+step) - f(x-step)) / complex(2*step, 0)
		fac := con2
		for j := 1; j <= i; j++ {
			tab[j][i] = (tab[j-1][i]*complex(fac, 0) - tab[j-1][i-1]) / complex(fac-1, 0)
			fac *= con2
			e := math.Max(cmplx.Abs(tab[j][i]-tab[j-1][i]), cmplx.Abs(tab[j][i]-tab[j-1][i-1]))
			if e <= errBest {
				errBest, best = e, tab[j][i]
			}
		}
		if cmplx.Abs(tab[i][i]-tab[i-1][i-1]) >= safe*errBest {
			break
		}
	}
	tol := 1e-6
	if ev.single {
		tol = 1e-3
	}
	if ev.err != nil || cmplx.IsNaN(best) || errBest > tol*math.Max(1, cmplx.Abs(best)) {
		return undef
	}
	return best
}

// matrixScalar approximates the scalar functions of matrices.
func (ev *evaluator) matrixScalar(p *Pool, h arena.Handle, k Kind) complex128 {
	m := p.child(h, 0)
	if p.kind(m) != Matrix {
		// A scalar is its own 1×1 matrix.
		return ev.eval(p, m)
	}
	cols := p.node(m).cols
	n := p.numChildren(m)
	if n != cols*cols {
		return undef
	}
	entries := ev.args(p, m)
	if k == MatrixTrace {
		var t complex128
		for i := 0; i < cols; i++ {
			t += entries[i*cols+i]
		}
		return t
	}
	return determinant(entries, cols)
}

// determinant computes a determinant by Gaussian elimination with partial
// pivoting. a is overwritten.
func determinant(a []complex128, n int) complex128 {
	det := complex(1, 0)
	for c := 0; c < n; c++ {
		p := c
		for i := c + 1; i < n; i++ {
			if cmplx.Abs(a[i*n+c]) > cmplx.Abs(a[p*n+c]) {
				p = i
			}
		}
		if a[p*n+c] == 0 {
			return 0
		}
		if p != c {
			for j := 0; j < n; j++ {
				a[p*n+j], a[c*n+j] = a[c*n+j], a[p*n+j]
			}
			det = -det
		}
		det *= a[c*n+c]
		for i := c + 1; i < n; i++ {
			f := a[i*n+c] / a[c*n+c]
			for j := c; j < n; j++ {
				a[i*n+j] -= f * a[c*n+j]
			}
		}
	}
	return det
}
