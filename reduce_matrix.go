package symbolic

import (
	"math/big"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// maxIdentitySize bounds identity(n).
const maxIdentitySize = 100

// shape returns the dimensions of a Matrix node.
func (r *reducer) shape(h arena.Handle) (rows, cols int) {
	cols = r.p.node(h).cols
	return r.p.numChildren(h) / cols, cols
}

// ratEntries returns the entries of a Matrix as rationals, if they all are.
func (r *reducer) ratEntries(h arena.Handle) ([][]*big.Rat, bool) {
	rows, cols := r.shape(h)
	m := make([][]*big.Rat, rows)
	for i := range m {
		m[i] = make([]*big.Rat, cols)
		for j := range m[i] {
			q, ok := r.rat(r.p.child(h, i*cols+j))
			if !ok {
				return nil, false
			}
			m[i][j] = new(big.Rat).Set(q)
		}
	}
	return m, true
}

// ratDeterminant computes a determinant by Gaussian elimination. m is
// overwritten.
func ratDeterminant(m [][]*big.Rat) *big.Rat {
	n := len(m)
	det := big.NewRat(1, 1)
	var t big.Rat
	for c := 0; c < n; c++ {
		p := -1
		for i := c; i < n; i++ {
			if m[i][c].Sign() != 0 {
				p = i
				break
			}
		}
		if p < 0 {
			return new(big.Rat)
		}
		if p != c {
			m[p], m[c] = m[c], m[p]
			det.Neg(det)
		}
		det.Mul(det, m[c][c])
		for i := c + 1; i < n; i++ {
			if m[i][c].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Quo(m[i][c], m[c][c])
			for j := c; j < n; j++ {
				m[i][j].Sub(m[i][j], t.Mul(f, m[c][j]))
			}
		}
	}
	return det
}

// ratInverse inverts m by Gauss-Jordan elimination. It reports false if m is
// singular. m is overwritten.
func ratInverse(m [][]*big.Rat) ([][]*big.Rat, bool) {
	n := len(m)
	inv := make([][]*big.Rat, n)
	for i := range inv {
		inv[i] = make([]*big.Rat, n)
		for j := range inv[i] {
			inv[i][j] = new(big.Rat)
		}
		inv[i][i].SetInt64(1)
	}
	var t big.Rat
	for c := 0; c < n; c++ {
		p := -1
		for i := c; i < n; i++ {
			if m[i][c].Sign() != 0 {
				p = i
				break
			}
		}
		if p < 0 {
			return nil, false
		}
		m[p], m[c] = m[c], m[p]
		inv[p], inv[c] = inv[c], inv[p]
		d := new(big.Rat).Inv(m[c][c])
		for j := 0; j < n; j++ {
			m[c][j].Mul(m[c][j], d)
			inv[c][j].Mul(inv[c][j], d)
		}
		for i := 0; i < n; i++ {
			if i == c || m[i][c].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(m[i][c])
			for j := 0; j < n; j++ {
				m[i][j].Sub(m[i][j], t.Mul(f, m[c][j]))
				inv[i][j].Sub(inv[i][j], t.Mul(f, inv[c][j]))
			}
		}
	}
	return inv, true
}

// buildMatrix builds a Matrix of rational entries.
func (r *reducer) buildMatrix(m [][]*big.Rat) (arena.Handle, error) {
	var entries []arena.Handle
	for _, row := range m {
		for _, q := range row {
			if ratTooBig(q) {
				r.p.free(entries...)
				return r.p.alloc(node{kind: Undefined})
			}
			e, err := r.newRat(q)
			if err != nil {
				r.p.free(entries...)
				return arena.Handle{}, err
			}
			entries = append(entries, e)
		}
	}
	return r.p.build(node{kind: Matrix, cols: len(m[0])}, entries...)
}

func (r *reducer) matrixFunction(h arena.Handle) error {
	k := r.p.kind(h)
	arg := r.p.child(h, 0)
	if k == MatrixIdentity {
		return r.identity(h)
	}
	if r.p.kind(arg) != Matrix {
		// Scalars act as 1×1 matrices.
		if !r.p.kind(arg).isNumber() {
			return nil
		}
		switch k {
		case Determinant, MatrixTrace, MatrixTranspose:
			r.p.becomeChild(h, 0)
			return nil
		case MatrixDimension:
			return r.rebuild(h, func() (arena.Handle, error) {
				return r.buildMatrix([][]*big.Rat{{big.NewRat(1, 1), big.NewRat(1, 1)}})
			})
		}
		return nil
	}
	rows, cols := r.shape(arg)
	switch k {
	case MatrixDimension:
		return r.rebuild(h, func() (arena.Handle, error) {
			return r.buildMatrix([][]*big.Rat{{big.NewRat(int64(rows), 1), big.NewRat(int64(cols), 1)}})
		})
	case MatrixTranspose:
		r.transpose(arg)
		r.p.becomeChild(h, 0)
		return nil
	}
	if rows != cols {
		r.setUndefined(h)
		return nil
	}
	switch k {
	case MatrixTrace:
		return r.rebuild(h, func() (arena.Handle, error) {
			diag := make([]arena.Handle, rows)
			for i := range diag {
				diag[i] = r.p.child(arg, i*cols+i)
			}
			d, err := r.cloneAll(diag...)
			if err != nil {
				return arena.Handle{}, err
			}
			return r.addOf(d...)
		})
	case Determinant:
		if m, ok := r.ratEntries(arg); ok {
			r.setRat(h, ratDeterminant(m))
			return nil
		}
		switch rows {
		case 1:
			r.p.becomeChild(arg, 0)
			r.p.becomeChild(h, 0)
		case 2:
			return r.rebuild(h, r.determinant2(arg))
		}
	case MatrixInverse:
		m, ok := r.ratEntries(arg)
		if !ok {
			return nil
		}
		inv, ok := ratInverse(m)
		if !ok {
			r.setUndefined(h)
			return nil
		}
		return r.rebuild(h, func() (arena.Handle, error) { return r.buildMatrix(inv) })
	}
	return nil
}

// determinant2 builds ad-bc for a symbolic 2×2 matrix.
func (r *reducer) determinant2(m arena.Handle) func() (arena.Handle, error) {
	return func() (arena.Handle, error) {
		cs, err := r.cloneAll(r.p.a.Children(m)...)
		if err != nil {
			return arena.Handle{}, err
		}
		ad, err := r.mulOf(cs[0], cs[3])
		if err != nil {
			r.p.free(cs[1], cs[2])
			return arena.Handle{}, err
		}
		bc, err := r.mulOf(cs[1], cs[2])
		if err != nil {
			r.p.free(ad)
			return arena.Handle{}, err
		}
		nbc, err := r.scaled(ratMinus1, bc)
		if err != nil {
			r.p.free(ad)
			return arena.Handle{}, err
		}
		return r.addOf(ad, nbc)
	}
}

// transpose transposes a Matrix in place.
func (r *reducer) transpose(h arena.Handle) {
	rows, cols := r.shape(h)
	entries := make([]arena.Handle, 0, rows*cols)
	for r.p.numChildren(h) > 0 {
		entries = append(entries, r.p.a.Detach(h, 0))
	}
	r.p.a.Set(h, node{kind: Matrix, cols: rows})
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			r.p.a.Append(h, entries[i*cols+j])
		}
	}
}

func (r *reducer) identity(h arena.Handle) error {
	arg := r.p.child(h, 0)
	q, ok := r.rat(arg)
	if !ok {
		return nil
	}
	if !q.IsInt() || q.Sign() <= 0 {
		r.setUndefined(h)
		return nil
	}
	n, ok := r.smallInt(arg)
	if !ok || n > maxIdentitySize {
		return nil
	}
	m := make([][]*big.Rat, n)
	for i := range m {
		m[i] = make([]*big.Rat, n)
		for j := range m[i] {
			m[i][j] = new(big.Rat)
		}
		m[i][i].SetInt64(1)
	}
	return r.rebuild(h, func() (arena.Handle, error) { return r.buildMatrix(m) })
}

// predictionScale is the 95% normal quantile used for prediction intervals.
var predictionScale = big.NewRat(49, 25)

// interval reduces confidence(f, n) to [f-1/√n, f+1/√n] and prediction(p, n)
// to [p-1.96√(p(1-p)/n), p+1.96√(p(1-p)/n)] for rational arguments.
func (r *reducer) interval(h arena.Handle) error {
	f, fok := r.rat(r.p.child(h, 0))
	n, nok := r.rat(r.p.child(h, 1))
	if !fok || !nok {
		return nil
	}
	if f.Sign() < 0 || f.Cmp(ratOne) > 0 || !n.IsInt() || n.Sign() <= 0 {
		r.setUndefined(h)
		return nil
	}
	rad := new(big.Rat).Inv(n)
	coef := ratOne
	if r.p.kind(h) == PredictionInterval {
		rad.Mul(rad, f)
		rad.Mul(rad, new(big.Rat).Sub(ratOne, f))
		coef = predictionScale
	}
	return r.rebuild(h, func() (arena.Handle, error) {
		var bounds [2]arena.Handle
		for i, s := range [...]*big.Rat{ratMinus1, ratOne} {
			w, err := r.ratPow(rad, ratHalf)
			if err != nil {
				r.p.free(bounds[:i]...)
				return arena.Handle{}, err
			}
			t, err := r.scaled(new(big.Rat).Mul(s, coef), w)
			if err != nil {
				r.p.free(bounds[:i]...)
				return arena.Handle{}, err
			}
			c, err := r.newRat(f)
			if err != nil {
				r.p.free(t)
				r.p.free(bounds[:i]...)
				return arena.Handle{}, err
			}
			b, err := r.addOf(c, t)
			if err != nil {
				r.p.free(bounds[:i]...)
				return arena.Handle{}, err
			}
			bounds[i] = b
		}
		return r.p.build(node{kind: Matrix, cols: 2}, bounds[0], bounds[1])
	})
}
