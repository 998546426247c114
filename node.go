package symbolic

import (
	"math"
	"math/big"
)

// node is the payload of an expression tree node. Payload values are never
// mutated once a node is allocated, so clones may share the big numbers.
type node struct {
	kind Kind
	// rat is the value of a Rational.
	rat *big.Rat
	// mant and exp give the value mant×10^exp of a Decimal.
	mant *big.Int
	exp  int
	// f is the value of a Float.
	f float64
	// neg is the sign of an Infinity.
	neg bool
	// name is the name of a Symbol, Function, or Constant.
	name string
	// cols is the number of columns of a Matrix.
	cols int
}

// Names of the mathematical constants.
const (
	ConstantPi = "π"
	ConstantE  = "e"
	ConstantI  = "i"
)

// constantIndex gives the canonical order of constants.
func constantIndex(name string) int {
	switch name {
	case ConstantI:
		return 0
	case ConstantPi:
		return 1
	case ConstantE:
		return 2
	default:
		panic("symbolic: unknown constant " + name)
	}
}

// UnknownX is the name of the unknown in function definitions.
const UnknownX = "x"

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)

	ratZero   = new(big.Rat)
	ratOne    = big.NewRat(1, 1)
	ratMinus1 = big.NewRat(-1, 1)
	ratHalf   = big.NewRat(1, 2)
)

func ratNode(r *big.Rat) node {
	return node{kind: Rational, rat: r}
}

func intNode(n int64) node {
	return node{kind: Rational, rat: new(big.Rat).SetInt64(n)}
}

// decimalRat converts a Decimal payload to an exact rational.
func decimalRat(n node) *big.Rat {
	r := new(big.Rat).SetInt(n.mant)
	if n.exp == 0 {
		return r
	}
	p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(n.exp))), nil)
	if n.exp > 0 {
		return r.Mul(r, new(big.Rat).SetInt(p))
	}
	return r.Quo(r, new(big.Rat).SetInt(p))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
