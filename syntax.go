package symbolic

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// maxLiteralExponent bounds the decimal exponent of number literals.
const maxLiteralExponent = 4096

// syntax is a node of a parse tree. The parser builds a whole syntax tree
// before placing it in a pool, so a parse error never touches the pool.
type syntax struct {
	kind Kind
	// text is the literal of a number or the name of a symbol, function, or
	// constant.
	text string
	// neg negates a number literal.
	neg bool
	// cols is the number of columns of a matrix.
	cols int
	// pos is the input position of the token that produced the node.
	pos int

	children []*syntax
}

func (s *syntax) String() string {
	var b strings.Builder
	s.fmt(&b, false)
	return b.String()
}

// fmt writes s with alternating round and square brackets around each node.
func (s *syntax) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch s.kind {
	case Rational, Decimal, Infinity:
		if s.neg {
			b.WriteByte('-')
		}
		b.WriteString(s.text)
	case Symbol, Constant:
		b.WriteString(s.text)
	case Function:
		b.WriteString(s.text)
		s.fmtargs(b, !square)
	case Opposite:
		b.WriteByte('-')
		s.children[0].fmt(b, !square)
	case Factorial:
		s.children[0].fmt(b, !square)
		b.WriteByte('!')
	case Addition, Subtraction, Multiplication, MultiplicationImplicit, Division, Power, Store, Equal:
		op := infixOps[s.kind]
		for i, c := range s.children {
			if i > 0 {
				b.WriteString(" " + op + " ")
			}
			c.fmt(b, !square)
		}
	case Matrix:
		b.WriteString("matrix" + strconv.Itoa(s.cols))
		s.fmtargs(b, !square)
	default:
		if kinds[s.kind].fn == "" && len(s.children) == 0 {
			b.WriteString(strings.ToLower(s.kind.String()))
			return
		}
		b.WriteString(kinds[s.kind].fn)
		s.fmtargs(b, !square)
	}
}

func (s *syntax) fmtargs(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	for i, c := range s.children {
		if i > 0 {
			b.WriteString(", ")
		}
		c.fmt(b, !square)
	}
}

var infixOps = map[Kind]string{
	Addition:               "+",
	Subtraction:            "-",
	Multiplication:         "*",
	MultiplicationImplicit: "",
	Division:               "/",
	Power:                  "^",
	Store:                  "→",
	Equal:                  "=",
}

// payload creates the node payload of s.
func (s *syntax) payload() (node, error) {
	switch s.kind {
	case Rational:
		v, ok := new(big.Int).SetString(s.text, 10)
		if !ok {
			return node{}, &LexError{Text: s.text, Kind: "number", Col: s.pos}
		}
		if s.neg {
			v.Neg(v)
		}
		return ratNode(new(big.Rat).SetInt(v)), nil
	case Decimal:
		return s.decimal()
	case Infinity:
		return node{kind: Infinity, neg: s.neg}, nil
	case Symbol, Function, Constant:
		return node{kind: s.kind, name: s.text}, nil
	case Matrix:
		return node{kind: Matrix, cols: s.cols}, nil
	default:
		return node{kind: s.kind}, nil
	}
}

// decimal converts a literal like 1.25E-3 to mantissa and exponent.
func (s *syntax) decimal() (node, error) {
	bad := &LexError{Text: s.text, Kind: "number", Col: s.pos}
	m, e, _ := strings.Cut(strings.ToLower(s.text), "e")
	exp := 0
	if e != "" {
		var err error
		exp, err = strconv.Atoi(e)
		if err != nil || exp < -maxLiteralExponent || exp > maxLiteralExponent {
			return node{}, bad
		}
	}
	whole, frac, _ := strings.Cut(m, ".")
	mant, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return node{}, bad
	}
	if s.neg {
		mant.Neg(mant)
	}
	return node{kind: Decimal, mant: mant, exp: exp - len(frac)}, nil
}

// place allocates the tree s in p. On failure nothing is left allocated.
func (p *Pool) place(s *syntax) (arena.Handle, error) {
	n, err := s.payload()
	if err != nil {
		return arena.Handle{}, err
	}
	h, err := p.alloc(n)
	if err != nil {
		return arena.Handle{}, err
	}
	for _, c := range s.children {
		k, err := p.place(c)
		if err != nil {
			p.a.Free(h)
			return arena.Handle{}, err
		}
		p.a.Append(h, k)
	}
	return h, nil
}
