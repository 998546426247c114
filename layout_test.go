package symbolic

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// builder makes expressions for tests, failing the test if the pool runs out.
type builder struct {
	t testing.TB
	p *Pool
}

func (b builder) check(e *Expression, err error) *Expression {
	b.t.Helper()
	if err != nil {
		b.t.Fatal(err)
	}
	return e
}

func (b builder) n(v int64) *Expression {
	b.t.Helper()
	return b.check(b.p.Integer(v))
}

func (b builder) q(num, den int64) *Expression {
	b.t.Helper()
	return b.check(b.p.Rational(num, den))
}

func (b builder) f(v float64) *Expression {
	b.t.Helper()
	return b.check(b.p.Float(v))
}

func (b builder) s(name string) *Expression {
	b.t.Helper()
	return b.check(b.p.Symbol(name))
}

func (b builder) c(name string) *Expression {
	b.t.Helper()
	return b.check(b.p.Constant(name))
}

func (b builder) k(k Kind, children ...*Expression) *Expression {
	b.t.Helper()
	return b.check(b.p.New(k, children...))
}

func TestLayoutString(t *testing.T) {
	cases := []struct {
		name string
		make func(b builder) *Expression
		want string
	}{
		{"int", func(b builder) *Expression { return b.n(-7) }, "-7"},
		{"fraction", func(b builder) *Expression { return b.q(5, 6) }, "5/6"},
		{"negfraction", func(b builder) *Expression { return b.q(-1, 2) }, "-1/2"},
		{"float", func(b builder) *Expression { return b.f(0.25) }, "0.25"},
		{"nan", func(b builder) *Expression { return b.f(math.NaN()) }, "undef"},
		{"inf", func(b builder) *Expression { return b.check(b.p.Infinity(true)) }, "-∞"},
		{"undef", func(b builder) *Expression { return b.check(b.p.Undefined()) }, "undef"},
		{"nonreal", func(b builder) *Expression { return b.check(b.p.Unreal()) }, "nonreal"},
		{"empty", func(b builder) *Expression { return b.check(b.p.Empty()) }, ""},
		{"pi", func(b builder) *Expression { return b.c(ConstantPi) }, "π"},
		{
			"sumproduct",
			func(b builder) *Expression {
				return b.k(Multiplication, b.k(Addition, b.n(2), b.n(-1)), b.n(3))
			},
			"(2+(-1))×3",
		},
		{
			"productsum",
			func(b builder) *Expression {
				return b.k(Addition, b.n(2), b.k(Multiplication, b.n(3), b.n(4)))
			},
			"2+3×4",
		},
		{"juxtapose", func(b builder) *Expression { return b.k(Multiplication, b.n(2), b.s("x")) }, "2x"},
		{"juxtaposepow", func(b builder) *Expression { return b.k(Multiplication, b.n(2), b.k(Power, b.s("x"), b.n(2))) }, "2x^2"},
		{"juxtaposeconst", func(b builder) *Expression { return b.k(Multiplication, b.n(3), b.c(ConstantPi)) }, "3π"},
		{"noexponent", func(b builder) *Expression { return b.k(Multiplication, b.n(2), b.c(ConstantE)) }, "2×e"},
		{"negcoef", func(b builder) *Expression { return b.k(Multiplication, b.n(-2), b.s("x")) }, "-2×x"},
		{"negfactor", func(b builder) *Expression { return b.k(Multiplication, b.s("x"), b.n(-1)) }, "x×(-1)"},
		{"ratcoef", func(b builder) *Expression { return b.k(Multiplication, b.q(1, 2), b.s("x")) }, "1/2×x"},
		{"symbols", func(b builder) *Expression { return b.k(Multiplication, b.s("x"), b.s("y")) }, "x×y"},
		{"ratbase", func(b builder) *Expression { return b.k(Power, b.q(1, 2), b.s("x")) }, "(1/2)^x"},
		{"negbase", func(b builder) *Expression { return b.k(Power, b.n(-2), b.n(2)) }, "(-2)^2"},
		{"powbase", func(b builder) *Expression { return b.k(Power, b.k(Power, b.s("x"), b.n(2)), b.n(3)) }, "(x^2)^3"},
		{"powexp", func(b builder) *Expression { return b.k(Power, b.s("x"), b.k(Power, b.n(2), b.n(3))) }, "x^(2^3)"},
		{"negexp", func(b builder) *Expression { return b.k(Power, b.s("x"), b.n(-1)) }, "x^(-1)"},
		{"callbase", func(b builder) *Expression { return b.k(Power, b.k(Sine, b.s("x")), b.n(2)) }, "sin(x)^2"},
		{"opposum", func(b builder) *Expression { return b.k(Opposite, b.k(Addition, b.s("x"), b.n(1))) }, "-(x+1)"},
		{"oppoopp", func(b builder) *Expression { return b.k(Opposite, b.k(Opposite, b.s("x"))) }, "-(-x)"},
		{"subsub", func(b builder) *Expression { return b.k(Subtraction, b.s("x"), b.k(Subtraction, b.s("y"), b.s("z"))) }, "x-(y-z)"},
		{"subleft", func(b builder) *Expression { return b.k(Subtraction, b.k(Subtraction, b.s("x"), b.s("y")), b.s("z")) }, "x-y-z"},
		{"subneg", func(b builder) *Expression { return b.k(Subtraction, b.s("x"), b.k(Opposite, b.s("y"))) }, "x-(-y)"},
		{"addneg", func(b builder) *Expression { return b.k(Addition, b.k(Opposite, b.s("x")), b.s("y")) }, "-x+y"},
		{"factpow", func(b builder) *Expression { return b.k(Factorial, b.k(Power, b.s("x"), b.n(2))) }, "(x^2)!"},
		{"factfact", func(b builder) *Expression { return b.k(Factorial, b.k(Factorial, b.n(3))) }, "(3!)!"},
		{"divsum", func(b builder) *Expression { return b.k(Division, b.k(Addition, b.s("x"), b.n(1)), b.n(2)) }, "(x+1)/2"},
		{"divcall", func(b builder) *Expression { return b.k(Division, b.k(Sine, b.s("x")), b.s("y")) }, "sin(x)/y"},
		{"divprod", func(b builder) *Expression { return b.k(Division, b.n(1), b.k(Multiplication, b.n(2), b.s("x"))) }, "1/(2x)"},
		{"sqrt", func(b builder) *Expression { return b.k(SquareRoot, b.s("x")) }, "sqrt(x)"},
		{"root", func(b builder) *Expression { return b.k(NthRoot, b.s("x"), b.n(3)) }, "root(x,3)"},
		{"log", func(b builder) *Expression { return b.k(Logarithm, b.s("x"), b.n(2)) }, "log(x,2)"},
		{"abs", func(b builder) *Expression { return b.k(AbsoluteValue, b.n(-2)) }, "abs(-2)"},
		{"sum", func(b builder) *Expression { return b.k(Sum, b.s("k"), b.s("k"), b.n(1), b.s("n")) }, "sum(k,k,1,n)"},
		{"store", func(b builder) *Expression { return b.k(Store, b.k(Addition, b.n(1), b.n(2)), b.s("x")) }, "1+2→x"},
		{"equal", func(b builder) *Expression { return b.k(Equal, b.s("x"), b.n(1)) }, "x=1"},
		{"equalterm", func(b builder) *Expression { return b.k(Addition, b.k(Equal, b.s("x"), b.n(1)), b.n(2)) }, "(x=1)+2"},
		{"equalbase", func(b builder) *Expression { return b.k(Power, b.k(Equal, b.s("x"), b.n(1)), b.n(2)) }, "(x=1)^2"},
		{"negequal", func(b builder) *Expression { return b.k(Opposite, b.k(Equal, b.s("x"), b.n(1))) }, "-(x=1)"},
		{"storefactor", func(b builder) *Expression { return b.k(Multiplication, b.n(2), b.k(Store, b.n(1), b.s("x"))) }, "2×(1→x)"},
		{"equalequal", func(b builder) *Expression { return b.k(Equal, b.k(Equal, b.s("x"), b.n(1)), b.n(2)) }, "(x=1)=2"},
		{"function", func(b builder) *Expression { return b.check(b.p.Function("f", b.s("x"))) }, "f(x)"},
		{"random", func(b builder) *Expression { return b.k(Random) }, "random()"},
		{
			"matrix",
			func(b builder) *Expression { return b.check(b.p.Matrix(2, b.n(1), b.n(2), b.n(3), b.n(4))) },
			"[1,2;3,4]",
		},
		{"column", func(b builder) *Expression { return b.check(b.p.Matrix(1, b.n(1), b.n(2))) }, "[1;2]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewPool(64)
			e := c.make(builder{t, p})
			if got := e.String(); got != c.want {
				t.Errorf("wrong layout: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestCreateLayout(t *testing.T) {
	txt := func(s string) *Layout { return &Layout{Kind: LayoutText, Text: s} }
	lay := func(k LayoutKind, c ...*Layout) *Layout { return &Layout{Kind: k, Children: c} }
	cases := []struct {
		name string
		make func(b builder) *Expression
		want *Layout
	}{
		{"text", func(b builder) *Expression { return b.s("x") }, txt("x")},
		{"fraction", func(b builder) *Expression { return b.q(1, 2) }, lay(LayoutFraction, txt("1"), txt("2"))},
		{
			"negfraction",
			func(b builder) *Expression { return b.q(-3, 4) },
			lay(LayoutHorizontal, txt("-"), lay(LayoutFraction, txt("3"), txt("4"))),
		},
		{
			"power",
			func(b builder) *Expression { return b.k(Power, b.s("x"), b.n(2)) },
			lay(LayoutSuperscript, txt("x"), txt("2")),
		},
		{
			"sqrt",
			func(b builder) *Expression { return b.k(SquareRoot, b.n(2)) },
			lay(LayoutNthRoot, txt("2")),
		},
		{
			"log",
			func(b builder) *Expression { return b.k(Logarithm, b.s("x"), b.n(2)) },
			lay(LayoutHorizontal, lay(LayoutSubscript, txt("log"), txt("2")), lay(LayoutParenthesis, txt("x"))),
		},
		{
			"product",
			func(b builder) *Expression { return b.k(Multiplication, b.k(Addition, b.s("x"), b.n(1)), b.s("y")) },
			lay(LayoutHorizontal,
				lay(LayoutParenthesis, lay(LayoutHorizontal, txt("x"), txt("+"), txt("1"))),
				txt("×"),
				txt("y"),
			),
		},
		{
			"call",
			func(b builder) *Expression { return b.k(GreatCommonDivisor, b.n(4), b.n(6)) },
			lay(LayoutHorizontal, txt("gcd"), lay(LayoutParenthesis, lay(LayoutHorizontal, txt("4"), txt(","), txt("6")))),
		},
		{
			"integral",
			func(b builder) *Expression { return b.k(Integral, b.s("t"), b.s("t"), b.n(0), b.n(1)) },
			lay(LayoutIntegral, txt("t"), txt("t"), txt("0"), txt("1")),
		},
		{
			"matrix",
			func(b builder) *Expression { return b.check(b.p.Matrix(2, b.n(1), b.n(2))) },
			&Layout{Kind: LayoutMatrix, Children: []*Layout{txt("1"), txt("2")}, Columns: 2},
		},
		{"empty", func(b builder) *Expression { return b.check(b.p.Empty()) }, &Layout{Kind: LayoutEmpty}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewPool(64)
			e := c.make(builder{t, p})
			got := e.CreateLayout(DecimalFormat, 0)
			if diff := cmp.Diff(c.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("wrong layout (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLayoutFloatFormats(t *testing.T) {
	cases := []struct {
		name   string
		v      float64
		ff     FloatFormat
		digits int
		want   string
	}{
		{"shortest", 2.0 / 3, DecimalFormat, 0, "0.6666666666666666"},
		{"digits", 2.0 / 3, DecimalFormat, 10, "0.6666666667"},
		{"scientific", 2.0 / 3, ScientificFormat, 3, "6.67E-1"},
		{"engineering", 12345, EngineeringFormat, 0, "12.345E3"},
		{"large", 1e20, DecimalFormat, 0, "1E20"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewPool(4)
			e, err := p.Float(c.v)
			if err != nil {
				t.Fatal(err)
			}
			if got := e.CreateLayout(c.ff, c.digits).String(); got != c.want {
				t.Errorf("wrong text: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestLayoutDetached(t *testing.T) {
	p := NewPool(8)
	e := mustParse(t, p, "x+1")
	l := e.CreateLayout(DecimalFormat, 0)
	e.Release()
	if got := l.String(); got != "x+1" {
		t.Errorf("layout changed after release: %q", got)
	}
}

func TestLayoutKindString(t *testing.T) {
	for k := LayoutHorizontal; k <= LayoutEmpty; k++ {
		if s := k.String(); s == "" || s[0] == 'L' {
			t.Errorf("no name for layout kind %d: %q", k, s)
		}
	}
	if s := LayoutKind(200).String(); s != "LayoutKind(200)" {
		t.Errorf("wrong name for invalid kind: %q", s)
	}
}
