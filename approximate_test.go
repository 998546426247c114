package symbolic

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
)

var approxOpts = cmp.Options{cmpopts.EquateApprox(1e-12, 1e-9), cmpopts.EquateNaNs()}

func approx64(t *testing.T, src string, symbols Context, cf ComplexFormat, au AngleUnit, opts ...ApproximationOption) Complex[float64] {
	t.Helper()
	p := NewPool(256)
	e := mustParse(t, p, src, ParseFunction("f"))
	v, err := Approximate[float64](context.Background(), e, symbols, cf, au, opts...)
	if err != nil {
		t.Fatalf("couldn't approximate %q: %v", src, err)
	}
	return v
}

func TestApproximate(t *testing.T) {
	undef := UndefinedComplex[float64]()
	cases := []struct {
		src  string
		cf   ComplexFormat
		au   AngleUnit
		want Complex[float64]
	}{
		{"1+2", Cartesian, Radian, Complex[float64]{3, 0}},
		{"2^10", Cartesian, Radian, Complex[float64]{1024, 0}},
		{"7/2", Real, Radian, Complex[float64]{3.5, 0}},
		{"1.25E-3", Real, Radian, Complex[float64]{0.00125, 0}},
		{"sqrt(-4)", Cartesian, Radian, Complex[float64]{0, 2}},
		{"sqrt(-4)", Real, Radian, undef},
		{"i^2", Cartesian, Radian, Complex[float64]{-1, 0}},
		{"abs(3+4i)", Real, Radian, Complex[float64]{5, 0}},
		{"ln(-1)", Cartesian, Radian, Complex[float64]{0, math.Pi}},
		{"ln(-1)", Real, Radian, undef},
		{"ln(0)", Cartesian, Radian, undef},
		{"log(8,2)", Real, Radian, Complex[float64]{3, 0}},
		{"log(1000)", Real, Radian, Complex[float64]{3, 0}},
		{"1/0", Cartesian, Radian, undef},
		{"0^0", Cartesian, Radian, undef},
		{"0^2", Cartesian, Radian, Complex[float64]{0, 0}},
		{"root(-8,3)", Real, Radian, Complex[float64]{-2, 0}},
		{"root(-8,3)", Cartesian, Radian, Complex[float64]{1, math.Sqrt(3)}},
		{"sin(π/2)", Real, Radian, Complex[float64]{1, 0}},
		{"sin(90)", Real, Degree, Complex[float64]{1, 0}},
		{"cos(180)", Real, Degree, Complex[float64]{-1, 0}},
		{"cos(200)", Real, Gradian, Complex[float64]{-1, 0}},
		{"tan(90)", Real, Degree, undef},
		{"asin(1)", Real, Degree, Complex[float64]{90, 0}},
		{"atan(1)", Real, Radian, Complex[float64]{math.Pi / 4, 0}},
		{"cosh(0)", Real, Radian, Complex[float64]{1, 0}},
		{"5!", Real, Radian, Complex[float64]{120, 0}},
		{"(-1)!", Real, Radian, undef},
		{"binomial(5,2)", Real, Radian, Complex[float64]{10, 0}},
		{"permute(5,2)", Real, Radian, Complex[float64]{20, 0}},
		{"quo(-7,2)", Real, Radian, Complex[float64]{-4, 0}},
		{"rem(-7,2)", Real, Radian, Complex[float64]{1, 0}},
		{"gcd(12,18)", Real, Radian, Complex[float64]{6, 0}},
		{"lcm(4,6)", Real, Radian, Complex[float64]{12, 0}},
		{"floor(-2.5)", Real, Radian, Complex[float64]{-3, 0}},
		{"ceil(-2.5)", Real, Radian, Complex[float64]{-2, 0}},
		{"frac(2.25)", Real, Radian, Complex[float64]{0.25, 0}},
		{"round(2.5)", Real, Radian, Complex[float64]{3, 0}},
		{"sign(-3)", Real, Radian, Complex[float64]{-1, 0}},
		{"re(3+4i)", Cartesian, Radian, Complex[float64]{3, 0}},
		{"im(3+4i)", Cartesian, Radian, Complex[float64]{4, 0}},
		{"conj(3+4i)", Cartesian, Radian, Complex[float64]{3, -4}},
		{"arg(i)", Cartesian, Degree, Complex[float64]{90, 0}},
		{"complex(1,2)", Cartesian, Radian, Complex[float64]{1, 2}},
		{"sum(k,k,1,100)", Real, Radian, Complex[float64]{5050, 0}},
		{"product(k,k,1,5)", Real, Radian, Complex[float64]{120, 0}},
		{"sum(k,k,1,20000)", Real, Radian, undef},
		{"int(t^2,t,0,3)", Real, Radian, Complex[float64]{9, 0}},
		{"int(t,t,2,2)", Real, Radian, Complex[float64]{0, 0}},
		{"diff(t^2,t,3)", Real, Radian, Complex[float64]{6, 0}},
		{"det([1,2;3,4])", Real, Radian, Complex[float64]{-2, 0}},
		{"trace([1,2;3,4])", Real, Radian, Complex[float64]{5, 0}},
		{"det(7)", Real, Radian, Complex[float64]{7, 0}},
		{"det([1,2])", Real, Radian, undef},
		{"[1,2]", Real, Radian, undef},
		{"x", Real, Radian, undef},
		{"undef", Real, Radian, undef},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			got := approx64(t, c.src, nil, c.cf, c.au)
			if diff := cmp.Diff(c.want, got, approxOpts); diff != "" {
				t.Errorf("wrong value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApproximateSymbols(t *testing.T) {
	defs := NewPool(64)
	tbl := NewSymbolTable(
		SetVar("a", mustParse(t, defs, "3")),
		SetVar("b", mustParse(t, defs, "c")),
		SetVar("c", mustParse(t, defs, "b")),
	)
	tbl.SetFunction("f", mustParse(t, defs, "x+1"))
	cases := []struct {
		src  string
		want Complex[float64]
	}{
		{"a^2", Complex[float64]{9, 0}},
		{"f(2)", Complex[float64]{3, 0}},
		{"f(a)", Complex[float64]{4, 0}},
		{"sum(a,a,1,2)", Complex[float64]{3, 0}},
		{"b", UndefinedComplex[float64]()},
		{"g", UndefinedComplex[float64]()},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			got := approx64(t, c.src, tbl, Real, Radian)
			if diff := cmp.Diff(c.want, got, approxOpts); diff != "" {
				t.Errorf("wrong value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApproximateSingle(t *testing.T) {
	p := NewPool(16)
	e := mustParse(t, p, "1/3")
	got, err := Approximate[float32](context.Background(), e, nil, Real, Radian)
	if err != nil {
		t.Fatal(err)
	}
	if want := float32(1.0 / 3); got.Re != want || got.Im != 0 {
		t.Errorf("wrong value: want %v, got %v", want, got)
	}
	u, err := Approximate[float32](context.Background(), mustParse(t, p, "1/0"), nil, Real, Radian)
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsUndefined() {
		t.Errorf("1/0 approximated to %v", u)
	}
}

type gauge float32

func TestApproximateNamedSingle(t *testing.T) {
	p := NewPool(16)
	// The angle rounds onto the pole only in single precision.
	e := mustParse(t, p, "tan(1.5707963)")
	d, err := Approximate[float64](context.Background(), e, nil, Real, Radian)
	if err != nil {
		t.Fatal(err)
	}
	if d.IsUndefined() {
		t.Errorf("double precision gave %v", d)
	}
	got, err := Approximate[gauge](context.Background(), e, nil, Real, Radian)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsUndefined() {
		t.Errorf("named single type gave %v", got)
	}
}

func TestApproximateTangentPoles(t *testing.T) {
	cases := []struct {
		src  string
		au   AngleUnit
		pole bool
	}{
		{"tan(π/2)", Radian, true},
		{"tan(3π/2)", Radian, true},
		{"tan(-π/2)", Radian, true},
		{"tan(100)", Gradian, true},
		{"tan(π/4)", Radian, false},
		{"tan(1.5707)", Radian, false},
		{"tan(89)", Degree, false},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(16)
			e := mustParse(t, p, c.src)
			d, err := Approximate[float64](context.Background(), e, nil, Real, c.au)
			if err != nil {
				t.Fatal(err)
			}
			s, err := Approximate[float32](context.Background(), e, nil, Real, c.au)
			if err != nil {
				t.Fatal(err)
			}
			if d.IsUndefined() != c.pole || s.IsUndefined() != c.pole {
				t.Fatalf("pole should be %v: got %v in double, %v in single", c.pole, d, s)
			}
			if !c.pole && math.Signbit(d.Re) != math.Signbit(float64(s.Re)) {
				t.Errorf("precisions disagree: %v in double, %v in single", d, s)
			}
		})
	}
}

func TestApproximateSeeded(t *testing.T) {
	for _, src := range []string{"random()", "randint(1,6)", "random()+randint(-3,3)"} {
		t.Run(src, func(t *testing.T) {
			a := approx64(t, src, nil, Real, Radian, WithSeed(42))
			b := approx64(t, src, nil, Real, Radian, WithSeed(42))
			if a != b {
				t.Errorf("same seed gave %v and %v", a, b)
			}
			r := rand.New(rand.NewPCG(42, 42))
			c := approx64(t, src, nil, Real, Radian, WithRand(r))
			if c != a {
				t.Errorf("same source gave %v and %v", a, c)
			}
		})
	}
	v := approx64(t, "randint(1,6)", nil, Real, Radian, WithSeed(7))
	if v.Re < 1 || v.Re > 6 || v.Re != math.Trunc(v.Re) {
		t.Errorf("randint out of range: %v", v)
	}
	if u := approx64(t, "randint(6,1)", nil, Real, Radian); !u.IsUndefined() {
		t.Errorf("empty randint range gave %v", u)
	}
}

func TestApproximateInterrupted(t *testing.T) {
	p := NewPool(16)
	e := mustParse(t, p, "sum(k,k,1,1000)")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := Approximate[float64](ctx, e, nil, Real, Radian)
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("wrong error: want ErrInterrupted, got %v", err)
	}
	if !v.IsUndefined() {
		t.Errorf("interrupted approximation gave %v", v)
	}
}

func TestApproximateInterruptedMidway(t *testing.T) {
	cases := []string{
		"sum(k^2,k,1,100)",
		"int(x^2,x,0,1)+sin(π/3)",
		"diff(x^3,x,2)*product(k,k,1,5)",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			p := NewPool(64)
			e := mustParse(t, p, src)
			before, err := e.Clone()
			if err != nil {
				t.Fatal(err)
			}
			live := p.Live()
			want, err := Approximate[float64](context.Background(), e, nil, Real, Radian)
			if err != nil {
				t.Fatal(err)
			}
			for n := 1; n <= 60; n++ {
				v, err := Approximate[float64](newCountdown(t, n), e, nil, Real, Radian)
				switch {
				case err == nil:
					if diff := cmp.Diff(want, v, approxOpts); diff != "" {
						t.Errorf("%d polls: wrong value (-want +got):\n%s", n, diff)
					}
				case !errors.Is(err, ErrInterrupted):
					t.Errorf("%d polls: wrong error: want ErrInterrupted, got %v", n, err)
				case !v.IsUndefined():
					t.Errorf("%d polls: interrupted approximation gave %v", n, v)
				}
			}
			if !e.Identical(before) || p.Live() != live {
				t.Errorf("approximation changed %v to %v", before, e)
			}
			checkPool(t, p)
		})
	}
}

func TestComplexToExpression(t *testing.T) {
	cases := []struct {
		name string
		c    Complex[float64]
		cf   ComplexFormat
		want string
	}{
		{"real", Complex[float64]{3, 0}, Real, "3"},
		{"nonreal", Complex[float64]{1, 2}, Real, "nonreal"},
		{"undef", UndefinedComplex[float64](), Cartesian, "undef"},
		{"imaginary", Complex[float64]{0, 2}, Cartesian, "2×i"},
		{"cartesian", Complex[float64]{1, 2}, Cartesian, "1+2×i"},
		{"polar", Complex[float64]{0, 2}, Polar, "2×e^(1.5707963267948966×i)"},
		{"polarreal", Complex[float64]{2.5, 0}, Polar, "2.5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewPool(16)
			e, err := c.c.ToExpression(p, c.cf)
			if err != nil {
				t.Fatal(err)
			}
			if got := e.String(); got != c.want {
				t.Errorf("wrong expression: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestComplexToExpressionExhausted(t *testing.T) {
	p := NewPool(3)
	_, err := Complex[float64]{1, 2}.ToExpression(p, Cartesian)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("wrong error: want ErrPoolExhausted, got %v", err)
	}
	if p.Live() != 0 {
		t.Errorf("failed build left %d nodes", p.Live())
	}
}
