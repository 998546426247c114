package symbolic

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPolynomialDegree(t *testing.T) {
	defs := NewPool(32)
	tbl := NewSymbolTable(SetVar("y", mustParse(t, defs, "x^3")))
	cases := []struct {
		src  string
		ctx  Context
		want int
	}{
		{"3", nil, 0},
		{"x", nil, 1},
		{"x^2+1", nil, 2},
		{"x*z^2", nil, 1},
		{"(x+1)^3", nil, 3},
		{"x/2", nil, 1},
		{"2/x", nil, -1},
		{"x^(-1)", nil, -1},
		{"x^z", nil, -1},
		{"sqrt(x)", nil, -1},
		{"sin(z)", nil, 0},
		{"sum(x,x,1,3)", nil, 0},
		{"y", tbl, 3},
		{"y*x", tbl, 4},
		{"undef", nil, -1},
		{"[x]", nil, -1},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(64)
			e := mustParse(t, p, c.src)
			if got := e.PolynomialDegree(c.ctx, "x"); got != c.want {
				t.Errorf("wrong degree: want %d, got %d", c.want, got)
			}
		})
	}
}

func TestPolynomialCoefficients(t *testing.T) {
	cases := []struct {
		src  string
		want []string
	}{
		{"2x^2-3x+1", []string{"1", "-3", "2"}},
		{"(x+1)^2", []string{"1", "2", "1"}},
		{"a*x", []string{"0", "a"}},
		{"5", []string{"5"}},
		{"x^3", nil},
		{"1/x", nil},
		{"sin(x)", nil},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(256)
			e := mustParse(t, p, c.src)
			before, err := e.Clone()
			if err != nil {
				t.Fatal(err)
			}
			live := p.Live()
			cs, err := e.PolynomialCoefficients(context.Background(), systemCtx, "x")
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, c := range cs {
				got = append(got, c.String())
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong coefficients (-want +got):\n%s", diff)
			}
			if !e.Identical(before) {
				t.Errorf("expression changed to %v", e)
			}
			for _, c := range cs {
				c.Release()
			}
			if p.Live() != live {
				t.Errorf("coefficients leaked %d nodes", p.Live()-live)
			}
		})
	}
}

func TestDenominator(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x/2", "2"},
		{"3x/4", "4"},
		{"2/3", "3"},
		{"1/(x*y^2)", "x×y^2"},
		{"x^(-1/2)", "x^(1/2)"},
		{"x+1", "<nil>"},
		{"5", "<nil>"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(128)
			e := mustParse(t, p, c.src)
			d, err := e.Denominator(context.Background(), systemCtx)
			if err != nil {
				t.Fatal(err)
			}
			got := "<nil>"
			if d != nil {
				got = d.String()
			}
			if got != c.want {
				t.Errorf("wrong denominator: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestCharacteristicXRange(t *testing.T) {
	cases := []struct {
		src  string
		au   AngleUnit
		want float64
	}{
		{"sin(x)", Radian, 2 * math.Pi},
		{"tan(x)", Radian, math.Pi},
		{"cos(2x)", Degree, 180},
		{"sin(x)+cos(x/2)", Radian, 4 * math.Pi},
		{"3sin(x)", Gradian, 400},
		{"x^2", Radian, math.NaN()},
		{"sin(x^2)", Radian, math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(64)
			e := mustParse(t, p, c.src)
			got := e.CharacteristicXRange(nil, c.au)
			if math.IsNaN(c.want) {
				if !math.IsNaN(got) {
					t.Errorf("want NaN, got %v", got)
				}
				return
			}
			if math.Abs(got-c.want) > 1e-9*c.want {
				t.Errorf("wrong range: want %v, got %v", c.want, got)
			}
		})
	}
}
