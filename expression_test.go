package symbolic

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// mustParse parses src into p, failing the test on error.
func mustParse(t testing.TB, p *Pool, src string, opts ...ParseOption) *Expression {
	t.Helper()
	e, err := ParseString(p, src, opts...)
	if err != nil {
		t.Fatalf("couldn't parse %q: %v", src, err)
	}
	return e
}

// reduced parses src and reduces it for rc.
func reduced(t testing.TB, p *Pool, src string, rc ReductionContext) *Expression {
	t.Helper()
	e := mustParse(t, p, src)
	if _, err := e.Reduce(context.Background(), rc); err != nil {
		t.Fatalf("couldn't reduce %q: %v", src, err)
	}
	return e
}

// checkPool fails the test if the pool's invariants are broken.
func checkPool(t testing.TB, p *Pool) {
	t.Helper()
	if err := p.Validate(); err != nil {
		t.Errorf("pool is inconsistent: %v", err)
	}
}

var (
	systemCtx    = NewReductionContext(nil, Cartesian, Radian, System, true)
	userCtx      = NewReductionContext(nil, Cartesian, Radian, User, true)
	realSystemCx = NewReductionContext(nil, Real, Radian, System, true)
)

func TestBuildersConsumeOperands(t *testing.T) {
	p := NewPool(16)
	x, err := p.Symbol("x")
	if err != nil {
		t.Fatal(err)
	}
	two, err := p.Integer(2)
	if err != nil {
		t.Fatal(err)
	}
	m, err := p.New(Multiplication, two, x)
	if err != nil {
		t.Fatal(err)
	}
	if !x.IsNil() || !two.IsNil() {
		t.Errorf("operands not consumed: x=%v two=%v", x, two)
	}
	if got := m.String(); got != "2x" {
		t.Errorf("wrong product: want 2x, got %q", got)
	}
	if p.Live() != 3 {
		t.Errorf("wrong live count: want 3, got %d", p.Live())
	}
	m.Release()
	if p.Live() != 0 {
		t.Errorf("nodes leaked: %d live", p.Live())
	}
	checkPool(t, p)
}

func TestBuildersCopyShared(t *testing.T) {
	p := NewPool(16)
	x, err := p.Symbol("x")
	if err != nil {
		t.Fatal(err)
	}
	y := x.Share()
	s, err := p.New(Addition, x, y)
	if err != nil {
		t.Fatal(err)
	}
	// Shared operands are copied, and the handles are released.
	if !x.IsNil() || !y.IsNil() {
		t.Fatal("shared operands were not released")
	}
	if got := s.String(); got != "x+x" {
		t.Errorf("wrong sum: want x+x, got %q", got)
	}
	if p.Live() != 3 {
		t.Errorf("wrong live count: want 3, got %d", p.Live())
	}
	s.Release()
	if p.Live() != 0 {
		t.Errorf("nodes leaked: %d live", p.Live())
	}
	checkPool(t, p)
}

func TestBuilderExhaustion(t *testing.T) {
	p := NewPool(2)
	a, err := p.Integer(1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Integer(2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.New(Addition, a, b)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("want ErrPoolExhausted, got %v", err)
	}
	if a.IsNil() || b.IsNil() {
		t.Error("operands consumed by failed builder")
	}
	if p.Live() != 2 {
		t.Errorf("wrong live count after failure: %d", p.Live())
	}
	checkPool(t, p)
}

func TestCloneImportIdentical(t *testing.T) {
	p := NewPool(64)
	q := NewPool(64)
	e := mustParse(t, p, "2x^3+sin(y)/4")
	c, err := e.Clone()
	if err != nil {
		t.Fatal(err)
	}
	i, err := q.Import(e)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Identical(c) || !e.Identical(i) {
		t.Errorf("copies differ: %v %v %v", e, c, i)
	}
	if _, err := c.Reduce(context.Background(), systemCtx); err != nil {
		t.Fatal(err)
	}
	if got := e.String(); got != "2x^3+sin(y)/4" {
		t.Errorf("reducing a clone changed the original: %q", got)
	}
	checkPool(t, p)
	checkPool(t, q)
}

func TestSharedHandlesSeeRewrites(t *testing.T) {
	p := NewPool(64)
	e := mustParse(t, p, "x+x")
	f := e.Share()
	if _, err := e.Reduce(context.Background(), systemCtx); err != nil {
		t.Fatal(err)
	}
	if !e.Identical(f) {
		t.Errorf("shared handle did not see rewrite: %v vs %v", e, f)
	}
	if f.Kind() != Multiplication {
		t.Errorf("want Multiplication, got %v", f.Kind())
	}
}

func TestStaleBorrowPanics(t *testing.T) {
	p := NewPool(64)
	e := mustParse(t, p, "x+1")
	c := e.Child(0)
	e.Release()
	defer func() {
		r := recover()
		if _, ok := r.(*arena.StaleHandleError); !ok {
			t.Errorf("wrong panic using a view of a freed node: %#v", r)
		}
	}()
	_ = c.Kind()
}

func TestAccessors(t *testing.T) {
	p := NewPool(32)
	q, err := p.Rational(-3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if q.Rat().Cmp(big.NewRat(-3, 4)) != 0 {
		t.Errorf("wrong rational %v", q.Rat())
	}
	d, err := p.Decimal(big.NewInt(125), -2)
	if err != nil {
		t.Fatal(err)
	}
	if d.Rat().Cmp(big.NewRat(5, 4)) != 0 {
		t.Errorf("wrong decimal value %v", d.Rat())
	}
	inf, err := p.Infinity(true)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := inf.Float64(); !ok || v > 0 {
		t.Errorf("wrong infinity %v %v", v, ok)
	}
	m := mustParse(t, p, "[1,2,3;4,5,6]")
	if m.Kind() != Matrix || m.Columns() != 3 || m.NumChildren() != 6 {
		t.Errorf("wrong matrix %v: %d columns, %d entries", m, m.Columns(), m.NumChildren())
	}
	f := mustParse(t, p, "f(x)", ParseFunction("f"))
	if f.Kind() != Function || f.Name() != "f" {
		t.Errorf("wrong function %v", f)
	}
}
