package symbolic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestSymbolTable(t *testing.T) {
	p := NewPool(64)
	tbl := NewSymbolTable(TablePoolSize(32), SetVar("a", mustParse(t, p, "2")))
	v := mustParse(t, p, "b+1")
	tbl.Set("c", v).SetFunction("f", mustParse(t, p, "x^2"))
	v.Release()
	if err := tbl.Err(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, tbl.Names()); diff != "" {
		t.Errorf("wrong names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f"}, tbl.Functions()); diff != "" {
		t.Errorf("wrong functions (-want +got):\n%s", diff)
	}
	c, err := tbl.Lookup("c", p)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.String(); got != "b+1" {
		t.Errorf("wrong definition of c: %q", got)
	}
	if c.Pool() != p {
		t.Errorf("lookup result in wrong pool")
	}
	if e := tbl.ExpressionForFunction("f"); e.IsNil() || e.Owned() {
		t.Errorf("function definition should be a borrowed view, got %v", e)
	}
	if e := tbl.ExpressionForSymbol("nope"); e != nil {
		t.Errorf("unbound symbol has definition %v", e)
	}
	if e, err := tbl.Lookup("nope", p); e != nil || err != nil {
		t.Errorf("unbound lookup gave %v, %v", e, err)
	}
	tbl.Set("a", mustParse(t, p, "3"))
	if got := tbl.ExpressionForSymbol("a").String(); got != "3" {
		t.Errorf("redefinition not applied: %q", got)
	}
	tbl.Delete("c")
	tbl.Delete("f")
	if len(tbl.Functions()) != 0 || tbl.ExpressionForSymbol("c") != nil {
		t.Errorf("delete left definitions: %v %v", tbl.Names(), tbl.Functions())
	}
	if tbl.Pool().Live() != 1 {
		t.Errorf("table pool holds %d nodes, want 1", tbl.Pool().Live())
	}
	checkPool(t, tbl.Pool())
}

func TestSymbolTableExhausted(t *testing.T) {
	p := NewPool(16)
	tbl := NewSymbolTable(TablePoolSize(2))
	tbl.Set("a", mustParse(t, p, "1+2"))
	if !errors.Is(tbl.Err(), ErrPoolExhausted) {
		t.Errorf("wrong error: want ErrPoolExhausted, got %v", tbl.Err())
	}
	if tbl.ExpressionForSymbol("a") != nil {
		t.Errorf("failed definition was kept")
	}
	tbl.Set("b", mustParse(t, p, "7"))
	if tbl.ExpressionForSymbol("b") == nil {
		t.Errorf("small definition was not kept")
	}
}

func TestSymbolTableClone(t *testing.T) {
	p := NewPool(16)
	a := NewSymbolTable(SetVar("x", mustParse(t, p, "1")))
	b := a.Clone(SetVars(map[string]*Expression{"y": mustParse(t, p, "2")}))
	b.Set("x", mustParse(t, p, "3"))
	if got := a.ExpressionForSymbol("x").String(); got != "1" {
		t.Errorf("clone modified original: x=%q", got)
	}
	if a.ExpressionForSymbol("y") != nil {
		t.Errorf("clone option applied to original")
	}
	if b.Pool() == a.Pool() {
		t.Errorf("clone shares the original's pool")
	}
	if b.Pool().Cap() != DefaultTablePoolSize {
		t.Errorf("wrong clone capacity %d", b.Pool().Cap())
	}
}

func TestVariables(t *testing.T) {
	defs := NewPool(64)
	tbl := NewSymbolTable(
		SetVar("a", mustParse(t, defs, "y+w")),
		SetVar("c", mustParse(t, defs, "d")),
		SetVar("d", mustParse(t, defs, "c")),
	)
	tbl.SetFunction("f", mustParse(t, defs, "x+q"))
	cases := []struct {
		src  string
		ctx  Context
		keep func(string) bool
		want []string
	}{
		{"x+y*sin(z)", nil, nil, []string{"x", "y", "z"}},
		{"a+x", tbl, nil, []string{"w", "x", "y"}},
		{"a+x", nil, nil, []string{"a", "x"}},
		{"sum(k*n,k,1,m)", nil, nil, []string{"m", "n"}},
		{"f(t)", tbl, nil, []string{"q", "t"}},
		{"c", tbl, nil, []string{"c"}},
		{"x+yy+z", nil, func(s string) bool { return len(s) == 1 }, []string{"x", "z"}},
		{"3+π", nil, nil, []string{}},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(64)
			e := mustParse(t, p, c.src, ParseFunction("f"))
			got := e.Variables(c.ctx, c.keep)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong variables (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReplaceSymbol(t *testing.T) {
	p := NewPool(64)
	other := NewPool(8)
	e := mustParse(t, p, "x+sum(x,x,1,x)")
	changed, err := e.ReplaceSymbolWithExpression("x", mustParse(t, other, "2y"))
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("replacement reported no change")
	}
	if got, want := e.String(), "2y+sum(x,x,1,2y)"; got != want {
		t.Errorf("wrong replacement: want %q, got %q", want, got)
	}
	changed, err = e.ReplaceSymbolWithExpression("z", mustParse(t, other, "1"))
	if err != nil || changed {
		t.Errorf("replacing an absent symbol gave %v, %v", changed, err)
	}
	checkPool(t, p)
}

func TestReplaceSymbolExhausted(t *testing.T) {
	p := NewPool(6)
	e := mustParse(t, p, "x+x")
	_, err := e.ReplaceSymbolWithExpression("x", mustParse(t, NewPool(4), "y+1"))
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("wrong error: want ErrPoolExhausted, got %v", err)
	}
	checkPool(t, p)
}

func TestReplaceUnknown(t *testing.T) {
	p := NewPool(32)
	e := mustParse(t, p, "t^2+int(t,t,0,t)")
	e.ReplaceUnknown("t")
	if got, want := e.String(), "x^2+int(t,t,0,x)"; got != want {
		t.Errorf("wrong function body: want %q, got %q", want, got)
	}
}

func TestShallowReplace(t *testing.T) {
	defs := NewPool(16)
	tbl := NewSymbolTable(SetVar("a", mustParse(t, defs, "b+1")))
	tbl.SetFunction("f", mustParse(t, defs, "2x"))
	cases := []struct {
		src     string
		changed bool
		want    string
	}{
		{"a", true, "b+1"},
		{"f(3)", true, "2×3"},
		{"a+1", false, "a+1"},
		{"z", false, "z"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(32)
			e := mustParse(t, p, c.src, ParseFunction("f"))
			changed, err := e.ShallowReplaceReplaceableSymbols(tbl)
			if err != nil {
				t.Fatal(err)
			}
			if changed != c.changed {
				t.Errorf("wrong change report: want %v, got %v", c.changed, changed)
			}
			if got := e.String(); got != c.want {
				t.Errorf("wrong result: want %q, got %q", c.want, got)
			}
		})
	}
}
