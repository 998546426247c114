package symbolic

import (
	"maps"
	"slices"

	"github.com/pkg/errors"
)

// Context supplies the definitions of symbols and functions. Function
// definitions are written in terms of UnknownX. The expressions a Context
// returns are borrowed views that stay valid until the context is modified.
type Context interface {
	// ExpressionForSymbol returns the definition of a symbol, or nil if it
	// is unbound.
	ExpressionForSymbol(name string) *Expression
	// ExpressionForFunction returns the definition of a function, or nil if
	// it is unbound.
	ExpressionForFunction(name string) *Expression
}

// DefaultTablePoolSize is the capacity of a SymbolTable's pool when no size is
// given.
const DefaultTablePoolSize = 4096

// SymbolTable is an in-memory Context. Definitions are copied into a pool
// owned by the table. It is not safe to use a SymbolTable concurrently.
type SymbolTable struct {
	p     *Pool
	vars  map[string]*Expression
	funcs map[string]*Expression
	err   error
}

// TableOption is an option used when creating a symbol table.
type TableOption interface {
	tableOption()
}

type (
	varopt struct {
		name string
		val  *Expression
	}
	varsopt map[string]*Expression
	sizeopt int
)

func (varopt) tableOption()  {}
func (varsopt) tableOption() {}
func (sizeopt) tableOption() {}

// SetVar defines a symbol in the table.
func SetVar(name string, val *Expression) TableOption {
	return varopt{name, val}
}

// SetVars defines any number of symbols in the table.
func SetVars(vars map[string]*Expression) TableOption {
	return varsopt(vars)
}

// TablePoolSize sets the capacity of the table's pool.
func TablePoolSize(n int) TableOption {
	return sizeopt(n)
}

// NewSymbolTable creates a symbol table. If no pool size is given, the default
// is DefaultTablePoolSize.
func NewSymbolTable(opts ...TableOption) *SymbolTable {
	t := SymbolTable{}
	return t.Clone(opts...)
}

// Set defines a symbol as a copy of value. Returns t for chaining. If the
// table's pool cannot hold the copy, the definition is unchanged and Err
// reports the failure.
func (t *SymbolTable) Set(name string, value *Expression) *SymbolTable {
	t.define(t.vars, name, value)
	return t
}

// SetFunction defines a function as a copy of def, which is written in terms
// of UnknownX. Returns t for chaining.
func (t *SymbolTable) SetFunction(name string, def *Expression) *SymbolTable {
	t.define(t.funcs, name, def)
	return t
}

func (t *SymbolTable) define(m map[string]*Expression, name string, value *Expression) {
	v, err := t.p.Import(value)
	if err != nil {
		if t.err == nil {
			t.err = errors.WithMessagef(err, "defining %s", name)
		}
		return
	}
	if old := m[name]; old != nil {
		old.Release()
	}
	m[name] = v
}

// Lookup returns a copy of the definition of a symbol or function in p. If
// the name is unbound, the result is nil.
func (t *SymbolTable) Lookup(name string, p *Pool) (*Expression, error) {
	v := t.vars[name]
	if v == nil {
		v = t.funcs[name]
	}
	if v == nil {
		return nil, nil
	}
	return p.Import(v)
}

// Delete removes the definitions of a name as a symbol and as a function.
func (t *SymbolTable) Delete(name string) {
	for _, m := range [...]map[string]*Expression{t.vars, t.funcs} {
		if v := m[name]; v != nil {
			v.Release()
			delete(m, name)
		}
	}
}

// Names returns the sorted names of defined symbols.
func (t *SymbolTable) Names() []string {
	return slices.Sorted(maps.Keys(t.vars))
}

// Functions returns the sorted names of defined functions.
func (t *SymbolTable) Functions() []string {
	return slices.Sorted(maps.Keys(t.funcs))
}

// Err returns the first error that occurred while defining names in t, if
// any.
func (t *SymbolTable) Err() error {
	return t.err
}

// Pool returns the pool holding the table's definitions.
func (t *SymbolTable) Pool() *Pool {
	return t.p
}

// ExpressionForSymbol implements Context.
func (t *SymbolTable) ExpressionForSymbol(name string) *Expression {
	return t.vars[name].borrow()
}

// ExpressionForFunction implements Context.
func (t *SymbolTable) ExpressionForFunction(name string) *Expression {
	return t.funcs[name].borrow()
}

// Clone creates a copy of a table and applies options to it. The copy has
// its own pool, at least as large as t's.
func (t *SymbolTable) Clone(opts ...TableOption) *SymbolTable {
	size := DefaultTablePoolSize
	if t.p != nil {
		size = t.p.Cap()
	}
	// Loop backward so the last size applies.
	for i := len(opts) - 1; i >= 0; i-- {
		if s, ok := opts[i].(sizeopt); ok {
			size = int(s)
			break
		}
	}
	n := SymbolTable{
		p:     NewPool(size),
		vars:  make(map[string]*Expression, len(t.vars)),
		funcs: make(map[string]*Expression, len(t.funcs)),
		err:   t.err,
	}
	for name, v := range t.vars {
		n.define(n.vars, name, v)
	}
	for name, v := range t.funcs {
		n.define(n.funcs, name, v)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.define(n.vars, opt.name, opt.val)
		case varsopt:
			for name, v := range opt {
				n.define(n.vars, name, v)
			}
		case sizeopt:
			// Already done.
		default:
			panic("symbolic: unknown option type")
		}
	}
	return &n
}

// borrow returns a borrowed view of e's root, or nil for nil.
func (e *Expression) borrow() *Expression {
	if e.IsNil() {
		return nil
	}
	return &Expression{p: e.p, h: e.h}
}
