package symbolic

import (
	"slices"

	"github.com/zephyrtronium/symbolic/internal/arena"
)

// boundName returns the name of the variable bound by h, if h is a binding
// form whose variable operand is a symbol.
func (p *Pool) boundName(h arena.Handle) (string, bool) {
	if !kinds[p.kind(h)].binding {
		return "", false
	}
	v := p.node(p.child(h, 1))
	if v.kind != Symbol {
		return "", false
	}
	return v.name, true
}

// replaceSymbol replaces every free occurrence of the symbol name under h
// with a tree made by with. Occurrences bound by an enclosing binding form
// are left alone, although the bounds of that form are still visited.
func (p *Pool) replaceSymbol(h arena.Handle, name string, with func() (arena.Handle, error)) (bool, error) {
	n := p.node(h)
	if n.kind == Symbol {
		if n.name != name {
			return false, nil
		}
		t, err := with()
		if err != nil {
			return false, err
		}
		p.become(h, t)
		return true, nil
	}
	first := 0
	if b, ok := p.boundName(h); ok && b == name {
		first = 2
	}
	changed := false
	for i := first; i < p.numChildren(h); i++ {
		c, err := p.replaceSymbol(p.child(h, i), name, with)
		changed = changed || c
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// expandDefinition copies the definition of the symbol or function at h into
// p, with UnknownX replaced by the function's argument. It returns a nil
// handle if the context does not define h.
func (p *Pool) expandDefinition(symbols Context, h arena.Handle) (arena.Handle, error) {
	if symbols == nil {
		return arena.Handle{}, nil
	}
	n := p.node(h)
	var def *Expression
	switch n.kind {
	case Symbol:
		def = symbols.ExpressionForSymbol(n.name)
	case Function:
		def = symbols.ExpressionForFunction(n.name)
	}
	if def.IsNil() {
		return arena.Handle{}, nil
	}
	t, err := p.importFrom(def.p, def.h)
	if err != nil {
		return arena.Handle{}, err
	}
	if n.kind == Function {
		arg := p.child(h, 0)
		_, err := p.replaceSymbol(t, UnknownX, func() (arena.Handle, error) { return p.clone(arg) })
		if err != nil {
			p.free(t)
			return arena.Handle{}, err
		}
	}
	return t, nil
}

// substituteSymbol replaces a defined symbol with its reduced definition.
func (r *reducer) substituteSymbol(h arena.Handle) error {
	return r.substitute(h)
}

// substituteFunction replaces a call of a defined function with the reduced
// definition applied to the call's argument.
func (r *reducer) substituteFunction(h arena.Handle) error {
	return r.substitute(h)
}

func (r *reducer) substitute(h arena.Handle) error {
	if !r.rc.symbolic || r.rc.symbols == nil {
		return nil
	}
	name := r.p.node(h).name
	if slices.Contains(r.expanding, name) {
		r.setUndefined(h)
		return nil
	}
	t, err := r.p.expandDefinition(r.rc.symbols, h)
	if err != nil || t.IsNil() {
		return err
	}
	r.expanding = append(r.expanding, name)
	err = r.reduce(t)
	r.expanding = r.expanding[:len(r.expanding)-1]
	if err != nil {
		r.p.free(t)
		return err
	}
	r.p.become(h, t)
	return nil
}

// ReplaceSymbolWithExpression replaces every free occurrence of the symbol
// name in e with a copy of with, which may live in any pool. If the pool runs
// out of nodes, the occurrences replaced so far stay replaced.
func (e *Expression) ReplaceSymbolWithExpression(name string, with *Expression) (changed bool, err error) {
	return e.p.replaceSymbol(e.h, name, func() (arena.Handle, error) {
		return e.p.importFrom(with.p, with.h)
	})
}

// ReplaceUnknown renames every free occurrence of the symbol name in e to
// UnknownX, turning e into a function definition.
func (e *Expression) ReplaceUnknown(name string) {
	e.p.replaceUnknown(e.h, name)
}

func (p *Pool) replaceUnknown(h arena.Handle, name string) {
	n := p.node(h)
	if n.kind == Symbol && n.name == name {
		p.a.Set(h, node{kind: Symbol, name: UnknownX})
		return
	}
	first := 0
	if b, ok := p.boundName(h); ok && b == name {
		first = 2
	}
	for i := first; i < p.numChildren(h); i++ {
		p.replaceUnknown(p.child(h, i), name)
	}
}

// ShallowReplaceReplaceableSymbols replaces e's root, if it is a symbol or
// function defined in ctx, with its definition. The result is not reduced.
func (e *Expression) ShallowReplaceReplaceableSymbols(ctx Context) (changed bool, err error) {
	t, err := e.p.expandDefinition(ctx, e.h)
	if err != nil || t.IsNil() {
		return false, err
	}
	e.p.become(e.h, t)
	return true, nil
}

// Variables returns the sorted names of the free symbols in e for which
// isVariable returns true, or all of them if isVariable is nil. Symbols
// defined in ctx contribute the variables of their definitions instead.
func (e *Expression) Variables(ctx Context, isVariable func(string) bool) []string {
	v := variables{ctx: ctx, keep: isVariable, seen: make(map[string]bool)}
	v.walk(e.p, e.h, nil)
	r := make([]string, 0, len(v.seen))
	for name, ok := range v.seen {
		if ok {
			r = append(r, name)
		}
	}
	slices.Sort(r)
	return r
}

type variables struct {
	ctx       Context
	keep      func(string) bool
	seen      map[string]bool
	expanding []string
}

func (v *variables) walk(p *Pool, h arena.Handle, bound []string) {
	n := p.node(h)
	switch n.kind {
	case Symbol:
		if slices.Contains(bound, n.name) {
			return
		}
		if v.expand(n.name, v.symbol(n.name), nil) {
			return
		}
		if _, ok := v.seen[n.name]; !ok {
			v.seen[n.name] = v.keep == nil || v.keep(n.name)
		}
		return
	case Function:
		if v.ctx != nil {
			v.expand(n.name, v.ctx.ExpressionForFunction(n.name), []string{UnknownX})
		}
	}
	if b, ok := p.boundName(h); ok {
		v.walk(p, p.child(h, 0), append(bound[:len(bound):len(bound)], b))
		for i := 2; i < p.numChildren(h); i++ {
			v.walk(p, p.child(h, i), bound)
		}
		return
	}
	for i := 0; i < p.numChildren(h); i++ {
		v.walk(p, p.child(h, i), bound)
	}
}

func (v *variables) symbol(name string) *Expression {
	if v.ctx == nil {
		return nil
	}
	return v.ctx.ExpressionForSymbol(name)
}

// expand walks a definition. Function definitions bind UnknownX.
func (v *variables) expand(name string, def *Expression, bound []string) bool {
	if def.IsNil() || slices.Contains(v.expanding, name) {
		return false
	}
	v.expanding = append(v.expanding, name)
	v.walk(def.p, def.h, bound)
	v.expanding = v.expanding[:len(v.expanding)-1]
	return true
}
