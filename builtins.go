package symbolic

// caller describes how the parser treats a name that can be called.
type caller interface {
	// call makes the parse tree of a call with the given arguments. args has
	// a length for which canCall returned true.
	call(name string, args []*syntax, pos int) (*syntax, error)

	// canCall returns whether the function can be called with n arguments.
	// This controls how the expression parser handles instances of this
	// function:
	//
	// 	1.	If a bracketed list of n > 0 expressions follows a function, the
	//		parser treats it as an argument list if canCall(n). (If n is 1 and
	//		!canCall(1) and canCall(0), then the list is a multiplication;
	//		otherwise, it is rejected.)
	//
	// 	2.	If a bare term follows a function and canCall(1), then the parser
	//		treats the term as an argument to the function. E.g., "sin x" is
	//		parsed as "sin(x)". (If !canCall(1), then it is a multiplication.)
	canCall(n int) bool
}

// builtin calls build nodes of one kind.
type builtin struct {
	kind Kind
	// min and max override the arity of kind when max is nonzero.
	min, max int
}

func (b builtin) canCall(n int) bool {
	if b.max != 0 {
		return b.min <= n && n <= b.max
	}
	return b.kind.arityOK(n)
}

func (b builtin) call(name string, args []*syntax, pos int) (*syntax, error) {
	if kinds[b.kind].binding && args[1].kind != Symbol {
		return nil, &VariableError{Col: pos, Func: name}
	}
	switch {
	case b.kind == Logarithm && len(args) == 1:
		// Common logarithm.
		args = append(args, &syntax{kind: Rational, text: "10", pos: pos})
	case b.kind == Round && len(args) == 1:
		args = append(args, &syntax{kind: Rational, text: "0", pos: pos})
	}
	return &syntax{kind: b.kind, pos: pos, children: args}, nil
}

// constant names a value with no arguments.
type constant struct {
	kind Kind
	name string
}

func (constant) canCall(n int) bool {
	return n == 0
}

func (c constant) call(string, []*syntax, int) (*syntax, error) {
	return &syntax{kind: c.kind, text: c.name}, nil
}

// exponential calls build e^x.
type exponential struct{}

func (exponential) canCall(n int) bool {
	return n == 1
}

func (exponential) call(_ string, args []*syntax, pos int) (*syntax, error) {
	e := &syntax{kind: Constant, text: ConstantE, pos: pos}
	return &syntax{kind: Power, pos: pos, children: []*syntax{e, args[0]}}, nil
}

// userFunction calls build applications of context-defined functions.
type userFunction struct{}

func (userFunction) canCall(n int) bool {
	return n == 1
}

func (userFunction) call(name string, args []*syntax, pos int) (*syntax, error) {
	return &syntax{kind: Function, text: name, pos: pos, children: args}, nil
}

// globalfuncs is the set of names the parser knows by default.
var globalfuncs = func() map[string]caller {
	m := map[string]caller{
		"pi":      constant{Constant, ConstantPi},
		"π":       constant{Constant, ConstantPi},
		"e":       constant{Constant, ConstantE},
		"i":       constant{Constant, ConstantI},
		"undef":   constant{Undefined, ""},
		"nonreal": constant{Unreal, ""},
		"exp":     exponential{},
		"log":     builtin{kind: Logarithm, min: 1, max: 2},
		"round":   builtin{kind: Round, min: 1, max: 2},
	}
	for k := Undefined; k < numKinds; k++ {
		fn := kinds[k].fn
		if fn == "" {
			continue
		}
		if _, ok := m[fn]; !ok {
			m[fn] = builtin{kind: k}
		}
	}
	return m
}()
