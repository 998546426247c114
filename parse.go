package symbolic

import (
	"io"
	"strconv"
	"strings"
)

// Expr = num | name | Call | Neg | Plus | Fact | Add | Sub | Mul | Div | Pow | Equal | Store | Matrix | '(' Expr ')' | '{' Expr '}'
// Call = funcname | funcname Expr | funcname ArgList
// ArgList = '(' Expr { (',' | ';') Expr } ')' | '{' Expr { (',' | ';') Expr } '}'
// Matrix = '[' Expr { ',' Expr } { ';' Expr { ',' Expr } } ']'
// Neg = '-' Expr
// Plus = '+' Expr
// Fact = Expr '!'
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr '×' Expr | Expr Expr
// Div = Expr '/' Expr | Expr '÷' Expr
// Pow = Expr '^' Expr
// Equal = Expr '=' Expr
// Store = Expr '→' Expr

// Parse parses an expression into p. The given options are applied in
// order. Juxtaposed terms parse as MultiplicationImplicit, so "2x" and
// "2 sin x" are products. Brackets only group; they do not create
// Parenthesis nodes. Number literals with a decimal point or exponent parse
// as Decimal, others as Rational.
//
// If p runs out of nodes, the error wraps ErrPoolExhausted and nothing is
// allocated. Errors describing the input implement InputError.
func Parse(p *Pool, src io.RuneScanner, opts ...ParseOption) (*Expression, error) {
	scan := lex(src)
	pc := parsectx{funcs: globalfuncs}
	for _, opt := range opts {
		pc = opt.parseOption(pc)
	}
	s, err := parseterm(scan, &pc, exprprec)
	if err != nil {
		return nil, err
	}
	switch tok := scan.must(); tok.kind {
	case tokenEOF:
		if s == nil {
			return nil, &EmptyExpressionError{Col: tok.pos}
		}
	case tokenSep:
		switch {
		case s == nil:
			return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
		case pc.ceof && tok.text == ",":
		case pc.seof && tok.text == ";":
		default:
			return nil, itShouldNotHaveEndedThisWay(tok, -1)
		}
	default:
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	h, err := p.place(s)
	if err != nil {
		return nil, err
	}
	return p.own(h), nil
}

// ParseString parses an expression from a string.
func ParseString(p *Pool, src string, opts ...ParseOption) (*Expression, error) {
	return Parse(p, strings.NewReader(src), opts...)
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*syntax, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	if p.resv != nil {
		// parselhs parsed a niladic function followed by a parenthesized term.
		// So, the parsing here is as if we encountered an open bracket, except
		// that the contents are already parsed and valid.
		prec := termprec
		if !prec.moreBinding(until) {
			return n, nil
		}
		n = implicit(n, p.resv)
		p.resv = nil
	}
	for {
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// (parsed) x -> (parsed) (x)
			// (parsed) x^(expr) -> (parsed) (x^(expr))
			// a^(parsed) x -> (a^(parsed)) (x)
			// (parsed) (expr) -> (parsed) (expr)
			scan.push(tok)
			prec := termprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = implicit(n, rhs)
		case tokenOp:
			if tok.text == "!" {
				// Postfix operators bind to the term just parsed.
				n = &syntax{kind: Factorial, pos: tok.pos, children: []*syntax{n}}
				continue
			}
			prec := binop(tok.text)
			if prec.op == Uninitialized {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := operand(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = binary(prec.op, n, rhs, tok.pos)
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("symbolic: unknown token: " + tok.String())
		}
	}
}

// operand parses the operand of an operator, which must not be empty.
func operand(scan *lexer, p *parsectx, prec operator) (*syntax, error) {
	rhs, err := parseterm(scan, p, prec)
	if err != nil {
		return nil, err
	}
	if rhs == nil {
		end := scan.must()
		scan.push(end)
		return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
	}
	return rhs, nil
}

// parselhs parses the first component of a term. I.e., operators are unary,
// any encountered token must be valid as the start of a subexpression, and
// whitespace normally lexed as EOF is ignored.
func parselhs(scan *lexer, p *parsectx, until operator) (*syntax, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	var n *syntax
	switch tok.kind {
	case tokenNum:
		n = number(tok)
	case tokenIdent:
		fn := p.funcs[tok.text]
		if fn == nil {
			n = &syntax{kind: Symbol, text: tok.text, pos: tok.pos}
			break
		}
		args, exp, err := parsecall(scan, p, until, fn, tok.text)
		if err != nil {
			return nil, err
		}
		// If fn is niladic and the call is like fn(a), then args is nil
		// and p.resv is non-nil.
		n, err = fn.call(tok.text, args, tok.pos)
		if err != nil {
			return nil, err
		}
		if exp != nil {
			exp.children[0] = n
			n = exp
		}
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == Uninitialized {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := operand(scan, p, prec)
		if err != nil {
			return nil, err
		}
		n = unary(prec.op, rhs, tok.pos)
	case tokenOpen:
		if tok.text == "[" {
			return parsematrix(scan, p, tok)
		}
		match := rightbracket(tok.text)
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose || end.text != closebrackets[match] {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n = rhs
	case tokenClose:
		// This might be part of niladic func(), so just let the caller decide
		// what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		switch tok.text {
		case ",":
			if p.ceof {
				scan.push(tok)
				return nil, nil
			}
		case ";":
			if p.seof {
				scan.push(tok)
				return nil, nil
			}
		default:
			panic("symbolic: invalid separator " + strconv.Quote(tok.text))
		}
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("symbolic: unknown token: " + tok.String())
	}
	return n, nil
}

// parsecall parses the arguments to a call of a given function. The second
// result, if non-nil, is a power whose base is to be the function call.
func parsecall(scan *lexer, p *parsectx, until operator, fn caller, name string) ([]*syntax, *syntax, error) {
	// We respect whitespace here so that pi\nx doesn't string
	// together expressions.
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, nil, err
	}
	// bare handles a term following the function without brackets.
	bare := func() ([]*syntax, *syntax, error) {
		switch {
		case fn.canCall(1):
			// Single argument. sin x -> sin(x)
			scan.push(tok)
			if termprec.moreBinding(until) {
				until = termprec
			}
			rhs, err := operand(scan, p, until)
			if err != nil {
				return nil, nil, err
			}
			return []*syntax{rhs}, nil, nil
		case fn.canCall(0):
			// No argument. pi x -> (pi) (x)
			scan.push(tok)
			return nil, nil, nil
		default:
			// Any other number of arguments requires brackets.
			return nil, nil, &CallError{Col: tok.pos, Func: name, Len: 1}
		}
	}
	switch tok.kind {
	case tokenOp:
		// Check for e.g. ^2 in cos^2 x. Must be an exponentiation or higher.
		// Note that the fact that exponentiation is important here:
		// func^x^y(z) parses as [func(z)]^(x^y).
		if prec := binop(tok.text); prec.op != Uninitialized && prec.moreBinding(powprec) {
			up, err := operand(scan, p, powprec)
			if err != nil {
				return nil, nil, err
			}
			args, ee, err := parsecall(scan, p, until, fn, name)
			if err != nil {
				return nil, nil, err
			}
			if ee != nil {
				// The precedence we parsed is right-associative and higher
				// than any other. With the current rules, there should never
				// be an additional exponent here.
				panic("symbolic: parsed second call exponent: " + ee.String())
			}
			// The caller fills in the base.
			exp := &syntax{kind: Power, pos: tok.pos, children: []*syntax{nil, up}}
			return args, exp, nil
		}
		if tok.text == "!" || binop(tok.text).op != Uninitialized && unop(tok.text).op == Uninitialized {
			// sin! or pi×x: the function has no argument here.
			if !fn.canCall(0) {
				return nil, nil, &CallError{Col: tok.pos, Func: name}
			}
			scan.push(tok)
			return nil, nil, nil
		}
		// Other than exponentiations, finding a unary operator is the same
		// as finding a number or identifier.
		return bare()
	case tokenNum, tokenIdent:
		return bare()
	case tokenOpen:
		if tok.text == "[" {
			// A matrix is a single argument: det[1,2;3,4].
			return bare()
		}
		match := rightbracket(tok.text)
		args, err := parsearglist(scan, p, tok.text)
		if err != nil {
			return nil, nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			panic("symbolic: parsearglist ended on " + end.String() + " instead of close bracket")
		}
		if end.text != closebrackets[match] {
			return nil, nil, &BracketError{Col: end.pos, Left: tok.text, Right: end.text}
		}
		if !fn.canCall(len(args)) {
			if p.resv != nil && fn.canCall(0) {
				// If fn is niladic, convert from fn(a) to fn()*a.
				return nil, nil, nil
			}
			p.resv = nil
			return nil, nil, &CallError{Col: tok.pos, Func: name, Len: len(args)}
		}
		p.resv = nil
		return args, nil, nil
	case tokenClose, tokenSep, tokenEOF:
		if !fn.canCall(0) {
			return nil, nil, &CallError{Col: tok.pos, Func: name}
		}
		scan.push(tok)
	default:
		panic("symbolic: unknown token: " + tok.String())
	}
	return nil, nil, nil
}

// parsearglist parses a bracketed list of zero or more args.
func parsearglist(scan *lexer, p *parsectx, open string) ([]*syntax, error) {
	var args []*syntax
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			// As a special case, reporting mismatched brackets is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks that brackets match.
			scan.push(end)
			if rhs == nil {
				// No expression parsed.
				// func() is allowed, but func(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			if len(args) == 0 {
				// func(a). If func is niladic, then this is an implicit
				// multiplication. Reserve the rhs so that the parser can
				// convert from a function call.
				p.resv = rhs
			}
			return append(args, rhs), nil
		case tokenSep:
			if rhs == nil {
				return nil, &SeparatorError{Col: end.pos, Sep: end.text}
			}
			args = append(args, rhs)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: open, Right: ""}
		default:
			panic("symbolic: parseterm ended on non-end token " + end.String())
		}
	}
}

// parsematrix parses a matrix literal after its open bracket. Commas
// separate entries and semicolons separate rows.
func parsematrix(scan *lexer, p *parsectx, open lexToken) (*syntax, error) {
	m := &syntax{kind: Matrix, pos: open.pos}
	row := 0
	endRow := func(end lexToken) error {
		if m.cols == 0 {
			m.cols = row
		} else if row != m.cols {
			return &MatrixError{Col: end.pos, Want: m.cols, Got: row}
		}
		row = 0
		return nil
	}
	for {
		s, err := parseterm(scan, p, exprprec)
		if err != nil {
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open.text}
			}
			return nil, err
		}
		end := scan.must()
		if s == nil {
			if end.kind == tokenSep {
				return nil, &SeparatorError{Col: end.pos, Sep: end.text}
			}
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		m.children = append(m.children, s)
		row++
		switch end.kind {
		case tokenSep:
			if end.text == ";" {
				if err := endRow(end); err != nil {
					return nil, err
				}
			}
		case tokenClose:
			if end.text != "]" {
				return nil, &BracketError{Col: end.pos, Left: open.text, Right: end.text}
			}
			if err := endRow(end); err != nil {
				return nil, err
			}
			return m, nil
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: open.text, Right: ""}
		default:
			panic("symbolic: parseterm ended on non-end token " + end.String())
		}
	}
}

// number creates the literal for a number token.
func number(tok lexToken) *syntax {
	switch {
	case tok.text == "inf" || tok.text == "Inf" || tok.text == "∞":
		return &syntax{kind: Infinity, text: "∞", pos: tok.pos}
	case strings.ContainsAny(tok.text, ".eE"):
		return &syntax{kind: Decimal, text: tok.text, pos: tok.pos}
	default:
		return &syntax{kind: Rational, text: tok.text, pos: tok.pos}
	}
}

// unary applies a prefix operator. Negation of a number literal is a
// negative literal; unary plus is a sum of one term.
func unary(op Kind, rhs *syntax, pos int) *syntax {
	if op == Opposite && !rhs.neg {
		switch rhs.kind {
		case Rational, Decimal, Infinity:
			rhs.neg = true
			return rhs
		}
	}
	return &syntax{kind: op, pos: pos, children: []*syntax{rhs}}
}

// binary applies an infix operator. Chains of explicit sums and products
// are collected into one node.
func binary(op Kind, lhs, rhs *syntax, pos int) *syntax {
	if (op == Addition || op == Multiplication) && lhs.kind == op {
		lhs.children = append(lhs.children, rhs)
		return lhs
	}
	return &syntax{kind: op, pos: pos, children: []*syntax{lhs, rhs}}
}

func implicit(lhs, rhs *syntax) *syntax {
	return &syntax{kind: MultiplicationImplicit, pos: rhs.pos, children: []*syntax{lhs, rhs}}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	k := -1
	for i, b := range openbrackets {
		if b == left {
			k = i
		}
	}
	if k < 0 {
		panic("symbolic: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("symbolic: it really should not have ended this way: " + tok.String())
	}
}

type operator struct {
	// prec is the precedence value. Lower is less binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op Kind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of Uninitialized.
func binop(text string) operator {
	switch text {
	case "=":
		return operator{0, false, Equal}
	case "→":
		return operator{0, false, Store}
	case "+":
		return operator{1, false, Addition}
	case "-":
		return operator{1, false, Subtraction}
	case "*", "×":
		return operator{5, false, Multiplication}
	case "/", "÷":
		return operator{5, false, Division}
	case "^":
		return operator{15, true, Power}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of Uninitialized.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, Addition}
	case "-":
		return operator{10, true, Opposite}
	default:
		return operator{}
	}
}

var (
	// termprec is the default precedence for parsing terms. Its prec
	// should match that of multiplication.
	termprec = operator{5, true, MultiplicationImplicit}
	// powprec is the precedence of exponentiation.
	powprec = binop("^")
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, Uninitialized}
)
