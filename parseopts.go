package symbolic

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	funcopt struct {
		names []string
	}
	nobuiltinsopt struct{}
	eofopt        struct {
		c, s bool
		ws   string
	}
)

// parsectx holds general data for parsing.
type parsectx struct {
	// funcs is the set of function names that trigger special parsing for ids.
	funcs map[string]caller
	// resv is a reserved parsed node. parsearglist sets this when it parses a
	// single parenthesized term so that the parser can back it out to an
	// implicit multiplication if the function is niladic.
	resv *syntax
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// ceof and seof indicate whether commas and semicolons, respectively, are
	// allowed at the end of an expression.
	ceof, seof bool
	// owned indicates that funcs is a copy that options may modify.
	owned bool
}

// ensure gives p its own copy of the function names.
func (p *parsectx) ensure() {
	if p.owned {
		return
	}
	m := make(map[string]caller, len(p.funcs))
	for k, v := range p.funcs {
		m[k] = v
	}
	p.funcs = m
	p.owned = true
}

// ParseFunction declares names of functions defined in a Context. A declared
// name followed by an argument parses as a Function node rather than as a
// product with a symbol. Declaring a builtin name replaces the builtin.
func ParseFunction(names ...string) ParseOption {
	return funcopt{names}
}

func (o funcopt) parseOption(p parsectx) parsectx {
	p.ensure()
	for _, name := range o.names {
		p.funcs[name] = userFunction{}
	}
	return p
}

// DisableBuiltins disables all builtin functions and constants during
// parsing. Their names are parsed as symbols instead. Functions declared with
// ParseFunction after DisableBuiltins are still recognized.
func DisableBuiltins() ParseOption {
	return nobuiltinsopt{}
}

func (nobuiltinsopt) parseOption(p parsectx) parsectx {
	p.funcs = map[string]caller{}
	p.owned = true
	return p
}

// StopOn tells the parser to treat a list of characters as ending the
// expression. Each rune must be a comma, semicolon, or whitespace codepoint.
// Whitespace does not end an expression where a term is expected, e.g. at the
// beginning of an expression or following an operator or bracket. Commas and
// semicolons do not end expressions inside bracketed argument lists or
// matrices.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	var o eofopt
	v := make([]rune, 0, len(chars))
	for _, r := range chars {
		switch {
		case r == ',':
			o.c = true
		case r == ';':
			o.s = true
		case unicode.IsSpace(r):
			if runeIndex(string(v), r) < 0 {
				v = append(v, r)
			}
		default:
			panic("symbolic: cannot stop on " + strconv.QuoteRune(r))
		}
	}
	o.ws = string(v)
	return o
}

func (o eofopt) parseOption(p parsectx) parsectx {
	p.ceof = o.c
	p.seof = o.s
	p.wseof = o.ws
	return p
}
