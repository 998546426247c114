package symbolic

import (
	"strconv"
	"strings"
)

// LayoutKind identifies the visual structure of a layout node.
type LayoutKind uint8

const (
	// LayoutHorizontal is a row of its children.
	LayoutHorizontal LayoutKind = iota
	// LayoutText is a run of glyphs given by Text.
	LayoutText
	// LayoutFraction has the numerator and denominator as children.
	LayoutFraction
	// LayoutSuperscript has a base and a raised exponent.
	LayoutSuperscript
	// LayoutSubscript has a base and a lowered index.
	LayoutSubscript
	// LayoutNthRoot has a radicand and, except for square roots, an index.
	LayoutNthRoot
	LayoutParenthesis
	LayoutAbsoluteValue
	LayoutCeiling
	LayoutFloor
	LayoutConjugate
	// LayoutBinomial has the upper and lower entries of a binomial
	// coefficient.
	LayoutBinomial
	// LayoutSum, LayoutProduct, and LayoutIntegral have the body, the bound
	// variable, and the lower and upper bounds as children.
	LayoutSum
	LayoutProduct
	LayoutIntegral
	// LayoutMatrix has its entries in row-major order and the number of
	// columns in Columns.
	LayoutMatrix
	LayoutEmpty
)

var layoutKindNames = [...]string{
	LayoutHorizontal:    "Horizontal",
	LayoutText:          "Text",
	LayoutFraction:      "Fraction",
	LayoutSuperscript:   "Superscript",
	LayoutSubscript:     "Subscript",
	LayoutNthRoot:       "NthRoot",
	LayoutParenthesis:   "Parenthesis",
	LayoutAbsoluteValue: "AbsoluteValue",
	LayoutCeiling:       "Ceiling",
	LayoutFloor:         "Floor",
	LayoutConjugate:     "Conjugate",
	LayoutBinomial:      "Binomial",
	LayoutSum:           "Sum",
	LayoutProduct:       "Product",
	LayoutIntegral:      "Integral",
	LayoutMatrix:        "Matrix",
	LayoutEmpty:         "Empty",
}

func (k LayoutKind) String() string {
	if int(k) >= len(layoutKindNames) {
		return "LayoutKind(" + strconv.Itoa(int(k)) + ")"
	}
	return layoutKindNames[k]
}

// Layout is a two-dimensional display tree. Layouts are plain values with no
// connection to the pool of the expression they were created from.
type Layout struct {
	Kind     LayoutKind
	Text     string
	Children []*Layout
	Columns  int
}

func text(s string) *Layout {
	return &Layout{Kind: LayoutText, Text: s}
}

func horizontal(children ...*Layout) *Layout {
	return &Layout{Kind: LayoutHorizontal, Children: children}
}

func wrap(k LayoutKind, children ...*Layout) *Layout {
	return &Layout{Kind: k, Children: children}
}

// String renders the layout on one line. The rendering uses the same
// notation the parser reads.
func (l *Layout) String() string {
	var b strings.Builder
	l.write(&b)
	return b.String()
}

func (l *Layout) write(b *strings.Builder) {
	switch l.Kind {
	case LayoutHorizontal:
		if len(l.Children) == 2 && l.Children[0].Kind == LayoutSubscript && l.Children[1].Kind == LayoutParenthesis {
			// f_b(x) is written f(x,b).
			s, p := l.Children[0], l.Children[1]
			s.Children[0].write(b)
			l.call(b, "", p.Children[0], s.Children[1])
			return
		}
		for _, c := range l.Children {
			c.write(b)
		}
	case LayoutText:
		b.WriteString(l.Text)
	case LayoutFraction:
		l.Children[0].group(b)
		b.WriteByte('/')
		l.Children[1].group(b)
	case LayoutSuperscript:
		l.Children[0].write(b)
		b.WriteByte('^')
		l.Children[1].group(b)
	case LayoutSubscript:
		l.Children[0].write(b)
		b.WriteByte('_')
		l.Children[1].group(b)
	case LayoutNthRoot:
		if len(l.Children) == 1 {
			l.call(b, "sqrt", l.Children...)
			return
		}
		l.call(b, "root", l.Children...)
	case LayoutParenthesis:
		b.WriteByte('(')
		l.Children[0].write(b)
		b.WriteByte(')')
	case LayoutAbsoluteValue:
		l.call(b, "abs", l.Children...)
	case LayoutCeiling:
		l.call(b, "ceil", l.Children...)
	case LayoutFloor:
		l.call(b, "floor", l.Children...)
	case LayoutConjugate:
		l.call(b, "conj", l.Children...)
	case LayoutBinomial:
		l.call(b, "binomial", l.Children...)
	case LayoutSum:
		l.call(b, "sum", l.Children...)
	case LayoutProduct:
		l.call(b, "product", l.Children...)
	case LayoutIntegral:
		l.call(b, "int", l.Children...)
	case LayoutMatrix:
		b.WriteByte('[')
		for i, c := range l.Children {
			switch {
			case i == 0:
			case i%l.Columns == 0:
				b.WriteByte(';')
			default:
				b.WriteByte(',')
			}
			c.write(b)
		}
		b.WriteByte(']')
	case LayoutEmpty:
	default:
		panic("symbolic: invalid layout kind " + l.Kind.String())
	}
}

func (l *Layout) call(b *strings.Builder, name string, args ...*Layout) {
	b.WriteString(name)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		a.write(b)
	}
	b.WriteByte(')')
}

// group writes l, bracketed unless it reads as a single term.
func (l *Layout) group(b *strings.Builder) {
	if l.atomic() {
		l.write(b)
		return
	}
	b.WriteByte('(')
	l.write(b)
	b.WriteByte(')')
}

func (l *Layout) atomic() bool {
	switch l.Kind {
	case LayoutText:
		return !strings.HasPrefix(l.Text, "-")
	case LayoutHorizontal:
		if len(l.Children) == 1 {
			return l.Children[0].atomic()
		}
		// A call is a name followed by its bracketed arguments.
		if len(l.Children) != 2 || l.Children[1].Kind != LayoutParenthesis {
			return false
		}
		f := l.Children[0]
		return f.Kind == LayoutSubscript || f.Kind == LayoutText && isName(f.Text)
	case LayoutFraction, LayoutSuperscript:
		return false
	default:
		return true
	}
}

func isName(s string) bool {
	for _, r := range s {
		if r != '_' && !isLetter(r) {
			return false
		}
	}
	return s != ""
}
