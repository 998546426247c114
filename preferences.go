package symbolic

import (
	"strings"

	"github.com/pkg/errors"
)

// ComplexFormat selects how complex results are presented and whether they
// are allowed at all.
type ComplexFormat uint8

const (
	// Real rejects non-real results.
	Real ComplexFormat = iota
	// Cartesian presents complex results as a+bi.
	Cartesian
	// Polar presents complex results as r·e^(iθ).
	Polar
)

// AngleUnit is the unit of arguments to trigonometric functions and results
// of their inverses.
type AngleUnit uint8

const (
	Radian AngleUnit = iota
	Degree
	Gradian
)

// FloatFormat selects the notation for approximate numbers in layouts.
type FloatFormat uint8

const (
	DecimalFormat FloatFormat = iota
	ScientificFormat
	EngineeringFormat
)

// ReductionTarget selects the form reduction produces.
type ReductionTarget uint8

const (
	// System is the canonical form used internally for comparison and
	// further computation.
	System ReductionTarget = iota
	// User is the simplified form shown to people. Reducing for User also
	// enables beautification.
	User
)

// Sign is the statically inferred sign of an expression.
type Sign int8

const (
	Negative Sign = -1
	Unknown  Sign = 0
	Positive Sign = 1
)

var (
	complexFormatNames   = [...]string{Real: "real", Cartesian: "cartesian", Polar: "polar"}
	angleUnitNames       = [...]string{Radian: "radian", Degree: "degree", Gradian: "gradian"}
	floatFormatNames     = [...]string{DecimalFormat: "decimal", ScientificFormat: "scientific", EngineeringFormat: "engineering"}
	reductionTargetNames = [...]string{System: "system", User: "user"}
)

func enumName(names []string, v int, typ string) string {
	if v < 0 || v >= len(names) {
		return typ + "(?)"
	}
	return names[v]
}

func enumParse(names []string, text []byte, typ string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range names {
		if s == n {
			return i, nil
		}
	}
	return 0, errors.Errorf("unknown %s %q", typ, text)
}

func (f ComplexFormat) String() string {
	return enumName(complexFormatNames[:], int(f), "ComplexFormat")
}

// MarshalText implements encoding.TextMarshaler.
func (f ComplexFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ComplexFormat) UnmarshalText(text []byte) error {
	v, err := enumParse(complexFormatNames[:], text, "complex format")
	*f = ComplexFormat(v)
	return err
}

func (u AngleUnit) String() string {
	return enumName(angleUnitNames[:], int(u), "AngleUnit")
}

// MarshalText implements encoding.TextMarshaler.
func (u AngleUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *AngleUnit) UnmarshalText(text []byte) error {
	v, err := enumParse(angleUnitNames[:], text, "angle unit")
	*u = AngleUnit(v)
	return err
}

// halfTurn returns the measure of π radians in the unit.
func (u AngleUnit) halfTurn() float64 {
	switch u {
	case Radian:
		return 3.141592653589793
	case Degree:
		return 180
	case Gradian:
		return 200
	default:
		panic("symbolic: invalid angle unit " + u.String())
	}
}

func (f FloatFormat) String() string {
	return enumName(floatFormatNames[:], int(f), "FloatFormat")
}

// MarshalText implements encoding.TextMarshaler.
func (f FloatFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FloatFormat) UnmarshalText(text []byte) error {
	v, err := enumParse(floatFormatNames[:], text, "float format")
	*f = FloatFormat(v)
	return err
}

func (t ReductionTarget) String() string {
	return enumName(reductionTargetNames[:], int(t), "ReductionTarget")
}

// MarshalText implements encoding.TextMarshaler.
func (t ReductionTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ReductionTarget) UnmarshalText(text []byte) error {
	v, err := enumParse(reductionTargetNames[:], text, "reduction target")
	*t = ReductionTarget(v)
	return err
}

func (s Sign) String() string {
	switch s {
	case Negative:
		return "negative"
	case Unknown:
		return "unknown"
	case Positive:
		return "positive"
	default:
		return "Sign(?)"
	}
}

// ReductionContext carries the parameters of one reduction request. It is an
// immutable value; the With methods return modified copies.
type ReductionContext struct {
	symbols  Context
	complex  ComplexFormat
	angle    AngleUnit
	target   ReductionTarget
	symbolic bool
}

// NewReductionContext creates a reduction context. symbols may be nil, in
// which case every symbol is unbound. When symbolic is true, symbols and
// functions defined in symbols are substituted by their definitions.
func NewReductionContext(symbols Context, cf ComplexFormat, au AngleUnit, target ReductionTarget, symbolic bool) ReductionContext {
	return ReductionContext{
		symbols:  symbols,
		complex:  cf,
		angle:    au,
		target:   target,
		symbolic: symbolic,
	}
}

// Context returns the symbol context, which may be nil.
func (rc ReductionContext) Context() Context {
	return rc.symbols
}

func (rc ReductionContext) ComplexFormat() ComplexFormat {
	return rc.complex
}

func (rc ReductionContext) AngleUnit() AngleUnit {
	return rc.angle
}

func (rc ReductionContext) Target() ReductionTarget {
	return rc.target
}

// SymbolicComputation returns whether defined symbols are substituted.
func (rc ReductionContext) SymbolicComputation() bool {
	return rc.symbolic
}

// WithTarget returns a copy of rc with a different target.
func (rc ReductionContext) WithTarget(t ReductionTarget) ReductionContext {
	rc.target = t
	return rc
}

// WithSymbolicComputation returns a copy of rc with symbol substitution turned
// on or off.
func (rc ReductionContext) WithSymbolicComputation(on bool) ReductionContext {
	rc.symbolic = on
	return rc
}
