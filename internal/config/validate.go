package config

import (
	"fmt"
	"unicode"

	"go.uber.org/multierr"

	"github.com/zephyrtronium/symbolic"
)

// FieldError is a validation failure of one configuration field.
type FieldError struct {
	// Field is the dotted path to the field, e.g. "engine.pool_capacity".
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldErr(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks cfg and returns every problem found, combined with
// multierr. Use multierr.Errors to inspect them individually.
func Validate(cfg *Config) error {
	var err error
	p := &cfg.Preferences
	if p.AngleUnit > symbolic.Gradian {
		err = multierr.Append(err, fieldErr("preferences.angle_unit", "unknown unit %d", p.AngleUnit))
	}
	if p.ComplexFormat > symbolic.Polar {
		err = multierr.Append(err, fieldErr("preferences.complex_format", "unknown format %d", p.ComplexFormat))
	}
	if p.FloatFormat > symbolic.EngineeringFormat {
		err = multierr.Append(err, fieldErr("preferences.float_format", "unknown format %d", p.FloatFormat))
	}
	if p.SignificantDigits > symbolic.MaxSignificantDigits {
		err = multierr.Append(err, fieldErr("preferences.significant_digits", "at most %d digits are supported, got %d", symbolic.MaxSignificantDigits, p.SignificantDigits))
	}

	e := &cfg.Engine
	if e.PoolCapacity <= 0 {
		err = multierr.Append(err, fieldErr("engine.pool_capacity", "must be positive, got %d", e.PoolCapacity))
	}
	if e.SymbolPoolCapacity <= 0 {
		err = multierr.Append(err, fieldErr("engine.symbol_pool_capacity", "must be positive, got %d", e.SymbolPoolCapacity))
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fieldErr("logging.level", "unknown level %q", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		err = multierr.Append(err, fieldErr("logging.format", "unknown format %q", cfg.Logging.Format))
	}

	for name := range cfg.Symbols {
		if !validName(name) {
			err = multierr.Append(err, fieldErr("symbols."+name, "invalid symbol name"))
		}
		if _, ok := cfg.Functions[name]; ok {
			err = multierr.Append(err, fieldErr("symbols."+name, "also defined as a function"))
		}
	}
	for name := range cfg.Functions {
		if !validName(name) {
			err = multierr.Append(err, fieldErr("functions."+name, "invalid function name"))
		}
		if name == symbolic.UnknownX {
			err = multierr.Append(err, fieldErr("functions."+name, "cannot redefine the unknown"))
		}
	}
	return err
}

// validName reports whether name lexes as a single identifier.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
