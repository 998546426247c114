package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/multierr"

	"github.com/zephyrtronium/symbolic"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbolic.yaml")
	src := `
preferences:
  angle_unit: degree
  complex_format: cartesian
  float_format: scientific
  significant_digits: 6
engine:
  pool_capacity: 1000
  timeout: 250ms
logging:
  level: debug
symbols:
  a: "3/4"
functions:
  f: "x^2+1"
`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	on := true
	want := &Config{
		Preferences: PreferencesConfig{
			AngleUnit:         symbolic.Degree,
			ComplexFormat:     symbolic.Cartesian,
			FloatFormat:       symbolic.ScientificFormat,
			SignificantDigits: 6,
			Symbolic:          &on,
		},
		Engine: EngineConfig{
			PoolCapacity:       1000,
			SymbolPoolCapacity: DefaultSymbolPoolCapacity,
			Timeout:            250 * time.Millisecond,
		},
		Logging:   LoggingConfig{Level: "debug", Format: DefaultLogFormat},
		Symbols:   map[string]string{"a": "3/4"},
		Functions: map[string]string{"f": "x^2+1"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("wrong config (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unknown-field", "engine:\n  pool_size: 4\n"},
		{"bad-unit", "preferences:\n  angle_unit: turns\n"},
		{"bad-duration", "engine:\n  timeout: soon\n"},
		{"invalid", "engine:\n  pool_capacity: -1\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(c.src), 0o600); err != nil {
				t.Fatal(err)
			}
			if cfg, err := Load(path); err == nil {
				t.Errorf("no error; got %+v", cfg)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("no error loading a missing file")
	}
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	a := Default()
	b := Default()
	ApplyDefaults(b)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("defaults changed on reapplication (-first +second):\n%s", diff)
	}
	if err := Validate(a); err != nil {
		t.Errorf("defaults are invalid: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"SYMBOLIC_ANGLE_UNIT":         "gradian",
		"SYMBOLIC_COMPLEX_FORMAT":     "polar",
		"SYMBOLIC_FLOAT_FORMAT":       "engineering",
		"SYMBOLIC_SIGNIFICANT_DIGITS": "12",
		"SYMBOLIC_POOL_CAPACITY":      "64",
		"SYMBOLIC_TIMEOUT":            "1m",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	if err := applyEnvOverrides(cfg, lookup); err != nil {
		t.Fatal(err)
	}
	got := []any{
		cfg.Preferences.AngleUnit,
		cfg.Preferences.ComplexFormat,
		cfg.Preferences.FloatFormat,
		cfg.Preferences.SignificantDigits,
		cfg.Engine.PoolCapacity,
		cfg.Engine.Timeout,
	}
	want := []any{symbolic.Gradian, symbolic.Polar, symbolic.EngineeringFormat, 12, 64, time.Minute}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong overrides (-want +got):\n%s", diff)
	}

	env = map[string]string{"SYMBOLIC_POOL_CAPACITY": "lots", "SYMBOLIC_TIMEOUT": "later"}
	err := applyEnvOverrides(Default(), lookup)
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("want 2 errors, got %d: %v", n, err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		fields []string
	}{
		{"ok", func(*Config) {}, nil},
		{
			name:   "digits",
			modify: func(c *Config) { c.Preferences.SignificantDigits = 99 },
			fields: []string{"preferences.significant_digits"},
		},
		{
			name: "pools",
			modify: func(c *Config) {
				c.Engine.PoolCapacity = 0
				c.Engine.SymbolPoolCapacity = -3
			},
			fields: []string{"engine.pool_capacity", "engine.symbol_pool_capacity"},
		},
		{
			name:   "logging",
			modify: func(c *Config) { c.Logging.Level = "loud" },
			fields: []string{"logging.level"},
		},
		{
			name: "names",
			modify: func(c *Config) {
				c.Symbols = map[string]string{"2a": "1", "g": "2"}
				c.Functions = map[string]string{"g": "x", "x": "x"}
			},
			fields: []string{"functions.x", "symbols.2a", "symbols.g"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.modify(cfg)
			var fields []string
			for _, err := range multierr.Errors(Validate(cfg)) {
				fe, ok := err.(*FieldError)
				if !ok {
					t.Fatalf("non-field error %v", err)
				}
				fields = append(fields, fe.Field)
			}
			if diff := cmp.Diff(c.fields, fields, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
				t.Errorf("wrong fields (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSymbolTable(t *testing.T) {
	cfg := Default()
	cfg.Symbols = map[string]string{"a": "f(2)", "b": "a+1"}
	cfg.Functions = map[string]string{"f": "3x"}
	tab, err := cfg.SymbolTable()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, tab.Names()); diff != "" {
		t.Errorf("wrong symbols (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f"}, tab.Functions()); diff != "" {
		t.Errorf("wrong functions (-want +got):\n%s", diff)
	}
	if k := tab.ExpressionForSymbol("a").Kind(); k != symbolic.Function {
		t.Errorf("a should be a function call, got %v", k)
	}

	cfg.Symbols["c"] = "1+"
	if _, err := cfg.SymbolTable(); err == nil {
		t.Error("no error for a bad definition")
	}
}
