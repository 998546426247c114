package config

import (
	"maps"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/zephyrtronium/symbolic"
)

// Config is the complete configuration of the command.
type Config struct {
	Preferences PreferencesConfig `yaml:"preferences"`
	Engine      EngineConfig      `yaml:"engine"`
	Logging     LoggingConfig     `yaml:"logging"`
	// Symbols maps symbol names to definitions in expression syntax.
	Symbols map[string]string `yaml:"symbols"`
	// Functions maps function names to definitions written in terms of x.
	Functions map[string]string `yaml:"functions"`
}

// PreferencesConfig holds calculator preferences.
type PreferencesConfig struct {
	AngleUnit     symbolic.AngleUnit     `yaml:"angle_unit"`
	ComplexFormat symbolic.ComplexFormat `yaml:"complex_format"`
	FloatFormat   symbolic.FloatFormat   `yaml:"float_format"`
	// SignificantDigits is the number of digits shown for approximate
	// numbers. Negative means the shortest representation that round-trips.
	SignificantDigits int `yaml:"significant_digits"`
	// Symbolic controls whether defined symbols are substituted during
	// reduction. Defaults to true.
	Symbolic *bool `yaml:"symbolic"`
}

// EngineConfig holds limits of the engine.
type EngineConfig struct {
	// PoolCapacity is the number of nodes in the expression pool.
	PoolCapacity int `yaml:"pool_capacity"`
	// SymbolPoolCapacity is the number of nodes available to definitions.
	SymbolPoolCapacity int `yaml:"symbol_pool_capacity"`
	// Timeout bounds each reduction or approximation. Negative disables it.
	Timeout time.Duration `yaml:"timeout"`
	// Seed seeds random functions during approximation. Zero picks a random
	// seed.
	Seed uint64 `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// ReductionContext returns the reduction parameters described by cfg.
func (cfg *Config) ReductionContext(symbols symbolic.Context, target symbolic.ReductionTarget) symbolic.ReductionContext {
	on := cfg.Preferences.Symbolic == nil || *cfg.Preferences.Symbolic
	return symbolic.NewReductionContext(symbols, cfg.Preferences.ComplexFormat, cfg.Preferences.AngleUnit, target, on)
}

// SymbolTable parses the configured definitions into a new symbol table.
// Definitions may refer to any configured function.
func (cfg *Config) SymbolTable() (*symbolic.SymbolTable, error) {
	t := symbolic.NewSymbolTable(symbolic.TablePoolSize(cfg.Engine.SymbolPoolCapacity))
	scratch := symbolic.NewPool(cfg.Engine.SymbolPoolCapacity)
	fn := symbolic.ParseFunction(slices.Collect(maps.Keys(cfg.Functions))...)
	for _, name := range slices.Sorted(maps.Keys(cfg.Symbols)) {
		e, err := symbolic.ParseString(scratch, cfg.Symbols[name], fn)
		if err != nil {
			return nil, errors.WithMessagef(err, "symbol %s", name)
		}
		t.Set(name, e)
		e.Release()
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Functions)) {
		e, err := symbolic.ParseString(scratch, cfg.Functions[name], fn)
		if err != nil {
			return nil, errors.WithMessagef(err, "function %s", name)
		}
		t.SetFunction(name, e)
		e.Release()
	}
	if err := t.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Digits returns the significant digits to request from layouts.
func (cfg *Config) Digits() int {
	return max(cfg.Preferences.SignificantDigits, 0)
}
