package config

import "time"

// Default values.
const (
	DefaultPoolCapacity       = 8192
	DefaultSymbolPoolCapacity = 4096
	DefaultTimeout            = 5 * time.Second
	DefaultSignificantDigits  = 10
	DefaultLogLevel           = "warn"
	DefaultLogFormat          = "text"
)

// ApplyDefaults fills unset fields of cfg. It is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Engine.PoolCapacity == 0 {
		cfg.Engine.PoolCapacity = DefaultPoolCapacity
	}
	if cfg.Engine.SymbolPoolCapacity == 0 {
		cfg.Engine.SymbolPoolCapacity = DefaultSymbolPoolCapacity
	}
	if cfg.Engine.Timeout == 0 {
		cfg.Engine.Timeout = DefaultTimeout
	}
	if cfg.Preferences.SignificantDigits == 0 {
		cfg.Preferences.SignificantDigits = DefaultSignificantDigits
	}
	if cfg.Preferences.Symbolic == nil {
		on := true
		cfg.Preferences.Symbolic = &on
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
