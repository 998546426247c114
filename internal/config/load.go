package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path, applies defaults and environment
// overrides, and validates the result. An empty path loads only defaults and
// the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't read configuration file %q", path)
		}
		if err := Parse(data, &cfg); err != nil {
			return nil, errors.WithMessagef(err, "couldn't parse configuration file %q", path)
		}
	}
	ApplyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg, lookupEnv); err != nil {
		return nil, errors.WithMessage(err, "bad environment override")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.WithMessage(err, "invalid configuration")
	}
	return &cfg, nil
}

// Parse decodes YAML into cfg. Unknown fields are errors.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.WithStack(err)
	}
	return nil
}

// applyEnvOverrides applies SYMBOLIC_* variables from lookup to cfg.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	var err error
	if v, ok := lookup("SYMBOLIC_ANGLE_UNIT"); ok {
		err = multierr.Append(err, errors.WithMessage(cfg.Preferences.AngleUnit.UnmarshalText([]byte(v)), "SYMBOLIC_ANGLE_UNIT"))
	}
	if v, ok := lookup("SYMBOLIC_COMPLEX_FORMAT"); ok {
		err = multierr.Append(err, errors.WithMessage(cfg.Preferences.ComplexFormat.UnmarshalText([]byte(v)), "SYMBOLIC_COMPLEX_FORMAT"))
	}
	if v, ok := lookup("SYMBOLIC_FLOAT_FORMAT"); ok {
		err = multierr.Append(err, errors.WithMessage(cfg.Preferences.FloatFormat.UnmarshalText([]byte(v)), "SYMBOLIC_FLOAT_FORMAT"))
	}
	if v, ok := lookup("SYMBOLIC_SIGNIFICANT_DIGITS"); ok {
		n, e := strconv.Atoi(v)
		if e == nil {
			cfg.Preferences.SignificantDigits = n
		}
		err = multierr.Append(err, errors.Wrap(e, "SYMBOLIC_SIGNIFICANT_DIGITS"))
	}
	if v, ok := lookup("SYMBOLIC_POOL_CAPACITY"); ok {
		n, e := strconv.Atoi(v)
		if e == nil {
			cfg.Engine.PoolCapacity = n
		}
		err = multierr.Append(err, errors.Wrap(e, "SYMBOLIC_POOL_CAPACITY"))
	}
	if v, ok := lookup("SYMBOLIC_TIMEOUT"); ok {
		d, e := time.ParseDuration(v)
		if e == nil {
			cfg.Engine.Timeout = d
		}
		err = multierr.Append(err, errors.Wrap(e, "SYMBOLIC_TIMEOUT"))
	}
	return err
}

// lookupEnv treats empty variables as unset.
func lookupEnv(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
