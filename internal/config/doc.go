// Package config loads the settings of the symbolic command from YAML files
// and the environment.
//
// A configuration file looks like:
//
//	preferences:
//	  angle_unit: degree
//	  complex_format: cartesian
//	  float_format: decimal
//	  significant_digits: 10
//	engine:
//	  pool_capacity: 8192
//	  timeout: 2s
//	logging:
//	  level: info
//	symbols:
//	  a: "3/4"
//	functions:
//	  f: "x^2+1"
//
// Environment variables named SYMBOLIC_* override the file. Loading applies
// defaults, then overrides, then validation.
package config
