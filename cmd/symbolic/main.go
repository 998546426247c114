// Symbolic is a command-line calculator over the symbolic engine.
//
// Usage:
//
//	# Simplify for display
//	symbolic simplify '2x+3x'
//
//	# Approximate in single precision
//	symbolic approx --single 'sqrt(2)'
//
//	# Use definitions and preferences from a file
//	symbolic --config calc.yaml simplify 'f(a)'
//
//	# Print engine metrics after the command
//	symbolic --metrics reduce 'x+x'
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
