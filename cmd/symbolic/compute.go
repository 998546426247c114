package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/constraints"

	"github.com/zephyrtronium/symbolic"
)

// interrupted writes the report of a computation stopped by the timeout.
// Other errors are returned.
func interrupted(cmd *cobra.Command, err error) error {
	if errors.Is(err, symbolic.ErrInterrupted) {
		fmt.Fprintln(cmd.OutOrStdout(), "interrupted")
		return nil
	}
	return err
}

func newSimplifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "simplify EXPR...",
		Short: "Simplify an expression for display",
		Long: `Simplify reduces an expression for the user and beautifies the result.

Examples:
  symbolic simplify '2x+3x'
  symbolic simplify 'sqrt(8)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := e.parse(args)
			if err != nil {
				return err
			}
			defer x.Release()
			ctx, cancel := e.context(cmd.Context())
			defer cancel()
			if _, err := x.Simplify(ctx, e.cfg.ReductionContext(e.symbols, symbolic.User)); err != nil {
				return interrupted(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.show(x))
			return nil
		},
	}
}

func newReduceCmd(e *env) *cobra.Command {
	var target symbolic.ReductionTarget
	cmd := &cobra.Command{
		Use:   "reduce EXPR...",
		Short: "Reduce an expression to canonical form",
		Long: `Reduce rewrites an expression into the canonical form used internally.
With --target user, it produces the simplified form without beautification.

Examples:
  symbolic reduce 'x+x'
  symbolic reduce --target user '1/x*x'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := e.parse(args)
			if err != nil {
				return err
			}
			defer x.Release()
			ctx, cancel := e.context(cmd.Context())
			defer cancel()
			changed, err := x.Reduce(ctx, e.cfg.ReductionContext(e.symbols, target))
			if err != nil {
				return interrupted(cmd, err)
			}
			e.log.Debug("reduced", "changed", changed, "live", e.pool.Live())
			fmt.Fprintln(cmd.OutOrStdout(), e.show(x))
			return nil
		},
	}
	cmd.Flags().Var(textFlag{&target}, "target", "reduction target: system or user")
	return cmd
}

func newApproxCmd(e *env) *cobra.Command {
	var single bool
	cmd := &cobra.Command{
		Use:   "approx EXPR...",
		Short: "Approximate an expression numerically",
		Long: `Approx evaluates an expression over the complex numbers. Results outside
the configured complex format are undefined.

Examples:
  symbolic approx 'sqrt(2)'
  symbolic approx --single 'sum(1/k^2,k,1,100)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := e.parse(args)
			if err != nil {
				return err
			}
			defer x.Release()
			ctx, cancel := e.context(cmd.Context())
			defer cancel()
			var opts []symbolic.ApproximationOption
			if e.cfg.Engine.Seed != 0 {
				opts = append(opts, symbolic.WithSeed(e.cfg.Engine.Seed))
			}
			var r *symbolic.Expression
			if single {
				r, err = approximate[float32](ctx, e, x, opts)
			} else {
				r, err = approximate[float64](ctx, e, x, opts)
			}
			if err != nil {
				return interrupted(cmd, err)
			}
			defer r.Release()
			fmt.Fprintln(cmd.OutOrStdout(), e.show(r))
			return nil
		},
	}
	cmd.Flags().BoolVar(&single, "single", false, "approximate in single precision")
	return cmd
}

// approximate evaluates x at the precision of T and converts the result to an
// expression in the command's pool.
func approximate[T constraints.Float](ctx context.Context, e *env, x *symbolic.Expression, opts []symbolic.ApproximationOption) (*symbolic.Expression, error) {
	cf := e.cfg.Preferences.ComplexFormat
	v, err := symbolic.Approximate[T](ctx, x, e.symbols, cf, e.cfg.Preferences.AngleUnit, opts...)
	if err != nil {
		return nil, err
	}
	return v.ToExpression(e.pool, cf)
}

// textFlag adapts an encoding.TextUnmarshaler enum to a pflag.Value.
type textFlag struct {
	v interface {
		MarshalText() ([]byte, error)
		UnmarshalText([]byte) error
	}
}

func (f textFlag) String() string {
	if f.v == nil {
		return ""
	}
	b, _ := f.v.MarshalText()
	return string(b)
}

func (f textFlag) Set(s string) error {
	return f.v.UnmarshalText([]byte(s))
}

func (textFlag) Type() string {
	return "string"
}
