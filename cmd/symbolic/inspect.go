package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/symbolic"
)

func newLayoutCmd(e *env) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "layout EXPR...",
		Short: "Show the display layout of an expression",
		Long: `Layout prints the linear rendering of an expression as parsed, without
reduction. With --tree, it prints the layout tree instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := e.parse(args)
			if err != nil {
				return err
			}
			defer x.Release()
			l := x.CreateLayout(e.cfg.Preferences.FloatFormat, e.cfg.Digits())
			if tree {
				writeTree(cmd.OutOrStdout(), l, 0)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), l)
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print the layout tree")
	return cmd
}

func writeTree(w io.Writer, l *symbolic.Layout, depth int) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(l.Kind.String())
	if l.Text != "" {
		b.WriteString(" " + strconv.Quote(l.Text))
	}
	if l.Kind == symbolic.LayoutMatrix {
		b.WriteString(" cols=" + strconv.Itoa(l.Columns))
	}
	fmt.Fprintln(w, b.String())
	for _, c := range l.Children {
		writeTree(w, c, depth+1)
	}
}

func newVarsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "vars EXPR...",
		Short: "List the free variables of an expression",
		Long: `Vars prints the free symbols of an expression, one per line. Symbols
defined in the configuration contribute the variables of their definitions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := e.parse(args)
			if err != nil {
				return err
			}
			defer x.Release()
			for _, v := range x.Variables(e.symbols, nil) {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func newDegreeCmd(e *env) *cobra.Command {
	var (
		variable string
		coefs    bool
	)
	cmd := &cobra.Command{
		Use:   "degree EXPR...",
		Short: "Show the polynomial degree of an expression",
		Long: `Degree prints the degree of an expression as a polynomial in a variable,
or -1 if it is not a polynomial. With --coefficients, it also prints the
coefficients, lowest degree first.

Examples:
  symbolic degree '3x^2+x'
  symbolic degree --var t --coefficients '(t+1)^2'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := e.parse(args)
			if err != nil {
				return err
			}
			defer x.Release()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, x.PolynomialDegree(e.symbols, variable))
			if !coefs {
				return nil
			}
			ctx, cancel := e.context(cmd.Context())
			defer cancel()
			cs, err := x.PolynomialCoefficients(ctx, e.cfg.ReductionContext(e.symbols, symbolic.System), variable)
			if err != nil {
				return interrupted(cmd, err)
			}
			for i, c := range cs {
				fmt.Fprintf(out, "%d: %s\n", i, e.show(c))
				c.Release()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variable, "var", symbolic.UnknownX, "polynomial variable")
	cmd.Flags().BoolVar(&coefs, "coefficients", false, "print the coefficients")
	return cmd
}
