package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/symbolic"
	"github.com/zephyrtronium/symbolic/internal/config"
	"github.com/zephyrtronium/symbolic/metrics"
)

// env is the state shared by subcommands.
type env struct {
	cfgFile string
	verbose bool
	timeout time.Duration
	metrics bool

	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	pool    *symbolic.Pool
	symbols *symbolic.SymbolTable
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "symbolic",
		Short: "Symbolic calculator engine",
		Long: `Symbolic parses, simplifies, approximates, and lays out math expressions.

Preferences and definitions of symbols and functions come from an optional
YAML configuration file and SYMBOLIC_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return e.setup(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !e.metrics {
				return nil
			}
			return e.dumpMetrics(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&e.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log engine events")
	root.PersistentFlags().DurationVar(&e.timeout, "timeout", 0, "bound on each computation, overriding the config")
	root.PersistentFlags().BoolVar(&e.metrics, "metrics", false, "print engine metrics to stderr after the command")

	root.AddCommand(
		newSimplifyCmd(e),
		newReduceCmd(e),
		newApproxCmd(e),
		newLayoutCmd(e),
		newVarsCmd(e),
		newDegreeCmd(e),
	)
	return root
}

// setup loads the configuration and creates the pool and symbol table.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(e.cfgFile)
	if err != nil {
		return err
	}
	if e.timeout != 0 {
		cfg.Engine.Timeout = e.timeout
	}
	e.cfg = cfg
	e.log = newLogger(cmd.ErrOrStderr(), cfg.Logging, e.verbose)
	e.reg = prometheus.NewRegistry()
	e.pool = symbolic.NewPool(cfg.Engine.PoolCapacity,
		symbolic.WithLogger(e.log),
		symbolic.WithObserver(metrics.NewCollector(e.reg)),
	)
	e.symbols, err = cfg.SymbolTable()
	if err != nil {
		return errors.WithMessage(err, "couldn't load definitions")
	}
	e.log.Debug("configured",
		slog.String("config", e.cfgFile),
		slog.Int("pool_capacity", cfg.Engine.PoolCapacity),
		slog.Duration("timeout", cfg.Engine.Timeout),
		slog.Int("symbols", len(cfg.Symbols)),
		slog.Int("functions", len(cfg.Functions)),
	)
	return nil
}

func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// context returns the context bounding one computation.
func (e *env) context(parent context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.Engine.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeoutCause(parent, e.cfg.Engine.Timeout, errors.New("timeout"))
}

// parse parses the arguments of a command as one expression.
func (e *env) parse(args []string) (*symbolic.Expression, error) {
	src := strings.Join(args, " ")
	x, err := symbolic.ParseString(e.pool, src, symbolic.ParseFunction(e.symbols.Functions()...))
	if err != nil {
		return nil, errors.WithMessagef(err, "couldn't parse %q", src)
	}
	return x, nil
}

// show lays out x with the configured number format.
func (e *env) show(x *symbolic.Expression) string {
	return x.CreateLayout(e.cfg.Preferences.FloatFormat, e.cfg.Digits()).String()
}

func (e *env) dumpMetrics(w io.Writer) error {
	mfs, err := e.reg.Gather()
	if err != nil {
		return errors.Wrap(err, "couldn't gather metrics")
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrap(err, "couldn't write metrics")
		}
	}
	return nil
}
