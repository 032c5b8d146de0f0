package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/bignum"
	"github.com/zephyrtronium/mathexpr/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the settings shared by all commands.
type app struct {
	prec    uint
	digits  int
	given   []string
	config  string
	verbose bool

	in    string
	lines bool
	echo  bool

	log zerolog.Logger
	cfg *config.Config
	ns  mathexpr.Namespace
}

func newRootCmd() *cobra.Command {
	a := new(app)
	root := &cobra.Command{
		Use:   "mathexpr [flags] [expression...]",
		Short: "Evaluate math expressions with arbitrary precision",
		Long: `mathexpr evaluates expressions like 2x^2 + 3x - 1 with arbitrary-precision
numbers, matrices, and user-defined functions.

Expressions come from the arguments, or from the input file (default stdin)
when there are none. Variables assigned in one expression are visible to the
following ones.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}
	pf := root.PersistentFlags()
	pf.UintVarP(&a.prec, "prec", "p", 64, "precision of calculations in bits")
	pf.IntVar(&a.digits, "fmt", -1, "significant digits of results (-1 for exact)")
	pf.StringArrayVar(&a.given, "given", nil, "name=value variable definition (any number of times)")
	pf.StringVar(&a.config, "config", "", "config file (.toml, .yaml, or .yml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debugging information")
	f := root.Flags()
	f.StringVar(&a.in, "in", "", "input file, or - for stdin (default stdin if no args given)")
	f.BoolVarP(&a.lines, "lines", "n", false, "parse separate input lines as separate expressions")
	f.BoolVar(&a.echo, "echo", false, "print each expression before its result")
	root.AddCommand(newParseCmd(a), newWatchCmd(a))
	return root
}

// setup configures logging and loads settings, with flags taking precedence
// over the config file.
func (a *app) setup(cmd *cobra.Command) error {
	lvl := zerolog.InfoLevel
	if a.verbose {
		lvl = zerolog.DebugLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().Timestamp().Logger()

	a.cfg = config.Default()
	if a.config != "" {
		cfg, err := config.Load(a.config)
		if err != nil {
			a.log.Error().Err(err).Msg("loading config")
			return err
		}
		a.cfg = cfg
		a.log.Debug().Str("path", a.config).Uint("prec", cfg.Precision).Int("fmt", cfg.Format).Int("vars", len(cfg.Vars)).Msg("loaded config")
	}
	flags := cmd.Flags()
	if flags.Changed("prec") || a.config == "" {
		a.cfg.Precision = a.prec
	}
	if flags.Changed("fmt") || a.config == "" {
		a.cfg.Format = a.digits
	}
	if a.cfg.Precision == 0 {
		err := errors.New("precision must be positive")
		a.log.Error().Err(err).Msg("bad flags")
		return err
	}
	a.ns = bignum.New(a.cfg.Precision)
	return nil
}

// scope creates a scope holding the variables from the config file and
// --given.
func (a *app) scope() (mathexpr.MapScope, error) {
	s := mathexpr.MapScope{}
	if err := a.cfg.Bind(a.ns, s); err != nil {
		return nil, err
	}
	for _, d := range a.given {
		name, value, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf(`variable definitions must be "name=value", not %q`, d)
		}
		name = strings.TrimSpace(name)
		r, err := mathexpr.EvalString(value, a.ns, s)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		s.Set(name, r)
	}
	return s, nil
}

// source is one named input.
type source struct {
	name string
	text string
}

func (a *app) sources(cmd *cobra.Command, args []string) ([]source, error) {
	var r []source
	switch {
	case a.in != "" && a.in != "-":
		b, err := os.ReadFile(a.in)
		if err != nil {
			return nil, err
		}
		r = append(r, source{name: a.in, text: string(b)})
	case a.in == "-", len(args) == 0:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		r = append(r, source{name: "<stdin>", text: string(b)})
	}
	for i, arg := range args {
		r = append(r, source{name: fmt.Sprintf("<arg %d>", i+1), text: arg})
	}
	if !a.lines {
		return r, nil
	}
	var l []source
	for _, src := range r {
		sc := bufio.NewScanner(strings.NewReader(src.text))
		for k := 1; sc.Scan(); k++ {
			if strings.TrimSpace(sc.Text()) == "" {
				continue
			}
			l = append(l, source{name: fmt.Sprintf("%s:%d", src.name, k), text: sc.Text()})
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", src.name, err)
		}
	}
	return l, nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	srcs, err := a.sources(cmd, args)
	if err != nil {
		a.log.Error().Err(err).Msg("reading input")
		return err
	}
	s, err := a.scope()
	if err != nil {
		a.log.Error().Err(err).Msg("defining variables")
		return err
	}
	var exprs []*mathexpr.Evaluator
	for _, src := range srcs {
		e, err := a.compile(src)
		if err != nil {
			return err
		}
		exprs = append(exprs, e)
	}
	out := cmd.OutOrStdout()
	failed := false
	for _, e := range exprs {
		if a.echo {
			fmt.Fprintf(out, "%v : ", e)
		}
		if !a.evaluate(out, e, s) {
			failed = true
		}
	}
	if failed {
		return errors.New("evaluation failed")
	}
	return nil
}

// compile parses and compiles one source, logging any error with its
// position.
func (a *app) compile(src source) (*mathexpr.Evaluator, error) {
	start := time.Now()
	n, err := mathexpr.Parse(src.text)
	if err != nil {
		var ierr mathexpr.InputError
		if errors.As(err, &ierr) {
			a.log.Error().Str("source", src.name).Int("col", ierr.Pos()).Err(err).Msg("parse error")
		} else {
			a.log.Error().Str("source", src.name).Err(err).Msg("parse error")
		}
		return nil, err
	}
	e, err := mathexpr.Compile(n, a.ns)
	if err != nil {
		a.log.Error().Str("source", src.name).Err(err).Msg("compile error")
		return nil, err
	}
	a.log.Debug().Str("source", src.name).Stringer("tree", e).Dur("took", time.Since(start)).Msg("compiled")
	return e, nil
}

// evaluate prints the result of e, or its error. It reports whether
// evaluation succeeded.
func (a *app) evaluate(out io.Writer, e *mathexpr.Evaluator, s mathexpr.Scope) bool {
	start := time.Now()
	r, err := e.Evaluate(s)
	a.log.Debug().Dur("took", time.Since(start)).Msg("evaluated")
	if err != nil {
		fmt.Fprintln(out, err)
		return false
	}
	fmt.Fprintln(out, bignum.Format(r, a.cfg.Format))
	return true
}
