package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/intensity/pkg/config"
	"github.com/edp1096/intensity/pkg/solver"
)

// reportedError is a failure whose report has already been written to
// stdout.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

type rootFlags struct {
	configPath   string
	disconnected string
	sources      string
	backend      string
	format       string
	precision    int
	pivotEps     float64
	verbose      bool
}

// NewRootCmd builds the command tree. Every call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	def := config.Default()

	rootCmd := &cobra.Command{
		Use:   "intensity [file]",
		Short: "DC current solver for resistive networks",
		Long: `Read a list of edges "L -- R, RES;" or "L -- R, RES; VAL V" from a file
or stdin and print the current magnitude of every edge in input order.

Examples:
  intensity circuit.txt                        # Solve a file
  intensity < circuit.txt                      # Solve stdin
  intensity --disconnected float circuit.txt   # Solve each component on its own
  intensity --sources series --format arrow    # Sources as EMFs, arrow output`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML config file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging on stderr")

	f := rootCmd.Flags()
	f.StringVar(&flags.disconnected, "disconnected", def.Disconnected, "disconnected network policy: reject|float")
	f.StringVar(&flags.sources, "sources", def.SourceModel, "voltage source model: clamp|series")
	f.StringVar(&flags.backend, "backend", def.Backend, "linear solver backend: dense|sparse")
	f.StringVar(&flags.format, "format", def.Format, "result line style: plain|arrow")
	f.IntVar(&flags.precision, "precision", def.Precision, "decimals per current value")
	f.Float64Var(&flags.pivotEps, "pivot-eps", def.PivotEpsilon, "relative pivot tolerance of the dense backend")

	rootCmd.AddCommand(newDetCmd())
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags set on the command line win over the file
	fs := cmd.Flags()
	if fs.Changed("disconnected") {
		cfg.Disconnected = flags.disconnected
	}
	if fs.Changed("sources") {
		cfg.SourceModel = flags.sources
	}
	if fs.Changed("backend") {
		cfg.Backend = flags.backend
	}
	if fs.Changed("format") {
		cfg.Format = flags.format
	}
	if fs.Changed("precision") {
		cfg.Precision = flags.precision
	}
	if fs.Changed("pivot-eps") {
		cfg.PivotEpsilon = flags.pivotEps
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openInput returns the named file, or stdin when no file is given.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

func runRoot(cmd *cobra.Command, args []string, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Level())

	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	logger.Debug("solving",
		"disconnected", cfg.Disconnected,
		"sources", cfg.SourceModel,
		"backend", cfg.Backend,
		"pivot_eps", cfg.PivotEpsilon)

	if err := solver.Run(in, cmd.OutOrStdout(), cfg.Options(logger)); err != nil {
		logger.Warn("no result", "error", err)
		return &reportedError{err: err}
	}
	return nil
}
