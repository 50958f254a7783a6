package solver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/edp1096/intensity/internal/consts"
	"github.com/edp1096/intensity/pkg/analysis"
	"github.com/edp1096/intensity/pkg/circuit"
	"github.com/edp1096/intensity/pkg/matrix"
	"github.com/edp1096/intensity/pkg/netlist"
	"github.com/edp1096/intensity/pkg/util"
)

type Options struct {
	Policy    circuit.DisconnectedPolicy
	Model     circuit.SourceModel
	Backend   matrix.Backend
	Eps       float64 // Relative pivot tolerance of the dense backend
	Format    util.LineStyle
	Precision int
	Logger    *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Policy:    circuit.Reject,
		Model:     circuit.Clamp,
		Backend:   matrix.Dense,
		Eps:       consts.PivotEpsilon,
		Format:    util.Plain,
		Precision: consts.CurrentPrecision,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Policy == "" {
		o.Policy = def.Policy
	}
	if o.Model == "" {
		o.Model = def.Model
	}
	if o.Backend == "" {
		o.Backend = def.Backend
	}
	if o.Eps <= 0 {
		o.Eps = def.Eps
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.Precision <= 0 {
		o.Precision = def.Precision
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Solve reads an edge list from r and returns the current of every edge in
// input order. Every call builds its own circuit, so concurrent calls do
// not share state.
func Solve(r io.Reader, opts Options) ([]analysis.BranchCurrent, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	// 1. Parse
	edges, err := netlist.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	logger.Debug("parsed input", "edges", len(edges))

	// 2. Graph
	ckt := circuit.New("intensity")
	defer ckt.Destroy()

	if err := ckt.AssignNodeMap(edges); err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	if err := ckt.CheckConnectivity(opts.Policy); err != nil {
		return nil, fmt.Errorf("checking connectivity: %w", err)
	}
	_, components := ckt.GetComponents()
	logger.Debug("built graph", "nodes", ckt.GetNumNodes(), "components", components, "policy", opts.Policy)

	// 3. Assemble
	if err := ckt.SetupDevices(opts.Model); err != nil {
		return nil, fmt.Errorf("setting up devices: %w", err)
	}
	if err := ckt.CreateMatrix(opts.Backend, opts.Eps); err != nil {
		return nil, err
	}
	logger.Debug("assembled system",
		"devices", len(ckt.GetDevices()),
		"unknowns", ckt.GetNumUnknowns(),
		"model", opts.Model,
		"backend", opts.Backend)

	// 4. Solve and 5. currents
	op := analysis.NewOP(logger)
	if err := op.Setup(ckt); err != nil {
		return nil, fmt.Errorf("analysis setup failed: %w", err)
	}
	if err := op.Execute(); err != nil {
		return nil, fmt.Errorf("analysis execution failed: %w", err)
	}

	return op.GetResults(), nil
}

// Run solves the input and writes either one result line per edge or the
// three-line error report to w. The solve error, if any, is returned after
// the report has been written.
func Run(r io.Reader, w io.Writer, opts Options) error {
	opts = opts.withDefaults()

	results, err := Solve(r, opts)

	var lines []string
	if err != nil {
		opts.Logger.Debug("solve failed", "error", err)
		lines = util.FormatErrorReport(err)
		if errors.Is(err, matrix.ErrSingular) && opts.Backend == matrix.Dense {
			lines[1] += fmt.Sprintf(" (pivot tolerance %g, see --pivot-eps)", opts.Eps)
		}
	} else {
		lines = make([]string, len(results))
		for i, res := range results {
			lines[i] = util.FormatResultLine(res.Left, res.Right, res.Magnitude, opts.Format, opts.Precision)
		}
	}

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, werr := fmt.Fprintln(bw, line); werr != nil {
			return fmt.Errorf("writing output: %w", werr)
		}
	}
	if ferr := bw.Flush(); ferr != nil {
		return fmt.Errorf("writing output: %w", ferr)
	}

	return err
}
