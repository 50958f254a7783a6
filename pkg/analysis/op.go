package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/edp1096/intensity/internal/consts"
	"github.com/edp1096/intensity/pkg/circuit"
	"github.com/edp1096/intensity/pkg/device"
	"github.com/edp1096/intensity/pkg/matrix"
	"github.com/edp1096/intensity/pkg/util"
)

// OperatingPoint solves the DC operating point of a linear resistive
// network in a single pass.
type OperatingPoint struct{ BaseAnalysis }

var _ Analysis = (*OperatingPoint)(nil)

func NewOP(logger *slog.Logger) *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(logger),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return errors.New("operating point: nil circuit")
	}
	op.Circuit = ckt
	op.results = nil
	op.potentials = nil
	return nil
}

func (op *OperatingPoint) Execute() error {
	ckt := op.Circuit
	if ckt == nil {
		return errors.New("operating point: not set up")
	}
	op.results = nil
	op.potentials = nil

	// Every potential fixed by ground and sources: nothing to solve
	solution := []float64{0}

	if mat := ckt.GetMatrix(); mat != nil {
		mat.Clear()

		if err := ckt.Stamp(); err != nil {
			return fmt.Errorf("stamping error: %w", err)
		}

		if err := mat.Solve(); err != nil {
			if errors.Is(err, matrix.ErrSingular) || errors.Is(err, matrix.ErrNaNInf) {
				return &circuit.SingularSystemError{
					Reason: fmt.Sprintf("nodal system of %d unknowns has no unique solution", ckt.GetNumUnknowns()),
					Err:    err,
				}
			}
			return fmt.Errorf("matrix solve error: %w", err)
		}
		solution = mat.Solution()
	}

	return op.storeResults(solution)
}

func (op *OperatingPoint) storeResults(solution []float64) error {
	ckt := op.Circuit
	potentials := ckt.NodePotentials(solution)

	// Net current leaving each node through resistors, then the sources
	// make up the difference
	outflow := make([]float64, ckt.GetNumNodes())
	for _, dev := range ckt.GetDevices() {
		res, ok := dev.(*device.Resistor)
		if !ok {
			continue
		}
		current := res.Current(solution)
		nodes := res.GetNodes()
		outflow[nodes[0]] += current
		outflow[nodes[1]] -= current
	}
	ckt.ResolveSourceCurrents(outflow)

	edges := ckt.GetEdges()
	results := make([]BranchCurrent, len(edges))
	for i, edge := range edges {
		var current float64
		switch dev := ckt.GetEdgeDevice(i).(type) {
		case *device.Resistor:
			current = dev.Current(solution)
		case *device.VoltageSource:
			current = dev.GetCurrent()
		}
		if math.IsNaN(current) || math.IsInf(current, 0) {
			return &circuit.SingularSystemError{
				Reason: fmt.Sprintf("current through %q at line %d is not finite (%g)", edge.String(), edge.Line, current),
				Err:    matrix.ErrNaNInf,
			}
		}

		results[i] = BranchCurrent{
			Left:      edge.Left,
			Right:     edge.Right,
			Current:   current,
			Magnitude: math.Abs(current),
		}
		op.logger.Debug("branch current",
			"edge", edge.String(),
			"line", edge.Line,
			"current", util.FormatValueFactor(current, consts.CurrentUnit))
	}

	op.potentials = potentials
	op.results = results
	return nil
}
