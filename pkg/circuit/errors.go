package circuit

import (
	"fmt"

	"github.com/edp1096/intensity/pkg/netlist"
)

// DisconnectedGraphError reports a node that cannot be reached from the
// reference node.
type DisconnectedGraphError struct {
	Node       int // Input id of the first unreachable node
	Reference  int // Input id of the reference node
	Components int
}

func (e *DisconnectedGraphError) Error() string {
	return fmt.Sprintf("node %d is not connected to node %d (%d components)", e.Node, e.Reference, e.Components)
}

// ZeroResistanceError reports a short circuit: an edge with no resistance
// and no voltage source.
type ZeroResistanceError struct {
	Edge netlist.Edge
}

func (e *ZeroResistanceError) Error() string {
	return fmt.Sprintf("edge %q at line %d has zero resistance and no voltage source", e.Edge.String(), e.Edge.Line)
}

// InconsistentVoltageError reports a voltage source that contradicts the
// potentials already forced by other sources.
type InconsistentVoltageError struct {
	Edge   netlist.Edge
	Forced float64 // V(Right) - V(Left) implied by the other sources
}

func (e *InconsistentVoltageError) Error() string {
	return fmt.Sprintf("edge %q at line %d forces %gV but other sources force %gV",
		e.Edge.String(), e.Edge.Line, e.Edge.VoltageValue(), e.Forced)
}

// SingularSystemError reports a network whose currents are not uniquely
// determined.
type SingularSystemError struct {
	Reason string
	Err    error
}

func (e *SingularSystemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("singular system: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("singular system: %s", e.Reason)
}

func (e *SingularSystemError) Unwrap() error {
	return e.Err
}
