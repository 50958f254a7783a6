package device

import (
	"fmt"

	"github.com/edp1096/intensity/pkg/matrix"
)

// Resistor is a two-terminal conductance, optionally with an EMF in series
// that drives current from its first node to its second.
type Resistor struct {
	BaseDevice
	EMF float64
}

func NewResistor(name string, edge int, nodes []int, value float64) *Resistor {
	return &Resistor{
		BaseDevice: BaseDevice{
			Name:  name,
			Nodes: nodes,
			Edge:  edge,
			Value: value,
		},
	}
}

// NewBattery returns a resistor with a series EMF. Its current is
// (V(n1) - V(n2) + emf) / value.
func NewBattery(name string, edge int, nodes []int, value, emf float64) *Resistor {
	r := NewResistor(name, edge, nodes, value)
	r.EMF = emf
	return r
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix) error {
	if len(r.Nodes) != 2 || len(r.Terminals) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}
	if r.Value <= 0 {
		return fmt.Errorf("resistor %s: resistance must be positive, got %g", r.Name, r.Value)
	}

	t1, t2 := r.Terminals[0], r.Terminals[1]
	n1, n2 := t1.Index, t2.Index

	// Both ends inside one supernode: the current is fixed by offsets alone
	if n1 == n2 {
		return nil
	}

	g := 1.0 / r.Value
	drive := g * (r.EMF + t1.Offset - t2.Offset)

	if n1 != 0 {
		matrix.AddElement(n1, n1, g)
		matrix.AddRHS(n1, -drive)
		if n2 != 0 {
			matrix.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, -g)
		}
		matrix.AddElement(n2, n2, g)
		matrix.AddRHS(n2, drive)
	}

	return nil
}

// Current returns the current flowing from the first node to the second.
func (r *Resistor) Current(solution []float64) float64 {
	v1 := r.Terminals[0].Potential(solution)
	v2 := r.Terminals[1].Potential(solution)
	return (v1 - v2 + r.EMF) / r.Value
}
