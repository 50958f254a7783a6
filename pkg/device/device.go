package device

import (
	"github.com/edp1096/intensity/pkg/matrix"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodes() []int
	GetEdge() int
	GetValue() float64
	SetTerminals(terminals []Terminal)
	Stamp(matrix matrix.DeviceMatrix) error
}

// Terminal binds a device pin to an unknown of the linear system. The node
// potential is x[Index] + Offset; Index 0 is the ground reference.
type Terminal struct {
	Index  int
	Offset float64
}

func (t Terminal) Potential(solution []float64) float64 {
	if t.Index == 0 {
		return t.Offset
	}
	return solution[t.Index] + t.Offset
}

type BaseDevice struct {
	Name      string
	Nodes     []int // Dense node indices
	Terminals []Terminal
	Edge      int // Index of the input edge this device belongs to
	Value     float64
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetEdge() int {
	return d.Edge
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetTerminals(terminals []Terminal) {
	d.Terminals = terminals
}
