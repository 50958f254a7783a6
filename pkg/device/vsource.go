package device

import (
	"github.com/edp1096/intensity/pkg/matrix"
)

// VoltageSource forces V(n2) - V(n1) = Value. It is not stamped: the
// circuit folds the constraint into terminal offsets, and the branch
// current is recovered afterwards from KCL.
type VoltageSource struct {
	BaseDevice
	Resistance float64 // Resistance written on the edge, 0 for an ideal source
	current    float64
}

func NewDCVoltageSource(name string, edge int, nodes []int, value, resistance float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{
			Name:  name,
			Nodes: nodes,
			Edge:  edge,
			Value: value,
		},
		Resistance: resistance,
	}
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix) error {
	return nil
}

// SetCurrent stores the branch current flowing from the first node to the
// second through the source.
func (v *VoltageSource) SetCurrent(current float64) {
	v.current = current
}

func (v *VoltageSource) GetCurrent() float64 {
	return v.current
}
