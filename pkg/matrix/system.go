package matrix

import (
	"fmt"

	"github.com/edp1096/intensity/internal/consts"
)

// System is a square linear system assembled through DeviceMatrix stamps.
// Rows and columns are 1-based; index 0 stands for the ground reference and
// is never stored.
type System interface {
	DeviceMatrix
	Solve() error
	Solution() []float64 // 1-based, Solution()[0] is always 0
	Clear()
	Destroy()
}

type Backend string

const (
	Dense  Backend = "dense"
	Sparse Backend = "sparse"
)

// New creates an empty system of the given size on the selected backend.
// eps is the relative pivot tolerance of the dense backend. The sparse
// backend pivots on its own and is held to consts.ResidualTolerance.
func New(backend Backend, size int, eps float64) (System, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrBadShape, size)
	}

	switch backend {
	case Dense, "":
		return NewDense(size, eps), nil
	case Sparse:
		m, err := NewMatrix(size, consts.ResidualTolerance)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
