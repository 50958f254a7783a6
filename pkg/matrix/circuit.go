package matrix

import (
	"fmt"
	"math"

	"github.com/edp1096/sparse"
)

type element struct {
	row, col int
	value    float64
}

// CircuitMatrix is the sparse backend. Stamps are mirrored into a triplet
// list so that the solution can be checked against the assembled system.
type CircuitMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	elements []element
	config   *sparse.Configuration
	tol      float64
	err      error
}

func NewMatrix(size int, tol float64) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1), // 1-based indexing
		solution: make([]float64, size+1),
		config:   config,
		tol:      tol,
	}, nil
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		m.recordErr(fmt.Errorf("%w: element (%d,%d), size %d", ErrOutOfRange, i, j, m.Size))
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
	m.elements = append(m.elements, element{row: i, col: j, value: value})
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > m.Size {
		m.recordErr(fmt.Errorf("%w: rhs %d, size %d", ErrOutOfRange, i, m.Size))
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
	m.elements = m.elements[:0]
	m.err = nil
}

func (m *CircuitMatrix) Solve() error {
	var err error

	if m.err != nil {
		return m.err
	}

	err = m.matrix.Factor()
	if err != nil {
		return fmt.Errorf("%w: factorization failed: %v", ErrSingular, err)
	}

	rhs := make([]float64, len(m.rhs))
	copy(rhs, m.rhs)
	solution, err := m.matrix.Solve(rhs)
	if err != nil {
		return fmt.Errorf("%w: solve failed: %v", ErrSingular, err)
	}
	if len(solution) < m.Size+1 {
		return fmt.Errorf("%w: solution has %d entries, want %d", ErrBadShape, len(solution), m.Size+1)
	}

	for i := 1; i <= m.Size; i++ {
		if math.IsNaN(solution[i]) || math.IsInf(solution[i], 0) {
			return fmt.Errorf("%w: x%d", ErrSingular, i)
		}
	}

	if res, bound := m.residual(solution); res > bound {
		return fmt.Errorf("%w: residual %g exceeds %g", ErrSingular, res, bound)
	}

	m.solution[0] = 0
	copy(m.solution[1:], solution[1:m.Size+1])
	return nil
}

// residual returns ||A·x - b||inf and the bound it is held to,
// tol * (||A||inf·||x||inf + ||b||inf).
func (m *CircuitMatrix) residual(x []float64) (float64, float64) {
	ax := make([]float64, m.Size+1)
	rowSum := make([]float64, m.Size+1)
	for _, e := range m.elements {
		ax[e.row] += e.value * x[e.col]
		rowSum[e.row] += math.Abs(e.value)
	}

	res, normA, normX, normB := 0.0, 0.0, 0.0, 0.0
	for i := 1; i <= m.Size; i++ {
		res = math.Max(res, math.Abs(ax[i]-m.rhs[i]))
		normA = math.Max(normA, rowSum[i])
		normX = math.Max(normX, math.Abs(x[i]))
		normB = math.Max(normB, math.Abs(m.rhs[i]))
	}

	return res, m.tol * (normA*normX + normB)
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}

func (m *CircuitMatrix) recordErr(err error) {
	if m.err == nil {
		m.err = err
	}
}
