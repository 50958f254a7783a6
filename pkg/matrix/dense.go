package matrix

import (
	"fmt"
	"math"
)

// DenseMatrix keeps the system in a flat row-major arena and solves it by
// Gaussian elimination with partial pivoting.
type DenseMatrix struct {
	Size     int
	data     []float64 // Size*Size, row-major, 0-based
	rhs      []float64 // 1-based indexing
	solution []float64 // 1-based indexing
	eps      float64
	err      error
}

func NewDense(size int, eps float64) *DenseMatrix {
	return &DenseMatrix{
		Size:     size,
		data:     make([]float64, size*size),
		rhs:      make([]float64, size+1),
		solution: make([]float64, size+1),
		eps:      eps,
	}
}

func (m *DenseMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		m.recordErr(fmt.Errorf("%w: element (%d,%d), size %d", ErrOutOfRange, i, j, m.Size))
		return
	}
	m.data[(i-1)*m.Size+(j-1)] += value
}

func (m *DenseMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > m.Size {
		m.recordErr(fmt.Errorf("%w: rhs %d, size %d", ErrOutOfRange, i, m.Size))
		return
	}
	m.rhs[i] += value
}

// At returns the assembled element (i, j), 1-based.
func (m *DenseMatrix) At(i, j int) float64 {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return 0
	}
	return m.data[(i-1)*m.Size+(j-1)]
}

func (m *DenseMatrix) RHS() []float64 {
	return m.rhs
}

func (m *DenseMatrix) Solution() []float64 {
	return m.solution
}

func (m *DenseMatrix) Solve() error {
	if m.err != nil {
		return m.err
	}

	n := m.Size
	a := make([]float64, len(m.data))
	copy(a, m.data)
	b := make([]float64, n)
	copy(b, m.rhs[1:])

	x, err := gaussSolve(a, b, n, m.eps)
	if err != nil {
		return err
	}

	m.solution[0] = 0
	copy(m.solution[1:], x)
	return nil
}

func (m *DenseMatrix) Clear() {
	for i := range m.data {
		m.data[i] = 0
	}
	for i := range m.rhs {
		m.rhs[i] = 0
	}
	m.err = nil
}

// Destroy releases the arena. The dense backend owns no external resources.
func (m *DenseMatrix) Destroy() {
	m.data = nil
	m.rhs = nil
}

func (m *DenseMatrix) recordErr(err error) {
	if m.err == nil {
		m.err = err
	}
}

// gaussSolve solves a·x = b in place. a is n*n row-major and is destroyed.
// A pivot whose magnitude falls below eps times the largest absolute entry
// of a is reported as ErrSingular.
func gaussSolve(a, b []float64, n int, eps float64) ([]float64, error) {
	scale := 0.0
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNaNInf
		}
		scale = math.Max(scale, math.Abs(v))
	}
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNaNInf
		}
	}
	if scale == 0 {
		return nil, fmt.Errorf("%w: zero matrix", ErrSingular)
	}
	threshold := eps * scale

	for k := 0; k < n; k++ {
		// Partial pivoting: largest magnitude in column k at or below row k
		p := k
		for i := k + 1; i < n; i++ {
			if math.Abs(a[i*n+k]) > math.Abs(a[p*n+k]) {
				p = i
			}
		}
		pivot := a[p*n+k]
		if math.Abs(pivot) < threshold {
			return nil, fmt.Errorf("%w: pivot %g at column %d", ErrSingular, pivot, k+1)
		}
		if p != k {
			swapRows(a, n, p, k)
			b[p], b[k] = b[k], b[p]
		}

		for i := k + 1; i < n; i++ {
			f := a[i*n+k] / pivot
			if f == 0 {
				continue
			}
			a[i*n+k] = 0
			for j := k + 1; j < n; j++ {
				a[i*n+j] -= f * a[k*n+j]
			}
			b[i] -= f * b[k]
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum -= a[i*n+j] * x[j]
		}
		x[i] = sum / a[i*n+i]
	}

	return x, nil
}

func swapRows(a []float64, n, r1, r2 int) {
	row1 := a[r1*n : (r1+1)*n]
	row2 := a[r2*n : (r2+1)*n]
	for j := range row1 {
		row1[j], row2[j] = row2[j], row1[j]
	}
}

// Determinant returns det of the n*n row-major matrix in data. A matrix that
// is exactly singular yields 0 without error.
func Determinant(n int, data []float64) (float64, error) {
	if n <= 0 || len(data) != n*n {
		return 0, fmt.Errorf("%w: %d values for %dx%d", ErrBadShape, len(data), n, n)
	}

	a := make([]float64, len(data))
	copy(a, data)
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrNaNInf
		}
	}

	det := 1.0
	for k := 0; k < n; k++ {
		p := k
		for i := k + 1; i < n; i++ {
			if math.Abs(a[i*n+k]) > math.Abs(a[p*n+k]) {
				p = i
			}
		}
		if a[p*n+k] == 0 {
			return 0, nil
		}
		if p != k {
			swapRows(a, n, p, k)
			det = -det
		}

		pivot := a[k*n+k]
		det *= pivot
		for i := k + 1; i < n; i++ {
			f := a[i*n+k] / pivot
			for j := k + 1; j < n; j++ {
				a[i*n+j] -= f * a[k*n+j]
			}
		}
	}

	return det, nil
}
