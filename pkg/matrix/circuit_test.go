package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseMatchesDense(t *testing.T) {
	a := [][]float64{
		{3, -1, -1, 0},
		{-1, 3, 0, -1},
		{-1, 0, 2, -1},
		{0, -1, -1, 3},
	}
	b := []float64{1, 0, 2, -1}

	dense := NewDense(4, 1e-9)
	stampAll(dense, a, b)
	require.NoError(t, dense.Solve())

	sparseSys, err := New(Sparse, 4, 1e-9)
	require.NoError(t, err)
	defer sparseSys.Destroy()
	stampAll(sparseSys, a, b)
	require.NoError(t, sparseSys.Solve())

	want, got := dense.Solution(), sparseSys.Solution()
	require.Len(t, got, len(want))
	for i := 1; i < len(want); i++ {
		assert.InDelta(t, want[i], got[i], 1e-9, "x%d", i)
	}
	assert.Zero(t, got[0])
}

func TestSparseOutOfRange(t *testing.T) {
	m, err := NewMatrix(2, 1e-8)
	require.NoError(t, err)
	defer m.Destroy()

	m.AddElement(1, 1, 1)
	m.AddElement(2, 2, 1)
	m.AddRHS(5, 1)

	require.ErrorIs(t, m.Solve(), ErrOutOfRange)
}

func TestSparseResidualBound(t *testing.T) {
	m, err := NewMatrix(2, 1e-8)
	require.NoError(t, err)
	defer m.Destroy()

	stampAll(m, [][]float64{{2, -1}, {-1, 2}}, []float64{1, 0})

	res, bound := m.residual([]float64{0, 2.0 / 3.0, 1.0 / 3.0})
	assert.LessOrEqual(t, res, bound)

	res, bound = m.residual([]float64{0, 1, 1})
	assert.Greater(t, res, bound)
}
