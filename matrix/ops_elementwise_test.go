// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvsvd/matrix"
)

func TestBroadcastSubCols(t *testing.T) {
	x := MustRows(t, [][]float64{{1, 10}, {3, 20}})
	out, err := matrix.BroadcastSubCols(x, []float64{2, 15})
	require.NoError(t, err)
	require.Equal(t, []float64{-1, -5, 1, 5}, out.RawData())

	_, err = matrix.BroadcastSubCols(x, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestScaleCols(t *testing.T) {
	x := MustRows(t, [][]float64{{1, 10}, {3, 20}})
	out, err := matrix.ScaleCols(x, []float64{2, 0.1})
	require.NoError(t, err)
	ok, err := matrix.AllClose(out, MustRows(t, [][]float64{{2, 1}, {6, 2}}), 0, 1e-15)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestApply_RejectsNonFinite(t *testing.T) {
	x := MustRows(t, [][]float64{{1, 4}, {8, 16}})
	out, err := matrix.Apply(x, func(v float64) float64 { return math.Log2(v) })
	require.NoError(t, err)
	require.Equal(t, []float64{0, 2, 3, 4}, out.RawData())

	_, err = matrix.Apply(MustRows(t, [][]float64{{0}}), func(v float64) float64 { return math.Log2(v) })
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestAllClose(t *testing.T) {
	a := MustRows(t, [][]float64{{1, 2}})
	b := MustRows(t, [][]float64{{1 + 1e-9, 2}})
	ok, err := matrix.AllClose(a, b, 0, 1e-8)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matrix.AllClose(a, b, 0, 1e-10)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = matrix.AllClose(a, MustDense(t, 2, 1), 0, 1)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.AllClose(a, b, math.NaN(), 0)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}
