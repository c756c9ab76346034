// SPDX-License-Identifier: MIT
package stream_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvsvd/decomp"
	"github.com/katalvlaran/lvsvd/jacobi"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/qr"
	"github.com/katalvlaran/lvsvd/rangefinder"
	"github.com/katalvlaran/lvsvd/stream"
)

func basisFor(t *testing.T, a *matrix.Dense[float64], k, p int) *matrix.Dense[float64] {
	t.Helper()
	y, err := rangefinder.Find(a, k, p, 1, nil, rangefinder.WithSeed(3))
	require.NoError(t, err)

	return y
}

func TestProject_MatchesExplicitBasis(t *testing.T) {
	a, err := rangefinder.Gaussian[float64](300, 20, 1)
	require.NoError(t, err)
	y := basisFor(t, a, 6, 4)

	p, err := stream.Project(a, y, nil, stream.WithBlockRows(64))
	require.NoError(t, err)
	require.Equal(t, 5, p.Blocks)
	require.True(t, matrix.IsUpperTriangular(p.R))

	// Same B as Qᵗ·A with Q materialized.
	q, _, err := qr.Decompose(y)
	require.NoError(t, err)
	direct, err := matrix.MulTA(q, a)
	require.NoError(t, err)
	ok, err := matrix.AllClose(direct, p.B, 1e-9, 1e-9)
	require.NoError(t, err)
	require.True(t, ok)

	// U recovered through R matches Q·Ũ.
	ut, _, _, err := jacobi.SVD(p.B)
	require.NoError(t, err)
	u, err := p.Recover(y, ut, stream.WithBlockRows(77))
	require.NoError(t, err)
	want, err := matrix.Mul(q, ut)
	require.NoError(t, err)
	ok, err = matrix.AllClose(want, u, 1e-8, 1e-8)
	require.NoError(t, err)
	require.True(t, ok)
	e, err := matrix.OrthonormalityError(u)
	require.NoError(t, err)
	require.Less(t, e, 1e-8)
}

// TestProject_BlockSizeInvariance checks that the block height only changes
// the summation order.
func TestProject_BlockSizeInvariance(t *testing.T) {
	a, err := rangefinder.Gaussian[float64](2000, 30, 9)
	require.NoError(t, err)
	y := basisFor(t, a, 10, 5)

	small, err := stream.Project(a, y, nil, stream.WithBlockRows(10))
	require.NoError(t, err)
	large, err := stream.Project(a, y, nil, stream.WithBlockRows(1000))
	require.NoError(t, err)
	require.Equal(t, 200, small.Blocks)
	require.Equal(t, 2, large.Blocks)

	_, s1, _, err := jacobi.SVD(small.B)
	require.NoError(t, err)
	_, s2, _, err := jacobi.SVD(large.B)
	require.NoError(t, err)
	require.InDeltaSlice(t, s1, s2, 1e-6)
}

// TestProject_NativeRFactor streams with gonum's triangular factor, whose
// diagonal signs differ from the Householder one; singular values and the
// recovered U must not notice.
func TestProject_NativeRFactor(t *testing.T) {
	a, err := rangefinder.Gaussian[float64](400, 25, 4)
	require.NoError(t, err)
	y := basisFor(t, a, 8, 4)

	native, err := decomp.New[float64](decomp.Native)
	require.NoError(t, err)
	calls := 0
	rFn := func(m *matrix.Dense[float64]) (*matrix.Dense[float64], error) {
		calls++
		return native.R(m)
	}
	got, err := stream.Project(a, y, rFn, stream.WithBlockRows(50))
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 8, got.Blocks)

	want, err := stream.Project(a, y, nil, stream.WithBlockRows(50))
	require.NoError(t, err)
	_, sGot, _, err := jacobi.SVD(got.B)
	require.NoError(t, err)
	_, sWant, _, err := jacobi.SVD(want.B)
	require.NoError(t, err)
	require.InDeltaSlice(t, sWant, sGot, 1e-9)

	ut, _, _, err := jacobi.SVD(got.B)
	require.NoError(t, err)
	u, err := got.Recover(y, ut)
	require.NoError(t, err)
	e, err := matrix.OrthonormalityError(u)
	require.NoError(t, err)
	require.Less(t, e, 1e-8)

	boom := errors.New("device lost")
	_, err = stream.Project(a, y, func(*matrix.Dense[float64]) (*matrix.Dense[float64], error) { return nil, boom })
	require.ErrorIs(t, err, boom)
}

func TestProject_SingularBasis(t *testing.T) {
	a, err := rangefinder.Gaussian[float64](20, 6, 1)
	require.NoError(t, err)
	// zero third column: Y has rank 2 with 3 columns
	y, err := matrix.NewDense[float64](20, 3)
	require.NoError(t, err)
	lead, err := matrix.Slice(a, 0, 20, 0, 2)
	require.NoError(t, err)
	require.NoError(t, matrix.SetBlock(y, 0, 0, lead))

	_, err = stream.Project(a, y, nil)
	require.ErrorIs(t, err, matrix.ErrSingular)
}

func TestProject_Validation(t *testing.T) {
	a, err := rangefinder.Gaussian[float64](8, 4, 1)
	require.NoError(t, err)
	short, err := rangefinder.Gaussian[float64](7, 2, 1)
	require.NoError(t, err)
	_, err = stream.Project(a, short, nil)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = stream.Project[float64](nil, short, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	wide, err := rangefinder.Gaussian[float64](3, 5, 1)
	require.NoError(t, err)
	flat, err := rangefinder.Gaussian[float64](3, 4, 2)
	require.NoError(t, err)
	_, err = stream.Project(flat, wide, nil)
	require.ErrorIs(t, err, matrix.ErrRankBound)

	require.Panics(t, func() { stream.WithBlockRows(0) })
	require.Panics(t, func() { stream.WithWorkers(0) })
}
