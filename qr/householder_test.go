// SPDX-License-Identifier: MIT
package qr_test

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/qr"
)

// invariantTol bounds ‖M − QR‖/‖M‖ and the below-diagonal part of R.
const invariantTol = 1e-10

func randDense(t testing.TB, r, c int, seed uint64) *matrix.Dense[float64] {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 1))
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	m, err := matrix.NewDenseFrom(r, c, data)
	require.NoError(t, err)

	return m
}

// relResidual returns ‖m − q·r‖_F / ‖m‖_F (absolute when m is zero).
func relResidual(t testing.TB, m, q, r *matrix.Dense[float64]) float64 {
	t.Helper()
	prod, err := matrix.Mul(q, r)
	require.NoError(t, err)
	diff, err := matrix.Sub(m, prod)
	require.NoError(t, err)
	num, err := matrix.FrobeniusNorm(diff)
	require.NoError(t, err)
	den, err := matrix.FrobeniusNorm(m)
	require.NoError(t, err)
	if den == 0 {
		return num
	}

	return num / den
}

// HouseholderSuite exercises the thin QR decomposition.
type HouseholderSuite struct {
	suite.Suite
}

// TestInvariants checks reconstruction, triangularity and orthonormality
// across tall, square and wide shapes.
func (s *HouseholderSuite) TestInvariants() {
	shapes := []struct{ p, q int }{
		{1, 1}, {2, 1}, {1, 3}, {4, 4}, {7, 5}, {5, 7}, {60, 20}, {20, 60},
	}
	for i, sh := range shapes {
		s.Run(fmt.Sprintf("%dx%d", sh.p, sh.q), func() {
			m := randDense(s.T(), sh.p, sh.q, uint64(100+i))
			f, err := qr.Factorize(m)
			require.NoError(s.T(), err)

			k := min(sh.p, sh.q)
			qRows, qCols := f.Q.Dims()
			rRows, rCols := f.R.Dims()
			require.Equal(s.T(), []int{sh.p, k, k, sh.q}, []int{qRows, qCols, rRows, rCols})

			require.Less(s.T(), relResidual(s.T(), m, f.Q, f.R), invariantTol)
			require.Less(s.T(), matrix.MaxAbsBelowDiagonal(f.R), invariantTol)
			oe, err := matrix.OrthonormalityError(f.Q)
			require.NoError(s.T(), err)
			require.Less(s.T(), oe, invariantTol)
			require.Empty(s.T(), f.Degenerate)
		})
	}
}

// TestInputNotMutated verifies copy-on-entry.
func (s *HouseholderSuite) TestInputNotMutated() {
	m := randDense(s.T(), 6, 4, 7)
	before := m.RawData()
	_, _, err := qr.Decompose(m)
	require.NoError(s.T(), err)
	require.Equal(s.T(), before, m.RawData())
}

// TestZeroColumn checks the pass-through reflector on a zero pivot column.
func (s *HouseholderSuite) TestZeroColumn() {
	m, err := matrix.FromRows([][]float64{
		{1, 0, 2},
		{2, 0, -1},
		{3, 0, 4},
		{4, 0, 1},
	})
	require.NoError(s.T(), err)
	f, err := qr.Factorize(m)
	require.NoError(s.T(), err)
	require.Less(s.T(), relResidual(s.T(), m, f.Q, f.R), invariantTol)
	require.Less(s.T(), matrix.MaxAbsBelowDiagonal(f.R), invariantTol)

	// Column 1 is zero after the first reflector, so it is passed through.
	require.Equal(s.T(), []int{1}, f.Degenerate)
}

// TestZeroMatrix returns Q = I[:, :k] and R = 0.
func (s *HouseholderSuite) TestZeroMatrix() {
	m, err := matrix.NewDense[float64](5, 3)
	require.NoError(s.T(), err)
	f, err := qr.Factorize(m)
	require.NoError(s.T(), err)
	eye, err := matrix.Eye[float64](5, 3)
	require.NoError(s.T(), err)
	require.Equal(s.T(), eye.RawData(), f.Q.RawData())
	require.Equal(s.T(), make([]float64, 9), f.R.RawData())
	require.Equal(s.T(), []int{0, 1, 2}, f.Degenerate)
}

// TestRFactorMatchesFactorize checks the R-only path is the same computation.
func (s *HouseholderSuite) TestRFactorMatchesFactorize() {
	m := randDense(s.T(), 40, 8, 3)
	f, err := qr.Factorize(m)
	require.NoError(s.T(), err)
	r, err := qr.RFactor(m)
	require.NoError(s.T(), err)
	require.Equal(s.T(), f.R.RawData(), r.RawData())
}

// TestAgainstGonum compares |diag(R)| with gonum's QR, which is unique up to
// the sign of each row of R.
func (s *HouseholderSuite) TestAgainstGonum() {
	m := randDense(s.T(), 12, 5, 9)
	r, err := qr.RFactor(m)
	require.NoError(s.T(), err)

	var ref mat.QR
	ref.Factorize(mat.NewDense(12, 5, m.RawData()))
	var refR mat.Dense
	ref.RTo(&refR)
	for i := 0; i < 5; i++ {
		got, err := r.At(i, i)
		require.NoError(s.T(), err)
		require.InDelta(s.T(), math.Abs(refR.At(i, i)), math.Abs(got), 1e-10)
	}
}

// TestFloat32 runs the same kernel in single precision with a looser bound.
func (s *HouseholderSuite) TestFloat32() {
	m := matrix.Convert[float64, float32](randDense(s.T(), 30, 10, 4))
	f, err := qr.Factorize(m)
	require.NoError(s.T(), err)
	back := matrix.Convert[float32, float64](f.Q)
	oe, err := matrix.OrthonormalityError(back)
	require.NoError(s.T(), err)
	require.Less(s.T(), oe, 1e-4)
	require.Less(s.T(), matrix.MaxAbsBelowDiagonal(f.R), 1e-5)
}

// TestExtremeMagnitudes factors columns whose squared norms are not
// representable in float64.
func (s *HouseholderSuite) TestExtremeMagnitudes() {
	for _, scale := range []float64{1e160, 1e-170} {
		m, err := matrix.Scale(randDense(s.T(), 12, 5, 9), scale)
		require.NoError(s.T(), err)
		f, err := qr.Factorize(m)
		require.NoError(s.T(), err)
		require.Empty(s.T(), f.Degenerate, "scale %g", scale)
		oe, err := matrix.OrthonormalityError(f.Q)
		require.NoError(s.T(), err)
		require.Less(s.T(), oe, 1e-12)
		require.Less(s.T(), relResidual(s.T(), m, f.Q, f.R), 1e-12)
	}
}

// TestNil reports the matrix sentinel.
func (s *HouseholderSuite) TestNil() {
	_, err := qr.Factorize[float64](nil)
	require.ErrorIs(s.T(), err, matrix.ErrNilMatrix)
	_, err = qr.RFactor[float32](nil)
	require.ErrorIs(s.T(), err, matrix.ErrNilMatrix)
}

// TestBatch factorizes equally shaped members independently.
func (s *HouseholderSuite) TestBatch() {
	a, b := randDense(s.T(), 6, 3, 1), randDense(s.T(), 6, 3, 2)
	qs, rs, err := qr.DecomposeBatch(matrix.Batch[float64]{a, b})
	require.NoError(s.T(), err)
	require.Len(s.T(), qs, 2)
	for i, m := range []*matrix.Dense[float64]{a, b} {
		require.Less(s.T(), relResidual(s.T(), m, qs[i], rs[i]), invariantTol)
	}

	_, _, err = qr.DecomposeBatch(matrix.Batch[float64]{a, randDense(s.T(), 3, 6, 3)})
	require.ErrorIs(s.T(), err, matrix.ErrBatchShape)
}

func TestHouseholderSuite(t *testing.T) {
	suite.Run(t, new(HouseholderSuite))
}
