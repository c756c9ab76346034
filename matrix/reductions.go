// SPDX-License-Identifier: MIT

package matrix

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	opMaxAbs      = "MaxAbs"
	opColNorms    = "ColNorms"
	opSumSquares  = "SumSquares"
	opFrobenius   = "FrobeniusNorm"
	opOrthonormal = "OrthonormalityError"
)

// MaxAbs returns max |m[i,j]|.
func MaxAbs[T Float](m *Dense[T]) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opMaxAbs, err)
	}
	worst := NormZero
	for _, v := range m.data {
		worst = math.Max(worst, math.Abs(float64(v)))
	}

	return worst, nil
}

// ColNorms returns the Euclidean norm of every column.
// Each norm is a scaled float64 accumulation (floats.Norm), so it neither
// overflows nor underflows while the norm itself is representable in T.
// Complexity: O(r*c).
func ColNorms[T Float](m *Dense[T]) ([]T, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opColNorms, err)
	}
	out := make([]T, m.c)
	col := make([]float64, m.r)
	var i, j int
	for j = 0; j < m.c; j++ {
		for i = 0; i < m.r; i++ {
			col[i] = float64(m.data[i*m.c+j])
		}
		out[j] = T(floats.Norm(col, 2))
	}

	return out, nil
}

// SumSquares returns Σ m[i,j]² accumulated in float64.
// Complexity: O(r*c).
func SumSquares[T Float](m *Dense[T]) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opSumSquares, err)
	}
	sum := NormZero
	for _, v := range m.data {
		sum += float64(v) * float64(v)
	}

	return sum, nil
}

// FrobeniusNorm returns ‖m‖_F with scaled accumulation, finite whenever the
// result is.
func FrobeniusNorm[T Float](m *Dense[T]) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opFrobenius, err)
	}

	return floats.Norm(ConvertSlice[T, float64](m.data), 2), nil
}

// MaxAbsBelowDiagonal returns max |m[i,j]| over i > j (0 for a single row).
func MaxAbsBelowDiagonal[T Float](m *Dense[T]) float64 {
	if m == nil {
		return 0
	}
	worst := NormZero
	var i, j int
	for i = 1; i < m.r; i++ {
		for j = 0; j < min(i, m.c); j++ {
			worst = math.Max(worst, math.Abs(float64(m.data[i*m.c+j])))
		}
	}

	return worst
}

// IsUpperTriangular reports whether every strictly-below-diagonal entry is
// within the configured epsilon (WithEpsilon, DefaultEpsilon).
func IsUpperTriangular[T Float](m *Dense[T], opts ...Option) bool {
	return m != nil && MaxAbsBelowDiagonal(m) <= gatherOptions(opts...).eps
}

// OrthonormalityError returns ‖mᵗm − I‖_F accumulated in float64.
// Implementation:
//   - Stage 1: Gram entries g[a,b] = Σ_i m[i,a]·m[i,b] for a ≤ b.
//   - Stage 2: subtract the identity on the diagonal, sum squares,
//     counting off-diagonal terms twice.
//
// Complexity: O(r*c²).
func OrthonormalityError[T Float](m *Dense[T]) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opOrthonormal, err)
	}
	var (
		a, b, i int
		g, sum  float64
	)
	for a = 0; a < m.c; a++ {
		for b = a; b < m.c; b++ {
			g = 0
			for i = 0; i < m.r; i++ {
				g += float64(m.data[i*m.c+a]) * float64(m.data[i*m.c+b])
			}
			if a == b {
				sum += (g - 1) * (g - 1)
			} else {
				sum += 2 * g * g
			}
		}
	}

	return math.Sqrt(sum), nil
}

// IsOrthonormal reports OrthonormalityError(m) ≤ eps (WithEpsilon).
func IsOrthonormal[T Float](m *Dense[T], opts ...Option) bool {
	e, err := OrthonormalityError(m)

	return err == nil && e <= gatherOptions(opts...).eps
}
