// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on Dense matrices,
// including element-wise addition, subtraction, matrix multiplication,
// transposed multiplication, rank-one updates and scalar scaling. All
// functions perform strict fail-fast validation and return clear errors on
// dimension mismatches.
//
// Notes:
//   - Every kernel allocates its result; operands are never mutated.
//   - Errors are plain sentinels wrapped via matrixErrorf(op, err).

package matrix

import (
	"fmt"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd         = "Add"
	opSub         = "Sub"
	opMul         = "Mul"
	opMulTA       = "MulTA"
	opTranspose   = "Transpose"
	opScale       = "Scale"
	opAddOuter    = "AddOuter"
	opMatVec      = "MatVec"
	opVecMat      = "VecMat"
	opSolveUpper  = "SolveUpper"
	opSolveUpperT = "SolveUpperTrans"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// addSub computes elementwise out = a + sign*b for sign ∈ {+1, -1}.
// Internal helper for Add/Sub to share validation and allocation.
// Complexity: Time O(r*c), Space O(r*c).
func addSub[T Float](a, b *Dense[T], sign T, opTag string) (*Dense[T], error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	res, err := NewDense[T](a.r, a.c)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	for idx := range res.data { // deterministic 0..n-1
		res.data[idx] = a.data[idx] + sign*b.data[idx]
	}

	return res, nil
}

// Add computes the element-wise sum C = A + B and returns a fresh Dense result.
// Errors: ErrNilMatrix (nil input), ErrDimensionMismatch (shape mismatch).
// Complexity: Time O(r*c), Space O(r*c).
func Add[T Float](a, b *Dense[T]) (*Dense[T], error) { return addSub(a, b, +1, opAdd) }

// Sub computes the element-wise difference C = A - B and returns a fresh Dense result.
// Errors: ErrNilMatrix (nil input), ErrDimensionMismatch (shape mismatch).
// Complexity: Time O(r*c), Space O(r*c).
func Sub[T Float](a, b *Dense[T]) (*Dense[T], error) { return addSub(a, b, -1, opSub) }

// Scale returns alpha·m as a fresh Dense.
// Complexity: Time O(r*c), Space O(r*c).
func Scale[T Float](m *Dense[T], alpha T) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res := m.Clone()
	for idx := range res.data {
		res.data[idx] *= alpha
	}

	return res, nil
}

// Mul performs standard matrix multiplication C = A × B (no aliasing).
// Implementation:
//   - Stage 1: Validate A,B (not nil) and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: i→k→j loops with row-major strides, skipping zero A[i,k];
//     result rows are partitioned across WithWorkers goroutines.
//
// Behavior highlights:
//   - Every C[i,j] is accumulated by one goroutine in fixed k order, so the
//     result is bit-identical for any worker count.
//
// Inputs:
//   - A: left matrix with shape (r × n).
//   - B: right matrix with shape (n × c).
//   - opts: WithWorkers / WithMinParallelRows.
//
// Returns:
//   - *Dense: new C with shape (r × c).
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul[T Float](a, b *Dense[T], opts ...Option) (*Dense[T], error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	res, err := NewDense[T](a.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	aCols, bCols := a.c, b.c
	parallelRows(a.r, gatherOptions(opts...), func(lo, hi int) {
		var (
			i, k, j          int
			av               T
			rowA, rowB, rowR int
		)
		for i = lo; i < hi; i++ {
			rowA = i * aCols
			rowR = i * bCols
			for k = 0; k < aCols; k++ {
				av = a.data[rowA+k]
				if av == 0 {
					continue // skip zero for performance
				}
				rowB = k * bCols
				for j = 0; j < bCols; j++ {
					res.data[rowR+j] += av * b.data[rowB+j]
				}
			}
		}
	})

	return res, nil
}

// MulTA computes C = Aᵗ × B without materializing Aᵗ.
// Implementation:
//   - Stage 1: Validate A,B (not nil) and A.Rows == B.Rows.
//   - Stage 2: for each result row i (a column of A), accumulate
//     Σ_k A[k,i]·B[k,:] in fixed k order; result rows are split across workers.
//
// Inputs:
//   - A: (n × r), B: (n × c).
//
// Returns:
//   - *Dense: new C with shape (r × c).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(n*r*c), Space O(r*c).
//
// Notes:
//   - This is the projection kernel of the pipeline (Qᵗ·A, Yᵢᵗ·Aᵢ, Aᵗ·Y);
//     avoiding the transpose keeps peak memory at the size of the result.
func MulTA[T Float](a, b *Dense[T], opts ...Option) (*Dense[T], error) {
	if err := ValidateMulTACompatible(a, b); err != nil {
		return nil, matrixErrorf(opMulTA, err)
	}
	res, err := NewDense[T](a.c, b.c)
	if err != nil {
		return nil, matrixErrorf(opMulTA, err)
	}
	n, aCols, bCols := a.r, a.c, b.c
	parallelRows(aCols, gatherOptions(opts...), func(lo, hi int) {
		var (
			i, k, j    int
			av         T
			rowB, rowR int
		)
		for i = lo; i < hi; i++ {
			rowR = i * bCols
			for k = 0; k < n; k++ {
				av = a.data[k*aCols+i]
				if av == 0 {
					continue
				}
				rowB = k * bCols
				for j = 0; j < bCols; j++ {
					res.data[rowR+j] += av * b.data[rowB+j]
				}
			}
		}
	})

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// Complexity: Time O(r*c), Space O(r*c).
func Transpose[T Float](m *Dense[T]) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	res, err := NewDense[T](m.c, m.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	var i, j, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			res.data[j*m.r+i] = m.data[base+j]
		}
	}

	return res, nil
}

// AddOuter returns m + alpha·x·yᵗ (a rank-one update, BLAS "ger").
// Implementation:
//   - Stage 1: Validate m non-nil, len(x) == rows, len(y) == cols.
//   - Stage 2: one fused pass over m: out[i,j] = m[i,j] + (alpha·x[i])·y[j].
//
// Inputs:
//   - m: (r × c) base matrix (not mutated).
//   - alpha: scalar factor.
//   - x: length-r column vector; y: length-c row vector.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// Notes:
//   - Householder reflections are applied as AddOuter(sub, -τ, v, vᵗ·sub),
//     a single vectorized update per column instead of a per-row loop.
func AddOuter[T Float](m *Dense[T], alpha T, x, y []T) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opAddOuter, err)
	}
	if err := ValidateVecLen(x, m.r); err != nil {
		return nil, matrixErrorf(opAddOuter, err)
	}
	if err := ValidateVecLen(y, m.c); err != nil {
		return nil, matrixErrorf(opAddOuter, err)
	}
	res := m.Clone()
	var (
		i, j, base int
		ax         T
	)
	for i = 0; i < m.r; i++ {
		ax = alpha * x[i]
		if ax == 0 {
			continue
		}
		base = i * m.c
		for j = 0; j < m.c; j++ {
			res.data[base+j] += ax * y[j]
		}
	}

	return res, nil
}

// MatVec computes y = m·x.
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != cols).
// Complexity: Time O(r*c), Space O(r).
func MatVec[T Float](m *Dense[T], x []T) ([]T, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	out := make([]T, m.r)
	var (
		i, j, base int
		sum        T
	)
	for i = 0; i < m.r; i++ {
		base = i * m.c
		sum = 0
		for j = 0; j < m.c; j++ {
			sum += m.data[base+j] * x[j]
		}
		out[i] = sum
	}

	return out, nil
}

// VecMat computes yᵗ = xᵗ·m (a row vector of length cols).
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != rows).
// Complexity: Time O(r*c), Space O(c).
func VecMat[T Float](x []T, m *Dense[T]) ([]T, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opVecMat, err)
	}
	if err := ValidateVecLen(x, m.r); err != nil {
		return nil, matrixErrorf(opVecMat, err)
	}
	out := make([]T, m.c)
	var (
		i, j, base int
		xv         T
	)
	for i = 0; i < m.r; i++ {
		xv = x[i]
		if xv == 0 {
			continue
		}
		base = i * m.c
		for j = 0; j < m.c; j++ {
			out[j] += xv * m.data[base+j]
		}
	}

	return out, nil
}
