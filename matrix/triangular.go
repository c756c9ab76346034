// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Triangular solves against an upper-triangular factor R, for one or many
//     right-hand sides at once, without ever forming R⁻¹.
//
// Determinism:
//   - Row-oriented substitution in fixed order (backward for R, forward for Rᵗ);
//     every right-hand side is advanced in the same pass.

package matrix

import "fmt"

// ZeroPivot is the sentinel for detecting a zero pivot in triangular solves.
const ZeroPivot = 0.0

// SolveUpper solves R·X = B for X by back substitution.
// Implementation:
//   - Stage 1: ValidateSquare(R); B must have R.Rows rows.
//   - Stage 2: for i = n-1..0: X[i,:] = (B[i,:] − Σ_{l>i} R[i,l]·X[l,:]) / R[i,i].
//
// Inputs:
//   - R: n×n upper-triangular (entries below the diagonal are ignored).
//   - B: n×k right-hand sides.
//
// Returns:
//   - *Dense: X, n×k.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch.
//   - ErrSingular when some R[i,i] == 0.
//
// Complexity:
//   - Time O(n²·k), Space O(n·k).
func SolveUpper[T Float](r, b *Dense[T]) (*Dense[T], error) {
	if err := validateTriangularSystem(r, b); err != nil {
		return nil, matrixErrorf(opSolveUpper, err)
	}
	n, k := r.r, b.c
	x := b.Clone()
	var (
		i, l, j    int
		ril, pivot T
	)
	for i = n - 1; i >= 0; i-- {
		for l = i + 1; l < n; l++ {
			ril = r.data[i*n+l]
			if ril == 0 {
				continue
			}
			for j = 0; j < k; j++ {
				x.data[i*k+j] -= ril * x.data[l*k+j]
			}
		}
		pivot = r.data[i*n+i]
		if pivot == ZeroPivot {
			return nil, matrixErrorf(opSolveUpper, fmt.Errorf("R[%d,%d]: %w", i, i, ErrSingular))
		}
		for j = 0; j < k; j++ {
			x.data[i*k+j] /= pivot
		}
	}

	return x, nil
}

// SolveUpperTrans solves Rᵗ·X = C for X by forward substitution, reading R
// column-wise so Rᵗ is never materialized.
// Implementation:
//   - Stage 1: ValidateSquare(R); C must have R.Rows rows.
//   - Stage 2: for i = 0..n-1: X[i,:] = (C[i,:] − Σ_{l<i} R[l,i]·X[l,:]) / R[i,i].
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch, ErrSingular.
//
// Complexity:
//   - Time O(n²·k), Space O(n·k).
func SolveUpperTrans[T Float](r, c *Dense[T]) (*Dense[T], error) {
	if err := validateTriangularSystem(r, c); err != nil {
		return nil, matrixErrorf(opSolveUpperT, err)
	}
	n, k := r.r, c.c
	x := c.Clone()
	var (
		i, l, j    int
		rli, pivot T
	)
	for i = 0; i < n; i++ {
		for l = 0; l < i; l++ {
			rli = r.data[l*n+i]
			if rli == 0 {
				continue
			}
			for j = 0; j < k; j++ {
				x.data[i*k+j] -= rli * x.data[l*k+j]
			}
		}
		pivot = r.data[i*n+i]
		if pivot == ZeroPivot {
			return nil, matrixErrorf(opSolveUpperT, fmt.Errorf("R[%d,%d]: %w", i, i, ErrSingular))
		}
		for j = 0; j < k; j++ {
			x.data[i*k+j] /= pivot
		}
	}

	return x, nil
}

// validateTriangularSystem – Composite: Square(R) → NotNil(B) → B.Rows == R.Rows.
func validateTriangularSystem[T Float](r, b *Dense[T]) error {
	if err := ValidateSquare(r); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if b.r != r.r {
		return validatorErrorf("validateTriangularSystem", ErrDimensionMismatch)
	}

	return nil
}
