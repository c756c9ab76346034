// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used across the matrix
// package and by the decomposition packages built on top of it. All kernels
// MUST return these sentinels and tests MUST check them via errors.Is.
// No kernel panics on user-triggered error conditions.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Kernels wrap with matrixErrorf(op, err) so the
// surface reads "<Op>: matrix: <cause>" while errors.Is still matches.
//
// ERROR PRIORITY (enforced by validators):
// nil -> shape/index -> dimension mismatch -> rank bound -> numeric (singular, NaN/Inf).

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. Add/Sub on different shapes, or Mul where a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNilMatrix indicates that a nil matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrSingular is returned when a triangular solve meets an exactly zero pivot.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrBatchShape indicates that the members of a batch do not share one shape.
	ErrBatchShape = errors.New("matrix: batch members differ in shape")

	// ErrRankBound is the dimension error of the randomized decompositions:
	// the requested subspace size k+p exceeds min(rows, cols).
	ErrRankBound = errors.New("matrix: requested rank exceeds min(rows, cols)")

	// ErrUnknownPrecision is returned by ParsePrecision for unrecognized names.
	ErrUnknownPrecision = errors.New("matrix: unknown precision")
)
