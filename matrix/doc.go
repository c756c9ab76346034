// SPDX-License-Identifier: MIT

// Package matrix provides the dense numeric buffer and the primitive tensor
// operations every decomposition in lvsvd is composed from.
//
// What & Why:
//
//	Dense[T] is a row-major rows×cols buffer whose element type is one of two
//	floating-point precisions (float32 or float64). The higher-level kernels
//	(Householder QR, one-sided Jacobi SVD, randomized range finding) never
//	index raw storage; they are written against the operations in this
//	package: matrix multiply, elementwise arithmetic, slicing, reductions
//	and triangular solves.
//
// Guarantees:
//
//   - Kernels never mutate their inputs; every result is a fresh Dense.
//     The only in-place writers are Set and SetBlock.
//   - All loops run in a fixed order, so identical inputs give bit-identical
//     outputs for a fixed worker count.
//   - Shape violations are reported as sentinel errors (ErrDimensionMismatch,
//     ErrInvalidDimensions, ...) wrapped with the operation name; match them
//     with errors.Is.
//
// Complexity:
//
//	Mul / MulTA are O(r·n·c); slicing and elementwise kernels are O(r·c);
//	triangular solves are O(n²·k) for an n×n factor and k right-hand sides.
package matrix
