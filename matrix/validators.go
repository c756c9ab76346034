// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels minimal by delegating shape/nil checks here.
//  - Return sentinel errors tagged with the validator name so call sites can
//    wrap uniformly with their operation tag.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing (except
//    ValidateFinite's O(r*c) scan).

package matrix

import "fmt"

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// Complexity: O(1).
func ValidateNotNil[T Float](m *Dense[T]) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape ensures a and b have equal dimensions.
// Assumes a and b are not nil (caller must ensure).
func ValidateSameShape[T Float](a, b *Dense[T]) error {
	if a.r != b.r {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.c != b.c {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateBinarySameShape – Composite: NotNil(a) → NotNil(b) → SameShape.
func ValidateBinarySameShape[T Float](a, b *Dense[T]) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
func ValidateSquare[T Float](m *Dense[T]) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateSquare", err)
	}
	if m.r != m.c {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateMulCompatible – Composite: NotNil(a) → NotNil(b) → a.Cols == b.Rows.
func ValidateMulCompatible[T Float](a, b *Dense[T]) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if a.c != b.r {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateMulTACompatible – Composite: NotNil(a) → NotNil(b) → a.Rows == b.Rows
// (the shape rule for aᵗ·b).
func ValidateMulTACompatible[T Float](a, b *Dense[T]) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateMulTACompatible", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateMulTACompatible", err)
	}
	if a.r != b.r {
		return validatorErrorf("ValidateMulTACompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen ensures a vector length equals n.
func ValidateVecLen[T Float](x []T, n int) error {
	if x == nil {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite scans every element for NaN/±Inf.
// Complexity: O(r*c).
func ValidateFinite[T Float](m *Dense[T]) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateFinite", err)
	}
	for idx, v := range m.data {
		if isNonFinite(float64(v)) {
			return validatorErrorf(fmt.Sprintf("ValidateFinite: (%d,%d)", idx/m.c, idx%m.c), ErrNaNInf)
		}
	}

	return nil
}

// ValidateRankBound checks the randomized-decomposition precondition
// k ≥ 1, p ≥ 0 and k+p ≤ min(rows, cols).
func ValidateRankBound[T Float](m *Dense[T], k, p int) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateRankBound", err)
	}
	if k < 1 || p < 0 {
		return validatorErrorf(fmt.Sprintf("ValidateRankBound: k=%d p=%d", k, p), ErrRankBound)
	}
	if k+p > min(m.r, m.c) {
		return validatorErrorf(fmt.Sprintf("ValidateRankBound: k+p=%d > min(%d,%d)", k+p, m.r, m.c), ErrRankBound)
	}

	return nil
}
