// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Slicing and gathering primitives: sub-blocks, single rows/columns,
//     column permutations and paired column rotations.
//   - These are the "indexing" half of the primitive set that QR and Jacobi
//     are composed from; all copy, none alias.

package matrix

import "fmt"

const (
	opSlice       = "Slice"
	opSetBlock    = "SetBlock"
	opSelectCols  = "SelectCols"
	opCol         = "Col"
	opRow         = "Row"
	opTriu        = "Triu"
	opColDots     = "ColDots"
	opRotatePairs = "RotatePairs"
)

// Slice copies the half-open block [r0,r1)×[c0,c1) into a fresh Dense.
// Errors: ErrNilMatrix, ErrOutOfRange (empty or out-of-bounds window).
// Complexity: O((r1-r0)*(c1-c0)).
func Slice[T Float](m *Dense[T], r0, r1, c0, c1 int) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opSlice, err)
	}
	if r0 < 0 || c0 < 0 || r1 > m.r || c1 > m.c || r0 >= r1 || c0 >= c1 {
		return nil, matrixErrorf(opSlice, fmt.Errorf("[%d:%d,%d:%d] of %dx%d: %w", r0, r1, c0, c1, m.r, m.c, ErrOutOfRange))
	}
	rows, cols := r1-r0, c1-c0
	res := &Dense[T]{r: rows, c: cols, data: make([]T, rows*cols)}
	for i := 0; i < rows; i++ {
		src := (r0+i)*m.c + c0
		copy(res.data[i*cols:(i+1)*cols], m.data[src:src+cols])
	}

	return res, nil
}

// SetBlock writes src into m with its top-left corner at (r0, c0).
// This is one of the two in-place writers of the package (with Set).
// Errors: ErrNilMatrix, ErrOutOfRange if src does not fit.
func SetBlock[T Float](m *Dense[T], r0, c0 int, src *Dense[T]) error {
	if err := ValidateNotNil(m); err != nil {
		return matrixErrorf(opSetBlock, err)
	}
	if err := ValidateNotNil(src); err != nil {
		return matrixErrorf(opSetBlock, err)
	}
	if r0 < 0 || c0 < 0 || r0+src.r > m.r || c0+src.c > m.c {
		return matrixErrorf(opSetBlock, fmt.Errorf("%dx%d at (%d,%d) into %dx%d: %w", src.r, src.c, r0, c0, m.r, m.c, ErrOutOfRange))
	}
	for i := 0; i < src.r; i++ {
		dst := (r0+i)*m.c + c0
		copy(m.data[dst:dst+src.c], src.data[i*src.c:(i+1)*src.c])
	}

	return nil
}

// SelectCols gathers the columns idx (in that order) into a fresh Dense.
// Used to apply a permutation or to truncate to the leading k columns.
// Errors: ErrNilMatrix, ErrOutOfRange (bad index), ErrInvalidDimensions (empty idx).
func SelectCols[T Float](m *Dense[T], idx []int) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opSelectCols, err)
	}
	if len(idx) == 0 {
		return nil, matrixErrorf(opSelectCols, ErrInvalidDimensions)
	}
	for _, j := range idx {
		if j < 0 || j >= m.c {
			return nil, matrixErrorf(opSelectCols, fmt.Errorf("col %d of %d: %w", j, m.c, ErrOutOfRange))
		}
	}
	cols := len(idx)
	res := &Dense[T]{r: m.r, c: cols, data: make([]T, m.r*cols)}
	var i, j, base, dst int
	for i = 0; i < m.r; i++ {
		base, dst = i*m.c, i*cols
		for j = 0; j < cols; j++ {
			res.data[dst+j] = m.data[base+idx[j]]
		}
	}

	return res, nil
}

// Col returns a copy of column j.
func Col[T Float](m *Dense[T], j int) ([]T, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opCol, err)
	}
	if j < 0 || j >= m.c {
		return nil, matrixErrorf(opCol, ErrOutOfRange)
	}
	out := make([]T, m.r)
	for i := range out {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// Row returns a copy of row i.
func Row[T Float](m *Dense[T], i int) ([]T, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opRow, err)
	}
	if i < 0 || i >= m.r {
		return nil, matrixErrorf(opRow, ErrOutOfRange)
	}
	out := make([]T, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Triu returns a copy of m with every strictly-below-diagonal entry set to 0.
func Triu[T Float](m *Dense[T]) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTriu, err)
	}
	res := m.Clone()
	var i, j int
	for i = 1; i < m.r; i++ {
		for j = 0; j < min(i, m.c); j++ {
			res.data[i*m.c+j] = 0
		}
	}

	return res, nil
}

// ColDots returns, for every p, the dot product of columns left[p] and right[p].
// With left == right it yields squared column norms.
// Implementation:
//   - Stage 1: validate equal-length index lists within bounds.
//   - Stage 2: one row-major pass accumulating all pair products at once,
//     in float64 whatever T is.
//
// Products are not rescaled: entries beyond √(max T) overflow. Callers that
// accept arbitrary magnitudes scale by MaxAbs first (see Ldexp).
//
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrOutOfRange.
// Complexity: O(rows * len(left)).
func ColDots[T Float](m *Dense[T], left, right []int) ([]T, error) {
	if err := validatePairs(m, left, right); err != nil {
		return nil, matrixErrorf(opColDots, err)
	}
	acc := make([]float64, len(left))
	var i, p, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for p = range left {
			acc[p] += float64(m.data[base+left[p]]) * float64(m.data[base+right[p]])
		}
	}

	return ConvertSlice[float64, T](acc), nil
}

// RotatePairs applies one plane rotation per column pair and returns the result:
//
//	col[left[p]]'  = c[p]·col[left[p]] − s[p]·col[right[p]]
//	col[right[p]]' = s[p]·col[left[p]] + c[p]·col[right[p]]
//
// Pairs must be disjoint (a round-robin schedule guarantees this); columns
// not named in any pair are copied unchanged.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrOutOfRange.
// Complexity: O(rows * len(left)).
func RotatePairs[T Float](m *Dense[T], left, right []int, c, s []T) (*Dense[T], error) {
	if err := validatePairs(m, left, right); err != nil {
		return nil, matrixErrorf(opRotatePairs, err)
	}
	if len(c) != len(left) || len(s) != len(left) {
		return nil, matrixErrorf(opRotatePairs, ErrDimensionMismatch)
	}
	res := m.Clone()
	var (
		i, p, base int
		x, y       T
	)
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for p = range left {
			x, y = m.data[base+left[p]], m.data[base+right[p]]
			res.data[base+left[p]] = c[p]*x - s[p]*y
			res.data[base+right[p]] = s[p]*x + c[p]*y
		}
	}

	return res, nil
}

// validatePairs checks two equal-length column index lists against m.
func validatePairs[T Float](m *Dense[T], left, right []int) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if len(left) != len(right) {
		return ErrDimensionMismatch
	}
	for p := range left {
		if left[p] < 0 || left[p] >= m.c || right[p] < 0 || right[p] >= m.c {
			return fmt.Errorf("pair %d (%d,%d) of %d cols: %w", p, left[p], right[p], m.c, ErrOutOfRange)
		}
	}

	return nil
}
