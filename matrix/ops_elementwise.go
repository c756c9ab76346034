// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Element-wise and broadcast kernels shared by preprocessing (centering,
//     scaling, log transforms) and by decomposition post-processing
//     (normalizing singular vectors by their singular values).
//
// Determinism & Performance:
//   - Fixed loop orders (i→j or flat 0..n-1) over the single row-major buffer.
//   - No hidden allocations beyond the output Dense; O(r*c) time and space.

package matrix

import (
	"math"
)

const (
	opBroadcastSubCols = "BroadcastSubCols"
	opScaleCols        = "ScaleCols"
	opApply            = "Apply"
	opLdexp            = "Ldexp"
	opAllClose         = "AllClose"
)

// BroadcastSubCols computes out[i,j] = X[i,j] - colShift[j].
// Use for column-centering ahead of a decomposition.
// Time: O(r*c). Space: O(r*c).
func BroadcastSubCols[T Float](x *Dense[T], colShift []T) (*Dense[T], error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, matrixErrorf(opBroadcastSubCols, err)
	}
	if err := ValidateVecLen(colShift, x.c); err != nil {
		return nil, matrixErrorf(opBroadcastSubCols, err)
	}
	out := &Dense[T]{r: x.r, c: x.c, data: make([]T, len(x.data))}
	var i, j, base int
	for i = 0; i < x.r; i++ {
		base = i * x.c // cache the base offset for row i
		for j = 0; j < x.c; j++ {
			out.data[base+j] = x.data[base+j] - colShift[j]
		}
	}

	return out, nil
}

// ScaleCols computes out[i,j] = X[i,j] * scale[j].
// Pass reciprocals to divide (e.g. 1/σ for unit-variance columns, 1/S for
// normalizing singular vectors).
// Time: O(r*c). Space: O(r*c).
func ScaleCols[T Float](x *Dense[T], scale []T) (*Dense[T], error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, matrixErrorf(opScaleCols, err)
	}
	if err := ValidateVecLen(scale, x.c); err != nil {
		return nil, matrixErrorf(opScaleCols, err)
	}
	out := &Dense[T]{r: x.r, c: x.c, data: make([]T, len(x.data))}
	var i, j, base int
	for i = 0; i < x.r; i++ {
		base = i * x.c
		for j = 0; j < x.c; j++ {
			out.data[base+j] = x.data[base+j] * scale[j]
		}
	}

	return out, nil
}

// Ldexp returns m·2^exp. Power-of-two scaling is exact unless an entry leaves
// the normal range of T, which makes it the way to move a matrix into a safe
// magnitude before squaring its entries and back afterwards.
// Time: O(r*c). Space: O(r*c).
func Ldexp[T Float](m *Dense[T], exp int) (*Dense[T], error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opLdexp, err)
	}
	out := &Dense[T]{r: m.r, c: m.c, data: make([]T, len(m.data))}
	for idx, v := range m.data {
		out.data[idx] = T(math.Ldexp(float64(v), exp))
	}

	return out, nil
}

// Apply returns out[i,j] = fn(X[i,j]); NaN/Inf produced by fn are rejected
// with ErrNaNInf so transforms like log2 cannot leak non-finite values.
// Time: O(r*c). Space: O(r*c).
func Apply[T Float](x *Dense[T], fn func(T) T) (*Dense[T], error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, matrixErrorf(opApply, err)
	}
	out := &Dense[T]{r: x.r, c: x.c, data: make([]T, len(x.data))}
	for idx, v := range x.data {
		w := fn(v)
		if isNonFinite(float64(w)) {
			return nil, matrixErrorf(opApply, ErrNaNInf)
		}
		out.data[idx] = w
	}

	return out, nil
}

// AllClose reports whether |a-b| ≤ atol + rtol*|b| holds element-wise.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol|.
func AllClose[T Float](a, b *Dense[T], rtol, atol float64) (bool, error) {
	if isNonFinite(rtol) || isNonFinite(atol) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	var diff, bound float64
	for idx := range a.data {
		diff = math.Abs(float64(a.data[idx]) - float64(b.data[idx]))
		bound = atol + rtol*math.Abs(float64(b.data[idx]))
		if diff > bound {
			return false, nil // early-exit on first violation
		}
	}

	return true, nil
}
