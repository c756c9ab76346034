// SPDX-License-Identifier: MIT

package qr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvsvd/matrix"
)

const (
	opFactorize = "Factorize"
	opRFactor   = "RFactor"
	opBatch     = "DecomposeBatch"
)

// qrErrorf wraps err with the operation tag, preserving it for errors.Is.
func qrErrorf(op string, err error) error {
	return fmt.Errorf("qr.%s: %w", op, err)
}

// Factorization is the thin QR of a p×q matrix, k = min(p, q).
type Factorization[T matrix.Float] struct {
	Q *matrix.Dense[T] // p×k, orthonormal columns
	R *matrix.Dense[T] // k×q, upper-triangular

	// Degenerate lists the columns whose trailing part was exactly zero and
	// therefore received the pass-through reflector.
	Degenerate []int
}

// reflector is one Householder transform H = I − tau·v·vᵗ acting on rows
// [offset, p). tau == 0 marks the pass-through reflector.
type reflector[T matrix.Float] struct {
	offset int
	v      []T
	tau    T
}

// Factorize computes the thin QR decomposition of m.
// Implementation:
//   - Stage 1: validate and copy m (the input is never mutated).
//   - Stage 2: reduce the working copy column by column with Householder
//     reflectors, each applied as one AddOuter update of the trailing block.
//   - Stage 3: R = Triu(W[:k, :]); Q accumulated backward from I[:, :k].
//
// Inputs:
//   - m: p×q matrix, any aspect ratio.
//
// Returns:
//   - *Factorization with Q (p×k), R (k×q), Degenerate column indices.
//
// Errors:
//   - matrix.ErrNilMatrix.
//
// Complexity:
//   - Time O(p·q·k + p·k²), Space O(p·q).
func Factorize[T matrix.Float](m *matrix.Dense[T]) (*Factorization[T], error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, qrErrorf(opFactorize, err)
	}
	p, q := m.Dims()
	k := min(p, q)

	r, refl, err := reduce(m)
	if err != nil {
		return nil, qrErrorf(opFactorize, err)
	}
	qm, err := accumulate(refl, p, k)
	if err != nil {
		return nil, qrErrorf(opFactorize, err)
	}

	f := &Factorization[T]{Q: qm, R: r}
	for i, h := range refl {
		if h.tau == 0 {
			f.Degenerate = append(f.Degenerate, i)
		}
	}

	return f, nil
}

// Decompose returns (Q, R) of the thin QR decomposition of m.
func Decompose[T matrix.Float](m *matrix.Dense[T]) (*matrix.Dense[T], *matrix.Dense[T], error) {
	f, err := Factorize(m)
	if err != nil {
		return nil, nil, err
	}

	return f.Q, f.R, nil
}

// RFactor returns only the k×q triangular factor of m, without ever forming Q.
// The result is identical to Factorize(m).R.
func RFactor[T matrix.Float](m *matrix.Dense[T]) (*matrix.Dense[T], error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, qrErrorf(opRFactor, err)
	}
	r, _, err := reduce(m)
	if err != nil {
		return nil, qrErrorf(opRFactor, err)
	}

	return r, nil
}

// reduce runs the forward Householder sweep on a copy of m and returns the
// triangular factor together with the reflectors that produced it.
func reduce[T matrix.Float](m *matrix.Dense[T]) (*matrix.Dense[T], []reflector[T], error) {
	p, q := m.Dims()
	k := min(p, q)
	w := m.Clone()
	refl := make([]reflector[T], k)

	var (
		i     int
		col   []T
		h     reflector[T]
		block *matrix.Dense[T]
		err   error
	)
	for i = 0; i < k; i++ {
		if col, err = matrix.Col(w, i); err != nil {
			return nil, nil, err
		}
		h = householder(col[i:])
		h.offset = i
		refl[i] = h
		if h.tau == 0 {
			continue // default reflector: column already reduced
		}
		if block, err = matrix.Slice(w, i, p, i, q); err != nil {
			return nil, nil, err
		}
		if block, err = apply(block, h); err != nil {
			return nil, nil, err
		}
		if err = matrix.SetBlock(w, i, i, block); err != nil {
			return nil, nil, err
		}
	}

	top, err := matrix.Slice(w, 0, k, 0, q)
	if err != nil {
		return nil, nil, err
	}
	r, err := matrix.Triu(top)
	if err != nil {
		return nil, nil, err
	}

	return r, refl, nil
}

// accumulate forms Q = H_0·…·H_{k-1}·I[:, :k] by applying the reflectors in
// reverse order. H_i only touches rows ≥ i, and columns < i of the partial
// product are still unit vectors there, so each step updates Q[i:, i:].
func accumulate[T matrix.Float](refl []reflector[T], p, k int) (*matrix.Dense[T], error) {
	qm, err := matrix.Eye[T](p, k)
	if err != nil {
		return nil, err
	}
	var block *matrix.Dense[T]
	for i := k - 1; i >= 0; i-- {
		h := refl[i]
		if h.tau == 0 {
			continue
		}
		if block, err = matrix.Slice(qm, h.offset, p, i, k); err != nil {
			return nil, err
		}
		if block, err = apply(block, h); err != nil {
			return nil, err
		}
		if err = matrix.SetBlock(qm, h.offset, i, block); err != nil {
			return nil, err
		}
	}

	return qm, nil
}

// householder builds the reflector mapping x onto α·e₁ with
// α = −copysign(‖x‖, x₀). A zero x yields the pass-through reflector.
//
// v is scaled so that v₀ = 1, which gives τ = (α − x₀)/α ∈ [1, 2] instead of
// 2/‖x − α·e₁‖²; the latter overflows in float32 for tiny columns.
// ‖x‖ uses gonum's scaled accumulation, so it stays finite whenever the
// norm itself is representable.
func householder[T matrix.Float](x []T) reflector[T] {
	norm := floats.Norm(matrix.ConvertSlice[T, float64](x), 2)
	if norm == matrix.NormZero {
		return reflector[T]{}
	}
	x0 := float64(x[0])
	alpha := -math.Copysign(norm, x0)
	scale := 1 / (x0 - alpha)

	v := make([]T, len(x))
	v[0] = 1
	for j := 1; j < len(x); j++ {
		v[j] = T(float64(x[j]) * scale)
	}

	return reflector[T]{v: v, tau: T((alpha - x0) / alpha)}
}

// apply returns H·block = block − τ·v·(vᵗ·block) as one rank-one update.
func apply[T matrix.Float](block *matrix.Dense[T], h reflector[T]) (*matrix.Dense[T], error) {
	w, err := matrix.VecMat(h.v, block)
	if err != nil {
		return nil, err
	}

	return matrix.AddOuter(block, -h.tau, h.v, w)
}
