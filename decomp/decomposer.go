// SPDX-License-Identifier: MIT

package decomp

import (
	"fmt"

	"github.com/katalvlaran/lvsvd/jacobi"
	"github.com/katalvlaran/lvsvd/matrix"
)

// Triplet is a thin SVD M = U·diag(S)·Vᵗ with S descending.
type Triplet[T matrix.Float] struct {
	U *matrix.Dense[T]
	S []T
	V *matrix.Dense[T]

	// Diagnostics is set by the Primitive backend only.
	Diagnostics *jacobi.Diagnostics
}

// Decomposer computes the dense factorizations a pipeline needs.
// Implementations are stateless and safe for concurrent use.
type Decomposer[T matrix.Float] interface {
	// Backend reports which implementation this is.
	Backend() Backend

	// QR returns the thin (Q, R) of m.
	QR(m *matrix.Dense[T]) (*matrix.Dense[T], *matrix.Dense[T], error)

	// R returns only the thin triangular factor of m.
	R(m *matrix.Dense[T]) (*matrix.Dense[T], error)

	// SVD returns the thin SVD of m.
	SVD(m *matrix.Dense[T]) (*Triplet[T], error)

	// QRBatch and SVDBatch factor every member of an equally shaped batch;
	// member i of the output belongs to member i of the input.
	QRBatch(b matrix.Batch[T]) (qs, rs matrix.Batch[T], err error)
	SVDBatch(b matrix.Batch[T]) ([]*Triplet[T], error)
}

// New returns the Decomposer for b. jopts configure the Jacobi sweeps of the
// Primitive backend and are ignored by Native.
func New[T matrix.Float](b Backend, jopts ...jacobi.Option) (Decomposer[T], error) {
	switch b {
	case Primitive:
		return primitive[T]{jopts: jopts}, nil
	case Native:
		return native[T]{}, nil
	default:
		return nil, fmt.Errorf("decomp.New(%v): %w", b, ErrUnknownBackend)
	}
}
