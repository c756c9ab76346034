// SPDX-License-Identifier: MIT

package decomp

import (
	"github.com/katalvlaran/lvsvd/jacobi"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/qr"
)

type primitive[T matrix.Float] struct {
	jopts []jacobi.Option
}

func (primitive[T]) Backend() Backend { return Primitive }

func (primitive[T]) QR(m *matrix.Dense[T]) (*matrix.Dense[T], *matrix.Dense[T], error) {
	return qr.Decompose(m)
}

func (primitive[T]) R(m *matrix.Dense[T]) (*matrix.Dense[T], error) {
	return qr.RFactor(m)
}

func (p primitive[T]) SVD(m *matrix.Dense[T]) (*Triplet[T], error) {
	d, err := jacobi.Decompose(m, p.jopts...)
	if err != nil {
		return nil, err
	}
	diag := d.Diagnostics

	return &Triplet[T]{U: d.U, S: d.S, V: d.V, Diagnostics: &diag}, nil
}

func (primitive[T]) QRBatch(b matrix.Batch[T]) (matrix.Batch[T], matrix.Batch[T], error) {
	return qr.DecomposeBatch(b)
}

// SVDBatch runs jacobi.DecomposeBatch, so every member shares one schedule
// and sweep budget.
func (p primitive[T]) SVDBatch(b matrix.Batch[T]) ([]*Triplet[T], error) {
	ds, err := jacobi.DecomposeBatch(b, p.jopts...)
	if err != nil {
		return nil, err
	}
	out := make([]*Triplet[T], len(ds))
	for i, d := range ds {
		diag := d.Diagnostics
		out[i] = &Triplet[T]{U: d.U, S: d.S, V: d.V, Diagnostics: &diag}
	}

	return out, nil
}
