// SPDX-License-Identifier: MIT

package qr

import (
	"fmt"

	"github.com/katalvlaran/lvsvd/matrix"
)

// DecomposeBatch factorizes every member of an equally shaped batch with the
// same reflector sequence and returns the stacked Q and R factors.
// Errors: matrix.ErrBatchShape / ErrNilMatrix / ErrInvalidDimensions from
// validation; per-member failures are tagged with the member index.
func DecomposeBatch[T matrix.Float](b matrix.Batch[T]) (qs, rs matrix.Batch[T], err error) {
	if err = matrix.ValidateBatch(b); err != nil {
		return nil, nil, qrErrorf(opBatch, err)
	}
	qs = make(matrix.Batch[T], len(b))
	rs = make(matrix.Batch[T], len(b))
	for i, m := range b {
		if qs[i], rs[i], err = Decompose(m); err != nil {
			return nil, nil, qrErrorf(opBatch, fmt.Errorf("member %d: %w", i, err))
		}
	}

	return qs, rs, nil
}
