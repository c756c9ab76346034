// SPDX-License-Identifier: MIT

package jacobi

import (
	"fmt"

	"github.com/katalvlaran/lvsvd/matrix"
)

// DecomposeBatch decomposes every member of an equally shaped batch. All
// members run the same schedule and sweep budget, so the outputs share one
// shape and can be stacked by the caller.
func DecomposeBatch[T matrix.Float](b matrix.Batch[T], opts ...Option) ([]*Decomposition[T], error) {
	if err := matrix.ValidateBatch(b); err != nil {
		return nil, jacobiErrorf(opBatch, err)
	}
	out := make([]*Decomposition[T], len(b))
	for i, m := range b {
		d, err := Decompose(m, opts...)
		if err != nil {
			return nil, jacobiErrorf(opBatch, fmt.Errorf("member %d: %w", i, err))
		}
		out[i] = d
	}

	return out, nil
}
