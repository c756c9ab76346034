// SPDX-License-Identifier: MIT

package matrix

import "fmt"

// Batch is a leading batch dimension over equally shaped matrices.
// Batched decompositions iterate this dimension explicitly; every member is
// processed with the same kernel sequence, so results broadcast consistently.
type Batch[T Float] []*Dense[T]

// NewBatch validates members and returns them as a Batch.
func NewBatch[T Float](members ...*Dense[T]) (Batch[T], error) {
	b := Batch[T](members)
	if err := ValidateBatch(b); err != nil {
		return nil, err
	}

	return b, nil
}

// Dims returns (batch size, rows, cols); zeros for an empty batch.
func (b Batch[T]) Dims() (n, rows, cols int) {
	if len(b) == 0 || b[0] == nil {
		return len(b), 0, 0
	}

	return len(b), b[0].r, b[0].c
}

// ValidateBatch checks that the batch is non-empty, has no nil members and
// that all members share the shape of the first.
func ValidateBatch[T Float](b Batch[T]) error {
	if len(b) == 0 {
		return validatorErrorf("ValidateBatch", ErrInvalidDimensions)
	}
	for i, m := range b {
		if m == nil {
			return validatorErrorf(fmt.Sprintf("ValidateBatch: member %d", i), ErrNilMatrix)
		}
		if m.r != b[0].r || m.c != b[0].c {
			return validatorErrorf(fmt.Sprintf("ValidateBatch: member %d is %dx%d, want %dx%d", i, m.r, m.c, b[0].r, b[0].c), ErrBatchShape)
		}
	}

	return nil
}
