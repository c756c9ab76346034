// SPDX-License-Identifier: MIT

package stream

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/qr"
)

const (
	// DefaultBlockRows is the number of rows of A and Y read per block.
	DefaultBlockRows = 32000

	// DefaultWorkers is the goroutine count of the block products.
	DefaultWorkers = 1
)

const (
	opProject = "Project"
	opRecover = "Recover"

	panicBlockRowsInvalid = "stream: WithBlockRows: rows must be >= 1"
	panicWorkersInvalid   = "stream: WithWorkers: workers must be >= 1"
)

func streamErrorf(op string, err error) error {
	return fmt.Errorf("stream.%s: %w", op, err)
}

// RFunc returns the triangular factor of the thin QR of its argument.
// qr.RFactor is the default; a decomp.Decomposer's R method fits too.
type RFunc[T matrix.Float] func(*matrix.Dense[T]) (*matrix.Dense[T], error)

// Option configures Project.
type Option func(*options)

type options struct {
	blockRows int
	workers   int
}

// WithBlockRows sets the row-block height.
func WithBlockRows(n int) Option {
	if n < 1 {
		panic(panicBlockRowsInvalid)
	}

	return func(o *options) { o.blockRows = n }
}

// WithWorkers sets the goroutine count of the block products.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *options) { o.workers = n }
}

// Projection is A projected onto the range of Y.
type Projection[T matrix.Float] struct {
	// B = Qᵗ·A (b×n), where Y = Q·R.
	B *matrix.Dense[T]

	// R is the b×b triangular factor of Y.
	R *matrix.Dense[T]

	// Blocks is the number of row blocks streamed.
	Blocks int
}

// Project computes B = R⁻ᵗ·Σᵢ Yᵢᵗ·Aᵢ over row blocks i.
// Inputs:
//   - a: m×n matrix; y: m×b basis with b ≤ m (neither is mutated).
//   - rFn: triangular factor of Y; nil selects qr.RFactor. Its sign
//     convention does not matter, only |R_jj| is inspected.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrDimensionMismatch (row counts differ),
//     matrix.ErrRankBound (b > m).
//   - matrix.ErrSingular when R has a pivot below b·eps·max|R_jj|.
//
// Complexity:
//   - Time O(m·b² + m·n·b + b²·n); space O(blockRows·(n+b) + b·n).
func Project[T matrix.Float](a, y *matrix.Dense[T], rFn RFunc[T], opts ...Option) (*Projection[T], error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return nil, streamErrorf(opProject, err)
	}
	if err := matrix.ValidateNotNil(y); err != nil {
		return nil, streamErrorf(opProject, err)
	}
	m, n := a.Dims()
	ym, b := y.Dims()
	if ym != m {
		return nil, streamErrorf(opProject, fmt.Errorf("Y has %d rows, A has %d: %w", ym, m, matrix.ErrDimensionMismatch))
	}
	if b > m {
		return nil, streamErrorf(opProject, fmt.Errorf("basis width %d > rows %d: %w", b, m, matrix.ErrRankBound))
	}
	o := options{blockRows: DefaultBlockRows, workers: DefaultWorkers}
	for _, set := range opts {
		set(&o)
	}

	if rFn == nil {
		rFn = qr.RFactor[T]
	}
	r, err := rFn(y)
	if err != nil {
		return nil, streamErrorf(opProject, err)
	}
	if err = checkPivots(r); err != nil {
		return nil, streamErrorf(opProject, err)
	}

	c, err := matrix.NewDense[T](b, n)
	if err != nil {
		return nil, streamErrorf(opProject, err)
	}
	blocks := 0
	for i0 := 0; i0 < m; i0 += o.blockRows {
		i1 := min(i0+o.blockRows, m)
		yi, err := matrix.Slice(y, i0, i1, 0, b)
		if err != nil {
			return nil, streamErrorf(opProject, err)
		}
		ai, err := matrix.Slice(a, i0, i1, 0, n)
		if err != nil {
			return nil, streamErrorf(opProject, err)
		}
		part, err := matrix.MulTA(yi, ai, matrix.WithWorkers(o.workers))
		if err != nil {
			return nil, streamErrorf(opProject, err)
		}
		if c, err = matrix.Add(c, part); err != nil {
			return nil, streamErrorf(opProject, err)
		}
		blocks++
	}

	projected, err := matrix.SolveUpperTrans(r, c)
	if err != nil {
		return nil, streamErrorf(opProject, err)
	}

	return &Projection[T]{B: projected, R: r, Blocks: blocks}, nil
}

// Recover returns U = Y·(R⁻¹·ut) for the left singular vectors ut (b×r) of
// p.B, writing U block by block. y must be the basis p was built from.
func (p *Projection[T]) Recover(y, ut *matrix.Dense[T], opts ...Option) (*matrix.Dense[T], error) {
	if err := matrix.ValidateNotNil(y); err != nil {
		return nil, streamErrorf(opRecover, err)
	}
	o := options{blockRows: DefaultBlockRows, workers: DefaultWorkers}
	for _, set := range opts {
		set(&o)
	}
	x, err := matrix.SolveUpper(p.R, ut)
	if err != nil {
		return nil, streamErrorf(opRecover, err)
	}
	m, b := y.Dims()
	if b != p.R.Rows() {
		return nil, streamErrorf(opRecover, fmt.Errorf("basis width %d, R has order %d: %w", b, p.R.Rows(), matrix.ErrDimensionMismatch))
	}
	u, err := matrix.NewDense[T](m, x.Cols())
	if err != nil {
		return nil, streamErrorf(opRecover, err)
	}
	for i0 := 0; i0 < m; i0 += o.blockRows {
		i1 := min(i0+o.blockRows, m)
		yi, err := matrix.Slice(y, i0, i1, 0, b)
		if err != nil {
			return nil, streamErrorf(opRecover, err)
		}
		ui, err := matrix.Mul(yi, x, matrix.WithWorkers(o.workers))
		if err != nil {
			return nil, streamErrorf(opRecover, err)
		}
		if err = matrix.SetBlock(u, i0, 0, ui); err != nil {
			return nil, streamErrorf(opRecover, err)
		}
	}

	return u, nil
}

// checkPivots rejects an R whose smallest pivot is negligible relative to its
// largest; solving with it would amplify rounding noise without bound.
func checkPivots[T matrix.Float](r *matrix.Dense[T]) error {
	b := r.Rows()
	var largest float64
	for j := 0; j < b; j++ {
		v, _ := r.At(j, j)
		largest = math.Max(largest, math.Abs(float64(v)))
	}
	threshold := largest * float64(b) * matrix.Epsilon[T]()
	for j := 0; j < b; j++ {
		v, _ := r.At(j, j)
		if largest == 0 || math.Abs(float64(v)) <= threshold {
			return fmt.Errorf("pivot %d = %g: %w", j, float64(v), matrix.ErrSingular)
		}
	}

	return nil
}
