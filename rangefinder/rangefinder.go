// SPDX-License-Identifier: MIT

package rangefinder

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/qr"
)

// ErrPowerIterations is returned for a negative power-iteration count.
var ErrPowerIterations = errors.New("rangefinder: power iterations must be >= 0")

const (
	// DefaultSeed seeds Ω when WithSeed is not given.
	DefaultSeed uint64 = 0

	// DefaultWorkers is the goroutine count of the products with A.
	DefaultWorkers = 1
)

const (
	opFind     = "Find"
	opGaussian = "Gaussian"

	panicWorkersInvalid = "rangefinder: WithWorkers: workers must be >= 1"
)

func rangeErrorf(op string, err error) error {
	return fmt.Errorf("rangefinder.%s: %w", op, err)
}

// QRFunc orthonormalizes the columns of its argument and returns (Q, R).
// qr.Decompose is the default; a decomp.Decomposer's QR method fits too.
type QRFunc[T matrix.Float] func(*matrix.Dense[T]) (*matrix.Dense[T], *matrix.Dense[T], error)

// Option configures Find.
type Option func(*options)

type options struct {
	seed    uint64
	workers int
}

// WithSeed sets the seed of the random projection.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithWorkers sets the goroutine count of the products with A.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *options) { o.workers = n }
}

// Find returns Y (m×(k+p)) approximately spanning the top-(k+p) column space
// of a.
// Implementation:
//   - Stage 1: Ω = Gaussian(n, k+p, seed); Y = A·Ω.
//   - Stage 2: q times, Z = qrFn(Aᵗ·Y).Q and Y = qrFn(A·Z).Q.
//
// Inputs:
//   - a: m×n matrix (not mutated).
//   - k, p: target rank and oversampling, k ≥ 1, p ≥ 0, k+p ≤ min(m, n).
//   - q: number of power iterations, q ≥ 0. With q = 0 Y is the raw A·Ω.
//   - qrFn: orthonormalizer; nil selects qr.Decompose.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrRankBound, ErrPowerIterations; all are
//     reported before any product is formed.
//
// Complexity:
//   - Time O((2q+1)·m·n·b + q·(m+n)·b²), b = k+p.
//   - Space O((m+n)·b).
func Find[T matrix.Float](a *matrix.Dense[T], k, p, q int, qrFn QRFunc[T], opts ...Option) (*matrix.Dense[T], error) {
	if err := matrix.ValidateRankBound(a, k, p); err != nil {
		return nil, rangeErrorf(opFind, err)
	}
	if q < 0 {
		return nil, rangeErrorf(opFind, ErrPowerIterations)
	}
	o := options{seed: DefaultSeed, workers: DefaultWorkers}
	for _, set := range opts {
		set(&o)
	}
	if qrFn == nil {
		qrFn = qr.Decompose[T]
	}
	mopts := []matrix.Option{matrix.WithWorkers(o.workers)}

	omega, err := Gaussian[T](a.Cols(), k+p, o.seed)
	if err != nil {
		return nil, rangeErrorf(opFind, err)
	}
	y, err := matrix.Mul(a, omega, mopts...)
	if err != nil {
		return nil, rangeErrorf(opFind, err)
	}

	for it := 0; it < q; it++ {
		z, err := matrix.MulTA(a, y, mopts...)
		if err != nil {
			return nil, rangeErrorf(opFind, err)
		}
		if z, _, err = qrFn(z); err != nil {
			return nil, rangeErrorf(opFind, fmt.Errorf("power iteration %d: %w", it, err))
		}
		if y, err = matrix.Mul(a, z, mopts...); err != nil {
			return nil, rangeErrorf(opFind, err)
		}
		if y, _, err = qrFn(y); err != nil {
			return nil, rangeErrorf(opFind, fmt.Errorf("power iteration %d: %w", it, err))
		}
	}

	return y, nil
}
