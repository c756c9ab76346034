// SPDX-License-Identifier: MIT

package jacobi

import (
	"errors"
	"math"

	"github.com/katalvlaran/lvsvd/matrix"
)

// ErrInvalidSize is returned for a schedule over fewer than one column.
var ErrInvalidSize = errors.New("jacobi: schedule size must be >= 1")

const (
	// DefaultSweepMultiplier scales the fixed sweep budget; 1 reproduces
	// int(num·log2(num)·2 + 2).
	DefaultSweepMultiplier = 1.0

	// DefaultWorkers is the goroutine count for the final basis expansion.
	DefaultWorkers = 1
)

const (
	panicMultiplierInvalid = "jacobi: WithSweepMultiplier: multiplier must be finite and > 0"
	panicSweepsInvalid     = "jacobi: WithSweeps: sweeps must be >= 0"
	panicWorkersInvalid    = "jacobi: WithWorkers: workers must be >= 1"
)

// Option configures a decomposition.
type Option func(*options)

type options struct {
	multiplier float64
	sweeps     int // < 0: use SweepBudget
	workers    int
}

// WithSweepMultiplier scales the default sweep budget (callers needing a
// tighter result on clustered spectra raise it).
func WithSweepMultiplier(f float64) Option {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		panic(panicMultiplierInvalid)
	}

	return func(o *options) { o.multiplier = f }
}

// WithSweeps fixes the number of sweeps, overriding the budget formula.
func WithSweeps(n int) Option {
	if n < 0 {
		panic(panicSweepsInvalid)
	}

	return func(o *options) { o.sweeps = n }
}

// WithWorkers sets the goroutine count of the Q·U expansion.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *options) { o.workers = n }
}

func gatherOptions(user ...Option) options {
	o := options{multiplier: DefaultSweepMultiplier, sweeps: -1, workers: DefaultWorkers}
	for _, set := range user {
		set(&o)
	}

	return o
}

// SweepBudget returns int(multiplier·num·log2(num)·2 + 2).
func SweepBudget(num int, multiplier float64) int {
	if num < 1 {
		return 0
	}
	n := float64(num)

	return int(multiplier*n*math.Log2(n)*2 + 2)
}

func (o options) budget(num int) int {
	if o.sweeps >= 0 {
		return o.sweeps
	}

	return SweepBudget(num, o.multiplier)
}

func (o options) matrixOpts() []matrix.Option {
	return []matrix.Option{matrix.WithWorkers(o.workers)}
}
