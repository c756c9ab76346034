// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for kernels and ingestion.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the non-negative tolerance used by structural checks
	// (IsUpperTriangular, IsOrthonormal).
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf rejects NaN/±Inf on ingestion (NewDenseFrom, FromRows).
	DefaultValidateNaNInf = true

	// DefaultWorkers is the number of goroutines used by Mul/MulTA.
	// 1 keeps the multiplication kernels fully sequential.
	DefaultWorkers = 1

	// DefaultMinParallelRows is the smallest result height that is split
	// across workers; smaller products run sequentially.
	DefaultMinParallelRows = 64
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"
	panicWorkersInvalid = "matrix: WithWorkers: workers must be >= 1"
	panicMinRowsInvalid = "matrix: WithMinParallelRows: rows must be >= 1"
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept ...Option.
type Options struct {
	eps             float64 // >= 0; DefaultEpsilon
	validateNaNInf  bool    // DefaultValidateNaNInf
	workers         int     // >= 1; DefaultWorkers
	minParallelRows int     // >= 1; DefaultMinParallelRows
}

// WithEpsilon sets the tolerance used by structural checks.
// Panics when eps is negative or non-finite.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithValidateNaNInf enables finite-value validation on ingestion (default).
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf disables finite-value validation on ingestion.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// WithWorkers sets the goroutine count for the multiplication kernels.
// Implementation:
//   - Stage 1: validate workers >= 1 (programmer error otherwise).
//   - Stage 2: return a setter writing the count.
//
// Behavior highlights:
//   - Rows of the result are partitioned into contiguous blocks, one per
//     worker; every output element is still produced by exactly one
//     goroutine in the same k-order, so results do not depend on workers.
//
// Complexity:
//   - Time O(1), Space O(1).
func WithWorkers(workers int) Option {
	if workers < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = workers }
}

// WithMinParallelRows sets the smallest result height split across workers.
func WithMinParallelRows(rows int) Option {
	if rows < 1 {
		panic(panicMinRowsInvalid)
	}

	return func(o *Options) { o.minParallelRows = rows }
}

// NewOptions resolves a sequence of setters on top of the defaults.
// Exposed for callers that want to inspect the effective configuration.
func NewOptions(opts ...Option) Options {
	return gatherOptions(opts...)
}

// Epsilon returns the effective structural tolerance.
func (o Options) Epsilon() float64 { return o.eps }

// Workers returns the effective worker count.
func (o Options) Workers() int { return o.workers }

// ValidateNaNInf reports whether ingestion rejects non-finite values.
func (o Options) ValidateNaNInf() bool { return o.validateNaNInf }

// gatherOptions applies user-provided setters on top of defaults
// (last-writer-wins).
func gatherOptions(user ...Option) Options {
	o := Options{
		eps:             DefaultEpsilon,
		validateNaNInf:  DefaultValidateNaNInf,
		workers:         DefaultWorkers,
		minParallelRows: DefaultMinParallelRows,
	}
	for _, set := range user {
		set(&o)
	}

	return o
}
