// SPDX-License-Identifier: MIT

package rsvd

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/katalvlaran/lvsvd/decomp"
	"github.com/katalvlaran/lvsvd/device"
	"github.com/katalvlaran/lvsvd/jacobi"
	"github.com/katalvlaran/lvsvd/metrics"
)

const (
	// DefaultOversampling is p, the number of extra random directions.
	DefaultOversampling = 10

	// DefaultPowerIterations is q.
	DefaultPowerIterations = 2

	// DefaultBlockRows of 0 selects the direct (materialized Q) path.
	DefaultBlockRows = 0

	// DefaultSeed seeds the random projection.
	DefaultSeed uint64 = 0
)

const (
	panicOversamplingInvalid = "rsvd: WithOversampling: p must be >= 0"
	panicPowerItersInvalid   = "rsvd: WithPowerIterations: q must be >= 0"
	panicBlockRowsInvalid    = "rsvd: WithBlockRows: rows must be >= 0"
	panicMultiplierInvalid   = "rsvd: WithSweepMultiplier: multiplier must be finite and > 0"
)

// Option configures a decomposition. Later options override earlier ones.
type Option func(*options)

type options struct {
	oversampling int
	powerIters   int
	blockRows    int
	backend      decomp.Backend
	device       device.Config
	seed         uint64
	logger       zerolog.Logger
	recorder     *metrics.Recorder
	multiplier   float64
	withoutU     bool
	withoutV     bool
}

// WithOversampling sets p. Panics when p < 0.
func WithOversampling(p int) Option {
	if p < 0 {
		panic(panicOversamplingInvalid)
	}

	return func(o *options) { o.oversampling = p }
}

// WithPowerIterations sets q. Panics when q < 0.
func WithPowerIterations(q int) Option {
	if q < 0 {
		panic(panicPowerItersInvalid)
	}

	return func(o *options) { o.powerIters = q }
}

// WithBlockRows enables the streaming projection with the given row-block
// height; 0 restores the direct path. Panics when rows < 0.
func WithBlockRows(rows int) Option {
	if rows < 0 {
		panic(panicBlockRowsInvalid)
	}

	return func(o *options) { o.blockRows = rows }
}

// WithBackend selects the decomposer.
func WithBackend(b decomp.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithDevice sets the device configuration.
func WithDevice(cfg device.Config) Option {
	return func(o *options) { o.device = cfg }
}

// WithWorkers sets the host core count (device.Config.Cores).
func WithWorkers(n int) Option {
	return func(o *options) { o.device.Cores = n }
}

// WithSeed sets the seed of the random projection.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger; the default is zerolog's global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder enables Prometheus instrumentation.
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithSweepMultiplier scales the Jacobi sweep budget of the Primitive
// backend. Panics when f is not finite and positive.
func WithSweepMultiplier(f float64) Option {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		panic(panicMultiplierInvalid)
	}

	return func(o *options) { o.multiplier = f }
}

// WithoutU skips assembling the left singular vectors.
func WithoutU() Option {
	return func(o *options) { o.withoutU = true }
}

// WithoutV skips returning the right singular vectors.
func WithoutV() Option {
	return func(o *options) { o.withoutV = true }
}

func gatherOptions(user ...Option) options {
	o := options{
		oversampling: DefaultOversampling,
		powerIters:   DefaultPowerIterations,
		blockRows:    DefaultBlockRows,
		backend:      decomp.Primitive,
		seed:         DefaultSeed,
		logger:       log.Logger,
		multiplier:   jacobi.DefaultSweepMultiplier,
	}
	for _, set := range user {
		set(&o)
	}

	return o
}

func (o options) jacobiOpts(workers int) []jacobi.Option {
	return []jacobi.Option{jacobi.WithSweepMultiplier(o.multiplier), jacobi.WithWorkers(workers)}
}
