// SPDX-License-Identifier: MIT

package rsvd

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvsvd/decomp"
	"github.com/katalvlaran/lvsvd/device"
	"github.com/katalvlaran/lvsvd/jacobi"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/metrics"
)

// ErrNumericalDegeneracy marks a warning about a negligible pivot or
// singular value that was handled locally (skipped, completed or routed to a
// fallback path).
var ErrNumericalDegeneracy = errors.New("rsvd: numerical degeneracy")

// Projection paths.
const (
	PathDirect    = "direct"
	PathStreaming = "streaming"
	PathExact     = "exact"
)

func rsvdErrorf(op string, err error) error {
	return fmt.Errorf("rsvd.%s: %w", op, err)
}

// Result is a (possibly truncated) SVD A ≈ U·diag(S)·Vᵗ.
type Result[T matrix.Float] struct {
	U *matrix.Dense[T] // m×k; nil with WithoutU
	S []T              // k, descending
	V *matrix.Dense[T] // n×k; nil with WithoutV

	// ExplainedVariance[i] = S[i]² / ‖A‖_F² (zeros for A = 0).
	ExplainedVariance []float64

	Backend   decomp.Backend
	Device    string
	Precision matrix.Precision
	Path      string

	// Diagnostics of the Jacobi SVD; nil for the Native backend.
	Diagnostics *jacobi.Diagnostics

	// Warnings wrap device.ErrBackendUnavailable, device.ErrPrecisionDowngrade
	// or ErrNumericalDegeneracy.
	Warnings []error
}

// balance returns a copy of a scaled by 2^−exp so that max|a| lies in
// [0.5, 1) (exp = 0 for a zero matrix). Power-of-two scaling is exact, and
// squared entries of the copy can neither overflow nor underflow.
func balance[T matrix.Float](a *matrix.Dense[T]) (*matrix.Dense[T], int, error) {
	peak, err := matrix.MaxAbs(a)
	if err != nil {
		return nil, 0, err
	}
	_, exp := math.Frexp(peak)
	scaled, err := matrix.Ldexp(a, -exp)
	if err != nil {
		return nil, 0, err
	}

	return scaled, exp, nil
}

// finish fills the explained variance from the balanced input and undoes
// balance on S.
func (r *Result[T]) finish(balanced *matrix.Dense[T], exp int) error {
	total, err := matrix.SumSquares(balanced)
	if err != nil {
		return err
	}
	r.ExplainedVariance = explainedVariance(r.S, total)
	for i := range r.S {
		r.S[i] = T(math.Ldexp(float64(r.S[i]), exp))
	}

	return nil
}

// narrowed reports whether a p-precision input runs in float32 under sel.
func narrowed(sel device.Selection, p matrix.Precision) bool {
	return sel.Precision == matrix.Float32 && p == matrix.Float64
}

// explainedVariance returns s²/total in float64.
func explainedVariance[T matrix.Float](s []T, total float64) []float64 {
	ev := matrix.ConvertSlice[T, float64](s)
	if total == 0 {
		floats.Scale(0, ev)
		return ev
	}
	floats.Mul(ev, ev)
	floats.Scale(1/total, ev)

	return ev
}

// convertResult rounds a result computed in precision C back to T.
func convertResult[C, T matrix.Float](r *Result[C]) *Result[T] {
	return &Result[T]{
		U:                 matrix.Convert[C, T](r.U),
		S:                 matrix.ConvertSlice[C, T](r.S),
		V:                 matrix.Convert[C, T](r.V),
		ExplainedVariance: r.ExplainedVariance,
		Backend:           r.Backend,
		Device:            r.Device,
		Precision:         r.Precision,
		Path:              r.Path,
		Diagnostics:       r.Diagnostics,
		Warnings:          r.Warnings,
	}
}

// selectDevice resolves the device for input precision p, never widening
// the input's precision.
func selectDevice(o *options, p matrix.Precision) device.Selection {
	cfg := o.device
	if p == matrix.Float32 {
		cfg.Precision = matrix.Float32
	}
	t := o.recorder.StartStage(metrics.StageDevice)
	sel := device.Select(cfg, o.logger)
	t.Stop(metrics.ResultOK)
	downgraded := false
	for _, w := range sel.Warnings {
		switch {
		case errors.Is(w, device.ErrBackendUnavailable):
			o.recorder.CountFallback("accelerator_unavailable")
		case errors.Is(w, device.ErrPrecisionDowngrade):
			o.recorder.CountFallback("precision_downgrade")
			downgraded = true
		}
	}
	if narrowed(sel, p) && !downgraded {
		o.logger.Info().Str("device", sel.Name).Stringer("precision", sel.Precision).
			Msg("float32 requested, computing a float64 input in single precision")
	}

	return sel
}

// stage runs fn as a timed, logged pipeline stage.
func (o *options) stage(name string, fn func() error) error {
	t := o.recorder.StartStage(name)
	err := fn()
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	d := t.Stop(result)
	o.logger.Debug().Str("stage", name).Dur("elapsed", d).Err(err).Msg("stage finished")

	return err
}

// degeneracyWarning reports completed singular vectors, if any.
func (o *options) degeneracyWarning(d *jacobi.Diagnostics) error {
	if d == nil || d.DegenerateColumns == 0 {
		return nil
	}
	o.logger.Debug().Int("columns", d.DegenerateColumns).Msg("negligible singular values, vectors completed")

	return fmt.Errorf("%d negligible singular values: %w", d.DegenerateColumns, ErrNumericalDegeneracy)
}
