// SPDX-License-Identifier: MIT

package rsvd

import (
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/lvsvd/decomp"
	"github.com/katalvlaran/lvsvd/device"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/metrics"
	"github.com/katalvlaran/lvsvd/rangefinder"
	"github.com/katalvlaran/lvsvd/stream"
)

const (
	opRandomized      = "Randomized"
	opRandomizedBatch = "RandomizedBatch"
)

// Randomized computes a rank-k approximate SVD of a.
// Implementation:
//   - Stage 1: validate (nil, k ≥ 1, k+p ≤ min(m, n), finite) and copy a
//     scaled by a power of two to max|a| < 1; S is scaled back at the end.
//   - Stage 2: select the device; compute in float32 when it demands so.
//   - Stage 3: Y = rangefinder.Find(A, k, p, q) with the decomposer's QR.
//   - Stage 4: B = Qᵗ·A, directly or streamed (WithBlockRows).
//   - Stage 5: (Ũ, S, V) = SVD(B), truncated to k; U = Q·Ũ.
//
// Inputs:
//   - a: m×n matrix (not mutated).
//   - k: target rank; options set p (10), q (2), backend, device and more.
//
// Returns:
//   - *Result with U (m×k), S (k), V (n×k) and explained variance.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrRankBound, matrix.ErrNaNInf, all before
//     any computation; decomposer failures.
//
// Complexity:
//   - Time O((2q+2)·m·n·b + (m+n)·b² + sweeps·b²), b = k+p.
func Randomized[T matrix.Float](a *matrix.Dense[T], k int, opts ...Option) (*Result[T], error) {
	o := gatherOptions(opts...)
	if err := matrix.ValidateRankBound(a, k, o.oversampling); err != nil {
		return nil, rsvdErrorf(opRandomized, err)
	}
	if err := matrix.ValidateFinite(a); err != nil {
		return nil, rsvdErrorf(opRandomized, err)
	}
	start := time.Now()
	a, exp, err := balance(a)
	if err != nil {
		return nil, rsvdErrorf(opRandomized, err)
	}

	sel := selectDevice(&o, matrix.PrecisionOf[T]())
	var res *Result[T]
	if narrowed(sel, matrix.PrecisionOf[T]()) {
		var narrow *Result[float32]
		if narrow, err = randomized(matrix.Convert[T, float32](a), k, &o, sel); err == nil {
			res = convertResult[float32, T](narrow)
		}
	} else {
		res, err = randomized(a, k, &o, sel)
	}
	if err != nil {
		return nil, rsvdErrorf(opRandomized, err)
	}
	if err = res.finish(a, exp); err != nil {
		return nil, rsvdErrorf(opRandomized, err)
	}
	o.recorder.CountDecomposition("randomized", o.backend.String(), res.Device)
	rows, cols := a.Dims()
	o.logger.Info().
		Str("method", "randomized").
		Int("rows", rows).Int("cols", cols).Int("k", k).
		Int("oversampling", o.oversampling).Int("power_iterations", o.powerIters).
		Str("backend", o.backend.String()).Str("device", res.Device).
		Str("path", res.Path).Int("warnings", len(res.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("decomposition complete")

	return res, nil
}

// randomized runs stages 3 to 5 in precision T.
func randomized[T matrix.Float](a *matrix.Dense[T], k int, o *options, sel device.Selection) (*Result[T], error) {
	dec, err := decomp.New[T](o.backend, o.jacobiOpts(sel.Workers)...)
	if err != nil {
		return nil, err
	}
	res := &Result[T]{
		Backend:   o.backend,
		Device:    sel.Name,
		Precision: sel.Precision,
		Path:      PathDirect,
		Warnings:  append([]error(nil), sel.Warnings...),
	}

	var y *matrix.Dense[T]
	err = o.stage(metrics.StageRangeFinder, func() error {
		var err error
		y, err = rangefinder.Find(a, k, o.oversampling, o.powerIters, dec.QR,
			rangefinder.WithSeed(o.seed), rangefinder.WithWorkers(sel.Workers))
		return err
	})
	if err != nil {
		return nil, err
	}

	// Stage 4: projection.
	var (
		b    *matrix.Dense[T]
		q    *matrix.Dense[T]
		proj *stream.Projection[T]
	)
	if o.blockRows > 0 {
		err = o.stage(metrics.StageProject, func() error {
			var err error
			proj, err = stream.Project(a, y, dec.R, stream.WithBlockRows(o.blockRows), stream.WithWorkers(sel.Workers))
			return err
		})
		switch {
		case err == nil:
			b, res.Path = proj.B, PathStreaming
		case errors.Is(err, matrix.ErrSingular):
			res.Warnings = append(res.Warnings, fmt.Errorf("streaming projection, using direct path: %w", errors.Join(ErrNumericalDegeneracy, err)))
			o.recorder.CountFallback("singular_basis")
			o.logger.Warn().Err(err).Msg("basis is rank deficient, falling back to direct projection")
			proj = nil
		default:
			return nil, err
		}
	}
	if proj == nil {
		err = o.stage(metrics.StageProject, func() error {
			var err error
			if q, _, err = dec.QR(y); err != nil {
				return err
			}
			b, err = matrix.MulTA(q, a, matrix.WithWorkers(sel.Workers))
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	// Stage 5: small SVD, truncation, recovery.
	var tr *decomp.Triplet[T]
	if err = o.stage(metrics.StageSVD, func() error {
		var err error
		tr, err = dec.SVD(b)
		return err
	}); err != nil {
		return nil, err
	}
	res.Diagnostics = tr.Diagnostics
	if tr.Diagnostics != nil {
		o.recorder.ObserveJacobi(tr.Diagnostics.Sweeps, tr.Diagnostics.OffDiagonal)
	}
	if w := o.degeneracyWarning(tr.Diagnostics); w != nil {
		res.Warnings = append(res.Warnings, w)
	}

	res.S = tr.S[:k:k]
	if !o.withoutV {
		if res.V, err = matrix.Slice(tr.V, 0, tr.V.Rows(), 0, k); err != nil {
			return nil, err
		}
	}
	if o.withoutU {
		return res, nil
	}
	err = o.stage(metrics.StageRecover, func() error {
		ut, err := matrix.Slice(tr.U, 0, tr.U.Rows(), 0, k)
		if err != nil {
			return err
		}
		if proj != nil {
			res.U, err = proj.Recover(y, ut, stream.WithBlockRows(o.blockRows), stream.WithWorkers(sel.Workers))
			return err
		}
		res.U, err = matrix.Mul(q, ut, matrix.WithWorkers(sel.Workers))
		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// RandomizedBatch runs Randomized on every member of an equally shaped batch
// with the same options (hence the same seed).
func RandomizedBatch[T matrix.Float](b matrix.Batch[T], k int, opts ...Option) ([]*Result[T], error) {
	if err := matrix.ValidateBatch(b); err != nil {
		return nil, rsvdErrorf(opRandomizedBatch, err)
	}
	o := gatherOptions(opts...)
	if err := matrix.ValidateRankBound(b[0], k, o.oversampling); err != nil {
		return nil, rsvdErrorf(opRandomizedBatch, err)
	}
	out := make([]*Result[T], len(b))
	for i, m := range b {
		r, err := Randomized(m, k, opts...)
		if err != nil {
			return nil, rsvdErrorf(opRandomizedBatch, fmt.Errorf("member %d: %w", i, err))
		}
		out[i] = r
	}

	return out, nil
}
