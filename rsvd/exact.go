// SPDX-License-Identifier: MIT

package rsvd

import (
	"fmt"
	"time"

	"github.com/katalvlaran/lvsvd/decomp"
	"github.com/katalvlaran/lvsvd/device"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/metrics"
)

const (
	opExact      = "Exact"
	opExactBatch = "ExactBatch"
	opQR         = "QR"
	opQRBatch    = "QRBatch"
)

// Exact computes the full thin SVD of a, num = min(m, n), without
// randomization or truncation. Only the backend, device, logger, recorder,
// sweep multiplier and WithoutU/WithoutV options apply.
func Exact[T matrix.Float](a *matrix.Dense[T], opts ...Option) (*Result[T], error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return nil, rsvdErrorf(opExact, err)
	}
	if err := matrix.ValidateFinite(a); err != nil {
		return nil, rsvdErrorf(opExact, err)
	}
	o := gatherOptions(opts...)
	start := time.Now()
	a, exp, err := balance(a)
	if err != nil {
		return nil, rsvdErrorf(opExact, err)
	}

	sel := selectDevice(&o, matrix.PrecisionOf[T]())
	var res []*Result[T]
	if narrowed(sel, matrix.PrecisionOf[T]()) {
		var narrow []*Result[float32]
		if narrow, err = exact(matrix.Batch[float32]{matrix.Convert[T, float32](a)}, &o, sel); err == nil {
			res = []*Result[T]{convertResult[float32, T](narrow[0])}
		}
	} else {
		res, err = exact(matrix.Batch[T]{a}, &o, sel)
	}
	if err != nil {
		return nil, rsvdErrorf(opExact, err)
	}
	if err = res[0].finish(a, exp); err != nil {
		return nil, rsvdErrorf(opExact, err)
	}
	o.recorder.CountDecomposition("exact", o.backend.String(), res[0].Device)
	rows, cols := a.Dims()
	o.logger.Info().
		Str("method", "exact").
		Int("rows", rows).Int("cols", cols).
		Str("backend", o.backend.String()).Str("device", res[0].Device).
		Dur("elapsed", time.Since(start)).
		Msg("decomposition complete")

	return res[0], nil
}

// ExactBatch computes the full thin SVD of every member of an equally shaped
// batch. The device is selected once; the Primitive backend runs all members
// through jacobi.DecomposeBatch with one schedule and sweep budget.
// Every member is validated before any computation.
func ExactBatch[T matrix.Float](b matrix.Batch[T], opts ...Option) ([]*Result[T], error) {
	if err := matrix.ValidateBatch(b); err != nil {
		return nil, rsvdErrorf(opExactBatch, err)
	}
	for i, m := range b {
		if err := matrix.ValidateFinite(m); err != nil {
			return nil, rsvdErrorf(opExactBatch, fmt.Errorf("member %d: %w", i, err))
		}
	}
	o := gatherOptions(opts...)
	start := time.Now()
	balanced := make(matrix.Batch[T], len(b))
	exps := make([]int, len(b))
	for i, m := range b {
		var err error
		if balanced[i], exps[i], err = balance(m); err != nil {
			return nil, rsvdErrorf(opExactBatch, err)
		}
	}

	sel := selectDevice(&o, matrix.PrecisionOf[T]())
	var (
		res []*Result[T]
		err error
	)
	if narrowed(sel, matrix.PrecisionOf[T]()) {
		narrowIn := make(matrix.Batch[float32], len(balanced))
		for i, m := range balanced {
			narrowIn[i] = matrix.Convert[T, float32](m)
		}
		var narrow []*Result[float32]
		if narrow, err = exact(narrowIn, &o, sel); err == nil {
			res = make([]*Result[T], len(narrow))
			for i, r := range narrow {
				res[i] = convertResult[float32, T](r)
			}
		}
	} else {
		res, err = exact(balanced, &o, sel)
	}
	if err != nil {
		return nil, rsvdErrorf(opExactBatch, err)
	}
	for i, r := range res {
		if err = r.finish(balanced[i], exps[i]); err != nil {
			return nil, rsvdErrorf(opExactBatch, fmt.Errorf("member %d: %w", i, err))
		}
		o.recorder.CountDecomposition("exact", o.backend.String(), r.Device)
	}
	_, rows, cols := b.Dims()
	o.logger.Info().
		Str("method", "exact").
		Int("members", len(b)).Int("rows", rows).Int("cols", cols).
		Str("backend", o.backend.String()).Str("device", sel.Name).
		Dur("elapsed", time.Since(start)).
		Msg("batch decomposition complete")

	return res, nil
}

// exact decomposes every member of b with one decomposer. A single matrix
// goes through SVD so its errors carry no batch framing.
func exact[T matrix.Float](b matrix.Batch[T], o *options, sel device.Selection) ([]*Result[T], error) {
	dec, err := decomp.New[T](o.backend, o.jacobiOpts(sel.Workers)...)
	if err != nil {
		return nil, err
	}
	var trs []*decomp.Triplet[T]
	if err = o.stage(metrics.StageSVD, func() error {
		if len(b) == 1 {
			tr, err := dec.SVD(b[0])
			trs = []*decomp.Triplet[T]{tr}
			return err
		}
		var err error
		trs, err = dec.SVDBatch(b)
		return err
	}); err != nil {
		return nil, err
	}

	out := make([]*Result[T], len(trs))
	for i, tr := range trs {
		out[i] = exactResult(o, tr, sel)
	}

	return out, nil
}

// exactResult wraps one untruncated triplet as a Result.
func exactResult[T matrix.Float](o *options, tr *decomp.Triplet[T], sel device.Selection) *Result[T] {
	res := &Result[T]{
		U:           tr.U,
		S:           tr.S,
		V:           tr.V,
		Backend:     o.backend,
		Device:      sel.Name,
		Precision:   sel.Precision,
		Path:        PathExact,
		Diagnostics: tr.Diagnostics,
		Warnings:    append([]error(nil), sel.Warnings...),
	}
	if tr.Diagnostics != nil {
		o.recorder.ObserveJacobi(tr.Diagnostics.Sweeps, tr.Diagnostics.OffDiagonal)
	}
	if w := o.degeneracyWarning(tr.Diagnostics); w != nil {
		res.Warnings = append(res.Warnings, w)
	}
	if o.withoutU {
		res.U = nil
	}
	if o.withoutV {
		res.V = nil
	}

	return res
}

// QR returns the thin (Q, R) of m with the selected backend, in m's own
// precision. Only the backend, logger and recorder options apply.
func QR[T matrix.Float](m *matrix.Dense[T], opts ...Option) (*matrix.Dense[T], *matrix.Dense[T], error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, nil, rsvdErrorf(opQR, err)
	}
	o := gatherOptions(opts...)
	dec, err := decomp.New[T](o.backend)
	if err != nil {
		return nil, nil, rsvdErrorf(opQR, err)
	}
	var q, r *matrix.Dense[T]
	if err = o.stage(metrics.StageQR, func() error {
		var err error
		q, r, err = dec.QR(m.Clone())
		return err
	}); err != nil {
		return nil, nil, rsvdErrorf(opQR, err)
	}
	o.recorder.CountDecomposition("qr", o.backend.String(), device.HostName)

	return q, r, nil
}

// QRBatch returns the thin (Q, R) of every member of an equally shaped batch;
// qs[i], rs[i] belong to b[i]. Options as for QR.
func QRBatch[T matrix.Float](b matrix.Batch[T], opts ...Option) (qs, rs matrix.Batch[T], err error) {
	if err = matrix.ValidateBatch(b); err != nil {
		return nil, nil, rsvdErrorf(opQRBatch, err)
	}
	o := gatherOptions(opts...)
	dec, err := decomp.New[T](o.backend)
	if err != nil {
		return nil, nil, rsvdErrorf(opQRBatch, err)
	}
	if err = o.stage(metrics.StageQR, func() error {
		var err error
		qs, rs, err = dec.QRBatch(b)
		return err
	}); err != nil {
		return nil, nil, rsvdErrorf(opQRBatch, err)
	}
	for range b {
		o.recorder.CountDecomposition("qr", o.backend.String(), device.HostName)
	}

	return qs, rs, nil
}
