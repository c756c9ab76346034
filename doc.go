// SPDX-License-Identifier: MIT

// Package lvsvd computes truncated and exact singular value decompositions
// of large dense matrices, for PCA-style dimensionality reduction.
//
// The numerical kernels are built from scratch on a small set of primitive
// matrix operations (multiply, elementwise arithmetic, slicing, reductions):
//
//	matrix/      Dense[T] (float32 | float64) and the primitive kernels
//	qr/          thin Householder QR, R-only variant, batches
//	jacobi/      one-sided Jacobi SVD over a round-robin pairing schedule
//	rangefinder/ seeded Gaussian projection + re-orthonormalized power iterations
//	stream/      row-block projection through triangular solves (no explicit Q)
//	decomp/      Decomposer: Primitive (qr + jacobi) or Native (gonum)
//	device/      explicit device/precision configuration and fallback chain
//	metrics/     Prometheus stage timings and fallback counters
//	preprocess/  log2 / transpose / center + scale of raw feature tables
//	rsvd/        entry points: Randomized, Exact, QR and their batch forms
//	cmd/lvsvd/   CSV command-line front end
//
// Quick example:
//
//	res, err := rsvd.Randomized(a, 20,
//		rsvd.WithOversampling(10),
//		rsvd.WithPowerIterations(2),
//		rsvd.WithBlockRows(4096), // stream tall inputs
//	)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.S, res.ExplainedVariance)
//
// The Jacobi sweep count is a fixed budget, int(num·log2(num)·2 + 2), not an
// adaptive stopping rule. jacobi.Diagnostics reports the residual
// off-diagonal energy for callers that need to check convergence.
package lvsvd
