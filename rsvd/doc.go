// SPDX-License-Identifier: MIT

// Package rsvd is the public entry point: randomized truncated SVD, exact
// SVD and QR of dense matrices.
//
// Randomized runs
//
//	device selection → range finder (Y) → projection (B) → SVD(B) → U, S, V
//
// The projection either materializes Q = qr(Y).Q and forms B = Qᵗ·A (the
// direct path), or, with WithBlockRows, streams row blocks of A and Y and
// only ever forms the triangular factor of Y (package stream). A streaming
// projection that meets a singular basis falls back to the direct path.
//
// The decompositions themselves come from a decomp.Decomposer: the
// Primitive backend (Householder QR plus one-sided Jacobi SVD) by default,
// or gonum with WithBackend(decomp.Native).
//
// Randomized and Exact work on a copy of the input scaled by a power of two to
// max|a| < 1 and scales S back at the end, so entries far from 1 (1e±160 in
// float64, 1e±19 in float32) neither overflow nor underflow when squared.
//
// Inputs are never mutated. Shape and rank errors are returned before any
// computation starts; device and numerical problems degrade with a warning in
// Result.Warnings instead of failing.
package rsvd
