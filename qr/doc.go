// SPDX-License-Identifier: MIT

// Package qr implements the thin Householder QR decomposition on top of the
// primitive kernels of package matrix.
//
// For M (p×q) and k = min(p, q) it returns Q (p×k) with orthonormal columns
// and R (k×q) upper-triangular such that M ≈ Q·R.
//
// Algorithm:
//
//	For i = 0..k-1 a reflector H_i = I − τ·v·vᵗ zeroes column i below the
//	diagonal of the trailing block W[i:, i:]. The reflector is applied as a
//	single rank-one update W ← W − τ·v·(vᵗW), never as a per-row loop.
//	The pivot scale α = −sign(x₀)·‖x‖ is taken opposite to the pivot so that
//	x₀ − α never cancels; v is normalized to v₀ = 1, giving τ ∈ [1, 2].
//	A column that is already zero gets the default reflector (τ = 0,
//	pass-through) and is reported in Degenerate.
//
//	Q is accumulated backward, Q = H_0·…·H_{k-1}·I[:, :k], touching only the
//	trailing block each reflector can reach.
//
// RFactor skips the Q accumulation altogether; the streaming projector uses
// it to keep peak memory at O(k·q).
//
// Complexity:
//
//	Factorize: O(p·q·k) time for R plus O(p·k²) for Q; O(p·q) memory.
package qr
