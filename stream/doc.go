// SPDX-License-Identifier: MIT

// Package stream projects a tall matrix onto a randomized basis without ever
// forming the orthonormal factor of that basis.
//
// Given A (m×n) and Y (m×b) with thin QR Y = Q·R, the projected matrix is
//
//	B = Qᵗ·A = R⁻ᵗ·(Yᵗ·A)
//
// Only R (b×b) is computed, by qr.RFactor or by the caller's RFunc (a
// decomp.Decomposer's R method, say). C = Yᵗ·A is accumulated over row blocks of A and
// Y, so a block holds O(block·(n+b)) values instead of the m×b basis. B is
// recovered from C by forward substitution with Rᵗ. After B = Ũ·S·Vᵗ the
// left factor of A is U = Q·Ũ = Y·(R⁻¹·Ũ), again a triangular solve followed
// by one product with Y. R is never inverted explicitly.
//
// A numerically singular R (Y without full column rank) is reported as
// matrix.ErrSingular so the caller can fall back to the direct path.
package stream
