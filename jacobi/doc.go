// SPDX-License-Identifier: MIT

// Package jacobi computes the singular value decomposition of a small dense
// matrix with one-sided Jacobi rotations over a round-robin pairing schedule.
//
// What & Why:
//
//	B (m×n) is first reduced by Householder QR along its longer axis, so the
//	iteration runs on a square num×num triangular factor, num = min(m, n).
//	Each sweep rotates num/2 disjoint column pairs at once; the rotation
//	angle diagonalizes the 2×2 Gram block [aᵗa aᵗb; aᵗb bᵗb] of the pair.
//	When the columns are mutually orthogonal their norms are the singular
//	values, the accumulated rotations are V, and the normalized columns
//	(expanded through the QR factor) are U.
//
// Schedule:
//
//	The pairing is the classic tournament: perm starts as 0..num-1 with its
//	upper half reversed; pair j is (perm[j], perm[num/2+j]). For odd num the
//	last entry sits out the sweep (runoff) and the whole permutation rotates
//	by one. For even num perm[0] stays fixed and the rest rotate by two
//	within 1..num-1. Every unordered pair meets within one full cycle.
//
// Budget:
//
//	The sweep count is fixed: int(num·log2(num)·2 + 2), scaled by
//	WithSweepMultiplier or replaced by WithSweeps. There is no adaptive stop.
//	Diagnostics reports the residual off-diagonal energy so callers can
//	validate convergence; it never changes the number of sweeps.
//
// Degeneracies:
//
//	A pair whose off-diagonal term is exactly zero is skipped. Columns whose
//	singular value is negligible (≤ S₀·num·ε) cannot be normalized; they are
//	replaced by a Gram-Schmidt completion of the basis, keeping U orthonormal
//	while S keeps the computed value.
package jacobi
