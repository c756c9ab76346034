// SPDX-License-Identifier: MIT

// Package rangefinder estimates the dominant column space of a matrix by
// random projection.
//
// For A (m×n), target rank k and oversampling p it draws Ω (n×b, b = k+p)
// with independent standard-normal entries from a seeded source and forms
// Y = A·Ω. Each power iteration then sharpens the spectral gap:
//
//	Z ← qr(Aᵗ·Y).Q
//	Y ← qr(A·Z).Q
//
// Both intermediates are re-orthonormalized; alternating raw products would
// collapse Y to the single dominant direction in floating point.
//
// The same seed always yields the same Ω, hence the same Y.
package rangefinder
