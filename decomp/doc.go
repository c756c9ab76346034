// SPDX-License-Identifier: MIT

// Package decomp selects how the small dense factorizations of a pipeline are
// computed.
//
// A Decomposer bundles QR, R-only QR and thin SVD, each also over an equally
// shaped batch, behind one interface. Two backends exist:
//
//   - Primitive: Householder QR (package qr) and one-sided Jacobi SVD
//     (package jacobi), composed from the primitive kernels of package
//     matrix only. Runs anywhere those kernels run.
//   - Native: gonum's LAPACK-backed mat.QR and mat.SVD, computed in float64
//     and rounded back to the caller's precision. Used as the reference path.
//
// Backends are chosen by value (Backend), not by type hierarchy.
package decomp
