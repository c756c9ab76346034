// SPDX-License-Identifier: MIT

package jacobi

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/qr"
)

const (
	opDecompose = "Decompose"
	opBatch     = "DecomposeBatch"
)

func jacobiErrorf(op string, err error) error {
	return fmt.Errorf("jacobi.%s: %w", op, err)
}

// Decomposition is the thin SVD B = U·diag(S)·Vᵗ, num = min(m, n).
type Decomposition[T matrix.Float] struct {
	U *matrix.Dense[T] // m×num, orthonormal columns
	S []T              // num, non-negative, descending
	V *matrix.Dense[T] // n×num, orthonormal columns

	Diagnostics Diagnostics
}

// Diagnostics describes how the fixed sweep budget was spent.
type Diagnostics struct {
	// Sweeps is the number of sweeps performed (the budget).
	Sweeps int

	// Rotations counts applied pair rotations; SkippedRotations counts pairs
	// whose off-diagonal Gram term was exactly zero.
	Rotations        int
	SkippedRotations int

	// OffDiagonal is ‖offdiag(WᵗW)‖_F / ‖WᵗW‖_F of the final working matrix;
	// 0 means fully converged.
	OffDiagonal float64

	// DegenerateColumns counts singular vectors completed by Gram-Schmidt
	// because their singular value was negligible.
	DegenerateColumns int
}

// SVD returns (U, S, V) of b. See Decompose.
func SVD[T matrix.Float](b *matrix.Dense[T], opts ...Option) (*matrix.Dense[T], []T, *matrix.Dense[T], error) {
	d, err := Decompose(b, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	return d.U, d.S, d.V, nil
}

// Decompose computes the thin SVD of b by one-sided Jacobi rotations.
// Implementation:
//   - Stage 1: QR of b (m ≥ n) or of bᵗ (m < n); W = R·2^−e (num×num) with
//     max|W| < 1, V = I.
//   - Stage 2: for the fixed sweep budget, rotate the schedule's column pairs
//     of W and V, then advance the schedule.
//   - Stage 3: S = column norms of W sorted descending; permute W and V to
//     match; normalize W by S (completing negligible columns); expand
//     through Q, rescale S by 2^e and swap the factors back when bᵗ was
//     decomposed.
//
// Inputs:
//   - b: m×n matrix (not mutated).
//   - opts: WithSweeps / WithSweepMultiplier / WithWorkers.
//
// Returns:
//   - *Decomposition with U (m×num), S (num), V (n×num) and Diagnostics.
//
// Errors:
//   - matrix.ErrNilMatrix.
//
// Complexity:
//   - Time O(m·n·num) for the QR plus O(sweeps·num²) for the rotations.
//   - Space O(m·n).
func Decompose[T matrix.Float](b *matrix.Dense[T], opts ...Option) (*Decomposition[T], error) {
	if err := matrix.ValidateNotNil(b); err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}
	o := gatherOptions(opts...)
	rows, cols := b.Dims()
	tall := rows >= cols
	num := min(rows, cols)

	// Stage 1: reduce along the longer axis.
	src := b
	if !tall {
		var err error
		if src, err = matrix.Transpose(b); err != nil {
			return nil, jacobiErrorf(opDecompose, err)
		}
	}
	f, err := qr.Factorize(src)
	if err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}
	w := f.R // num×num: src has at least as many rows as columns

	// Gram terms square the entries of W; bring max|W| into [0.5, 1) so they
	// neither overflow nor underflow, and scale S back after extraction.
	peak, err := matrix.MaxAbs(w)
	if err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}
	_, exp := math.Frexp(peak)
	if w, err = matrix.Ldexp(w, -exp); err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}
	v, err := matrix.Identity[T](num)
	if err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}

	// Stage 2: fixed number of sweeps.
	var diag Diagnostics
	if w, v, err = sweep(w, v, o.budget(num), &diag); err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}
	if diag.OffDiagonal, err = offDiagonal(w); err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}

	// Stage 3: extract.
	s, us, vs, err := extract(w, v, &diag)
	if err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}
	for i := range s {
		s[i] = T(math.Ldexp(float64(s[i]), exp))
	}
	left, err := matrix.Mul(f.Q, us, o.matrixOpts()...)
	if err != nil {
		return nil, jacobiErrorf(opDecompose, err)
	}

	d := &Decomposition[T]{S: s, Diagnostics: diag}
	if tall {
		d.U, d.V = left, vs
	} else {
		d.U, d.V = vs, left
	}

	return d, nil
}

// sweep applies the schedule's rotations to w and v for the given count.
func sweep[T matrix.Float](w, v *matrix.Dense[T], sweeps int, diag *Diagnostics) (*matrix.Dense[T], *matrix.Dense[T], error) {
	num := w.Cols()
	sched, err := NewSchedule(num)
	if err != nil {
		return nil, nil, err
	}
	diag.Sweeps = sweeps
	if num < 2 {
		return w, v, nil
	}

	var (
		left, right        []int
		gamma, alpha, beta []T
		c                  = make([]T, num/2)
		s                  = make([]T, num/2)
	)
	for it := 0; it < sweeps; it++ {
		left, right = sched.Pairs()
		if gamma, err = matrix.ColDots(w, left, right); err != nil {
			return nil, nil, err
		}
		if alpha, err = matrix.ColDots(w, left, left); err != nil {
			return nil, nil, err
		}
		if beta, err = matrix.ColDots(w, right, right); err != nil {
			return nil, nil, err
		}
		for p := range left {
			if gamma[p] == 0 {
				c[p], s[p] = 1, 0
				diag.SkippedRotations++
				continue
			}
			c[p], s[p] = rotation[T](float64(alpha[p]), float64(beta[p]), float64(gamma[p]))
			diag.Rotations++
		}
		if w, err = matrix.RotatePairs(w, left, right, c, s); err != nil {
			return nil, nil, err
		}
		if v, err = matrix.RotatePairs(v, left, right, c, s); err != nil {
			return nil, nil, err
		}
		sched.Advance()
	}

	return w, v, nil
}

// rotation returns (c, s) of the Jacobi rotation that zeroes the off-diagonal
// of [alpha gamma; gamma beta]; gamma must be non-zero.
// The small root t = sign(τ)/(|τ| + √(1+τ²)) keeps |θ| ≤ π/4. sign(0) is
// taken as +1 so equal-norm columns are still rotated.
func rotation[T matrix.Float](alpha, beta, gamma float64) (T, T) {
	tau := (beta - alpha) / (2 * gamma)
	t := math.Copysign(1, tau) / (math.Abs(tau) + math.Sqrt(1+tau*tau))
	c := 1 / math.Sqrt(1+t*t)

	return T(c), T(c * t)
}

// extract sorts singular values, permutes both factors and normalizes W.
func extract[T matrix.Float](w, v *matrix.Dense[T], diag *Diagnostics) ([]T, *matrix.Dense[T], *matrix.Dense[T], error) {
	norms, err := matrix.ColNorms(w)
	if err != nil {
		return nil, nil, nil, err
	}
	num := len(norms)
	order := make([]int, num)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(norms[b], norms[a]) })

	s := make([]T, num)
	for i, j := range order {
		s[i] = norms[j]
	}
	if w, err = matrix.SelectCols(w, order); err != nil {
		return nil, nil, nil, err
	}
	if v, err = matrix.SelectCols(v, order); err != nil {
		return nil, nil, nil, err
	}

	threshold := float64(s[0]) * float64(num) * matrix.Epsilon[T]()
	scale := make([]T, num)
	var degenerate []int
	for j := range s {
		if s[j] == 0 || float64(s[j]) <= threshold {
			degenerate = append(degenerate, j)
			continue
		}
		scale[j] = 1 / s[j]
	}
	us, err := matrix.ScaleCols(w, scale)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(degenerate) > 0 {
		diag.DegenerateColumns = len(degenerate)
		if us, err = complete(us, degenerate); err != nil {
			return nil, nil, nil, err
		}
	}

	return s, us, v, nil
}

// offDiagonal returns ‖offdiag(WᵗW)‖_F / ‖WᵗW‖_F in float64 (0 for W = 0).
func offDiagonal[T matrix.Float](w *matrix.Dense[T]) (float64, error) {
	g, err := matrix.MulTA(matrix.Convert[T, float64](w), matrix.Convert[T, float64](w))
	if err != nil {
		return 0, err
	}
	total, err := matrix.SumSquares(g)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	var diagSq float64
	for j := 0; j < g.Cols(); j++ {
		d, _ := g.At(j, j)
		diagSq += d * d
	}

	return math.Sqrt(math.Max(total-diagSq, 0) / total), nil
}
