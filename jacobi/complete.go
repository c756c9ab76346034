// SPDX-License-Identifier: MIT

package jacobi

import (
	"math"

	"github.com/katalvlaran/lvsvd/matrix"
)

// complete replaces the columns listed in degenerate with unit vectors
// orthogonal to every other column, by Gram-Schmidt (applied twice) over the
// standard basis. For each replacement the e_i with the largest residual is
// taken; with d free dimensions out of n that residual is at least √(d/n).
// The remaining columns of u must already be orthonormal and u must be square
// or tall.
func complete[T matrix.Float](u *matrix.Dense[T], degenerate []int) (*matrix.Dense[T], error) {
	rows, cols := u.Dims()
	isDegenerate := make(map[int]bool, len(degenerate))
	for _, j := range degenerate {
		isDegenerate[j] = true
	}

	basis := make([][]float64, 0, cols)
	for j := 0; j < cols; j++ {
		if isDegenerate[j] {
			continue
		}
		col, err := matrix.Col(u, j)
		if err != nil {
			return nil, err
		}
		basis = append(basis, matrix.ConvertSlice[T, float64](col))
	}

	out := u.Clone()
	for _, j := range degenerate {
		var best []float64
		bestNorm := -1.0
		for idx := 0; idx < rows; idx++ {
			v := residual(idx, rows, basis)
			if n := math.Sqrt(dot(v, v)); n > bestNorm {
				best, bestNorm = v, n
			}
		}
		if bestNorm <= 0 {
			break // basis already spans the space
		}
		for i := range best {
			best[i] /= bestNorm
		}
		basis = append(basis, best)
		for i, x := range best {
			if err := out.Set(i, j, T(x)); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// residual returns e_idx minus its projection onto basis.
func residual(idx, rows int, basis [][]float64) []float64 {
	v := make([]float64, rows)
	v[idx] = 1
	for pass := 0; pass < 2; pass++ {
		for _, b := range basis {
			d := dot(v, b)
			for i := range v {
				v[i] -= d * b[i]
			}
		}
	}

	return v
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}
