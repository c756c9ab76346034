// SPDX-License-Identifier: MIT

package rangefinder

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvsvd/matrix"
)

// pcgStream is the fixed PCG increment; only the seed varies between calls.
const pcgStream = 0x385ab5285169b1ac

// Gaussian returns a rows×cols matrix of independent N(0, 1) samples drawn
// from a PCG source seeded with seed. Samples are drawn in float64 and
// rounded to T, so float32 and float64 callers see the same projection.
func Gaussian[T matrix.Float](rows, cols int, seed uint64) (*matrix.Dense[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, rangeErrorf(opGaussian, matrix.ErrInvalidDimensions)
	}
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, pcgStream)}
	data := make([]T, rows*cols)
	for i := range data {
		data[i] = T(dist.Rand())
	}

	return matrix.NewDenseFrom(rows, cols, data)
}
