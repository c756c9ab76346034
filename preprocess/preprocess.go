// SPDX-License-Identifier: MIT

// Package preprocess prepares a raw feature table for decomposition:
// optional log2 transform, optional transpose, then per-column mean
// centering and unit-variance scaling.
package preprocess

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/lvsvd/matrix"
)

// ErrNonPositive is returned when log2 meets an entry ≤ 0.
var ErrNonPositive = errors.New("preprocess: log2 of non-positive value")

const opTransform = "Transform"

// Option configures Transform.
type Option func(*options)

type options struct {
	log2      bool
	transpose bool
	scale     bool
}

// WithLog2 applies log2 element-wise first.
func WithLog2() Option { return func(o *options) { o.log2 = true } }

// WithTranspose transposes after the log transform, so columns of the
// result are rows of the input.
func WithTranspose() Option { return func(o *options) { o.transpose = true } }

// WithoutScale skips centering and scaling (on by default).
func WithoutScale() Option { return func(o *options) { o.scale = false } }

// Transformed is the prepared matrix with its column statistics.
type Transformed[T matrix.Float] struct {
	Matrix *matrix.Dense[T]

	// Means and StdDevs (sample, n−1) per column of the pre-scaling matrix;
	// nil when scaling is off.
	Means   []float64
	StdDevs []float64

	// ConstantColumns were centered but not divided (zero or undefined
	// standard deviation).
	ConstantColumns []int
}

// Transform applies the configured steps to a copy of a.
func Transform[T matrix.Float](a *matrix.Dense[T], opts ...Option) (*Transformed[T], error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return nil, fmt.Errorf("preprocess.%s: %w", opTransform, err)
	}
	o := options{scale: true}
	for _, set := range opts {
		set(&o)
	}

	x := a.Clone()
	var err error
	if o.log2 {
		if x, err = log2(x); err != nil {
			return nil, fmt.Errorf("preprocess.%s: %w", opTransform, err)
		}
	}
	if o.transpose {
		if x, err = matrix.Transpose(x); err != nil {
			return nil, fmt.Errorf("preprocess.%s: %w", opTransform, err)
		}
	}
	out := &Transformed[T]{Matrix: x}
	if !o.scale {
		return out, nil
	}
	if err = standardize(out); err != nil {
		return nil, fmt.Errorf("preprocess.%s: %w", opTransform, err)
	}

	return out, nil
}

func log2[T matrix.Float](x *matrix.Dense[T]) (*matrix.Dense[T], error) {
	for i, v := range x.RawData() {
		if v <= 0 {
			return nil, fmt.Errorf("entry (%d,%d) = %g: %w", i/x.Cols(), i%x.Cols(), float64(v), ErrNonPositive)
		}
	}

	return matrix.Apply(x, func(v T) T { return T(math.Log2(float64(v))) })
}

func standardize[T matrix.Float](t *Transformed[T]) error {
	cols := t.Matrix.Cols()
	t.Means = make([]float64, cols)
	t.StdDevs = make([]float64, cols)
	scale := make([]T, cols)
	for j := 0; j < cols; j++ {
		col, err := matrix.Col(t.Matrix, j)
		if err != nil {
			return err
		}
		t.Means[j], t.StdDevs[j] = stat.MeanStdDev(matrix.ConvertSlice[T, float64](col), nil)
		if sd := t.StdDevs[j]; sd == 0 || math.IsNaN(sd) {
			t.ConstantColumns = append(t.ConstantColumns, j)
			scale[j] = 1
			continue
		}
		scale[j] = T(1 / t.StdDevs[j])
	}
	centered, err := matrix.BroadcastSubCols(t.Matrix, matrix.ConvertSlice[float64, T](t.Means))
	if err != nil {
		return err
	}
	t.Matrix, err = matrix.ScaleCols(centered, scale)

	return err
}
