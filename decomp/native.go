// SPDX-License-Identifier: MIT

package decomp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvsvd/matrix"
)

// ErrNoConvergence is returned when gonum's SVD fails to converge.
var ErrNoConvergence = errors.New("decomp: native SVD did not converge")

const (
	opNativeQR  = "native.QR"
	opNativeR   = "native.R"
	opNativeSVD = "native.SVD"
	opNativeQRB = "native.QRBatch"
	opNativeSVB = "native.SVDBatch"
)

func decompErrorf(op string, err error) error {
	return fmt.Errorf("decomp.%s: %w", op, err)
}

type native[T matrix.Float] struct{}

func (native[T]) Backend() Backend { return Native }

// QR factors m with mat.QR. gonum requires rows ≥ cols, so a wide m is split
// as [A₁ A₂] with A₁ square: A₁ = Q·R₁ and R = [R₁ Qᵗ·A₂].
func (native[T]) QR(m *matrix.Dense[T]) (*matrix.Dense[T], *matrix.Dense[T], error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, nil, decompErrorf(opNativeQR, err)
	}
	rows, cols := m.Dims()
	k := min(rows, cols)
	a := toGonum(m)

	var f mat.QR
	f.Factorize(a.Slice(0, rows, 0, k))
	var q, r mat.Dense
	f.QTo(&q)
	f.RTo(&r)
	thinQ := q.Slice(0, rows, 0, k)

	full := mat.NewDense(k, cols, nil)
	full.Slice(0, k, 0, k).(*mat.Dense).Copy(r.Slice(0, k, 0, k))
	if cols > k {
		full.Slice(0, k, k, cols).(*mat.Dense).Mul(thinQ.T(), a.Slice(0, rows, k, cols))
	}

	outQ, err := fromGonum[T](thinQ)
	if err != nil {
		return nil, nil, decompErrorf(opNativeQR, err)
	}
	outR, err := fromGonum[T](full)
	if err != nil {
		return nil, nil, decompErrorf(opNativeQR, err)
	}

	return outQ, outR, nil
}

// R skips QTo for tall and square m: with rows ≥ cols the factor is the
// leading cols×cols block of RTo, and forming the rows×rows Q is the
// expensive part of the streaming path.
func (n native[T]) R(m *matrix.Dense[T]) (*matrix.Dense[T], error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, decompErrorf(opNativeR, err)
	}
	rows, cols := m.Dims()
	if cols > rows {
		_, r, err := n.QR(m)
		return r, err
	}
	var f mat.QR
	f.Factorize(toGonum(m))
	var r mat.Dense
	f.RTo(&r)
	out, err := fromGonum[T](r.Slice(0, cols, 0, cols))
	if err != nil {
		return nil, decompErrorf(opNativeR, err)
	}

	return out, nil
}

// SVD factors m with mat.SVD (thin U and V).
func (native[T]) SVD(m *matrix.Dense[T]) (*Triplet[T], error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, decompErrorf(opNativeSVD, err)
	}
	var f mat.SVD
	if ok := f.Factorize(toGonum(m), mat.SVDThin); !ok {
		return nil, decompErrorf(opNativeSVD, ErrNoConvergence)
	}
	var u, v mat.Dense
	f.UTo(&u)
	f.VTo(&v)

	outU, err := fromGonum[T](&u)
	if err != nil {
		return nil, decompErrorf(opNativeSVD, err)
	}
	outV, err := fromGonum[T](&v)
	if err != nil {
		return nil, decompErrorf(opNativeSVD, err)
	}

	return &Triplet[T]{U: outU, S: matrix.ConvertSlice[float64, T](f.Values(nil)), V: outV}, nil
}

func (n native[T]) QRBatch(b matrix.Batch[T]) (matrix.Batch[T], matrix.Batch[T], error) {
	if err := matrix.ValidateBatch(b); err != nil {
		return nil, nil, decompErrorf(opNativeQRB, err)
	}
	qs := make(matrix.Batch[T], len(b))
	rs := make(matrix.Batch[T], len(b))
	for i, m := range b {
		var err error
		if qs[i], rs[i], err = n.QR(m); err != nil {
			return nil, nil, decompErrorf(opNativeQRB, fmt.Errorf("member %d: %w", i, err))
		}
	}

	return qs, rs, nil
}

func (n native[T]) SVDBatch(b matrix.Batch[T]) ([]*Triplet[T], error) {
	if err := matrix.ValidateBatch(b); err != nil {
		return nil, decompErrorf(opNativeSVB, err)
	}
	out := make([]*Triplet[T], len(b))
	for i, m := range b {
		tr, err := n.SVD(m)
		if err != nil {
			return nil, decompErrorf(opNativeSVB, fmt.Errorf("member %d: %w", i, err))
		}
		out[i] = tr
	}

	return out, nil
}

func toGonum[T matrix.Float](m *matrix.Dense[T]) *mat.Dense {
	r, c := m.Dims()

	return mat.NewDense(r, c, matrix.ConvertSlice[T, float64](m.RawData()))
}

func fromGonum[T matrix.Float](m mat.Matrix) (*matrix.Dense[T], error) {
	r, c := m.Dims()
	data := make([]T, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, T(m.At(i, j)))
		}
	}

	return matrix.NewDenseFrom(r, c, data)
}
