// SPDX-License-Identifier: MIT

package matrix

// Convert returns a copy of m with every element converted to T.
// Narrowing (float64 → float32) rounds to nearest; nil in, nil out.
// Complexity: O(r*c).
func Convert[S, T Float](m *Dense[S]) *Dense[T] {
	if m == nil {
		return nil
	}

	return &Dense[T]{r: m.r, c: m.c, data: ConvertSlice[S, T](m.data)}
}

// ConvertSlice returns a converted copy of x.
func ConvertSlice[S, T Float](x []S) []T {
	if x == nil {
		return nil
	}
	out := make([]T, len(x))
	for i, v := range x {
		out[i] = T(v)
	}

	return out
}
