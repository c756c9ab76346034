// SPDX-License-Identifier: MIT
package jacobi_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvsvd/jacobi"
)

func TestNewSchedule_Initial(t *testing.T) {
	s, err := jacobi.NewSchedule(5)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 4, 3, 2}, s.Permutation())
	left, right := s.Pairs()
	require.Equal(t, []int{0, 1}, left)
	require.Equal(t, []int{4, 3}, right)
	runoff, ok := s.Runoff()
	require.True(t, ok)
	require.Equal(t, 2, runoff)

	_, err = jacobi.NewSchedule(0)
	require.ErrorIs(t, err, jacobi.ErrInvalidSize)
}

func TestSchedule_InverseTracksPermutation(t *testing.T) {
	s, err := jacobi.NewSchedule(6)
	require.NoError(t, err)
	for round := 0; round < 7; round++ {
		perm, inv := s.Permutation(), s.Inverse()
		for pos, col := range perm {
			require.Equal(t, pos, inv[col])
		}
		s.Advance()
	}
}

// TestSchedule_CoversAllPairs checks that every unordered pair of columns is
// rotated together within one full round-robin cycle.
func TestSchedule_CoversAllPairs(t *testing.T) {
	for num := 2; num <= 11; num++ {
		t.Run(fmt.Sprintf("num=%d", num), func(t *testing.T) {
			s, err := jacobi.NewSchedule(num)
			require.NoError(t, err)
			cycle := num - 1
			if num%2 == 1 {
				cycle = num
			}
			seen := map[[2]int]bool{}
			for round := 0; round < cycle; round++ {
				left, right := s.Pairs()
				used := map[int]bool{}
				for p := range left {
					a, b := min(left[p], right[p]), max(left[p], right[p])
					require.NotEqual(t, a, b)
					require.False(t, used[a] || used[b], "pairs within a sweep must be disjoint")
					used[a], used[b] = true, true
					seen[[2]int{a, b}] = true
				}
				s.Advance()
			}
			require.Len(t, seen, num*(num-1)/2)
		})
	}
}

func TestSweepBudget(t *testing.T) {
	require.Equal(t, 2, jacobi.SweepBudget(1, 1))
	require.Equal(t, 6, jacobi.SweepBudget(2, 1))
	require.Equal(t, 18, jacobi.SweepBudget(4, 1))
	require.Equal(t, 34, jacobi.SweepBudget(4, 2))
	require.Equal(t, 0, jacobi.SweepBudget(0, 1))
}
