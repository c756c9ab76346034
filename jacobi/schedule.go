// SPDX-License-Identifier: MIT

package jacobi

import "fmt"

// Schedule is the round-robin pairing of num columns. It is mutated by
// Advance once per sweep and never shared between decompositions.
type Schedule struct {
	num  int
	perm []int // position → column
	inv  []int // column → position
}

// NewSchedule returns the initial pairing for num ≥ 1 columns.
func NewSchedule(num int) (*Schedule, error) {
	if num < 1 {
		return nil, fmt.Errorf("NewSchedule(%d): %w", num, ErrInvalidSize)
	}
	s := &Schedule{num: num, perm: make([]int, num), inv: make([]int, num)}
	half := num / 2
	for i := 0; i < half; i++ {
		s.perm[i] = i
	}
	// upper half reversed: num-1, num-2, ..., half
	for i := half; i < num; i++ {
		s.perm[i] = num - 1 - (i - half)
	}
	s.reindex()

	return s, nil
}

// Size returns the number of scheduled columns.
func (s *Schedule) Size() int { return s.num }

// Pairs returns the num/2 disjoint column pairs of the current sweep.
func (s *Schedule) Pairs() (left, right []int) {
	half := s.num / 2
	left, right = make([]int, half), make([]int, half)
	copy(left, s.perm[:half])
	copy(right, s.perm[half:2*half])

	return left, right
}

// Runoff returns the column that sits out the current sweep (odd num only).
func (s *Schedule) Runoff() (int, bool) {
	if s.num%2 == 0 {
		return 0, false
	}

	return s.perm[s.num-1], true
}

// Permutation returns a copy of the current position → column mapping.
func (s *Schedule) Permutation() []int {
	out := make([]int, s.num)
	copy(out, s.perm)

	return out
}

// Inverse returns a copy of the column → position mapping.
func (s *Schedule) Inverse() []int {
	out := make([]int, s.num)
	copy(out, s.inv)

	return out
}

// Advance moves to the next sweep's pairing.
//
//	odd num:  perm[x] = (perm[x] − 1) mod num
//	even num: perm[0] fixed, perm[x] = ((perm[x] − 2) mod (num − 1)) + 1 for x ≥ 1
func (s *Schedule) Advance() {
	if s.num%2 == 1 {
		for x := range s.perm {
			s.perm[x] = mod(s.perm[x]-1, s.num)
		}
	} else {
		for x := 1; x < s.num; x++ {
			s.perm[x] = mod(s.perm[x]-2, s.num-1) + 1
		}
	}
	s.reindex()
}

func (s *Schedule) reindex() {
	for pos, col := range s.perm {
		s.inv[col] = pos
	}
}

// mod is the non-negative remainder.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}

	return r
}
