// SPDX-License-Identifier: MIT

package matrix

import "sync"

// parallelRows runs fn over [0, rows) split into contiguous row blocks.
// Each worker owns a disjoint block of output rows, so no two goroutines
// write the same cache line except at block borders.
// Falls back to one sequential call when workers == 1 or rows is small.
func parallelRows(rows int, o Options, fn func(lo, hi int)) {
	workers := o.workers
	if workers <= 1 || rows < o.minParallelRows {
		fn(0, rows)
		return
	}
	if workers > rows {
		workers = rows
	}
	chunk := (rows + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < rows; lo += chunk {
		hi := min(lo+chunk, rows)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
