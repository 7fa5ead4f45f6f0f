// Package parallel splits row ranges across goroutines.
//
// Callers must only write to the rows of their own range; any reduction over
// the whole matrix is done by the caller afterwards so results do not depend
// on scheduling.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultRowThreshold is the row count below which work stays on the calling goroutine.
const DefaultRowThreshold = 1000

// Range is a half-open interval [Start, End) of item indices.
type Range struct {
	Start int
	End   int
}

// Chunks divides items into at most workers contiguous ranges of near-equal size.
func Chunks(items, workers int) []Range {
	if items <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers
	ranges := make([]Range, 0, workers)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// Parallelize divides items according to the number of CPU cores and runs fn
// for each range concurrently. It returns after every fn call has returned.
func Parallelize(items int, fn func(start, end int)) {
	ranges := Chunks(items, runtime.NumCPU())
	if len(ranges) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(r.Start, r.End)
	}
	wg.Wait()
}

// ParallelizeWithThreshold parallelizes only when items exceeds threshold;
// otherwise fn is called once with the full range.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
