package estimation

import (
	"sync"
)

// parallelizeRegion divides the flat sample range [0, total) into contiguous,
// non-overlapping regions and runs fn on each region in its own goroutine.
// fn must only write samples inside its own region.
func parallelizeRegion(total, numCores int, fn func(start, end int)) {
	if numCores > total {
		numCores = total
	}
	if numCores <= 1 {
		fn(0, total)
		return
	}

	samplesPerCore := (total + numCores - 1) / numCores

	var wg sync.WaitGroup
	for c := 0; c < numCores; c++ {
		start := c * samplesPerCore
		end := start + samplesPerCore
		if end > total {
			end = total
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}

	wg.Wait()
}
