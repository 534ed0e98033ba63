package estimation

import (
	"sort"
)

// candidates is the working set of peaks: parallel lists of confidences and
// grid indices that always have the same length.
type candidates struct {
	confidences []float64
	indices     [][]int
}

func newCandidates(confidences []float64, indices [][]int) *candidates {
	return &candidates{
		confidences: append([]float64(nil), confidences...),
		indices:     append([][]int(nil), indices...),
	}
}

func (c *candidates) Len() int           { return len(c.confidences) }
func (c *candidates) Less(i, j int) bool { return c.confidences[i] > c.confidences[j] }
func (c *candidates) Swap(i, j int) {
	c.confidences[i], c.confidences[j] = c.confidences[j], c.confidences[i]
	c.indices[i], c.indices[j] = c.indices[j], c.indices[i]
}

// dropNonPositive cuts the list at the first confidence that is not
// strictly positive. Confidences are expected in descending order.
func (c *candidates) dropNonPositive() {
	for i, v := range c.confidences {
		if !(v > 0) {
			c.confidences = c.confidences[:i]
			c.indices = c.indices[:i]
			return
		}
	}
}

// truncate keeps at most n candidates
func (c *candidates) truncate(n int) {
	if n < len(c.confidences) {
		c.confidences = c.confidences[:n]
		c.indices = c.indices[:n]
	}
}

// merge folds every candidate into the first earlier surviving candidate
// within threshold (wrap-aware Chebyshev distance), summing confidences,
// then re-ranks the survivors. threshold <= 0 is a no-op.
func (c *candidates) merge(size []int, threshold int) {
	if threshold <= 0 {
		return
	}

	n := len(c.confidences)
	removed := make([]bool, n)
	for i := 1; i < n; i++ {
		for k := 0; k < i; k++ {
			if removed[k] {
				continue
			}
			if chebyshevDistance(c.indices[i], c.indices[k], size) <= threshold {
				c.confidences[k] += c.confidences[i]
				removed[i] = true
				break
			}
		}
	}

	kept := 0
	for i := 0; i < n; i++ {
		if removed[i] {
			continue
		}
		c.confidences[kept] = c.confidences[i]
		c.indices[kept] = c.indices[i]
		kept++
	}
	c.confidences = c.confidences[:kept]
	c.indices = c.indices[:kept]

	sort.Stable(c)
}

// chebyshevDistance is the largest per-axis index difference, where each
// axis wraps around with period size[d].
func chebyshevDistance(a, b, size []int) int {
	dist := 0
	for d := range a {
		d1 := a[d] - b[d]
		if d1 < 0 {
			d1 = -d1
		}
		if d1 > size[d]/2 {
			d1 = size[d] - d1
		}
		if d1 > dist {
			dist = d1
		}
	}
	return dist
}

// maximaRequest is how many raw maxima to ask for so that enough remain
// after merging.
func maximaRequest(count, dims, mergePeaks int) int {
	if mergePeaks <= 0 {
		return count
	}
	neighbors := 1
	for d := 0; d < dims; d++ {
		neighbors *= 3
	}
	return (count + 1) / 2 * (neighbors - 1)
}
