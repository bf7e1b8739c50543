package metrics

import (
	"math"
	"time"
)

// Percentile returns the nearest-rank order statistic for p in [0,100] over
// samples sorted ascending. The returned value is always a member of the
// input; no interpolation is performed. ok is false for an empty input.
func Percentile(sorted []time.Duration, p float64) (value time.Duration, ok bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	rank := int(math.Round(p / 100 * float64(n-1)))
	if rank < 0 {
		rank = 0
	}
	if rank > n-1 {
		rank = n - 1
	}
	return sorted[rank], true
}
