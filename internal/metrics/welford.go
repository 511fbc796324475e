package metrics

import (
	"math"
	"sync"
)

// RunningStats keeps a running mean and standard deviation using Welford's
// online algorithm, so fetch latencies can be summarised in O(1) space.
// It is safe for concurrent use.
type RunningStats struct {
	mu    sync.Mutex
	count int
	mean  float64
	m2    float64 // sum of squared differences from the mean
}

// Observe adds a new observation.
// Reference: https://en.wikipedia.org/wiki/Algorithms_for_calculating_variance#Welford's_online_algorithm
func (w *RunningStats) Observe(value float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.count++
	delta := value - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (value - w.mean)
}

// Summary is a point-in-time copy of the statistics
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Summary returns the population statistics. StdDev is 0 with fewer than 2 observations.
func (w *RunningStats) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Summary{Count: w.count, Mean: w.mean}
	if w.count >= 2 {
		s.StdDev = math.Sqrt(w.m2 / float64(w.count))
	}
	return s
}
