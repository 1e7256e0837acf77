package metrics

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// LatencyWindow keeps a bounded window of assignment latencies and
// computes rolling quantiles over it.
type LatencyWindow struct {
	mu      sync.Mutex
	size    int
	samples []float64
}

// NewLatencyWindow creates a window holding up to size samples. A
// non-positive size defaults to 100.
func NewLatencyWindow(size int) *LatencyWindow {
	if size <= 0 {
		size = 100
	}
	return &LatencyWindow{size: size}
}

// Observe adds a latency sample, evicting the oldest when full.
func (w *LatencyWindow) Observe(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = append(w.samples, d.Seconds())
	if len(w.samples) > w.size {
		w.samples = w.samples[1:]
	}
}

// P95 returns the 95th-percentile latency over the window, or zero when
// no samples have been observed.
func (w *LatencyWindow) P95() time.Duration {
	return w.quantile(0.95)
}

func (w *LatencyWindow) quantile(q float64) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(w.samples))
	copy(sorted, w.samples)
	sort.Float64s(sorted)
	sec := stat.Quantile(q, stat.Empirical, sorted, nil)
	return time.Duration(sec * float64(time.Second))
}

// Len returns the number of samples currently held.
func (w *LatencyWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.samples)
}
