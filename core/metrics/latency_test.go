package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyWindowEmpty(t *testing.T) {
	w := NewLatencyWindow(10)
	assert.Zero(t, w.P95())
	assert.Zero(t, w.Len())
}

func TestLatencyWindowP95(t *testing.T) {
	w := NewLatencyWindow(100)
	for i := 1; i <= 100; i++ {
		w.Observe(time.Duration(i) * time.Millisecond)
	}
	p95 := w.P95()
	assert.GreaterOrEqual(t, p95, 90*time.Millisecond)
	assert.LessOrEqual(t, p95, 100*time.Millisecond)
}

func TestLatencyWindowEvictsOldest(t *testing.T) {
	w := NewLatencyWindow(5)
	w.Observe(time.Hour)
	for i := 0; i < 5; i++ {
		w.Observe(time.Millisecond)
	}
	assert.Equal(t, 5, w.Len())
	// The hour-long outlier has been evicted.
	assert.LessOrEqual(t, w.P95(), 2*time.Millisecond)
}

func TestLatencyWindowDefaultSize(t *testing.T) {
	w := NewLatencyWindow(0)
	for i := 0; i < 150; i++ {
		w.Observe(time.Millisecond)
	}
	assert.Equal(t, 100, w.Len())
}
