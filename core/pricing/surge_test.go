package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSurgeDefaultsToNeutral(t *testing.T) {
	s := NewSurge()
	assert.Equal(t, 1.0, s.Multiplier())
	assert.InDelta(t, BaseFare, s.EstimateFare(), 1e-9)
}

func TestSurgeSet(t *testing.T) {
	s := NewSurge()
	s.Set(1.8)
	assert.Equal(t, 1.8, s.Multiplier())
	assert.InDelta(t, BaseFare*1.8, s.EstimateFare(), 1e-9)
}

func TestSurgeClampsBelowNeutral(t *testing.T) {
	s := NewSurge()
	s.Set(0.5)
	assert.Equal(t, 1.0, s.Multiplier())

	s.Set(-2)
	assert.Equal(t, 1.0, s.Multiplier())
}
