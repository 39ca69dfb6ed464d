package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceAccumulates(t *testing.T) {
	f := NewFake(100)
	assert.Equal(t, uint64(100), f.NowNanos())
	assert.Equal(t, uint64(150), f.Advance(50))
	assert.Equal(t, uint64(150), f.NowNanos())
}

func TestFake_SetPinsExactValue(t *testing.T) {
	f := NewFake(0)
	f.Set(999)
	assert.Equal(t, uint64(999), f.NowNanos())
}

func TestSystem_ReturnsNonZero(t *testing.T) {
	var s System
	assert.NotZero(t, s.NowNanos())
}
