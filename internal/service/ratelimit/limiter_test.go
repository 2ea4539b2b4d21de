package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesAndRefills(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(1, 0.2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("birdeye"), "first call should pass")
	assert.False(t, l.Allow("birdeye"), "immediate second call should be throttled")

	now = now.Add(2 * time.Second)
	assert.False(t, l.Allow("birdeye"), "2s is below the 5s refill interval")

	now = now.Add(3 * time.Second)
	assert.True(t, l.Allow("birdeye"), "5s total refills one token")
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, 0.2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))
}

func TestCapacityCap(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	now = now.Add(time.Hour)
	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"), "burst capped at capacity")
}
