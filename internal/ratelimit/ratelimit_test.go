package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstWaitDoesNotBlock(t *testing.T) {
	r := NewSimpleRateLimiter(time.Hour, time.Hour)

	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitAfterTouch(t *testing.T) {
	r := NewSimpleRateLimiter(50*time.Millisecond, 50*time.Millisecond)
	r.Touch()

	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestWaitHonoursCancellation(t *testing.T) {
	r := NewSimpleRateLimiter(time.Hour, time.Hour)
	r.Touch()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayRange(t *testing.T) {
	r := NewSimpleRateLimiter(3*time.Second, time.Second)
	assert.Equal(t, 3*time.Second, r.calculateDelay(), "max below min is clamped")

	r = NewSimpleRateLimiter(10*time.Millisecond, 20*time.Millisecond)
	for i := 0; i < 20; i++ {
		d := r.calculateDelay()
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 20*time.Millisecond)
	}
}
