package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type RateLimiter interface {
	Wait(ctx context.Context) error
	Touch()
}

// SimpleRateLimiter keeps at least a jittered delay between the end of one
// action and the start of the next.
type SimpleRateLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
	jitter     bool
}

func NewSimpleRateLimiter(minDelay, maxDelay time.Duration) *SimpleRateLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &SimpleRateLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		jitter:   true,
	}
}

// Wait blocks until the delay since the last Touch has passed. The first call
// never blocks.
func (r *SimpleRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	delay := r.calculateDelay()
	last := r.lastAction
	r.mu.Unlock()

	if last.IsZero() {
		return ctx.Err()
	}

	if elapsed := time.Since(last); elapsed < delay {
		timer := time.NewTimer(delay - elapsed)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

// Touch marks the end of an action.
func (r *SimpleRateLimiter) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastAction = time.Now()
}

func (r *SimpleRateLimiter) calculateDelay() time.Duration {
	if !r.jitter || r.minDelay >= r.maxDelay {
		return r.minDelay
	}

	delta := r.maxDelay - r.minDelay
	jitter := time.Duration(rand.Int63n(int64(delta)))
	return r.minDelay + jitter
}
