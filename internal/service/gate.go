package service

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate enforces a minimum interval between consecutive passes, shared by
// every goroutine that waits on it. The first pass is immediate.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate; a non-positive interval never blocks
func NewGate(interval time.Duration) *Gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next slot or until ctx is done
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil {
		return ctx.Err()
	}
	return g.limiter.Wait(ctx)
}
