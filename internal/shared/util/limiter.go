package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token-bucket limiter with a fixed event weight API,
// used to throttle per-path re-analysis in watch mode.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter builds a limiter refilling r tokens per second with burst
// capacity b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(r), b)}
}

// Allow reports whether n tokens are available right now and consumes
// them when they are.
func (l *Limiter) Allow(n int) bool {
	return l.bucket.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.bucket.WaitN(ctx, n)
}
