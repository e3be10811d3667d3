package resilience

import (
	"time"

	"golang.org/x/time/rate"
)

// NewPacer returns a limiter that allows one call per interval. The first
// call passes immediately. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
