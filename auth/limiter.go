package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per remote address.
type LoginLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewLoginLimiter allows perSecond attempts per address with the given burst.
// A non-positive rate disables limiting.
func NewLoginLimiter(perSecond float64, burst int) *LoginLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &LoginLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *LoginLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, exists := l.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// Allow reports whether ip may start another login now.
func (l *LoginLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}
