package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/LapakSync/lapaksync_api/internal/utils"
)

const (
	// invalidAuthWindow bounds key-guessing: at most invalidAuthLimit failed
	// auth attempts per source IP per window.
	invalidAuthWindow = time.Minute
	invalidAuthLimit  = 5
)

// InvalidAuthRateLimiter throttles failed authentication attempts per IP.
// Successful requests never touch it.
type InvalidAuthRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*authWindow
}

type authWindow struct {
	count    int
	openedAt time.Time
}

func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
	rl := &InvalidAuthRateLimiter{
		windows: make(map[string]*authWindow),
	}
	go rl.evictStale()
	return rl
}

// Allow records one failed attempt from ip and reports whether the caller
// may still receive a normal 401 rather than a 429.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	w, ok := r.windows[ip]
	if !ok || now.Sub(w.openedAt) > invalidAuthWindow {
		r.windows[ip] = &authWindow{count: 1, openedAt: now}
		return true
	}

	if w.count >= invalidAuthLimit {
		return false
	}
	w.count++
	return true
}

// evictStale drops expired windows so the map does not grow with every IP
// that ever failed auth.
func (r *InvalidAuthRateLimiter) evictStale() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for ip, w := range r.windows {
			if now.Sub(w.openedAt) > invalidAuthWindow {
				delete(r.windows, ip)
			}
		}
		r.mu.Unlock()
	}
}

// ClientRateLimiter applies a token-bucket limit per authenticated client.
// It sits after auth so the limiter keys on the client's numeric id.
type ClientRateLimiter struct {
	mu       sync.Mutex
	limiters map[int]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewClientRateLimiter constructs a limiter with the configured rate.
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters: make(map[int]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// limiterFor returns the per-client limiter, creating it on first sight.
func (r *ClientRateLimiter) limiterFor(clientID int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[clientID]
	if !ok {
		l = rate.NewLimiter(r.rps, r.burst)
		r.limiters[clientID] = l
	}
	return l
}

// Handle returns a Gin middleware enforcing the per-client rate limit.
func (r *ClientRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetInt(ctxClientID)
		if clientID == 0 {
			// Not authenticated; the auth middleware already rejected it.
			c.Next()
			return
		}

		if !r.limiterFor(clientID).Allow() {
			utils.Error(c, 429, "TOO_MANY_REQUESTS", "Rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
