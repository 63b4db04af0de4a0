package transporthttp

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger emits one structured log line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	}
}

// APIKeyAuth checks the X-API-Key header against an allow list; an empty
// list bypasses auth entirely.
func APIKeyAuth(allowed map[string]struct{}) gin.HandlerFunc {
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if _, ok := allowed[c.GetHeader("X-API-Key")]; !ok {
			writeProblem(c, http.StatusUnauthorized, "unauthorized", "invalid or missing API key")
			return
		}
		c.Next()
	}
}

// BodyLimit caps how much of a request body handlers can read.
func BodyLimit(n int64) gin.HandlerFunc {
	if n <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// Leaky bucket guarding the store-wide anomaly scan, the only operation
// with full-store cost.
type rateState struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

func RateLimitPerMinute(limitPerMin int, clock func() time.Time) gin.HandlerFunc {
	if limitPerMin <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	capacity := float64(limitPerMin)
	refillPerSec := capacity / 60.0
	state := &rateState{tokens: capacity, lastRefill: clock()}

	return func(c *gin.Context) {
		state.mu.Lock()
		now := clock()
		state.tokens += now.Sub(state.lastRefill).Seconds() * refillPerSec
		state.lastRefill = now
		if state.tokens > capacity {
			state.tokens = capacity
		}
		if state.tokens < 1.0 {
			state.mu.Unlock()
			c.Header("Retry-After", "3")
			writeProblem(c, http.StatusTooManyRequests, "rate limit exceeded", "try again later")
			return
		}
		state.tokens -= 1.0
		state.mu.Unlock()
		c.Next()
	}
}
