package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proteq/go-email-service/internal/metrics"
)

// callerWindow tracks one caller's request count inside the current
// fixed window
type callerWindow struct {
	windowStart time.Time
	count       int
}

// FixedWindowLimiter counts requests per caller inside wall-clock aligned
// windows. All callers share the same window boundaries, so a limit of
// 3 per hour means three requests between 14:00 and 15:00 regardless of
// when the first one arrived.
type FixedWindowLimiter struct {
	callers map[string]*callerWindow
	mu      sync.RWMutex
	limit   int
	window  time.Duration
	bucket  string
	now     func() time.Time
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per
// window. The bucket name labels metrics and log lines.
func NewFixedWindowLimiter(limit int, window time.Duration, bucket string) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		callers: make(map[string]*callerWindow),
		limit:   limit,
		window:  window,
		bucket:  bucket,
		now:     time.Now,
	}
}

// TryAcquire consumes one slot for the caller, reporting whether the
// request may proceed
func (l *FixedWindowLimiter) TryAcquire(callerKey string) bool {
	windowStart := l.now().Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	cw, exists := l.callers[callerKey]
	if !exists || cw.windowStart.Before(windowStart) {
		l.callers[callerKey] = &callerWindow{windowStart: windowStart, count: 1}
		return true
	}

	if cw.count >= l.limit {
		return false
	}
	cw.count++
	return true
}

// RetryAfter returns the seconds remaining until the current window rolls
// over
func (l *FixedWindowLimiter) RetryAfter() int {
	now := l.now()
	next := now.Truncate(l.window).Add(l.window)
	return int(next.Sub(now).Seconds()) + 1
}

// Purge drops callers whose window has already expired. Called
// periodically so the map does not grow without bound.
func (l *FixedWindowLimiter) Purge() {
	windowStart := l.now().Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, cw := range l.callers {
		if cw.windowStart.Before(windowStart) {
			delete(l.callers, key)
		}
	}
}

// RateLimitMiddleware rejects requests over the caller's window allowance
// with 429 before the handler runs
func RateLimitMiddleware(l *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerKey := c.ClientIP()

		if !l.TryAcquire(callerKey) {
			metrics.RateLimitExceeded.WithLabelValues(l.bucket).Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"message":    "Muitas requisições. Tente novamente mais tarde.",
				"retryAfter": l.RetryAfter(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
