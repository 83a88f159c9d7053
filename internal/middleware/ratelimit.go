package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// QuotaLimiter caps how many times a key may act within a fixed window.
// It guards board creation so one user cannot flood a project.
type QuotaLimiter struct {
	mu      sync.Mutex
	windows map[string]*quotaWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

type quotaWindow struct {
	used    int
	resetAt time.Time
}

func NewQuotaLimiter(limit int, window time.Duration) *QuotaLimiter {
	return NewQuotaLimiterWithNow(limit, window, time.Now)
}

func NewQuotaLimiterWithNow(limit int, window time.Duration, now func() time.Time) *QuotaLimiter {
	ql := &QuotaLimiter{
		windows: make(map[string]*quotaWindow),
		limit:   limit,
		window:  window,
		now:     now,
	}
	go ql.sweep()
	return ql
}

// sweep drops expired windows so idle keys do not accumulate.
func (ql *QuotaLimiter) sweep() {
	if ql.window <= 0 {
		return
	}

	ticker := time.NewTicker(ql.window)
	defer ticker.Stop()

	for range ticker.C {
		ql.mu.Lock()
		now := ql.now()
		for key, w := range ql.windows {
			if now.After(w.resetAt) {
				delete(ql.windows, key)
			}
		}
		ql.mu.Unlock()
	}
}

func (ql *QuotaLimiter) Allow(key string) bool {
	ql.mu.Lock()
	defer ql.mu.Unlock()

	now := ql.now()
	w, exists := ql.windows[key]
	if !exists || now.After(w.resetAt) {
		ql.windows[key] = &quotaWindow{used: 1, resetAt: now.Add(ql.window)}
		return true
	}

	if w.used >= ql.limit {
		return false
	}

	w.used++
	return true
}

// CreationQuota keys the limiter by the authenticated user, falling
// back to the client IP before auth has run.
func CreationQuota(ql *QuotaLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := UserIDFromContext(c)
		if !ok {
			key = c.ClientIP()
		}
		if !ql.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
