package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type windowInfo struct {
	start time.Time
	count int
}

var (
	rlMu      sync.Mutex
	rlClients = make(map[string]*windowInfo)
)

// SimpleRateLimit is an in-memory fixed-window per-IP limiter, used when no
// Redis is configured. Single-process only.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rlMu.Lock()
		wi, ok := rlClients[ip]
		if !ok || now.Sub(wi.start) > window {
			rlClients[ip] = &windowInfo{start: now, count: 1}
			rlMu.Unlock()
			c.Next()
			return
		}
		wi.count++
		blocked := wi.count > maxRequests
		rlMu.Unlock()

		if blocked {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
