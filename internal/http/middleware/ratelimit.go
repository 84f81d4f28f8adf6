package middleware

import (
	"net/http"
	"sync"
	"time"

	"dice_duel/internal/store"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// identity keys a caller by its store origin, falling back to the IP.
func identity(c *gin.Context) string {
	if origin := c.GetHeader(store.OriginHeader); origin != "" {
		return "origin:" + origin
	}
	return "ip:" + c.ClientIP()
}

// SimpleRateLimit blocks callers that send more than maxRequests per window.
// State is kept in process.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientInfo)

	return func(c *gin.Context) {
		ident := identity(c)
		now := time.Now()

		mu.Lock()
		ci, ok := clients[ident]
		if !ok || now.Sub(ci.last) > window {
			ci = &clientInfo{last: now}
			clients[ident] = ci
		}
		ci.count++
		count := ci.count
		mu.Unlock()

		if count > maxRequests {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// WriteRateLimit uses redis when a limiter client is configured and the
// in-process limiter otherwise.
func WriteRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	if redisClient != nil {
		return RedisRateLimit(maxRequests, window)
	}
	return SimpleRateLimit(maxRequests, window)
}
