package middleware

import (
	"sync"
	"time"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter - token bucket на каждый IP
type IPRateLimiter struct {
	ips         map[string]*rateLimiterEntry
	mu          sync.Mutex
	r           rate.Limit
	burst       int
	lastCleanup time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter: r - запросов в секунду, burst - размер всплеска
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:         make(map[string]*rateLimiterEntry),
		r:           r,
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

// PerMinute - удобный конструктор для лимитов вида "N в минуту"
func PerMinute(n, burst int) *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(float64(n)/60.0), burst)
}

// GetLimiter возвращает лимитер IP; старые записи чистятся раз в минуту
func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > time.Minute {
		for k, entry := range rl.ips {
			if now.Sub(entry.lastSeen) > 3*time.Minute {
				delete(rl.ips, k)
			}
		}
		rl.lastCleanup = now
	}

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			logger.CtxWarn(c.Request.Context(), "Rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.NewTooManyRequestsError("Rate limit exceeded. Please slow down."))
			return
		}
		c.Next()
	}
}
