package middleware

import (
	"sync"
	"time"

	"dailymind/internal/api/apierrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter ограничивает частоту запросов с одного IP (token bucket)
type IPRateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	logger   *zap.Logger
}

// NewIPRateLimiter создает ограничитель. rps <= 0 отключает ограничение.
func NewIPRateLimiter(rps float64, burst int, logger *zap.Logger) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

// Allow проверяет, можно ли обработать запрос с IP
func (l *IPRateLimiter) Allow(ip string) bool {
	if l.rps <= 0 {
		return true
	}

	l.mu.Lock()
	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

// Cleanup удаляет IP, не отправлявшие запросов дольше maxIdle
func (l *IPRateLimiter) Cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := time.Now().Add(-maxIdle)
	for ip, v := range l.visitors {
		if v.lastSeen.Before(threshold) {
			delete(l.visitors, ip)
		}
	}
}

// Middleware возвращает gin middleware, отвечающий 429 при превышении лимита
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			l.logger.Warn("API rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("path", c.Request.URL.Path))
			apierrors.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
