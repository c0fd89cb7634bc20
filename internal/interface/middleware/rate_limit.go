package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-rest-service/pkg/response"
)

// KeyFunc builds the rate limit bucket key of a request.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true when a request bypasses the limiter.
type AllowFunc func(c *gin.Context) bool

// RateLimitConfig configures a fixed-window limiter.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
	Logger *logrus.Logger
}

// KeyByIP buckets by client IP.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:accounts:ip:" + clientIP(c)
	}
}

// KeyByIPAndRoute buckets by client IP and matched route.
func KeyByIPAndRoute() KeyFunc {
	return func(c *gin.Context) string {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		return "rl:accounts:route:" + route + ":ip:" + clientIP(c)
	}
}

// AllowPrivateIP lets loopback and RFC 1918 clients through.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(clientIP(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}

// INCR the bucket, start its window on first hit, return count and remaining ms.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimit limits requests per bucket using Redis. It is a no-op without a
// client and fails open when Redis errors.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	if rdb == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Key == nil {
		cfg.Key = KeyByIP()
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (cfg.Allow != nil && cfg.Allow(c)) {
			c.Next()
			return
		}

		key := cfg.Key(c)
		res, err := hitScript.Run(c.Request.Context(), rdb, []string{key}, cfg.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			if cfg.Logger != nil {
				cfg.Logger.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			}
			c.Next()
			return
		}
		count, ttlMs := int(res[0]), res[1]

		resetSec := 0
		if ttlMs > 0 {
			resetSec = int((ttlMs + 999) / 1000)
		}
		remaining := cfg.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > cfg.Limit {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
