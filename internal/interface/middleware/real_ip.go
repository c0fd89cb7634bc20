package middleware

import (
	"github.com/gin-gonic/gin"
)

const realIPKey = "real_ip"

// RealIP stores c.ClientIP() under "real_ip". Forwarding headers only count
// when the engine trusts the peer (SetTrustedProxies) or a TrustedPlatform
// header is configured.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(realIPKey, c.ClientIP())
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString(realIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
