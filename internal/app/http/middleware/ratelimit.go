package middleware

import (
	"strconv"
	"time"

	"agency-platform/internal/apperr"
	"agency-platform/internal/audit"
	"agency-platform/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit gates one action kind per client address. Blocked callers get
// a 429 with a cooldown hint; allowed-but-repeated callers are slowed by
// the progressive delay before the handler runs.
func RateLimit(limiter *ratelimit.Limiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.ClientIP()

		allowed, retryAfter := limiter.CheckAndConsume(action, addr)
		if !allowed {
			audit.Record(audit.ActionRateLimited, audit.Anonymous,
				zap.String("action", action),
				zap.String("addr", addr),
			)
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			apperr.Respond(c, apperr.RateLimit(ratelimit.CooldownHint(retryAfter)))
			c.Abort()
			return
		}

		if delay := limiter.Delay(action, addr); delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
