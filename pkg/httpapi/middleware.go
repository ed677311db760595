package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokaycavdar/riskguard/pkg/adapters"
)

const requestIDHeader = "X-Request-Id"

// requestIDMiddleware assigns a uuid to every request, reusing one the
// caller already supplied, and stamps it onto the response header and
// gin context so handlers and logs can correlate a single request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware emits one structured log line per request via
// zerolog, the logging library the teacher's dependency corpus carries
// for exactly this purpose.
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("requestId", c.GetString("requestId")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

// recoveryMiddleware converts a panic in a handler into a 500 response
// instead of crashing the process, logging the panic value first.
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("requestId", c.GetString("requestId")).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}

// apiKeyMiddleware requires the X-Api-Key header to equal key on every
// request in its group.
func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Api-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing api key"})
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware enforces a fixed-window per-client-IP limit of
// perMinute requests using cache.Incr, backed by Redis in production and
// the in-process FallbackCounter otherwise (spec.md §5).
func rateLimitMiddleware(cache adapters.Cache, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		count, err := cache.Incr(c.Request.Context(), key, 60)
		if err != nil {
			// Cache unavailable: degrade to allowing the request rather
			// than failing it.
			c.Next()
			return
		}
		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
