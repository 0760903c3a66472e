package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextIDPrefix = "pathID:"

// RequestLogger writes one structured record per request once the handler
// chain has finished. Server errors are logged at error level, client errors
// at warn level.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 and logs it instead of killing the
// connection silently.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// IDParam validates that the named path parameter is an unsigned integer and
// stores the parsed value for downstream handlers. Invalid values are
// rejected with 400 through reject.
func IDParam(name string, reject func(c *gin.Context, raw string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(name)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			reject(c, raw)
			c.Abort()
			return
		}

		// Store the parsed ID in context for downstream handlers.
		c.Set(contextIDPrefix+name, uint(id))

		c.Next()
	}
}

// PathID returns the value IDParam stored for the named parameter.
func PathID(c *gin.Context, name string) uint {
	return c.GetUint(contextIDPrefix + name)
}
