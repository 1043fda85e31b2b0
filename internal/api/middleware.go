package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// accessLog logs failed requests and errors attached to the gin context.
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		if status < 400 && len(c.Errors) == 0 {
			return
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if status >= 500 {
			logger.Error("[ACCESS]", fields...)
			return
		}
		logger.Warn("[ACCESS]", fields...)
	}
}

// devOnly hides a route outside dev mode.
func devOnly(dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !dev {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
