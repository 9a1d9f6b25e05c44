package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// GinAccess 记录每个请求的方法、路由、状态、耗时与字节数，不读取请求体
func GinAccess(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", route,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			l.Warn("http_access", attrs...)
			return
		}
		l.Debug("http_access", attrs...)
	}
}
