package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/njchilds90/symdiff/internal/observability"
)

// HeaderRequestID carries the per-request identifier.
const HeaderRequestID = "X-Request-ID"

const ctxKeyRequestID = "request_id"

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.obs.Metrics().RecordRequest(c.Request.Context(), route, status, elapsed)

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		observability.LoggerWithTrace(c.Request.Context(), s.logger).Log(c.Request.Context(), level, "request",
			slog.String(observability.LogFieldRequestID, c.GetString(ctxKeyRequestID)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
		)
	}
}

// recovery turns a handler panic into a 500 JSON response.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		s.logger.Error("panic in handler",
			slog.String(observability.LogFieldRequestID, c.GetString(ctxKeyRequestID)),
			slog.String("panic", fmt.Sprint(rec)),
			slog.String("stack", string(debug.Stack())),
		)
		body := gin.H{"error": "internal server error", "kind": KindInternal}
		if s.debug {
			body["detail"] = fmt.Sprint(rec)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}
