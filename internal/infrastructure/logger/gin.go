package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Keys the HTTP middleware stores on the gin context
const (
	GinLoggerKey    = "logger"
	GinRequestIDKey = "request_id"
	GinSessionIDKey = "session_id"
)

// GinMiddleware logs one entry per request. It runs after the request id
// middleware and hands the request's logger and ids on to handlers through
// both the gin context and the request context. A session resolved further
// down the chain joins through AttachSession.
func GinMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		ids := IDs{
			Request: c.GetString(GinRequestIDKey),
			Session: c.GetString(GinSessionIDKey),
		}
		base := log.With(zap.String("method", req.Method), zap.String("path", req.URL.Path))
		ctx := WithContext(WithIDs(req.Context(), ids), base)
		reqLog := WithLogger(ctx, base)

		c.Set(GinLoggerKey, reqLog)
		c.Request = req.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", req.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if q := req.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		GetGinLogger(c).Log(statusLevel(status), "HTTP Request", fields...)
	}
}

func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a handler panic into a 500 error envelope
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			l := log
			if reqLog, ok := c.Value(GinLoggerKey).(*zap.Logger); ok {
				l = reqLog
			}
			l.Error("Panic recovered",
				zap.String("request_id", c.GetString(GinRequestIDKey)),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "INTERNAL_ERROR", "message": "An internal error occurred"},
			})
		}()
		c.Next()
	}
}

// AttachSession records the session id on c and retags the request's
// loggers with it
func AttachSession(c *gin.Context, id string) {
	c.Set(GinSessionIDKey, id)
	ctx := WithIDs(c.Request.Context(), IDs{Session: id})
	c.Request = c.Request.WithContext(ctx)
	if _, ok := c.Value(GinLoggerKey).(*zap.Logger); ok {
		c.Set(GinLoggerKey, L(ctx))
	}
}

// GetGinLogger returns the request logger set by GinMiddleware, or a no-op
// logger
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Value(GinLoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
