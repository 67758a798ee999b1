package logger

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// Init initializes the global logger. In development mode, it uses a
// human-readable console encoder; in production, it uses JSON.
func Init(isDev bool) {
	once.Do(func() {
		var cfg zap.Config
		if isDev {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg = zap.NewProductionConfig()
		}

		var err error
		globalLogger, err = cfg.Build()
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	})
}

// Get returns the global logger singleton. If Init has not been called,
// it falls back to a no-op logger.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// With returns a child logger with the given fields attached.
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// WithRequestID returns a child logger with a request_id field.
func WithRequestID(requestID string) *zap.Logger {
	return Get().With(zap.String("request_id", requestID))
}

// RequestIDMiddleware stores a request ID in the gin context under
// "request_id" and echoes it in the X-Request-ID response header. A valid
// UUID supplied by the caller is reused, otherwise a new one is generated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// FromGin returns a child logger tagged with the request's ID, if any.
func FromGin(c *gin.Context) *zap.Logger {
	if id := c.GetString("request_id"); id != "" {
		return WithRequestID(id)
	}
	return Get()
}

// AccessLogMiddleware logs one line per request once the handler chain has
// finished. Server errors are logged at error level, client errors at warn.
func AccessLogMiddleware() gin.HandlerFunc {
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

		log := FromGin(c)
		switch {
		case status >= 500:
			log.Error("request completed", fields...)
		case status >= 400:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// Sync flushes any buffered log entries. Should be called before the
// application exits.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
