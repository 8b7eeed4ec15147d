package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/SketchShifter/social_backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware リクエストIDを採番（クライアント指定があればそれを使う）
func RequestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set("requestID", requestID)
		ctx.Writer.Header().Set(requestIDHeader, requestID)
		ctx.Next()
	}
}

// LoggerMiddleware アクセスログを出力
func LoggerMiddleware(log *logrus.Entry) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		fields := logrus.Fields{
			"method":     ctx.Request.Method,
			"path":       ctx.Request.URL.Path,
			"status":     ctx.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  ctx.ClientIP(),
			"request_id": ctx.GetString("requestID"),
		}
		if userID, ok := ctx.Get("userID"); ok {
			fields["user_id"] = userID
		}
		if len(ctx.Errors) > 0 {
			fields["errors"] = ctx.Errors.String()
		}

		entry := log.WithFields(fields)
		switch {
		case ctx.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		case ctx.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// MetricsMiddleware リクエスト数とレイテンシを記録
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestCounter.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// BodyLimitMiddleware リクエストボディのサイズを制限
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes)
		}
		ctx.Next()
	}
}
