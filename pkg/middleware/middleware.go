package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookshelf/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

const apiPrefix = "/api/v1"

// Limiter decides whether a client may issue another write.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RequestID propagates an incoming request id or generates one. The id is
// echoed in the response header and a logger carrying it is stored in the
// request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		logger := slog.Default().With("request_id", requestID)
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), logger))
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLog emits one structured log line per request.
func RequestLog(service string) gin.HandlerFunc {
	service = strings.TrimSpace(service)
	if service == "" {
		service = "unknown"
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.FromContext(c.Request.Context()).Info(
			"http_request",
			"service", service,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RateLimit throttles writes per client address and resource. Reads always
// pass. A nil limiter disables the check.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !isWrite(c.Request.Method) {
			c.Next()
			return
		}
		if !limiter.Allow(c.Request.Context(), limitKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "too many requests",
				"code":    "rate_limited",
			})
			return
		}
		c.Next()
	}
}

// limitKey is "<resource>:<client ip>", where resource is the first route
// segment after the API prefix ("books" for /api/v1/books/:id).
func limitKey(c *gin.Context) string {
	return resourceOf(c.FullPath()) + ":" + c.ClientIP()
}

func resourceOf(route string) string {
	route = strings.TrimPrefix(route, apiPrefix)
	for _, segment := range strings.Split(route, "/") {
		if segment != "" && !strings.HasPrefix(segment, ":") {
			return segment
		}
	}
	return "other"
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
