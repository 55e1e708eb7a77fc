package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookshelf/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type countingLimiter struct {
	allowed int
	calls   int
	keys    []string
}

func (l *countingLimiter) Allow(ctx context.Context, key string) bool {
	l.calls++
	l.keys = append(l.keys, key)
	return l.calls <= l.allowed
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.POST("/ping", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRequestIDPropagatesIncomingHeader(t *testing.T) {
	const incoming = "req-incoming-123"
	r := newRouter(RequestID())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))
	assert.Equal(t, incoming, w.Body.String())
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var scoped bool
	r.GET("/ping", func(c *gin.Context) {
		scoped = logging.FromContext(c.Request.Context()) != slog.Default()
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.True(t, scoped)
}

func TestRateLimitOnlyThrottlesWrites(t *testing.T) {
	limiter := &countingLimiter{allowed: 1}
	r := newRouter(RateLimit(limiter))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 0, limiter.calls)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestRateLimitNilLimiter(t *testing.T) {
	r := newRouter(RateLimit(nil), RequestLog(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRateLimitKeysByResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &countingLimiter{allowed: 10}
	r := gin.New()
	r.Use(RateLimit(limiter))
	r.POST("/api/v1/books", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/api/v1/reviews/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/books", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/7", nil),
		httptest.NewRequest(http.MethodPost, "/unknown", nil),
	} {
		req.RemoteAddr = "10.1.2.3:5000"
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []string{"books:10.1.2.3", "reviews:10.1.2.3", "other:10.1.2.3"}, limiter.keys)
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "books", resourceOf("/api/v1/books/:id/download"))
	assert.Equal(t, "user-books", resourceOf("/api/v1/user-books"))
	assert.Equal(t, "files", resourceOf("/api/v1/files"))
	assert.Equal(t, "other", resourceOf(""))
}

func TestRequestLogCarriesRequestIDOnce(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	r := newRouter(RequestID(), RequestLog("library"))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-log-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, `"msg":"http_request"`)
	assert.Equal(t, 1, strings.Count(line, `"request_id":"req-log-1"`))
}
