package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
)

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
	calls    int
}

func (s *stubLimiter) Allow(_ context.Context, _ string) (ratelimit.Decision, error) {
	s.calls++
	return s.decision, s.err
}

func newRateLimitRouter(l ratelimit.Limiter, cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(l, cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRateLimitAllows(t *testing.T) {
	limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: true, Remaining: 4}}
	router := newRateLimitRouter(limiter, config.RateLimitConfig{Enabled: true, QPS: 5, Burst: 5})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitRejectsWhenExhausted(t *testing.T) {
	limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: 2 * time.Second}}
	router := newRateLimitRouter(limiter, config.RateLimitConfig{Enabled: true, QPS: 1, Burst: 1})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	// Redis 不可用时放行请求
	limiter := &stubLimiter{err: errors.New("redis down")}
	router := newRateLimitRouter(limiter, config.RateLimitConfig{Enabled: true, QPS: 1, Burst: 1})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitDisabledSkipsLimiter(t *testing.T) {
	limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: false}}
	router := newRateLimitRouter(limiter, config.RateLimitConfig{Enabled: false})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, limiter.calls)
}
