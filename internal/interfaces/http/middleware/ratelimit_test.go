package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Run("counts down within the window", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for want := 2; want >= 0; want-- {
			allowed, remaining := limiter.Allow("caller")
			assert.True(t, allowed)
			assert.Equal(t, want, remaining)
		}

		allowed, remaining := limiter.Allow("caller")
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)
	})

	t.Run("keys have independent budgets", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)

		allowed, _ := limiter.Allow("first")
		assert.True(t, allowed)
		allowed, _ = limiter.Allow("first")
		assert.False(t, allowed)

		allowed, _ = limiter.Allow("second")
		assert.True(t, allowed)
	})

	t.Run("budget refills when the window elapses", func(t *testing.T) {
		limiter := NewRateLimiter(1, 30*time.Millisecond)

		allowed, _ := limiter.Allow("caller")
		assert.True(t, allowed)
		allowed, _ = limiter.Allow("caller")
		assert.False(t, allowed)

		time.Sleep(40 * time.Millisecond)
		allowed, _ = limiter.Allow("caller")
		assert.True(t, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	newLimitedRouter := func(limit int) *gin.Engine {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(RateLimit(NewRateLimiter(limit, time.Minute)))
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
		return router
	}

	t.Run("requests over the budget get 429", func(t *testing.T) {
		router := newLimitedRouter(2)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("allowed responses carry the limit headers", func(t *testing.T) {
		router := newLimitedRouter(5)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("tenants are limited separately", func(t *testing.T) {
		router := newLimitedRouter(1)

		first := httptest.NewRequest(http.MethodGet, "/ping", nil)
		first.Header.Set("X-Tenant-ID", "tenant-a")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, first)
		assert.Equal(t, http.StatusOK, w.Code)

		again := httptest.NewRequest(http.MethodGet, "/ping", nil)
		again.Header.Set("X-Tenant-ID", "tenant-a")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, again)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		other := httptest.NewRequest(http.MethodGet, "/ping", nil)
		other.Header.Set("X-Tenant-ID", "tenant-b")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
