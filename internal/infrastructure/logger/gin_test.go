package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	return router, logs
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs a completed request with its fields", func(t *testing.T) {
		router, logs := newObservedRouter(t)
		router.GET("/stock", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock?location=main", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := entry.ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/stock", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "location=main", fields["query"])
	})

	t.Run("client errors log as warnings", func(t *testing.T) {
		router, logs := newObservedRouter(t)
		router.GET("/stock", func(c *gin.Context) {
			c.Status(http.StatusUnprocessableEntity)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("server errors log as errors", func(t *testing.T) {
		router, logs := newObservedRouter(t)
		router.GET("/stock", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	})

	t.Run("request context carries the ID into lower layers", func(t *testing.T) {
		router, _ := newObservedRouter(t)

		var seen string
		router.GET("/stock", func(c *gin.Context) {
			seen = GetRequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock", nil))

		assert.Equal(t, "req-123", seen)
	})
}

func TestRecovery(t *testing.T) {
	t.Run("panics become a logged 500", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		core, logs := observer.New(zapcore.DebugLevel)

		router := gin.New()
		router.Use(Recovery(zap.New(core)))
		router.GET("/boom", func(c *gin.Context) {
			panic("lot index out of range")
		})

		w := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "lot index out of range", entry.ContextMap()["error"])
	})
}
