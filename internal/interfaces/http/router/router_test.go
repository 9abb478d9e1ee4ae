package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("mounts registrars under the default version", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)

		r.Register(registrarFunc(func(rg *gin.RouterGroup) {
			stock := rg.Group("/stock")
			stock.GET("/levels", func(c *gin.Context) {
				c.String(http.StatusOK, "levels")
			})
			stock.POST("/levels/bulk", func(c *gin.Context) {
				c.String(http.StatusOK, "bulk")
			})
		}))
		r.Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stock/levels", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/stock/levels/bulk", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bulk", w.Body.String())
	})

	t.Run("honors a custom version prefix", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine, WithAPIVersion("v2"))

		r.Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/ping", func(c *gin.Context) {
				c.String(http.StatusOK, "pong")
			})
		}))
		r.Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("registrations chain and all mount", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)

		r.Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/transactions", func(c *gin.Context) { c.Status(http.StatusOK) })
		})).Register(registrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/transfers", func(c *gin.Context) { c.Status(http.StatusOK) })
		}))
		r.Setup()

		for _, path := range []string{"/api/v1/transactions", "/api/v1/transfers"} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})
}
