package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("should recover from panics", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler())
		router.GET("/panic", func(c *gin.Context) {
			panic("boom")
		})

		rr := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/panic", nil)
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
	})

	t.Run("should render accumulated errors", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler())
		router.GET("/fail", func(c *gin.Context) {
			c.Error(errors.New("something went wrong")) //nolint:errcheck
		})

		rr := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/fail", nil)
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"something went wrong"}`, rr.Body.String())
	})

	t.Run("should leave successful responses alone", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler())
		router.GET("/ok", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		rr := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ok", nil)
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})
}
