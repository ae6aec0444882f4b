package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterMiddlewareWhitelist(t *testing.T) {
	gin.SetMode(gin.TestMode)

	whitelist := map[string]struct{}{}
	r := gin.New()
	r.Use(LimiterMiddleware(2, "H", func() map[string]struct{} { return whitelist }))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	get := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusTooManyRequests, get())

	// whitelisting the client ip takes effect without rebuilding the middleware
	whitelist["192.0.2.1"] = struct{}{}
	assert.Equal(t, http.StatusOK, get())
}
