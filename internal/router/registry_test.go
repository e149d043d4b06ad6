package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingModule struct{ path string }

func (m pingModule) Register(rg *gin.RouterGroup) {
	rg.GET(m.path, func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	r := NewRegistry(e)
	r.Use(func(c *gin.Context) { c.Set("mw", "api") })
	r.Add(pingModule{path: "/ping"})
	r.AddRoot(pingModule{path: "/healthz"})
	r.RegisterAll()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, "api", w.Body.String())

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
