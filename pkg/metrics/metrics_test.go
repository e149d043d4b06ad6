package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuthCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewAuth(reg)

	a.Login("success")
	a.Login("success")
	a.Refresh("reuse")
	a.Registered()
	a.GuardRejected("expired")

	assert.Equal(t, 2.0, testutil.ToFloat64(a.logins.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.refreshes.WithLabelValues("reuse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.registrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.rejections.WithLabelValues("expired")))
}

func TestNilAuthIsNoop(t *testing.T) {
	var a *Auth
	assert.NotPanics(t, func() {
		a.Login("success")
		a.Refresh("success")
		a.Registered()
		a.GuardRejected("missing")
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewAuth(reg).Login("failure")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `accounts_logins_total{result="failure"} 1`)
}
