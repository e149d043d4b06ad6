package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oksasatya/user-account-service/pkg/metrics"
	"github.com/oksasatya/user-account-service/pkg/response"
)

// Pinger is a dependency checked by /healthz.
type Pinger func(ctx context.Context) error

// HealthModule serves GET /healthz. It is registered on the engine root.
type HealthModule struct {
	Checks map[string]Pinger
}

func NewHealthModule(checks map[string]Pinger) *HealthModule {
	return &HealthModule{Checks: checks}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{}
		healthy := true
		for name, ping := range m.Checks {
			if err := ping(ctx); err != nil {
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}
		if !healthy {
			response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", status)
			return
		}
		response.Success(c, http.StatusOK, status, "ok", nil)
	})
}

// MetricsModule exposes the Prometheus registry at /debug/metrics.
type MetricsModule struct {
	Gatherer prometheus.Gatherer
}

func NewMetricsModule(g prometheus.Gatherer) *MetricsModule {
	return &MetricsModule{Gatherer: g}
}

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/metrics", gin.WrapH(metrics.Handler(m.Gatherer)))
}
