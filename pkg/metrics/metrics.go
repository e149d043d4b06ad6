// Package metrics exposes Prometheus counters for the auth flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "accounts"

// Auth counts outcomes of the session operations and guard rejections.
// A nil *Auth is valid and records nothing.
type Auth struct {
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
}

func NewAuth(reg prometheus.Registerer) *Auth {
	a := &Auth{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Accounts created.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Refresh attempts by result.",
		}, []string{"result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rejections_total",
			Help:      "Requests rejected by the auth guard by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(a.registrations, a.logins, a.refreshes, a.rejections)
	return a
}

func (a *Auth) Registered() {
	if a != nil {
		a.registrations.Inc()
	}
}

func (a *Auth) Login(result string) {
	if a != nil {
		a.logins.WithLabelValues(result).Inc()
	}
}

func (a *Auth) Refresh(result string) {
	if a != nil {
		a.refreshes.WithLabelValues(result).Inc()
	}
}

func (a *Auth) GuardRejected(reason string) {
	if a != nil {
		a.rejections.WithLabelValues(reason).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
