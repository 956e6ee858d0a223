package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Redirect outcomes
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultExpired  = "expired"
)

// Metrics holds the service counters on a registry of their own
type Metrics struct {
	registry      *prometheus.Registry
	LinksCreated  prometheus.Counter
	Redirects     *prometheus.CounterVec
	Registrations prometheus.Counter
}

// New registers the counters
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		LinksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "shorty_links_created_total",
			Help: "Short links created",
		}),
		Redirects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shorty_redirects_total",
			Help: "Shortcode resolutions by outcome",
		}, []string{"result"}), // result: ok, not_found, expired
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "shorty_registrations_total",
			Help: "Completed registrations",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
