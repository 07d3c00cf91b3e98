package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes.
const (
	OutcomeRelayed       = "relayed"
	OutcomeMissing       = "missing"
	OutcomeUpstreamError = "upstream_error"
)

// UnknownHost labels requests whose host is not configured, so the host label
// stays bounded by the configured set.
const UnknownHost = "unknown"

// Registry holds the gateway's Prometheus collectors on a private registry.
type Registry struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schnecke",
				Name:      "requests_total",
				Help:      "Total number of dispatched requests",
			},
			[]string{"host", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "schnecke",
				Name:      "request_duration_seconds",
				Help:      "Time from request receipt to response relay",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "schnecke",
			Name:      "requests_in_flight",
			Help:      "Requests currently being dispatched",
		}),
	}
	r.reg.MustRegister(r.requests, r.latency, r.inflight)
	return r
}

func (r *Registry) IncRequest(host, outcome string) {
	if host == "" {
		host = UnknownHost
	}
	r.requests.WithLabelValues(host, outcome).Inc()
}

func (r *Registry) ObserveLatency(outcome string, d time.Duration) {
	r.latency.WithLabelValues(outcome).Observe(d.Seconds())
}

func (r *Registry) IncInFlight() { r.inflight.Inc() }
func (r *Registry) DecInFlight() { r.inflight.Dec() }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
