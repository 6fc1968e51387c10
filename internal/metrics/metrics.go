package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	NotificationsObserved *prometheus.CounterVec
	Decisions             *prometheus.CounterVec
	SuppressAttempts      *prometheus.CounterVec
	MuteLogEntries        *prometheus.CounterVec
	FanOutDropped         *prometheus.CounterVec
	CachedEvents          prometheus.Gauge
}

// New creates all metrics on a private registry
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		NotificationsObserved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_observed_total",
			Help:      "Total number of notification observations",
		}, []string{"kind"}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_decisions_total",
			Help:      "Total number of block decisions by outcome",
		}, []string{"outcome"}),
		SuppressAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suppress_attempts_total",
			Help:      "Total number of native suppression attempts by result",
		}, []string{"result"}),
		MuteLogEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mute_log_entries_total",
			Help:      "Mute log append outcomes",
		}, []string{"result"}),
		FanOutDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_dropped_total",
			Help:      "Live entries dropped because a subscriber was not keeping up",
		}, []string{"subscriber"}),
		CachedEvents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_events",
			Help:      "Current number of notifications held in the event cache",
		}),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Observed(kind string) {
	if m != nil {
		m.NotificationsObserved.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Decision(blocked bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if blocked {
		outcome = "blocked"
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Suppress(ok bool) {
	if m == nil {
		return
	}
	result := "unavailable"
	if ok {
		result = "dismissed"
	}
	m.SuppressAttempts.WithLabelValues(result).Inc()
}

// MuteLog counts an append outcome: recorded, duplicate, skipped_summary, disabled or failed
func (m *Metrics) MuteLog(result string) {
	if m != nil {
		m.MuteLogEntries.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Dropped(subscriber string) {
	if m != nil {
		m.FanOutDropped.WithLabelValues(subscriber).Inc()
	}
}

func (m *Metrics) SetCachedEvents(n int) {
	if m != nil {
		m.CachedEvents.Set(float64(n))
	}
}
