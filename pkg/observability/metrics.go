package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/hostline/pkg/calllog"
	"github.com/aretw0/hostline/pkg/domain"
)

// Metrics holds the hostline collectors.
type Metrics struct {
	registry *prometheus.Registry

	stateEnters   *prometheus.CounterVec
	stays         *prometheus.CounterVec
	ended         *prometheus.CounterVec
	stayAttempts  *prometheus.HistogramVec
	callLogWrites *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stateEnters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostline_state_enter_total",
			Help: "Number of times a conversation entered a state.",
		}, []string{"state"}),
		stays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostline_state_stay_total",
			Help: "Turns that left the conversation in the same state.",
		}, []string{"state"}),
		ended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostline_conversations_ended_total",
			Help: "Conversations that reached a terminal state, by the state they came from.",
		}, []string{"from"}),
		stayAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hostline_state_attempts",
			Help:    "Attempt counter observed on each stay.",
			Buckets: []float64{1, 2, 3, 4, 5, 8},
		}, []string{"state"}),
		callLogWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostline_calllog_writes_total",
			Help: "Call log writes by result status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.stateEnters, m.stays, m.ended, m.stayAttempts, m.callLogWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks records engine events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.stateEnters.WithLabelValues(string(e.State)).Inc()
		},
		OnStay: func(_ context.Context, e *domain.StateEvent) {
			m.stays.WithLabelValues(string(e.State)).Inc()
			m.stayAttempts.WithLabelValues(string(e.State)).Observe(float64(e.Attempts))
		},
		OnConversationEnd: func(_ context.Context, e *domain.StateEvent) {
			m.ended.WithLabelValues(string(e.From)).Inc()
		},
	}
}

// ObserveCallLog counts a call log write. It fits calllog.WithObserver.
func (m *Metrics) ObserveCallLog(r calllog.Result) {
	m.callLogWrites.WithLabelValues(r.Status).Inc()
}
