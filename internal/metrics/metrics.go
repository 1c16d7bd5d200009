package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "parley"

type Metrics struct {
	delivered       *prometheus.CounterVec
	deliveryFailed  *prometheus.CounterVec
	rateLimited     prometheus.Counter
	callTransitions *prometheus.CounterVec
	callsExpired    prometheus.Counter
	rejected        *prometheus.CounterVec
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Outbound events handed to a connection.",
		}, []string{"event"}),
		deliveryFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivery_failed_total",
			Help:      "Outbound events that could not be handed to a connection.",
		}, []string{"event", "action"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Operations dropped by the per-user rate limiter.",
		}),
		callTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_transitions_total",
			Help:      "Call status changes by target status.",
		}, []string{"status"}),
		callsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_expired_total",
			Help:      "Calls reclaimed by the expiry sweeper.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_rejected_total",
			Help:      "Inbound operations refused by validation.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.delivered, m.deliveryFailed, m.rateLimited, m.callTransitions, m.callsExpired, m.rejected)
	return m
}

// NewRegistry returns a private registry preloaded with the process and Go
// runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Gauges exposes live counts read on every scrape.
type Gauges struct {
	Users       func() float64
	Connections func() float64
	Rooms       func() float64
	ActiveCalls func() float64
}

func RegisterGauges(reg prometheus.Registerer, g Gauges) {
	gauge := func(name, help string, fn func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help}, fn)
	}
	reg.MustRegister(
		gauge("online_users", "Users with at least one live connection.", g.Users),
		gauge("connections", "Live signaling connections.", g.Connections),
		gauge("rooms", "Rooms with at least one member.", g.Rooms),
		gauge("active_calls", "Calls not yet in a terminal status.", g.ActiveCalls),
	)
}

// Collector methods are no-ops on a nil *Metrics.

func (m *Metrics) Delivered(event string) {
	if m == nil {
		return
	}
	m.delivered.WithLabelValues(event).Inc()
}

func (m *Metrics) DeliveryFailed(event, action string) {
	if m == nil {
		return
	}
	m.deliveryFailed.WithLabelValues(event, action).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) CallTransition(status string) {
	if m == nil {
		return
	}
	m.callTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) CallsExpired(n int) {
	if m == nil {
		return
	}
	m.callsExpired.Add(float64(n))
}

func (m *Metrics) Rejected(op string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(op).Inc()
}
