package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox relay.
type Metrics struct {
	Published           prometheus.Counter
	PublishFailures     prometheus.Counter
	DeadLettered        prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with relay metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "summit_audit_relay_published_total",
			Help: "Total number of audit events published to Kafka",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "summit_audit_relay_publish_failures_total",
			Help: "Total number of audit event publish failures",
		}),
		DeadLettered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "summit_audit_relay_dead_lettered_total",
			Help: "Total number of audit events dead-lettered after exhausting retries",
		}),
		CircuitBreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "summit_audit_relay_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

// IncPublished increments the published counter.
func (m *Metrics) IncPublished() {
	m.Published.Inc()
}

// IncPublishFailures increments the publish failures counter.
func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

// IncDeadLettered increments the dead-lettered counter.
func (m *Metrics) IncDeadLettered() {
	m.DeadLettered.Inc()
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
