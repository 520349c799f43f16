// Package metrics provides observability for the delegate module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks delegate lifecycle counts and critical path durations.
type Metrics struct {
	Registrations prometheus.Counter
	Approvals     prometheus.Counter
	Rejections    prometheus.Counter
	CheckIns      prometheus.Counter
	Logins        *prometheus.CounterVec
	StatsCache    *prometheus.CounterVec

	RegisterDuration prometheus.Histogram
	ListDuration     prometheus.Histogram
}

// New creates a Metrics instance with all delegate module metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "summit_delegate_registrations_total",
			Help: "Total number of delegate registrations accepted",
		}),
		Approvals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "summit_delegate_approvals_total",
			Help: "Total number of delegate approvals",
		}),
		Rejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "summit_delegate_rejections_total",
			Help: "Total number of delegate rejections",
		}),
		CheckIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "summit_delegate_checkins_total",
			Help: "Total number of delegate check-ins",
		}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "summit_delegate_logins_total",
			Help: "Delegate login attempts by outcome",
		}, []string{"outcome"}),
		StatsCache: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "summit_delegate_stats_cache_total",
			Help: "Statistics cache lookups by result",
		}, []string{"result"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "summit_delegate_register_duration_seconds",
			Help:    "Duration of registration operations (uniqueness check, hash, persist)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ListDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "summit_delegate_list_duration_seconds",
			Help:    "Duration of delegate listing queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRegistrations records an accepted registration.
func (m *Metrics) IncrementRegistrations() {
	m.Registrations.Inc()
}

// IncrementApprovals records a successful approval.
func (m *Metrics) IncrementApprovals() {
	m.Approvals.Inc()
}

// IncrementRejections records a successful rejection.
func (m *Metrics) IncrementRejections() {
	m.Rejections.Inc()
}

// IncrementCheckIns records a completed check-in.
func (m *Metrics) IncrementCheckIns() {
	m.CheckIns.Inc()
}

// IncrementLogins records a login attempt with its outcome.
func (m *Metrics) IncrementLogins(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// ObserveStatsCache records a statistics cache lookup result
// (hit, miss, or bypass).
func (m *Metrics) ObserveStatsCache(result string) {
	m.StatsCache.WithLabelValues(result).Inc()
}

// ObserveRegister records the duration of a registration.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveList records the duration of a listing query.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}
