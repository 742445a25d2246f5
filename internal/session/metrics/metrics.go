package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the session module. Counters are
// labeled by session kind so event and check-run traffic stay separable on
// one dashboard.
type Metrics struct {
	SessionsCreated     *prometheus.CounterVec
	SessionsJoined      *prometheus.CounterVec
	SessionsEnded       *prometheus.CounterVec
	MembershipToggles   *prometheus.CounterVec
	SweepEnded          prometheus.Counter
	SweepFailures       prometheus.Counter
	CreateOrJoinLatency prometheus.Histogram
}

// New creates a Metrics instance with all session module metrics registered
// on the default registry.
func New() *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stationlog_sessions_created_total",
			Help: "Total sessions created by create-or-join",
		}, []string{"kind"}),
		SessionsJoined: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stationlog_sessions_joined_total",
			Help: "Total joins onto an already-live session",
		}, []string{"kind"}),
		SessionsEnded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stationlog_sessions_ended_total",
			Help: "Total sessions moved to a terminal status",
		}, []string{"kind"}),
		MembershipToggles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stationlog_membership_toggles_total",
			Help: "Total membership toggle operations by resulting action",
		}, []string{"kind", "action"}),
		SweepEnded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stationlog_sweep_sessions_ended_total",
			Help: "Total sessions ended by expiry sweeps",
		}),
		SweepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stationlog_sweep_failures_total",
			Help: "Total per-session failures during expiry sweeps",
		}),
		CreateOrJoinLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stationlog_create_or_join_duration_seconds",
			Help:    "Duration of create-or-join operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCreateOrJoin records the duration of a create-or-join operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveCreateOrJoin(start time.Time) {
	m.CreateOrJoinLatency.Observe(time.Since(start).Seconds())
}
