package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Flow labels for the auth metrics.
const (
	FlowLogin      = "login"
	FlowRefresh    = "refresh"
	FlowRevoke     = "revoke"
	FlowClient     = "client"
	FlowRegister   = "register"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

type Metrics struct {
	flows    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	expired  prometheus.Counter
}

// NewMetrics registers the auth metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		flows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_flow_total", Help: "Auth flows by outcome",
		}, []string{"flow", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "auth_flow_duration_seconds", Help: "Auth flow duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"flow"}),
		expired: f.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_tokens_expired_deleted_total", Help: "Expired refresh tokens removed by housekeeping",
		}),
	}
}

// observe is nil-safe so services work without metrics wired in.
func (m *Metrics) observe(flow, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.flows.WithLabelValues(flow, outcome).Inc()
	m.duration.WithLabelValues(flow).Observe(time.Since(start).Seconds())
}

func (m *Metrics) expiredDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}
