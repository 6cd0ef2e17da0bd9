package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "setprotocol"

// Contract call operations.
const (
	OpSend     = "send"
	OpEstimate = "estimate"
	OpCall     = "call"
	OpDeploy   = "deploy"
	OpAttach   = "attach"
)

// Metrics records every JSON-RPC round-trip made through a contract wrapper.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "calls_total",
			Help:      "Contract operations by contract, method, operation and outcome.",
		}, []string{"contract", "method", "op", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "call_duration_seconds",
			Help:      "Round-trip latency of contract operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"contract", "method", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.latency)
	}
	return m
}

// Observe records one operation that started at start and finished with err.
func (m *Metrics) Observe(contract, method, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.calls.WithLabelValues(contract, method, op, status).Inc()
	m.latency.WithLabelValues(contract, method, op).Observe(time.Since(start).Seconds())
}
