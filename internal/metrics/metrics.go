package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is nil-safe: every method is a no-op on a nil receiver.
type Metrics struct {
	issued        *prometheus.CounterVec
	revoked       *prometheus.CounterVec
	verifyFailure *prometheus.CounterVec
	purged        prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "tokens_issued_total",
			Help:      "Tokens minted, by kind.",
		}, []string{"kind"}),
		revoked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "tokens_revoked_total",
			Help:      "Tokens written to the revocation list, by kind.",
		}, []string{"kind"}),
		verifyFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "token_verification_failures_total",
			Help:      "Rejected tokens, by operation and reason.",
		}, []string{"op", "reason"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "revocations_purged_total",
			Help:      "Expired revocation entries removed.",
		}),
	}
	reg.MustRegister(m.issued, m.revoked, m.verifyFailure, m.purged)
	return m
}

func (m *Metrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(kind).Inc()
}

func (m *Metrics) TokenRevoked(kind string) {
	if m == nil {
		return
	}
	m.revoked.WithLabelValues(kind).Inc()
}

func (m *Metrics) VerifyFailed(op, reason string) {
	if m == nil {
		return
	}
	m.verifyFailure.WithLabelValues(op, reason).Inc()
}

func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}
