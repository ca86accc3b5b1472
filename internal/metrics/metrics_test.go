package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TokenIssued("access")
	m.TokenIssued("access")
	m.TokenRevoked("refresh")
	m.VerifyFailed("rotate", "expired")
	m.Purged(3)
	m.Purged(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.issued.WithLabelValues("access")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.revoked.WithLabelValues("refresh")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifyFailure.WithLabelValues("rotate", "expired")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.purged))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TokenIssued("access")
		m.TokenRevoked("access")
		m.VerifyFailed("verify", "malformed")
		m.Purged(1)
	})
}
