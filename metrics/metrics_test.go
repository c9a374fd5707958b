package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("", reg)

	c.RecordStarted("PLAIN")
	c.RecordStarted("PLAIN")
	c.RecordChallenge("LOGIN")
	c.RecordOutcome("PLAIN", OutcomeSuccess)
	c.RecordOutcome("PLAIN", OutcomeRejected)
	c.RecordOutcome("PLAIN", OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ExchangesStarted.WithLabelValues("PLAIN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Challenges.WithLabelValues("LOGIN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Exchanges.WithLabelValues("PLAIN", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Exchanges.WithLabelValues("PLAIN", OutcomeRejected)))

	n, err := testutil.GatherAndCount(reg, "smtpauth_exchanges_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewCollector_duplicate(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector("test", reg)
	assert.Panics(t, func() { NewCollector("test", reg) })
}
