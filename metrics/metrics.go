// Package metrics exposes Prometheus metrics for SMTP authentication
// exchanges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exchange outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
)

// Collector holds the Prometheus metrics for authentication exchanges.
type Collector struct {
	ExchangesStarted *prometheus.CounterVec
	Exchanges        *prometheus.CounterVec
	Challenges       *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them on reg. A nil reg
// means prometheus.DefaultRegisterer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "smtpauth"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		ExchangesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_started_total",
			Help:      "Total number of AUTH commands sent",
		}, []string{"mechanism"}),
		Exchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Total number of finished authentication exchanges by outcome",
		}, []string{"mechanism", "outcome"}),
		Challenges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_total",
			Help:      "Total number of server challenges answered",
		}, []string{"mechanism"}),
	}
}

// RecordStarted records an AUTH command being sent.
func (c *Collector) RecordStarted(mechanism string) {
	c.ExchangesStarted.WithLabelValues(mechanism).Inc()
}

// RecordChallenge records a challenge being answered.
func (c *Collector) RecordChallenge(mechanism string) {
	c.Challenges.WithLabelValues(mechanism).Inc()
}

// RecordOutcome records the end of an exchange.
func (c *Collector) RecordOutcome(mechanism, outcome string) {
	c.Exchanges.WithLabelValues(mechanism, outcome).Inc()
}
