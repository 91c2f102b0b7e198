package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Verification outcomes by source
	Outcomes *prometheus.CounterVec

	// Registry matches by pass
	MatchPass *prometheus.CounterVec

	// Single verification latency
	VerifyLatency prometheus.Histogram

	// Status events that failed to publish
	PublishFailures prometheus.Counter

	// Establishments currently served by the registry
	RegistrySize prometheus.Gauge
}

// New creates a new Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dinehalal_verification_outcomes_total",
			Help: "Total verification outcomes by source",
		}, []string{"source"}), // source: "official_registry", "community", "none"

		MatchPass: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dinehalal_verification_match_pass_total",
			Help: "Registry matches by the pass that accepted them",
		}, []string{"pass"}), // pass: "exact", "similar", "keyword"

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dinehalal_verification_verify_duration_seconds",
			Help:    "Duration of a single restaurant verification",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dinehalal_verification_publish_failures_total",
			Help: "Status events that could not be published",
		}),

		RegistrySize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dinehalal_registry_establishments",
			Help: "Establishments currently held by the registry store",
		}),
	}
}

// IncrementOutcome records a verification outcome.
func (m *Metrics) IncrementOutcome(source string) {
	if m != nil {
		m.Outcomes.WithLabelValues(source).Inc()
	}
}

// IncrementMatchPass records which pass accepted a registry match.
func (m *Metrics) IncrementMatchPass(pass string) {
	if m != nil {
		m.MatchPass.WithLabelValues(pass).Inc()
	}
}

// ObserveVerifyLatency records the duration of a verification.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// IncrementPublishFailure records a failed status publication.
func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

// SetRegistrySize records the current registry size.
func (m *Metrics) SetRegistrySize(n int) {
	if m != nil {
		m.RegistrySize.Set(float64(n))
	}
}
