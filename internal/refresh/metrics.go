package refresh

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the refresher's Prometheus collectors.
type Metrics struct {
	Duration      *prometheus.HistogramVec
	FetchErrors   *prometheus.CounterVec
	Alerts        *prometheus.CounterVec
	SkippedRecord *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finalerts_refresh_duration_seconds",
				Help:    "Duration of an alert refresh in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"result"},
		),
		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finalerts_fetch_errors_total",
				Help: "Total number of failed data fetches by source",
			},
			[]string{"source"},
		),
		Alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finalerts_alerts_synthesized_total",
				Help: "Total number of alerts synthesized by kind",
			},
			[]string{"kind"},
		),
		SkippedRecord: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finalerts_skipped_records_total",
				Help: "Total number of malformed input records skipped by record type",
			},
			[]string{"record"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Duration, m.FetchErrors, m.Alerts, m.SkippedRecord)
	}
	return m
}
