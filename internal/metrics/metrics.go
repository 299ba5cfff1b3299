// Package metrics exports linkage build statistics to Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	qerrors "github.com/spenczar/quiver/domain/errors"
	"github.com/spenczar/quiver/linkage"
)

// Metrics records linkage build events. It implements linkage.Observer.
type Metrics struct {
	// reg is the Registerer used to create this set of metrics.
	reg prometheus.Registerer

	builds        *prometheus.CounterVec
	buildFailures *prometheus.CounterVec
	buildDuration prometheus.Histogram
	indexedRows   *prometheus.CounterVec
	distinctKeys  prometheus.Histogram
}

// New creates a new set of metrics. Metrics will be registered to reg.
func New(reg prometheus.Registerer) *Metrics {
	var m Metrics
	m.reg = reg

	m.builds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiver",
		Name:      "linkage_builds_total",
		Help:      "Total number of linkage builds by outcome",
	}, []string{"outcome"})

	m.buildFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiver",
		Name:      "linkage_build_failures_total",
		Help:      "Total number of failed linkage builds by reason",
	}, []string{"reason"})

	m.buildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quiver",
		Name:      "linkage_build_duration_seconds",
		Help:      "Time spent building linkage indexes",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	m.indexedRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiver",
		Name:      "linkage_indexed_rows_total",
		Help:      "Total number of key rows indexed, by side",
	}, []string{"side"})

	m.distinctKeys = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quiver",
		Name:      "linkage_distinct_keys",
		Help:      "Number of distinct keys across both sides of a linkage",
		Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
	})

	reg.MustRegister(m.builds, m.buildFailures, m.buildDuration, m.indexedRows, m.distinctKeys)
	return &m
}

// OnEvent implements linkage.Observer
func (m *Metrics) OnEvent(event linkage.Event) {
	switch event.Type {
	case linkage.EventIndexBuilt:
		if s, ok := event.Data.(linkage.IndexStats); ok {
			m.indexedRows.WithLabelValues(string(s.Side)).Add(float64(s.Rows))
		}
	case linkage.EventBuildEnd:
		m.builds.WithLabelValues("success").Inc()
		if s, ok := event.Data.(linkage.BuildStats); ok {
			m.buildDuration.Observe(s.Duration.Seconds())
			m.distinctKeys.Observe(float64(s.Union))
		}
	case linkage.EventBuildFailed:
		m.builds.WithLabelValues("failure").Inc()
		err, _ := event.Data.(error)
		m.buildFailures.WithLabelValues(reason(err)).Inc()
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, qerrors.ErrNullKeyValue):
		return "null_key_value"
	case errors.Is(err, qerrors.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, qerrors.ErrKeyTypeMismatch):
		return "key_type_mismatch"
	case errors.Is(err, qerrors.ErrKeyNameMismatch):
		return "key_name_mismatch"
	case errors.Is(err, qerrors.ErrEmptyKeySet):
		return "empty_key_set"
	}
	return "other"
}
