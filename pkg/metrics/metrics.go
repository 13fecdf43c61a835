package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 课表同步相关 Prometheus 指标
type Metrics struct {
	runs     *prometheus.CounterVec
	classes  *prometheus.CounterVec
	duration prometheus.Histogram
}

// New 创建并注册指标
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Schedule reconciliation runs by final status.",
		}, []string{"status"}),
		classes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal",
			Subsystem: "sync",
			Name:      "classes_total",
			Help:      "Scraped classes by reconciliation outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uniportal",
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one reconciliation run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	reg.MustRegister(m.runs, m.classes, m.duration)
	return m
}

// ClassCounts 一次同步的各类计数
type ClassCounts struct {
	Created           int
	Updated           int
	Unchanged         int
	SkippedUnresolved int
	SkippedInvalid    int
	DuplicateKeys     int
}

// ObserveRun 记录一次同步
func (m *Metrics) ObserveRun(status string, counts ClassCounts, elapsed time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())

	m.classes.WithLabelValues("created").Add(float64(counts.Created))
	m.classes.WithLabelValues("updated").Add(float64(counts.Updated))
	m.classes.WithLabelValues("unchanged").Add(float64(counts.Unchanged))
	m.classes.WithLabelValues("skipped_unresolved").Add(float64(counts.SkippedUnresolved))
	m.classes.WithLabelValues("skipped_invalid").Add(float64(counts.SkippedInvalid))
	m.classes.WithLabelValues("duplicate_key").Add(float64(counts.DuplicateKeys))
}
