// Package metrics provides Prometheus metrics for colexport exports.
//
// # Overview
//
// A Collector owns one set of export metrics registered on a
// prometheus.Registerer:
//
//   - colexport_rows_exported_total{source}: rows written into batches
//   - colexport_batches_emitted_total{source}: sealed batches
//   - colexport_batch_rows{source}: row count distribution per batch
//   - colexport_export_duration_seconds{source,status}: whole export runs
//   - colexport_export_errors_total{type}: failed exports by error type
//
// # Basic Usage
//
//	collector := metrics.Default()
//	collector.RecordBatch("postgres", batch.NumRows())
//
//	timer := metrics.NewTimer()
//	err := run()
//	collector.ObserveExport("postgres", timer.Stop(), err)
//
// A nil *Collector is valid and records nothing.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

const namespace = "colexport"

// Collector records export metrics.
type Collector struct {
	rowsExported   *prometheus.CounterVec   // Rows placed into batches
	batchesEmitted *prometheus.CounterVec   // Sealed batches
	batchRows      *prometheus.HistogramVec // Rows per batch
	exportDuration *prometheus.HistogramVec // Export run latency
	exportErrors   *prometheus.CounterVec   // Failed exports by error type
}

var (
	defaultOnce      sync.Once
	defaultCollector *Collector
)

// Default returns the process-wide collector registered on
// prometheus.DefaultRegisterer.
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultCollector = NewCollector(prometheus.DefaultRegisterer)
	})
	return defaultCollector
}

// NewCollector creates a collector and registers its metrics on reg. It
// panics if reg already holds metrics with the same names.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		rowsExported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_exported_total",
				Help:      "Total number of result rows exported into columnar batches",
			},
			[]string{"source"},
		),
		batchesEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_emitted_total",
				Help:      "Total number of sealed columnar batches",
			},
			[]string{"source"},
		),
		batchRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_rows",
				Help:      "Number of rows per emitted batch",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"source"},
		),
		exportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Duration of complete export runs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source", "status"},
		),
		exportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_errors_total",
				Help:      "Total number of failed exports by error type",
			},
			[]string{"type"},
		),
	}
}

// RecordBatch records one emitted batch of rows rows.
func (c *Collector) RecordBatch(source string, rows int) {
	if c == nil {
		return
	}
	c.batchesEmitted.WithLabelValues(source).Inc()
	c.rowsExported.WithLabelValues(source).Add(float64(rows))
	c.batchRows.WithLabelValues(source).Observe(float64(rows))
}

// RecordError counts a failed export under the error's type.
func (c *Collector) RecordError(err error) {
	if c == nil || err == nil {
		return
	}
	c.exportErrors.WithLabelValues(string(exporterrors.TypeOf(err))).Inc()
}

// ObserveExport records the duration of an export run and, when err is not
// nil, its failure.
func (c *Collector) ObserveExport(source string, d time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		c.RecordError(err)
	}
	c.exportDuration.WithLabelValues(source, status).Observe(d.Seconds())
}

// Timer measures elapsed time.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the time elapsed since NewTimer.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
