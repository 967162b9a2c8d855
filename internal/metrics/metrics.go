package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds only the run metrics so textfile exports stay small
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Step Metrics
	StepsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashprep_steps_total",
			Help: "Total number of external tool steps by outcome",
		},
		[]string{"step", "status"},
	)

	StepDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashprep_step_duration_seconds",
			Help:    "External tool step duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17 minutes
		},
		[]string{"step", "range", "resolution"},
	)

	// Variant Metrics
	VariantsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashprep_variants_total",
			Help: "Total number of variants processed",
		},
		[]string{"range", "resolution"},
	)

	// Run Metrics
	InputHDR = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashprep_input_hdr",
			Help: "1 if the last input was detected as HDR, 0 otherwise",
		},
	)

	RunDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashprep_run_duration_seconds",
			Help: "Wall time of the last run in seconds",
		},
	)

	RunFailedSteps = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashprep_run_failed_steps",
			Help: "Number of failed steps in the last run",
		},
	)

	LastRunTimestamp = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashprep_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		},
	)

	// Cache Metrics
	CacheAccessTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashprep_cache_access_total",
			Help: "HDR detection cache lookups",
		},
		[]string{"result"},
	)

	// Storage Metrics
	PublishedObjectsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "dashprep_published_objects_total",
			Help: "Total number of objects uploaded to storage",
		},
	)

	PublishedBytesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "dashprep_published_bytes_total",
			Help: "Total bytes uploaded to storage",
		},
	)
)

// Helper functions for recording metrics

// RecordStep records the outcome of one external tool step. rangeLabel and
// resolution are empty for steps that are not tied to a variant.
func RecordStep(step, rangeLabel, resolution string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	StepsTotal.WithLabelValues(step, status).Inc()
	StepDuration.WithLabelValues(step, rangeLabel, resolution).Observe(duration.Seconds())
}

// RecordVariant counts a processed variant
func RecordVariant(rangeLabel, resolution string) {
	VariantsTotal.WithLabelValues(rangeLabel, resolution).Inc()
}

// RecordDynamicRange records the detection result of the run
func RecordDynamicRange(hdr bool) {
	if hdr {
		InputHDR.Set(1)
		return
	}
	InputHDR.Set(0)
}

// RecordRun records the totals of a finished run
func RecordRun(duration time.Duration, failedSteps int, finishedAt time.Time) {
	RunDuration.Set(duration.Seconds())
	RunFailedSteps.Set(float64(failedSteps))
	LastRunTimestamp.Set(float64(finishedAt.Unix()))
}

// RecordCacheAccess records a cache hit, miss or error
func RecordCacheAccess(result string) {
	CacheAccessTotal.WithLabelValues(result).Inc()
}

// RecordPublish records an uploaded object
func RecordPublish(size int64) {
	PublishedObjectsTotal.Inc()
	PublishedBytesTotal.Add(float64(size))
}

// WriteTextfile writes the registry in the node_exporter textfile format
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
