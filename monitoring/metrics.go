// Package monitoring exposes Prometheus metrics for the flight recorder
// runtime: capture throughput, ring overflow, dump performance, and
// block-policy trips. It is imported directly by recorder, dump, and
// blockpolicy for their hot-path counters, so it must never import any
// of them back; monitoring/collector holds the registry-polling code
// that does need recorder.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsCaptured tracks the total number of Record/RecordFast calls
	// by recorder name.
	RecordsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightrecorder_records_captured_total",
		Help: "Total number of records captured",
	}, []string{"recorder"})

	// RecordsOverflowed tracks the cumulative number of entries a reader
	// was lapped out of, by recorder name.
	RecordsOverflowed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flightrecorder_records_overflowed_total",
		Help: "Cumulative number of entries skipped due to reader lap",
	}, []string{"recorder"})

	// RecorderReadable tracks the current readable depth of a recorder's
	// ring, by recorder name.
	RecorderReadable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flightrecorder_recorder_readable_entries",
		Help: "Current number of unread entries in a recorder's ring",
	}, []string{"recorder"})

	// DumpDuration tracks how long a Dump call takes end to end.
	DumpDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightrecorder_dump_duration_seconds",
		Help:    "Dump call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
	})

	// DumpRecordsEmitted tracks how many logical records a Dump call
	// rendered.
	DumpRecordsEmitted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightrecorder_dump_records_emitted",
		Help:    "Number of logical records a dump call emitted",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	// DumpErrors tracks dump calls whose sink returned an error.
	DumpErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightrecorder_dump_errors_total",
		Help: "Total number of dump calls that hit a sink write error",
	})

	// ActiveRecorders tracks the number of recorders currently registered
	// in the registry a collector last polled.
	ActiveRecorders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flightrecorder_active_recorders",
		Help: "Number of recorders currently registered",
	})

	// BlockPolicyTrips tracks the total number of times a circuit-breaker
	// block policy opened, by the name the breaker was constructed with.
	BlockPolicyTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightrecorder_block_policy_trips_total",
		Help: "Total number of circuit breaker block policy trips",
	}, []string{"recorder"})
)

// RecordCaptured increments the capture counter for recorder.
func RecordCaptured(recorder string) {
	RecordsCaptured.WithLabelValues(recorder).Inc()
}

// UpdateOverflow sets the current overflow gauge for recorder.
func UpdateOverflow(recorder string, overflow uint64) {
	RecordsOverflowed.WithLabelValues(recorder).Set(float64(overflow))
}

// UpdateReadable sets the current readable-depth gauge for recorder.
func UpdateReadable(recorder string, readable uint64) {
	RecorderReadable.WithLabelValues(recorder).Set(float64(readable))
}

// ObserveDump records one Dump call's duration and emitted record count,
// and increments DumpErrors if it failed.
func ObserveDump(duration time.Duration, emitted int, err error) {
	DumpDuration.Observe(duration.Seconds())
	DumpRecordsEmitted.Observe(float64(emitted))
	if err != nil {
		DumpErrors.Inc()
	}
}

// UpdateActiveRecorders sets the registered-recorder-count gauge.
func UpdateActiveRecorders(count int) {
	ActiveRecorders.Set(float64(count))
}

// RecordBlockPolicyTrip increments the trip counter for recorder.
func RecordBlockPolicyTrip(recorder string) {
	BlockPolicyTrips.WithLabelValues(recorder).Inc()
}
