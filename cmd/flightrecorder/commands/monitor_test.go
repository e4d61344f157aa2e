package commands

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightrecorder/flightrecorder/monitoring/collector"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// TestMonitorServesRecorderGauges exercises the same setup runMonitor
// uses -- a sample registry, a Collector polling it, and promhttp's
// handler -- without invoking runMonitor itself, which blocks on a
// signal and binds a real listener.
func TestMonitorServesRecorderGauges(t *testing.T) {
	reg, sample := newMonitorRegistry()
	recorder.Record(sample, "monitor_test.go:1", "seed")

	col := collector.New(reg)
	col.Poll()

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "flightrecorder_recorder_readable_entries")
	assert.Contains(t, string(body), "MONITOR_SAMPLE")
	assert.Contains(t, string(body), "flightrecorder_records_captured_total")
}

func TestNewMonitorRegistryDeclaresSampleRecorder(t *testing.T) {
	reg, sample := newMonitorRegistry()
	assert.Equal(t, "MONITOR_SAMPLE", sample.Name())

	recorder.Record(sample, "monitor_test.go:2", "seed")
	assert.Same(t, sample, reg.Find("MONITOR_SAMPLE"))
}
