package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/flightrecorder/flightrecorder/monitoring/collector"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// monitorCmd serves Prometheus metrics for a sample registry, so the
// monitoring package's counters/gauges and its Collector's polling loop
// have a real process driving them rather than only a test.
func monitorCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve Prometheus metrics while polling a sample registry",
		Long: `monitor declares a sample recorder, starts the monitoring
collector that polls every registered recorder's readable depth and
overflow count into gauges, and serves them at /metrics until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd.OutOrStdout(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /metrics on")
	return cmd
}

// newMonitorRegistry declares the sample recorder the monitor command
// polls, mirroring the demo/stats/signals commands' own private-registry
// sample workloads.
func newMonitorRegistry() (*recorder.Registry, *recorder.Recorder) {
	reg := &recorder.Registry{}
	sample := recorder.New("MONITOR_SAMPLE", "sample recorder polled for metrics", 256, recorder.WithRegistry(reg))
	return reg, sample
}

func runMonitor(out io.Writer, addr string) error {
	reg, sample := newMonitorRegistry()
	recorder.Record(sample, "monitor.go:seed", "collector started")

	col := collector.New(reg, collector.WithPollInterval(time.Second))
	col.Start()
	defer col.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	fmt.Fprintf(out, "serving metrics on %s/metrics (ctrl-c to stop)\n", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
