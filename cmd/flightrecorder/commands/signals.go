package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flightrecorder/flightrecorder/recorder"
	"github.com/flightrecorder/flightrecorder/signalhook"
)

// signalsCmd installs a dump-on-common-signals handler against a sample
// registry and blocks until SIGINT/SIGTERM, so an operator can send a
// dump-triggering signal (e.g. SIGUSR1) and observe the rendered output
// on stderr. After the dump the hook re-raises that signal with its
// default disposition, which ends the process; SIGINT/SIGTERM instead
// make it exit cleanly.
func signalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signals",
		Short: "Install dump-on-signal handlers and wait",
		Long: `signals declares a sample recorder, installs dump-on-common-signals
handlers, and blocks until interrupted. Sending SIGUSR1 or SIGUSR2 to
the process dumps the recorder to stderr; SIGINT/SIGTERM exit cleanly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignals()
		},
	}
}

func runSignals() error {
	reg := &recorder.Registry{}
	marker := recorder.New("SIGNAL_MARKER", "signal hook notices", 64, recorder.WithRegistry(reg))
	sample := recorder.New("SAMPLE", "sample recorder", 256, recorder.WithRegistry(reg))

	// Register both eagerly rather than waiting for their first write, so
	// a caller that accidentally reuses a name finds out here instead of
	// silently losing the ring's first-writer detection.
	if err := reg.Register(marker); err != nil {
		return err
	}
	if err := reg.Register(sample); err != nil {
		return err
	}

	for i := 0; i < 5; i++ {
		recorder.Record(sample, "signals.go:1", "sample event %d", i)
	}

	// Exclude the fatal signals (bit i per signalhook.CommonSignals) this
	// interactive demo shouldn't actually deliver to itself.
	var remove signalhook.Mask
	for i, sig := range signalhook.CommonSignals {
		switch sig {
		case syscall.SIGUSR1, syscall.SIGUSR2:
			// keep installed
		default:
			remove |= 1 << uint(i)
		}
	}
	handles := signalhook.InstallCommon(marker, reg, remove)
	defer signalhook.StopAll(handles)

	fmt.Fprintln(os.Stderr, "waiting for SIGUSR1/SIGUSR2 (dump) or SIGINT/SIGTERM (exit)...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}
