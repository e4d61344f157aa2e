package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flightrecorder/flightrecorder/recorder"
)

// statsCmd prints a table of every recorder registered in a private
// sample registry: name, capacity, readable depth, and overflow.
//
// Since this CLI process never runs alongside the application being
// inspected, stats is mostly useful as a smoke test over the recorder
// API -- it declares and writes a couple of demo recorders itself so
// there is always something to show.
func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Display recorder statistics for a sample workload",
		Long: `stats runs a small sample workload against a private registry
and prints each recorder's capacity, readable depth, and overflow count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout())
		},
	}
	return cmd
}

func runStats(out io.Writer) error {
	reg := &recorder.Registry{}
	a := recorder.New("STATS_DEMO_A", "sample recorder", 64, recorder.WithRegistry(reg))
	b := recorder.New("STATS_DEMO_B", "sample recorder, small capacity", 4, recorder.WithRegistry(reg))

	for i := 0; i < 10; i++ {
		recorder.Record(a, "stats.go:1", "event %d", i)
	}
	for i := 0; i < 10; i++ {
		recorder.Record(b, "stats.go:2", "event %d", i)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCAPACITY\tREADABLE\tOVERFLOW")
	reg.Each(func(r *recorder.Recorder) bool {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.Name(), r.Capacity(), r.Readable(), r.Overflow())
		return true
	})
	return w.Flush()
}
