package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/flightrecorder/flightrecorder/clock"
	"github.com/flightrecorder/flightrecorder/dump"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// hanoiMoves recursively solves Towers of Hanoi, emitting one MOVE
// record per unit disk transfer.
func hanoiMoves(move *recorder.Recorder, n int, from, via, to byte) {
	if n == 0 {
		return
	}
	hanoiMoves(move, n-1, from, to, via)
	recorder.RecordFast(move, "demo.go:hanoi", "move disk %d: %c -> %c", n, from, to)
	hanoiMoves(move, n-1, via, from, to)
}

func demoCmd() *cobra.Command {
	var disks int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a Towers of Hanoi timing scenario against fresh recorders",
		Long: `demo declares a MOVE recorder (capacity 1024) and a TIMING
recorder (capacity 32), solves Towers of Hanoi recursively emitting one
MOVE entry per disk transfer, brackets the dump/record/fast-record
phases with TIMING entries, then dumps only TIMING.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), disks)
		},
	}

	cmd.Flags().IntVar(&disks, "disks", 20, "Number of disks to solve Towers of Hanoi for")
	return cmd
}

func runDemo(out io.Writer, disks int) error {
	reg := &recorder.Registry{}
	clk := clock.Default

	move := recorder.New("MOVE", "Hanoi disk transfers", 1024, recorder.WithRegistry(reg))
	timing := recorder.New("TIMING", "phase begin/end markers", 32, recorder.WithRegistry(reg))

	recorder.Record(timing, "demo.go:print", "begin-print")
	hanoiMoves(move, disks, 'A', 'B', 'C')
	if _, err := dump.Dump(reg, dump.WithOutput(io.Discard), dump.WithPattern("MOVE")); err != nil {
		return err
	}
	recorder.Record(timing, "demo.go:print", "end-print")

	recorder.Record(timing, "demo.go:record", "begin-record")
	for i := 0; i < 1000; i++ {
		recorder.Record(move, "demo.go:record", "synthetic record %d", i)
	}
	recorder.Record(timing, "demo.go:record", "end-record")

	recorder.Record(timing, "demo.go:fast", "begin-fast-record")
	for i := 0; i < 1000; i++ {
		recorder.RecordFast(move, "demo.go:fast", "synthetic fast record %d", i)
	}
	recorder.Record(timing, "demo.go:fast", "end-fast-record")

	_, err := dump.Dump(reg, dump.WithOutput(out), dump.WithPattern("TIMING"), dump.WithClock(clk))
	return err
}
