package scenarios

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/flightrecorder/flightrecorder/dump"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// CrossRecorderOrdering hammers several independent recorders from many
// concurrent writers each, then dumps the whole registry and checks that
// the merged output is in strictly increasing global order regardless of
// which recorder or writer produced each entry.
type CrossRecorderOrdering struct {
	Recorders int
	Writers   int
	PerWriter int

	dumped string
	want   int
}

// NewCrossRecorderOrdering creates a new ordering scenario.
func NewCrossRecorderOrdering() *CrossRecorderOrdering {
	return &CrossRecorderOrdering{Recorders: 4, Writers: 8, PerWriter: 200}
}

// Name returns the scenario name.
func (c *CrossRecorderOrdering) Name() string { return "CrossRecorderOrdering" }

// Execute runs the scenario.
func (c *CrossRecorderOrdering) Execute(reg *recorder.Registry) error {
	recs := make([]*recorder.Recorder, c.Recorders)
	for i := range recs {
		recs[i] = recorder.New(fmt.Sprintf("ORDER_%d", i), "torture", 4096, recorder.WithRegistry(reg))
	}

	var wg sync.WaitGroup
	for _, r := range recs {
		for w := 0; w < c.Writers; w++ {
			wg.Add(1)
			go func(r *recorder.Recorder, id int) {
				defer wg.Done()
				for i := 0; i < c.PerWriter; i++ {
					recorder.Record(r, "ordering.go:1", "writer %d entry %d", id, i)
				}
			}(r, w)
		}
	}
	wg.Wait()

	c.want = c.Recorders * c.Writers * c.PerWriter

	var buf bytes.Buffer
	n, err := dump.Dump(reg, dump.WithOutput(&buf))
	if err != nil {
		return err
	}
	if n != c.want {
		return fmt.Errorf("dump emitted %d entries, want %d", n, c.want)
	}
	c.dumped = buf.String()
	return nil
}

// Verify checks the dumped order tokens are strictly increasing.
func (c *CrossRecorderOrdering) Verify(reg *recorder.Registry) error {
	lines := strings.Split(strings.TrimRight(c.dumped, "\n"), "\n")
	if len(lines) != c.want {
		return fmt.Errorf("got %d dumped lines, want %d", len(lines), c.want)
	}

	orders := make([]int, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("unparseable order token in line %q: %w", line, err)
		}
		orders = append(orders, n)
	}

	if !sort.IntsAreSorted(orders) {
		return fmt.Errorf("dumped order tokens were not monotonically increasing")
	}
	for i := 1; i < len(orders); i++ {
		if orders[i] == orders[i-1] {
			return fmt.Errorf("duplicate order token %d at position %d", orders[i], i)
		}
	}
	return nil
}
