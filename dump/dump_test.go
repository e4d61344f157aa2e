package dump

import (
	"bytes"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightrecorder/flightrecorder/recorder"
)

func TestDumpGlobalOrderIsStrictlyIncreasing(t *testing.T) {
	reg := &recorder.Registry{}
	a := recorder.New("A", "", 8, recorder.WithRegistry(reg))
	b := recorder.New("B", "", 8, recorder.WithRegistry(reg))

	for i := 0; i < 5; i++ {
		recorder.Record(a, "a.go:1", "a-%d", i)
		recorder.Record(b, "b.go:1", "b-%d", i)
	}

	var buf bytes.Buffer
	n, err := Dump(reg, WithOutput(&buf))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	orders := extractOrders(t, buf.String())
	require.Len(t, orders, 10)
	for i := 1; i < len(orders); i++ {
		assert.Greater(t, orders[i], orders[i-1])
	}
	assert.True(t, sort.SliceIsSorted(orders, func(i, j int) bool { return orders[i] < orders[j] }))
}

func TestDumpForPatternFiltersRecorders(t *testing.T) {
	reg := &recorder.Registry{}
	a := recorder.New("MOVE_A", "", 8, recorder.WithRegistry(reg))
	b := recorder.New("TIMING_B", "", 8, recorder.WithRegistry(reg))

	recorder.Record(a, "a.go:1", "move")
	recorder.Record(b, "b.go:1", "timing")

	var buf bytes.Buffer
	n, err := Dump(reg, WithOutput(&buf), WithPattern("TIMING"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "TIMING_B")
	assert.NotContains(t, buf.String(), "MOVE_A")
}

func TestDumpFloatRoundTrip(t *testing.T) {
	reg := &recorder.Registry{}
	r := recorder.New("F", "", 8, recorder.WithRegistry(reg))

	recorder.Record(r, "f.go:1", "pi=%f e=%g", 3.1415, 2.71828)

	var buf bytes.Buffer
	_, err := Dump(reg, WithOutput(&buf))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "pi=3.141500")
	assert.Contains(t, buf.String(), "e=2.71828")
}

func TestDumpNullStringRendersSentinel(t *testing.T) {
	reg := &recorder.Registry{}
	r := recorder.New("S", "", 8, recorder.WithRegistry(reg))

	recorder.Record(r, "s.go:1", "val=%s", nil)

	var buf bytes.Buffer
	_, err := Dump(reg, WithOutput(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "val=<NULL>")
}

func TestDumpMultiSlotRecordRendersAllArgs(t *testing.T) {
	reg := &recorder.Registry{}
	r := recorder.New("MULTI", "", 8, recorder.WithRegistry(reg))

	recorder.Record(r, "m.go:1", "%d %d %d %d %d %d", 1, 2, 3, 4, 5, 6)

	var buf bytes.Buffer
	n, err := Dump(reg, WithOutput(&buf))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "1 2 3 4 5 6")
}

func TestDumpOverflowSkipsOldEntriesButContinues(t *testing.T) {
	reg := &recorder.Registry{}
	r := recorder.New("OVF", "", 4, recorder.WithRegistry(reg))

	for i := 0; i < 10; i++ {
		recorder.Record(r, "o.go:1", "n=%d", i)
	}

	var buf bytes.Buffer
	n, err := Dump(reg, WithOutput(&buf))
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.Greater(t, r.Overflow(), uint64(0))
}

func TestDumpWrapsSinkWriteFailure(t *testing.T) {
	reg := &recorder.Registry{}
	r := recorder.New("FAIL", "", 8, recorder.WithRegistry(reg))
	recorder.Record(r, "f.go:1", "n=%d", 1)

	underlying := errors.New("disk full")
	_, err := Dump(reg, WithShow(func(out io.Writer, line string) (int, error) {
		return 0, underlying
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkWriteFailed)
	assert.ErrorIs(t, err, underlying)
}

func extractOrders(t *testing.T, dump string) []int {
	t.Helper()
	var orders []int
	for _, line := range strings.Split(strings.TrimSpace(dump), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		n, err := strconv.Atoi(fields[0])
		require.NoError(t, err)
		orders = append(orders, n)
	}
	return orders
}
