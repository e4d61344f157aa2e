//go:build integration
// +build integration

package integration

import (
	"bytes"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flightrecorder/flightrecorder/dump"
	"github.com/flightrecorder/flightrecorder/recorder"
	"github.com/flightrecorder/flightrecorder/ring"
)

func BenchmarkRecordFast(b *testing.B) {
	r := recorder.New("BENCH_RECORD", "benchmark", 16384)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		recorder.RecordFast(r, "performance_test.go:1", "benchmark event %d", i)
	}
}

func BenchmarkRing(b *testing.B) {
	rb := ring.New[recorder.Entry](10000)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rb.Write([]recorder.Entry{{}}, nil, nil)
		}
	})
}

func TestThroughputAbove50000RecordsPerSecond(t *testing.T) {
	reg := &recorder.Registry{}
	r := recorder.New("THROUGHPUT", "integration", 65536, recorder.WithRegistry(reg))

	const (
		duration   = 1 * time.Second
		numWorkers = 10
	)

	var (
		recordCount int64
		wg          sync.WaitGroup
	)

	start := time.Now()
	deadline := start.Add(duration)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for time.Now().Before(deadline) {
				recorder.RecordFast(r, "performance_test.go:2", "worker %d seq %d", workerID, atomic.AddInt64(&recordCount, 1))
			}
		}(w)
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := atomic.LoadInt64(&recordCount)
	recordsPerSecond := float64(total) / elapsed.Seconds()

	t.Logf("Results:")
	t.Logf("  Total records: %d", total)
	t.Logf("  Duration: %v", elapsed)
	t.Logf("  Overflow: %d", r.Overflow())
	t.Logf("  Throughput: %.0f records/second", recordsPerSecond)

	require.Greater(t, recordsPerSecond, 50000.0, "Should achieve >50000 records/sec (allowing for test overhead)")

	// Readable() alone only reports the ring's current readable depth;
	// overflow is only accounted for on the read path (ring.Ring.Peek /
	// Read), so drain the ring before checking that every write is
	// accounted for by drained entries plus skipped ones.
	var drained uint64
	for {
		_, ok := r.ReadOne()
		if !ok {
			break
		}
		drained++
	}
	require.Equal(t, uint64(total), drained+r.Overflow(), "drained + overflow must account for every write")
}

func TestConcurrentWritesAcrossRecorders(t *testing.T) {
	reg := &recorder.Registry{}

	const (
		numRecorders        = 4
		numGoroutines       = 25
		recordsPerGoroutine = 100
	)

	recs := make([]*recorder.Recorder, numRecorders)
	for i := range recs {
		recs[i] = recorder.New("CONCURRENT", "integration", 8192, recorder.WithRegistry(reg))
	}

	var wg sync.WaitGroup
	for _, r := range recs {
		for g := 0; g < numGoroutines; g++ {
			wg.Add(1)
			go func(r *recorder.Recorder, id int) {
				defer wg.Done()
				for i := 0; i < recordsPerGoroutine; i++ {
					recorder.Record(r, "performance_test.go:3", "goroutine %d record %d", id, i)
				}
			}(r, g)
		}
	}
	wg.Wait()

	var buf bytes.Buffer
	n, err := dump.Dump(reg, dump.WithOutput(&buf))
	require.NoError(t, err)
	require.Equal(t, numRecorders*numGoroutines*recordsPerGoroutine, n)
}

func TestMemoryEfficiency(t *testing.T) {
	r := recorder.New("MEMORY", "integration", 4096)

	var m1 runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m1)

	const numRecords = 10000
	for i := 0; i < numRecords; i++ {
		recorder.RecordFast(r, "performance_test.go:4", "payload %d %d %d %d", i, i*2, i*3, i*4)
	}

	runtime.GC()
	var m2 runtime.MemStats
	runtime.ReadMemStats(&m2)

	memoryGrowth := m2.Alloc - m1.Alloc
	t.Logf("Memory usage:")
	t.Logf("  Initial: %d KB", m1.Alloc/1024)
	t.Logf("  Final: %d KB", m2.Alloc/1024)
	t.Logf("  Growth: %d KB", memoryGrowth/1024)

	require.Less(t, memoryGrowth, uint64(r.Capacity())*4096, "a fixed-capacity ring should not grow with record count")
}
