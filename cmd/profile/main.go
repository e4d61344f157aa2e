// Package main profiles the flight recorder's hot record path under
// concurrent load.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/flightrecorder/flightrecorder/recorder"
)

const (
	producers     = 8
	perProducer   = 200_000
	ringCapacity  = 4096
	recorderCount = 1
)

func main() {
	f, err := os.Create("cpu.prof")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.StartCPUProfile(f); err != nil {
		panic(err)
	}
	defer pprof.StopCPUProfile()

	r := recorder.New("PROFILE", "profile workload", ringCapacity)

	start := time.Now()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				recorder.RecordFast(r, "profile.go:1", "producer %d event %d", id, i)
			}
		}(p)
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := producers * perProducer
	fmt.Printf("wrote %d records across %d producers in %v (%.0f records/sec)\n",
		total, producers, elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("overflow: %d\n", r.Overflow())
}
