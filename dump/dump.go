package dump

import (
	"fmt"
	"strings"
	"time"

	"github.com/flightrecorder/flightrecorder/monitoring"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// Dump renders every recorder in reg matching pattern (an empty pattern
// matches all) to the configured sink, in strict global order-token
// order. Repeatedly, each candidate recorder's front entry is compared
// to the next expected order token; an exact match is emitted and the
// token advances, a larger order is remembered as a fallback candidate,
// and a smaller order (left behind by an earlier commit-skip) is
// emitted immediately out of band rather than dropped.
//
// Dump returns the number of logical records emitted and the first
// error any Show call returned, if any; it does not retry failed writes.
func Dump(reg *recorder.Registry, opts ...Option) (int, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	emitted, err := dumpWith(reg, cfg)
	monitoring.ObserveDump(time.Since(start), emitted, err)
	return emitted, err
}

func dumpWith(reg *recorder.Registry, cfg *Config) (int, error) {
	recorder.IncBlockHint()
	defer recorder.DecBlockHint()

	format := cfg.effectiveFormat()
	var firstErr error
	emitted := 0

	emit := func(rec *recorder.Recorder, entries []recorder.Entry) {
		line := format(rec, cfg.Clock, entries)
		if _, err := cfg.Show(cfg.Output, line); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: %w", ErrSinkWriteFailed, err)
		}
		emitted++
	}

	matches := func(rec *recorder.Recorder) bool {
		return cfg.Pattern == "" || strings.Contains(rec.Name(), cfg.Pattern)
	}

	var recorders []*recorder.Recorder
	reg.Each(func(r *recorder.Recorder) bool {
		if matches(r) {
			recorders = append(recorders, r)
		}
		return true
	})

	nextOrder := uint64(0)
	for {
		progressed := false

		var lowestRec *recorder.Recorder
		lowestOrder := ^uint64(0)

		for _, rec := range recorders {
			for {
				e, ok := rec.Peek()
				if !ok {
					break
				}
				switch {
				case e.Order == nextOrder:
					if entries, ok := readGroup(rec, e.Order); ok {
						emit(rec, entries)
						nextOrder++
						progressed = true
						continue
					}
					// Intervening overflow raced the peek; retry
					// without advancing nextOrder.
					continue
				case e.Order < nextOrder:
					// Left behind by an earlier commit-skip: emit it rather than lose the data, out of
					// strict order.
					if entries, ok := readGroup(rec, e.Order); ok {
						emit(rec, entries)
						progressed = true
						continue
					}
					continue
				default:
					if e.Order < lowestOrder {
						lowestOrder = e.Order
						lowestRec = rec
					}
				}
				break
			}
		}

		if !progressed {
			if lowestRec == nil {
				break
			}
			if entries, ok := readGroup(lowestRec, lowestOrder); ok {
				emit(lowestRec, entries)
				nextOrder = lowestOrder + 1
				progressed = true
			}
		}

		if !progressed {
			break
		}
	}

	return emitted, firstErr
}

// readGroup reads the head entry (expected order) off rec plus any
// immediately-following continuation entries sharing the same order
// token. Continuations are always contiguous with their head because
// they were reserved by a single atomic multi-slot Write.
func readGroup(rec *recorder.Recorder, order uint64) ([]recorder.Entry, bool) {
	head, ok := rec.ReadOne()
	if !ok || head.Order != order {
		return nil, false
	}
	entries := []recorder.Entry{head}
	for {
		next, ok := rec.Peek()
		if !ok || !next.Continuation || next.Order != order {
			break
		}
		cont, ok := rec.ReadOne()
		if !ok {
			break
		}
		entries = append(entries, cont)
	}
	return entries, true
}
