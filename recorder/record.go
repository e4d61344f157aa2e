package recorder

import (
	"sync/atomic"

	"github.com/flightrecorder/flightrecorder/monitoring"
)

// globalOrder is the process-wide, strictly monotonic order-token
// source. Every Record/RecordFast call takes exactly one token, giving a
// total order over all record calls across all recorders.
var globalOrder atomic.Uint64

// globalBlockHint advises producers that a dump is in progress. It is
// purely advisory -- producers are never required to consult it -- and
// exists so a host can, if it chooses, have its own hot paths skip
// recording while a dump is running.
var globalBlockHint atomic.Int32

// BlockHint reports the number of dumps currently in progress.
func BlockHint() int32 { return globalBlockHint.Load() }

// IncBlockHint and DecBlockHint are called by the dump engine around a
// traversal so a host's own hot paths may consult BlockHint.
func IncBlockHint() int32 { return globalBlockHint.Add(1) }
func DecBlockHint() int32 { return globalBlockHint.Add(-1) }

// NextOrder reserves and returns the next global order token.
func NextOrder() uint64 { return globalOrder.Add(1) - 1 }

// Record captures one event into r: it takes an order token, stamps the
// current time, and writes one or more ring entries (more than one only
// if len(args) exceeds four). On the recorder's very first successful
// write, it self-registers into the global registry.
func Record(r *Recorder, where, format string, args ...any) {
	record(r, where, format, args, true)
}

// RecordFast behaves like Record but omits the timestamp stamp to shave
// the cost of a clock read off the hot path. Order is still correct;
// only the per-entry Timestamp field is left zero.
func RecordFast(r *Recorder, where, format string, args ...any) {
	record(r, where, format, args, false)
}

func record(r *Recorder, where, format string, args []any, stamp bool) {
	order := NextOrder()
	var ts uint64
	if stamp {
		ts = r.clock.Now()
	}

	entries := buildEntries(format, where, order, ts, args)
	_, first := r.ring.Write(entries, r.writeBlock, r.commitBlock)
	monitoring.RecordCaptured(r.name)

	// The write index returned for a recorder's very first write is
	// always zero; subsequent writes skip registration entirely.
	if first == 0 {
		reg := r.registry
		if reg == nil {
			reg = Global()
		}
		reg.register(r)
	}
}

// buildEntries packs args into the minimum number of consecutive Entry
// values needed (4 args each), all sharing order and ts. Only the first
// entry carries the format pointer and caller location; the rest are
// marked as continuations.
func buildEntries(format, where string, order, ts uint64, args []any) []Entry {
	n := (len(args) + maxArgs - 1) / maxArgs
	if n == 0 {
		n = 1
	}

	entries := make([]Entry, n)
	fmtPtr := &format
	for i := range entries {
		e := &entries[i]
		e.Order = order
		e.Timestamp = ts
		if i == 0 {
			e.Format = fmtPtr
			e.Where = where
		} else {
			e.Continuation = true
		}

		lo := i * maxArgs
		hi := lo + maxArgs
		if hi > len(args) {
			hi = len(args)
		}
		for j, a := range args[lo:hi] {
			e.setArg(j, a)
		}
	}
	return entries
}
