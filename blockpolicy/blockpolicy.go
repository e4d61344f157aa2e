// Package blockpolicy provides ring.BlockCallback implementations for the
// stall points a Write or Read call can hit: a full ring (the writer has
// lapped the reader) or a slow committer (an earlier reservation hasn't
// landed yet). Each policy trades a different kind of latency for data
// loss; callers pick one per recorder via recorder.WithWriteBlock /
// recorder.WithCommitBlock.
package blockpolicy

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/flightrecorder/flightrecorder/monitoring"
	"github.com/flightrecorder/flightrecorder/ring"
)

// Spin busy-waits, retrying immediately forever. It never gives up, so it
// never truncates a write -- appropriate only when the caller is certain
// the stall is transient (a concurrent writer mid-commit), never when it
// might be a genuinely full ring with no reader draining it.
func Spin[T any]() ring.BlockCallback[T] {
	return func(_ *ring.Ring[T], _, _ uint64) bool {
		return true
	}
}

// YieldBackoff retries with exponentially increasing sleeps up to max,
// giving up (truncating the caller's write) once the next wait would
// exceed max. Modeled on RetryPolicy.calculateDelay's exponential-backoff
// shape, adapted here to a bounded bool decision a ring stall callback
// can return rather than a counted attempt loop -- the attempt count
// lives in the returned closure's state, since the ring calls back into
// the same callback value on every retry of one stalled operation.
func YieldBackoff[T any](max time.Duration) ring.BlockCallback[T] {
	var attempt atomic.Int32
	return func(_ *ring.Ring[T], _, _ uint64) bool {
		n := attempt.Add(1) - 1
		delay := time.Microsecond << n
		if delay <= 0 || delay >= max {
			attempt.Store(0)
			return false
		}
		time.Sleep(delay)
		return true
	}
}

// CircuitBreaker trips after consecutive stalls exceed threshold and
// refuses to wait (causing the caller to truncate/skip) until resetAfter
// has elapsed since the trip, at which point it allows one probing retry.
// It exists so a pathologically slow committer or a permanently full,
// undrained ring degrades a recorder's writers to "skip silently" instead
// of hanging them indefinitely.
type CircuitBreaker[T any] struct {
	name       string
	threshold  int32
	resetAfter time.Duration

	consecutive atomic.Int32
	trippedAt   atomic.Int64 // unix nanos; 0 == not tripped
}

// NewCircuitBreaker constructs a tripping block policy labeled name (used
// only to tag the monitoring.BlockPolicyTrips counter). threshold is the
// number of consecutive stalls before it opens; resetAfter is how long it
// stays open before allowing a single probe retry.
func NewCircuitBreaker[T any](name string, threshold int32, resetAfter time.Duration) *CircuitBreaker[T] {
	if threshold <= 0 {
		threshold = 8
	}
	if resetAfter <= 0 {
		resetAfter = time.Second
	}
	return &CircuitBreaker[T]{name: name, threshold: threshold, resetAfter: resetAfter}
}

// Callback returns the ring.BlockCallback backed by this breaker.
func (cb *CircuitBreaker[T]) Callback() ring.BlockCallback[T] {
	return cb.decide
}

func (cb *CircuitBreaker[T]) decide(_ *ring.Ring[T], _, _ uint64) bool {
	if trippedAt := cb.trippedAt.Load(); trippedAt != 0 {
		if time.Since(time.Unix(0, trippedAt)) < cb.resetAfter {
			return false
		}
		// Allow one probe: reset the trip and let this call retry.
		cb.trippedAt.Store(0)
		cb.consecutive.Store(0)
		return true
	}

	n := cb.consecutive.Add(1)
	if n >= cb.threshold {
		if cb.trippedAt.CompareAndSwap(0, time.Now().UnixNano()) {
			monitoring.RecordBlockPolicyTrip(cb.name)
		}
		return false
	}
	// Jittered micro-sleep avoids every stalled producer retrying in
	// lockstep.
	time.Sleep(time.Duration(rand.Int63n(int64(time.Microsecond) + 1)))
	return true
}

// Reset clears the breaker back to its closed state.
func (cb *CircuitBreaker[T]) Reset() {
	cb.consecutive.Store(0)
	cb.trippedAt.Store(0)
}

// Tripped reports whether the breaker is currently open.
func (cb *CircuitBreaker[T]) Tripped() bool {
	return cb.trippedAt.Load() != 0
}
