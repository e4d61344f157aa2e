// Package recorder implements named, fixed-capacity rings of event
// entries, the process-wide registry that links them, and the capture
// path that stamps and stores one entry per Record call.
package recorder

import (
	"fmt"
	"sync/atomic"

	"github.com/flightrecorder/flightrecorder/clock"
	"github.com/flightrecorder/flightrecorder/ring"
)

// Recorder is a named, fixed-capacity circular buffer of event entries
// plus its registry back-link. Declared once, it lives for the process
// lifetime and is never destroyed.
type Recorder struct {
	name        string
	description string
	trace       atomic.Int32
	ring        *ring.Ring[Entry]
	clock       *clock.Clock

	writeBlock  ring.BlockCallback[Entry]
	commitBlock ring.BlockCallback[Entry]

	registry   *Registry
	next       atomic.Pointer[Recorder]
	registered atomic.Bool
}

// Option configures a Recorder at declaration time.
type Option func(*Recorder)

// WithTrace sets the recorder's initial trace-enablement knob. The knob
// is otherwise opaque to the core: it exists so a caller can gate
// higher-level "also emit live" behavior outside the record path.
func WithTrace(v int32) Option {
	return func(r *Recorder) { r.trace.Store(v) }
}

// WithClock overrides the tick source used to stamp non-fast records.
// Defaults to clock.Default.
func WithClock(c *clock.Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

// WithWriteBlock installs the block callback consulted when a Record
// call's reservation would overrun the ring's reader.
func WithWriteBlock(cb ring.BlockCallback[Entry]) Option {
	return func(r *Recorder) { r.writeBlock = cb }
}

// WithCommitBlock installs the block callback consulted when an earlier
// producer has reserved but not yet committed its region of the ring.
func WithCommitBlock(cb ring.BlockCallback[Entry]) Option {
	return func(r *Recorder) { r.commitBlock = cb }
}

// WithRegistry joins the recorder into reg instead of the process-wide
// global registry on first write. Primarily useful for isolating a dump
// in tests; production code declares recorders with the default.
func WithRegistry(reg *Registry) Option {
	return func(r *Recorder) { r.registry = reg }
}

// New declares a recorder with the given name, capacity (in entries) and
// description. It is not registered until its first successful write.
// Panics with an error wrapping ErrInvalidCapacity if capacity is not
// positive.
func New(name, description string, capacity int, opts ...Option) *Recorder {
	if capacity <= 0 {
		panic(fmt.Errorf("recorder: declare %q: %w", name, ErrInvalidCapacity))
	}
	r := &Recorder{
		name:        name,
		description: description,
		ring:        ring.New[Entry](capacity),
		clock:       clock.Default,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the recorder's declared name.
func (r *Recorder) Name() string { return r.name }

// Description returns the recorder's declared description.
func (r *Recorder) Description() string { return r.description }

// Trace returns the current value of the trace-enablement knob.
func (r *Recorder) Trace() int32 { return r.trace.Load() }

// SetTrace atomically updates the trace-enablement knob from any thread.
func (r *Recorder) SetTrace(v int32) { r.trace.Store(v) }

// Capacity returns the recorder's ring capacity in entries.
func (r *Recorder) Capacity() int { return r.ring.Cap() }

// Overflow returns the number of entries ever skipped by a reader lapped
// by this recorder's writers.
func (r *Recorder) Overflow() uint64 { return r.ring.Overflow() }

// Readable reports how many entries are currently available to read.
func (r *Recorder) Readable() uint64 { return r.ring.Readable(r.ring.ReaderCursor().Load()) }

// Peek returns the next unread entry without consuming it.
func (r *Recorder) Peek() (*Entry, bool) { return r.ring.Peek() }

// ReadOne consumes and returns exactly one entry, or false if none was
// available (including the case where an intervening overflow left
// nothing readable this attempt -- callers should retry).
func (r *Recorder) ReadOne() (Entry, bool) {
	var dst [1]Entry
	n := r.ring.Read(dst[:], nil, nil, nil)
	if n == 0 {
		return Entry{}, false
	}
	return dst[0], true
}
