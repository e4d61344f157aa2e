// Package flightrecorder is the always-on, lock-free, multi-producer
// tracing facility: declare a recorder once at file scope, call Record
// or RecordFast on the hot path, and dump every recorder's history in
// global order on demand -- from a debugger, an operator command, or a
// signal handler installed via the signalhook subpackage.
package flightrecorder

import (
	"io"
	"sync"

	"github.com/flightrecorder/flightrecorder/dump"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// New declares a recorder against the process-wide registry. It is not
// registered until its first successful write.
func New(name, description string, capacity int, opts ...recorder.Option) *recorder.Recorder {
	return recorder.New(name, description, capacity, opts...)
}

// Record captures one event into r, stamping the current time.
func Record(r *recorder.Recorder, where, format string, args ...any) {
	recorder.Record(r, where, format, args...)
}

// RecordFast behaves like Record but omits the timestamp stamp.
func RecordFast(r *recorder.Recorder, where, format string, args ...any) {
	recorder.RecordFast(r, where, format, args...)
}

// Find looks up a registered recorder by its exact name.
func Find(name string) *recorder.Recorder {
	return recorder.Global().Find(name)
}

// Lookup is Find plus ErrRecorderNotFound on a miss, for callers that
// want a plain error rather than a nil check.
func Lookup(name string) (*recorder.Recorder, error) {
	if r := Find(name); r != nil {
		return r, nil
	}
	return nil, ErrRecorderNotFound
}

// defaultDumpOpts holds the package-level dump configuration applied by
// Dump/DumpFor and mutated by the Configure* functions below. It mirrors
// the global mutable sink context a C library would keep behind
// configure_output/configure_show/configure_format/configure_type.
var (
	defaultDumpMu   sync.Mutex
	defaultDumpOpts []dump.Option
)

// Dump renders every registered recorder, in global order, to the
// currently configured sink (stderr by default).
func Dump() (int, error) {
	return DumpFor("")
}

// DumpFor renders only recorders whose name contains pattern.
func DumpFor(pattern string) (int, error) {
	defaultDumpMu.Lock()
	opts := append([]dump.Option{dump.WithPattern(pattern)}, defaultDumpOpts...)
	defaultDumpMu.Unlock()
	return dump.Dump(recorder.Global(), opts...)
}

// ConfigureOutput replaces the underlying writer Dump/DumpFor write
// rendered lines to.
func ConfigureOutput(w io.Writer) {
	setDefaultOpt(dump.WithOutput(w))
}

// ConfigureShow replaces the function that writes one already-rendered
// line to the configured output.
func ConfigureShow(fn dump.ShowFunc) {
	setDefaultOpt(dump.WithShow(fn))
}

// ConfigureFormat replaces the per-entry renderer.
func ConfigureFormat(fn dump.FormatFunc) {
	setDefaultOpt(dump.WithFormat(fn))
}

// ConfigureType registers a custom single-letter format conversion.
func ConfigureType(letter byte, fn dump.CustomFormatter) {
	setDefaultOpt(dump.WithCustomType(letter, fn))
}

func setDefaultOpt(opt dump.Option) {
	defaultDumpMu.Lock()
	defer defaultDumpMu.Unlock()
	defaultDumpOpts = append(defaultDumpOpts, opt)
}
