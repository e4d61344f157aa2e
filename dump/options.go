// Package dump implements the cross-recorder, order-token merge-sort
// dump engine: it walks a registry's recorders in lockstep, emitting
// entries in strict global order and rendering each through a
// deferred-printf-style formatter.
package dump

import (
	"io"
	"os"

	"github.com/flightrecorder/flightrecorder/clock"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// ShowFunc writes one already-rendered line to the configured output.
// It mirrors io.Writer's contract so a short write is reported rather
// than retried.
type ShowFunc func(out io.Writer, line string) (int, error)

// FormatFunc renders one logical record (its head entry plus any
// continuation entries) to a line of text.
type FormatFunc func(rec *recorder.Recorder, clk *clock.Clock, entries []recorder.Entry) string

// CustomFormatter implements a caller-registered single-letter format
// conversion (configure_type). traceEnabled mirrors the owning
// recorder's trace knob, so an unsafe dereference behind a custom
// conversion can be suppressed on a path that might be running from a
// signal handler after a crash.
type CustomFormatter func(word uint64, ref any, traceEnabled bool) string

// Config holds the dump engine's configurable behavior.
type Config struct {
	Output  io.Writer
	Show    ShowFunc
	Format  FormatFunc
	Pattern string
	Clock   *clock.Clock
	Types   map[byte]CustomFormatter
}

// Option configures a dump.
type Option func(*Config)

// WithOutput replaces the byte sink's underlying writer (configure_output).
func WithOutput(w io.Writer) Option {
	return func(c *Config) { c.Output = w }
}

// WithShow replaces the function that writes a rendered line
// (configure_show).
func WithShow(fn ShowFunc) Option {
	return func(c *Config) { c.Show = fn }
}

// WithFormat replaces the per-entry renderer (configure_format).
func WithFormat(fn FormatFunc) Option {
	return func(c *Config) { c.Format = fn }
}

// WithPattern restricts the dump to recorders whose name contains
// pattern as a substring (dump_for).
func WithPattern(pattern string) Option {
	return func(c *Config) { c.Pattern = pattern }
}

// WithClock overrides the clock used to render timestamps. Defaults to
// clock.Default; should match whatever clock the recorders being dumped
// were stamped with.
func WithClock(c *clock.Clock) Option {
	return func(cfg *Config) { cfg.Clock = c }
}

// WithCustomType registers a custom single-letter format conversion
// (configure_type).
func WithCustomType(letter byte, fn CustomFormatter) Option {
	return func(c *Config) {
		if c.Types == nil {
			c.Types = make(map[byte]CustomFormatter)
		}
		c.Types[letter] = fn
	}
}

func defaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Show:   defaultShow,
		Clock:  clock.Default,
	}
}

// effectiveFormat returns cfg.Format if the caller installed one via
// WithFormat, or the default renderer (aware of any WithCustomType
// registrations) otherwise.
func (c *Config) effectiveFormat() FormatFunc {
	if c.Format != nil {
		return c.Format
	}
	types := c.Types
	return func(rec *recorder.Recorder, clk *clock.Clock, entries []recorder.Entry) string {
		return renderLineWithTypes(rec, clk, entries, types)
	}
}

func defaultShow(out io.Writer, line string) (int, error) {
	return io.WriteString(out, line)
}
