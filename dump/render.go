package dump

import (
	"fmt"
	"math"
	"strings"

	"github.com/flightrecorder/flightrecorder/clock"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// renderLine is the default FormatFunc. It scans the head entry's format
// string, substituting each '%' conversion with the corresponding
// argument word -- reinterpreted as a float via the bit-pattern re-pack
// trick when the conversion letter calls for one --
// and prefixes the result with the order token, timestamp and caller
// location.
func renderLine(rec *recorder.Recorder, clk *clock.Clock, entries []recorder.Entry) string {
	return renderLineWithTypes(rec, clk, entries, nil)
}

func renderLineWithTypes(rec *recorder.Recorder, clk *clock.Clock, entries []recorder.Entry, custom map[byte]CustomFormatter) string {
	head := entries[0]

	words, refs := flattenArgs(entries)
	msg := renderFormat(*head.Format, words, refs, custom, rec.Trace() != 0)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	sec, frac, digits := clk.SecondsFraction(head.Timestamp)
	return fmt.Sprintf("%d [%d.%0*d:%s] %s: %s", head.Order, sec, digits, frac, head.Where, rec.Name(), msg)
}

func flattenArgs(entries []recorder.Entry) ([]uint64, []any) {
	var words []uint64
	var refs []any
	for _, e := range entries {
		n := e.ArgCount()
		for i := 0; i < n; i++ {
			words = append(words, e.Words[i])
			refs = append(refs, e.Refs[i])
		}
	}
	return words, refs
}

// renderFormat scans format left to right: plain
// characters pass through; '%' introduces a conversion copied verbatim
// up to its letter. Floating conversions reinterpret the word as a
// float64; string conversions read the parallel ref slot and render a
// nil as the literal "<NULL>"; an unrecognized conversion letter stops
// rendering the entry (truncated, not aborted).
func renderFormat(format string, words []uint64, refs []any, custom map[byte]CustomFormatter, traceEnabled bool) string {
	var out strings.Builder
	argIdx := 0
	nextWord := func() uint64 {
		if argIdx >= len(words) {
			return 0
		}
		w := words[argIdx]
		return w
	}
	nextRef := func() any {
		if argIdx >= len(refs) {
			return nil
		}
		return refs[argIdx]
	}

	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			out.WriteByte(c)
			i++
			continue
		}

		start := i
		i++
		for i < len(format) && !isConversionLetter(format[i]) && custom[format[i]] == nil {
			i++
		}
		if i >= len(format) {
			out.WriteString(format[start:])
			break
		}
		conv := format[i]
		spec := format[start : i+1]
		i++

		if conv == '%' {
			out.WriteByte('%')
			continue
		}

		if fn, ok := custom[conv]; ok {
			out.WriteString(fn(nextWord(), nextRef(), traceEnabled))
			argIdx++
			continue
		}

		switch conv {
		case 'f', 'F', 'g', 'G', 'e', 'E':
			f := math.Float64frombits(nextWord())
			out.WriteString(fmt.Sprintf(spec, f))
			argIdx++
		case 'a', 'A':
			f := math.Float64frombits(nextWord())
			hexSpec := spec[:len(spec)-1] + map[byte]string{'a': "x", 'A': "X"}[conv]
			out.WriteString(fmt.Sprintf(hexSpec, f))
			argIdx++
		case 's', 'S':
			ref := nextRef()
			argIdx++
			if ref == nil {
				out.WriteString("<NULL>")
				continue
			}
			s, _ := ref.(string)
			out.WriteString(fmt.Sprintf(spec, s))
		case 'd', 'i':
			out.WriteString(fmt.Sprintf(spec, int64(nextWord())))
			argIdx++
		case 'u':
			uspec := spec[:len(spec)-1] + "d"
			out.WriteString(fmt.Sprintf(uspec, nextWord()))
			argIdx++
		case 'x', 'X', 'o':
			out.WriteString(fmt.Sprintf(spec, nextWord()))
			argIdx++
		case 'c':
			out.WriteString(string(rune(nextWord())))
			argIdx++
		case 'p':
			out.WriteString(fmt.Sprintf("0x%x", nextWord()))
			argIdx++
		default:
			// Format incompatibility: %n, %*, and any
			// other unsupported conversion terminates rendering of
			// this entry without aborting the dump.
			return out.String()
		}
	}
	return out.String()
}

func isConversionLetter(c byte) bool {
	switch c {
	case 'd', 'i', 'u', 'x', 'X', 'o', 'c', 's', 'S', 'p',
		'f', 'F', 'g', 'G', 'e', 'E', 'a', 'A', '%':
		return true
	default:
		return false
	}
}
