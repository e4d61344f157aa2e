package recorder

import (
	"fmt"
	"math"
	"reflect"
)

// Kind tags how an argument word was captured, so the dump renderer can
// recover a typed value from the raw word without runtime reflection.
type Kind uint8

const (
	// KindNone marks an unused argument slot.
	KindNone Kind = iota
	// KindInt holds a sign-extended signed integer.
	KindInt
	// KindUint holds a zero-extended unsigned integer or a pointer
	// reinterpreted as a word.
	KindUint
	// KindFloat holds a float64 bit pattern. Float32 arguments are
	// promoted to float64 at capture time, matching the automatic
	// float-to-double promotion C applies to variadic float arguments --
	// on a host where the native word is 8 bytes there is never a
	// genuine 4-byte float slot.
	KindFloat
	// KindString holds a reference-typed value, stored out-of-band in
	// Entry.Refs because a Go string header cannot be losslessly
	// round-tripped through a single machine word.
	KindString
)

// maxArgs is the number of argument slots a single ring entry carries.
// Calls with more arguments span consecutive ring slots.
const maxArgs = 4

// Entry is one traced event: a format string pointer, a global order
// token, a timestamp, a caller location, and up to four word-sized
// argument slots. Entries with more than four arguments span multiple
// consecutive Entry values sharing the same Order and Timestamp; only
// the first of such a group carries Format and Where, and the rest set
// Continuation.
type Entry struct {
	Format       *string
	Where        string
	Order        uint64
	Timestamp    uint64
	Continuation bool

	Kinds [maxArgs]Kind
	Words [maxArgs]uint64
	Refs  [maxArgs]any
}

// setInt captures a signed integer argument, sign-extended to 64 bits.
func (e *Entry) setInt(i int, v int64) {
	e.Kinds[i] = KindInt
	e.Words[i] = uint64(v)
}

// setUint captures an unsigned integer or pointer argument, zero-extended
// to 64 bits.
func (e *Entry) setUint(i int, v uint64) {
	e.Kinds[i] = KindUint
	e.Words[i] = v
}

// setFloat captures a floating-point argument, promoted to float64 and
// bitwise re-packed into the word slot so the renderer can hand it back
// to the platform formatter as a floating-point value rather than an
// integer (the "float re-pack trick" ).
func (e *Entry) setFloat(i int, v float64) {
	e.Kinds[i] = KindFloat
	e.Words[i] = math.Float64bits(v)
}

// setString captures a string argument by reference; its backing storage
// must outlive any possible dump.
func (e *Entry) setString(i int, v string) {
	e.Kinds[i] = KindString
	e.Refs[i] = v
}

// ArgCount returns how many of the entry's four slots are populated.
func (e *Entry) ArgCount() int {
	for i := maxArgs - 1; i >= 0; i-- {
		if e.Kinds[i] != KindNone {
			return i + 1
		}
	}
	return 0
}

// setArg captures an arbitrary argument value into slot i, dispatching on
// its dynamic type. Unrecognized types fall back to their fmt string
// form, stored as KindString -- this never happens for the well-known
// numeric/pointer/string kinds the public Record API documents.
func (e *Entry) setArg(i int, v any) {
	switch val := v.(type) {
	case nil:
		e.Kinds[i] = KindString
		e.Refs[i] = nil
	case int:
		e.setInt(i, int64(val))
	case int8:
		e.setInt(i, int64(val))
	case int16:
		e.setInt(i, int64(val))
	case int32:
		e.setInt(i, int64(val))
	case int64:
		e.setInt(i, val)
	case uint:
		e.setUint(i, uint64(val))
	case uint8:
		e.setUint(i, uint64(val))
	case uint16:
		e.setUint(i, uint64(val))
	case uint32:
		e.setUint(i, uint64(val))
	case uint64:
		e.setUint(i, val)
	case uintptr:
		e.setUint(i, uint64(val))
	case float32:
		e.setFloat(i, float64(val))
	case float64:
		e.setFloat(i, val)
	case string:
		e.setString(i, val)
	default:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Pointer || rv.Kind() == reflect.UnsafePointer {
			e.setUint(i, uint64(rv.Pointer()))
			return
		}
		e.setString(i, fmt.Sprintf("%v", val))
	}
}
