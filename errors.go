package flightrecorder

import (
	"errors"

	"github.com/flightrecorder/flightrecorder/dump"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// ErrRecorderNotFound is returned by convenience lookups when no
// recorder with the requested name has registered yet.
var ErrRecorderNotFound = errors.New("flightrecorder: recorder not found")

// ErrInvalidCapacity is the sentinel New panics with when declared with
// a non-positive capacity. Aliased from recorder.ErrInvalidCapacity so a
// caller that only imports the root package can still test a recovered
// panic with errors.Is.
var ErrInvalidCapacity = recorder.ErrInvalidCapacity

// ErrDuplicateRecorder is returned by a Registry's Register method when
// a recorder with the same name is already registered.
var ErrDuplicateRecorder = recorder.ErrDuplicateRecorder

// ErrSinkWriteFailed wraps a Dump call's underlying sink write error.
var ErrSinkWriteFailed = dump.ErrSinkWriteFailed
