package recorder

import "errors"

// ErrInvalidCapacity is the sentinel New panics with when declared with
// a non-positive capacity.
var ErrInvalidCapacity = errors.New("recorder: capacity must be positive")

// ErrDuplicateRecorder is returned by Registry.Register when a recorder
// with the same name is already registered.
var ErrDuplicateRecorder = errors.New("recorder: duplicate recorder name")
