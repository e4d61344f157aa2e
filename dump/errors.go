package dump

import "errors"

// ErrSinkWriteFailed wraps the underlying error returned by a Dump
// call's Show function, so a caller can distinguish a sink failure from
// other error causes with errors.Is without inspecting error text.
var ErrSinkWriteFailed = errors.New("dump: sink write failed")
