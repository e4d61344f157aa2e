package recorder

import (
	"fmt"
	"sync/atomic"
)

// Registry is an intrusive, lock-free singly-linked list of recorders.
// It supports only append-once and full traversal, which is all a
// registry needs to serve the dump engine -- and, critically, both
// operations are safe to call from an async context, where a hash-table
// rebuild would not be.
type Registry struct {
	head atomic.Pointer[Recorder]
}

// global is the process-wide registry every Recorder not explicitly
// created against a private Registry joins on first write.
var global Registry

// Global returns the process-wide registry.
func Global() *Registry { return &global }

// register links r at the head of the registry via a compare-and-swap
// loop. Safe to call concurrently; called automatically on a recorder's
// first successful write. A no-op if r is already linked, so it is safe
// to call again after an earlier explicit Register.
func (reg *Registry) register(r *Recorder) {
	if !r.registered.CompareAndSwap(false, true) {
		return
	}
	for {
		head := reg.head.Load()
		r.next.Store(head)
		if reg.head.CompareAndSwap(head, r) {
			return
		}
	}
}

// Register eagerly links r into reg, returning an error wrapping
// ErrDuplicateRecorder if another recorder with the same name is
// already registered. Unlike the lazy self-registration a recorder's
// first write performs -- which never errors, since the record path
// never surfaces errors -- Register is for callers that want to declare
// a set of recorders up front and catch a name collision before any
// Record call happens.
func (reg *Registry) Register(r *Recorder) error {
	if existing := reg.Find(r.name); existing != nil && existing != r {
		return fmt.Errorf("recorder: register %q: %w", r.name, ErrDuplicateRecorder)
	}
	reg.register(r)
	return nil
}

// Each calls fn once for every registered recorder, in most-recently-
// registered-first order, stopping early if fn returns false.
func (reg *Registry) Each(fn func(*Recorder) bool) {
	for n := reg.head.Load(); n != nil; n = n.next.Load() {
		if !fn(n) {
			return
		}
	}
}

// Find returns the first registered recorder with the given exact name,
// iterating rather than hashing.
func (reg *Registry) Find(name string) *Recorder {
	var found *Recorder
	reg.Each(func(r *Recorder) bool {
		if r.name == name {
			found = r
			return false
		}
		return true
	})
	return found
}
