// Package signalhook installs dump-on-signal handlers: on receipt of a
// configured signal, it records a marker entry, runs a dump, restores
// the signal's default disposition, and re-raises it so the process
// still terminates (or continues) the way it would have without the
// hook installed.
//
// Go's signal delivery already runs the registered callback on an
// ordinary goroutine rather than inside the interrupted thread's signal
// frame (runtime/sigqueue hands the signal to a dedicated dispatcher
// goroutine before any user code sees it), so the strict async-signal-
// safety constraints of a POSIX C handler -- no heap allocation, no
// buffered I/O, no non-reentrant libc calls -- do not apply here in
// their original form. What carries over, and what this package
// preserves, is the spirit: the dump path itself stays lock-free and
// allocation-light, and the handler chain never blocks the dispatcher
// goroutine indefinitely.
package signalhook

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flightrecorder/flightrecorder/dump"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// Handle is a live signal installation; Stop removes it without
// otherwise disturbing the process.
type Handle struct {
	sig  os.Signal
	ch   chan os.Signal
	stop chan struct{}
	wg   sync.WaitGroup
}

// Stop uninstalls the handler and waits for its goroutine to exit.
func (h *Handle) Stop() {
	signal.Stop(h.ch)
	close(h.stop)
	h.wg.Wait()
}

// Install installs a dump-on-signal handler for sig. marker is the
// recorder a one-line notice is recorded into before the dump; reg is
// the registry dumped once the signal fires.
func Install(sig os.Signal, marker *recorder.Recorder, reg *recorder.Registry, opts ...dump.Option) *Handle {
	h := &Handle{
		sig:  sig,
		ch:   make(chan os.Signal, 1),
		stop: make(chan struct{}),
	}
	signal.Notify(h.ch, sig)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		select {
		case <-h.stop:
			return
		case <-h.ch:
			handle(sig, marker, reg, opts)
		}
	}()
	return h
}

func handle(sig os.Signal, marker *recorder.Recorder, reg *recorder.Registry, opts []dump.Option) {
	if marker != nil {
		recorder.RecordFast(marker, "signalhook", "Received signal %s, dumping recorder", sig.String())
	}

	dump.Dump(reg, opts...)

	// Restore default disposition and re-raise so the process still
	// terminates (or otherwise behaves) the way it would have without
	// this hook installed.
	signal.Reset(sig)
	if sysSig, ok := sig.(syscall.Signal); ok {
		_ = syscall.Kill(os.Getpid(), sysSig)
	}
}

// CommonSignals is the curated set of fatal and informational signals a
// flight recorder typically wants to dump on, mirroring the set the
// core specification enumerates: illegal instruction, abort, bus error,
// segmentation fault, bad syscall, CPU/file-size limit exceeded, the two
// user-defined signals, trace/breakpoint trap, and power failure.
var CommonSignals = []syscall.Signal{
	syscall.SIGILL,
	syscall.SIGABRT,
	syscall.SIGBUS,
	syscall.SIGSEGV,
	syscall.SIGSYS,
	syscall.SIGXCPU,
	syscall.SIGXFSZ,
	syscall.SIGUSR1,
	syscall.SIGUSR2,
	syscall.SIGTRAP,
	syscall.SIGPWR,
}

// Mask is a bitmask over CommonSignals, indexed by its position in that
// slice -- bit i corresponds to CommonSignals[i].
type Mask uint32

// InstallCommon installs handlers for CommonSignals, skipping every entry
// whose bit is set in remove. It takes no add mask: a signal outside
// CommonSignals is installed only by a separate Install call.
func InstallCommon(marker *recorder.Recorder, reg *recorder.Registry, remove Mask, opts ...dump.Option) []*Handle {
	var handles []*Handle
	for i, sig := range CommonSignals {
		if remove&(1<<uint(i)) != 0 {
			continue
		}
		handles = append(handles, Install(sig, marker, reg, opts...))
	}
	return handles
}

// StopAll stops every handle in handles.
func StopAll(handles []*Handle) {
	for _, h := range handles {
		h.Stop()
	}
}

// Name returns a human string for a syscall.Signal, falling back to its
// numeric form for anything not in CommonSignals.
func Name(sig syscall.Signal) string {
	for _, s := range CommonSignals {
		if s == sig {
			return s.String()
		}
	}
	return fmt.Sprintf("signal %d", int(sig))
}
