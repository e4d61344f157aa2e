// Package ring implements a lock-free, multi-producer, variable-length
// circular buffer with overflow accounting and pluggable block policies.
//
// A Ring owns four atomic cursors -- reader, writer, commit and overflow --
// compared as unsigned deltas so they may wrap indefinitely without ever
// being reset. The invariant reader <= commit <= writer always holds;
// entries in [reader, commit) are stable and safe to read, entries in
// [commit, writer) are reserved but not yet guaranteed populated.
package ring

import "sync/atomic"

// BlockCallback is consulted when a ring operation would otherwise stall.
// It receives the ring and the index range the caller is waiting on and
// returns true if the caller should retry (the callback itself waited, or
// will), or false if the caller should give up and truncate.
type BlockCallback[T any] func(r *Ring[T], lo, hi uint64) bool

// OverflowCallback is consulted on the read path when the writer has
// lapped the reader. Returning false instructs Read to advance the
// cursor past the skipped entries and account for them; returning true
// tells Read the callback already handled the situation and it should
// re-snapshot without skipping.
type OverflowCallback[T any] func(r *Ring[T], skipped uint64) bool

// Ring is a fixed-capacity, variable-length, multi-producer circular
// buffer of T. The zero value is not usable; construct with New.
type Ring[T any] struct {
	buf  []T
	size uint64

	reader   atomic.Uint64
	writer   atomic.Uint64
	commit   atomic.Uint64
	overflow atomic.Uint64
}

// New allocates a ring with room for size elements. size need not be a
// power of two, but performance is best when it is.
func New[T any](size int) *Ring[T] {
	if size <= 0 {
		panic("ring: size must be positive")
	}
	return &Ring[T]{
		buf:  make([]T, size),
		size: uint64(size),
	}
}

// Cap returns the ring's capacity in elements.
func (r *Ring[T]) Cap() int { return int(r.size) }

// Overflow returns the total number of entries ever skipped by a reader
// lapped by the writer.
func (r *Ring[T]) Overflow() uint64 { return r.overflow.Load() }

// ReaderCursor returns the ring's own reader cursor, for use as the
// cursor argument to Read/Peek by a consumer that wants the ring's
// shared position rather than a private one.
func (r *Ring[T]) ReaderCursor() *atomic.Uint64 { return &r.reader }

// Readable returns the number of entries available to a reader whose
// cursor currently sits at readerHint.
func (r *Ring[T]) Readable(readerHint uint64) uint64 {
	c := r.commit.Load()
	delta := c - readerHint
	if int64(delta) < 0 {
		return 0
	}
	if delta > r.size {
		return r.size
	}
	return delta
}

// Writable returns the number of slots a producer may currently reserve
// without stalling, always reserving one slot so full and empty remain
// distinguishable.
func (r *Ring[T]) Writable() uint64 {
	w := r.writer.Load()
	rd := r.reader.Load()
	inFlight := w - rd
	if inFlight+1 >= r.size {
		return 0
	}
	return r.size - inFlight - 1
}

// Peek returns a pointer to the next unread entry without consuming it.
// If the writer has lapped the reader, Peek first advances the reader
// past the skipped entries and records the skip in Overflow.
func (r *Ring[T]) Peek() (*T, bool) {
	for {
		rd := r.reader.Load()
		c := r.commit.Load()
		avail := c - rd
		if int64(avail) <= 0 {
			return nil, false
		}
		if avail >= r.size {
			skip := avail - r.size + 1
			newRd := c - r.size + 1
			if r.reader.CompareAndSwap(rd, newRd) {
				r.overflow.Add(skip)
				continue
			}
			continue
		}
		idx := rd % r.size
		return &r.buf[idx], true
	}
}

// Read copies up to len(dst) entries into dst, advancing cursor (the
// ring's own reader if cursor is nil). block is consulted when demand
// exceeds what is committed; overflowCB is consulted when the writer has
// lapped cursor. Returns the number of entries actually copied.
func (r *Ring[T]) Read(dst []T, cursor *atomic.Uint64, block BlockCallback[T], overflowCB OverflowCallback[T]) int {
	if cursor == nil {
		cursor = &r.reader
	}
	want := uint64(len(dst))
	if want == 0 {
		return 0
	}

	for {
		rd := cursor.Load()
		w := r.writer.Load()
		c := r.commit.Load()

		if lapped := w - rd; lapped >= r.size && lapped != 0 {
			proceed := false
			if overflowCB != nil {
				proceed = overflowCB(r, lapped-r.size+1)
			}
			if !proceed {
				newRd := w - r.size + 1
				if cursor.CompareAndSwap(rd, newRd) {
					r.overflow.Add(lapped - r.size + 1)
				}
			}
			continue
		}

		avail := c - rd
		if int64(avail) <= 0 {
			return 0
		}

		n := want
		if n > avail {
			if block != nil && block(r, rd, rd+n) {
				continue
			}
			n = avail
		}
		if n == 0 {
			return 0
		}

		copyFromRing(r.buf, r.size, rd, dst[:n])
		if cursor.CompareAndSwap(rd, rd+n) {
			return int(n)
		}
		// Lost the race to another reader sharing this cursor; retry.
	}
}

// Write reserves len(src) slots, copies src into them and advances
// commit. A non-nil block is consulted if the reservation would leave no
// free slot ahead of the reader (one slot always stays free, as in
// Writable); if it declines, the write is truncated to the free slots.
// With a nil block the reservation always proceeds, overwriting the
// oldest unread entries, which a later Peek or Read accounts for in
// Overflow; a write longer than the ring is then cut to the ring's size.
// commitBlock is consulted if an earlier producer has reserved
// but not yet committed its own region. Returns the number of entries
// written and the index of the first written slot (0 for the very first
// write ever made into a fresh ring, which callers use to detect
// first-use registration).
func (r *Ring[T]) Write(src []T, block BlockCallback[T], commitBlock BlockCallback[T]) (int, uint64) {
	count := uint64(len(src))
	if count == 0 {
		return 0, r.writer.Load()
	}

	var wFirst uint64
	for {
		w := r.writer.Load()
		rd := r.reader.Load()

		if block != nil && w+count-rd >= r.size {
			if block(r, w, w+count) {
				continue
			}
			avail := r.size - 1 + rd - w
			if int64(avail) <= 0 {
				return 0, w
			}
			count = avail
			src = src[:count]
			continue
		}
		if count > r.size {
			count = r.size
			src = src[:count]
		}

		if r.writer.CompareAndSwap(w, w+count) {
			wFirst = w
			break
		}
	}

	copyIntoRing(r.buf, r.size, wFirst, src)

	for {
		c := r.commit.Load()
		if c == wFirst {
			if r.commit.CompareAndSwap(c, wFirst+count) {
				return int(count), wFirst
			}
			continue
		}

		proceed := false
		if commitBlock != nil {
			proceed = commitBlock(r, c, wFirst)
		}
		if proceed {
			continue
		}
		// Earlier producer stalled and commitBlock declined to wait:
		// skip forward. The stalled region becomes observable with
		// whatever payload its producer has copied so far.
		r.commit.Add(count)
		return int(count), wFirst
	}
}

func copyFromRing[T any](buf []T, size, start uint64, dst []T) {
	n := len(dst)
	startIdx := int(start % size)
	first := int(size) - startIdx
	if first > n {
		first = n
	}
	copy(dst[:first], buf[startIdx:startIdx+first])
	if rest := n - first; rest > 0 {
		copy(dst[first:], buf[:rest])
	}
}

func copyIntoRing[T any](buf []T, size, start uint64, src []T) {
	n := len(src)
	startIdx := int(start % size)
	first := int(size) - startIdx
	if first > n {
		first = n
	}
	copy(buf[startIdx:startIdx+first], src[:first])
	if rest := n - first; rest > 0 {
		copy(buf[:rest], src[first:])
	}
}
