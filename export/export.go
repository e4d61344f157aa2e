// Package export implements the exposed-hook surface a visualization
// collaborator reads from: named value channels backed by a small ring
// of (timestamp, value) samples, grouped into a region whose binary
// layout mirrors a shared-memory file a separate process could map. The
// core recorder/dump packages never import this package; it consumes
// their public API the way any other external collaborator would.
package export

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// RingSize is the fixed sample capacity of every channel's ring, named
// for the RECORDER_EXPORT_SIZE constant of the layout it implements.
const RingSize = 256

// Magic64 distinguishes a 64-bit region layout from a 32-bit one; this
// build only ever writes the 64-bit variant.
const Magic64 uint32 = 0x52454336 // "REC6"

// Version identifies the region encoding's wire format.
var Version = [3]uint16{1, 0, 0}

// Type tags the semantic meaning of a channel's value words.
type Type uint8

const (
	// TypeNone marks a channel that has never been configured.
	TypeNone Type = iota
	// TypeInvalid marks a channel whose producer reported a failure.
	TypeInvalid
	// TypeSigned holds sign-extended signed integers.
	TypeSigned
	// TypeUnsigned holds zero-extended unsigned integers.
	TypeUnsigned
	// TypeReal holds float64 bit patterns.
	TypeReal
)

// Sample is one (timestamp, value) pair pushed into a channel.
type Sample struct {
	Timestamp uint64
	Value     uint64
}

// Channel is a single named export stream: a small lock-free ring of the
// most recent samples plus the descriptive metadata a visualization
// collaborator displays alongside it.
type Channel struct {
	ID          uuid.UUID
	Name        string
	Description string
	Unit        string
	Min         float64
	Max         float64
	Type        Type

	write   atomic.Uint64
	samples [RingSize]Sample
}

// NewChannel declares a channel. It starts with TypeNone until the first
// PushSigned/PushUnsigned/PushReal call establishes its type.
func NewChannel(name, description, unit string, min, max float64) *Channel {
	return &Channel{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Unit:        unit,
		Min:         min,
		Max:         max,
	}
}

// PushSigned records a signed sample at timestamp ts.
func (c *Channel) PushSigned(ts uint64, v int64) { c.push(ts, uint64(v), TypeSigned) }

// PushUnsigned records an unsigned sample at timestamp ts.
func (c *Channel) PushUnsigned(ts uint64, v uint64) { c.push(ts, v, TypeUnsigned) }

// PushReal records a floating-point sample at timestamp ts, re-packed
// into the word slot the same way a ring entry's float argument is
// (export.go, recorder/entry.go).
func (c *Channel) PushReal(ts uint64, v float64) { c.push(ts, math.Float64bits(v), TypeReal) }

// Invalidate marks the channel's next sample as a producer-side failure.
func (c *Channel) Invalidate(ts uint64) { c.push(ts, 0, TypeInvalid) }

func (c *Channel) push(ts, word uint64, typ Type) {
	idx := c.write.Add(1) - 1
	slot := &c.samples[idx%RingSize]
	slot.Timestamp = ts
	slot.Value = word
	// Type is set last-writer-wins; concurrent producers of the same
	// channel are expected to agree on its type.
	c.Type = typ
}

// Subscriber reads samples out of a channel without disturbing its ring.
type Subscriber interface {
	// Read returns every sample currently held, oldest first, and the
	// write cursor it was read at.
	Read() ([]Sample, uint64)
}

// subscriber is the default Subscriber: a snapshot reader over a single
// Channel.
type subscriber struct {
	ch *Channel
}

// NewSubscriber returns a Subscriber over ch.
func NewSubscriber(ch *Channel) Subscriber { return &subscriber{ch: ch} }

func (s *subscriber) Read() ([]Sample, uint64) {
	cursor := s.ch.write.Load()
	n := cursor
	if n > RingSize {
		n = RingSize
	}
	out := make([]Sample, 0, n)
	start := cursor - n
	for i := start; i < cursor; i++ {
		out = append(out, s.ch.samples[i%RingSize])
	}
	return out, cursor
}

// Hub owns a named set of channels, up to MaxChannelsPerOwner each, and
// is what a recorder's owner (not the recorder itself -- core stays
// unaware of export entirely) registers channels into.
type Hub struct {
	mu       sync.RWMutex
	channels []*Channel
}

// MaxChannelsPerOwner bounds how many channels a single owner may
// register, mirroring the "4 optional export channel handles" a
// recorder's declaration is allowed in the layout this package mirrors.
const MaxChannelsPerOwner = 4

// NewHub constructs an empty hub.
func NewHub() *Hub { return &Hub{} }

// Register adds ch to the hub. It is the caller's responsibility to
// respect MaxChannelsPerOwner per logical owner; Hub itself just tracks
// every channel handed to it.
func (h *Hub) Register(ch *Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels = append(h.channels, ch)
}

// Find returns the first registered channel with the given name.
func (h *Hub) Find(name string) *Channel {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

// Each calls fn once per registered channel.
func (h *Hub) Each(fn func(*Channel)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.channels {
		fn(ch)
	}
}

// Configure applies a "name=value" command-channel tweak: it looks up
// the named channel and, if found, pushes value as a real sample at
// timestamp 0, matching the informal "config command channel" the
// visualization collaborator is documented to push through.
func (h *Hub) Configure(name string, value float64) error {
	ch := h.Find(name)
	if ch == nil {
		return fmt.Errorf("export: no channel named %q", name)
	}
	ch.PushReal(0, value)
	return nil
}

// Encode serializes the region layout -- magic, version, and one
// descriptor per channel with its full sample ring -- into a
// self-contained byte slice a separate process could map read-only.
// Encode always emits the 64-bit layout (Magic64).
func (h *Hub) Encode() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf := make([]byte, 0, 4096)
	var scratch [8]byte

	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:4], v)
		buf = append(buf, scratch[:4]...)
	}
	putU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(scratch[:2], v)
		buf = append(buf, scratch[:2]...)
	}
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(scratch[:8], v)
		buf = append(buf, scratch[:8]...)
	}
	putString := func(s string) {
		putU32(uint32(len(s)))
		buf = append(buf, s...)
	}

	putU32(Magic64)
	putU16(Version[0])
	putU16(Version[1])
	putU16(Version[2])
	putU32(uint32(len(h.channels)))

	for _, ch := range h.channels {
		buf = append(buf, ch.ID[:]...)
		putString(ch.Name)
		putString(ch.Description)
		putString(ch.Unit)
		putU64(math.Float64bits(ch.Min))
		putU64(math.Float64bits(ch.Max))
		putU32(uint32(ch.Type))

		samples, cursor := NewSubscriber(ch).Read()
		putU64(cursor)
		putU32(uint32(len(samples)))
		for _, s := range samples {
			putU64(s.Timestamp)
			putU64(s.Value)
		}
	}

	cksum := NewChecksum(XXHash).Calculate(buf)
	putU64(cksum)
	return buf
}
