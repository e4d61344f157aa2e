package export

import (
	"hash"
	"hash/crc32"
	"hash/crc64"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Checksum computes and verifies an integrity digest over an encoded
// region, so a visualization collaborator reading the shared-memory
// layout can detect a torn write.
type Checksum interface {
	// Calculate returns the checksum of data.
	Calculate(data []byte) uint64
	// Verify reports whether data matches the expected checksum.
	Verify(data []byte, expected uint64) bool
	// Name returns the algorithm name.
	Name() string
}

// Algorithm selects a Checksum implementation.
type Algorithm int

const (
	// CRC32 is the CRC32 (IEEE) checksum.
	CRC32 Algorithm = iota
	// CRC32C is the CRC32 (Castagnoli) checksum, hardware-accelerated on
	// most modern CPUs.
	CRC32C
	// CRC64 is the CRC64 (ISO) checksum.
	CRC64
	// XXHash is the xxHash64 non-cryptographic hash.
	XXHash
)

var checksumPool = sync.Pool{
	New: func() any {
		return &checksumState{
			crc32:  crc32.New(crc32.IEEETable),
			crc32c: crc32.New(crc32.MakeTable(crc32.Castagnoli)),
			crc64:  crc64.New(crc64.MakeTable(crc64.ISO)),
		}
	},
}

type checksumState struct {
	crc32  hash.Hash32
	crc32c hash.Hash32
	crc64  hash.Hash64
}

type crc32Checksum struct{}

func (crc32Checksum) Calculate(data []byte) uint64 {
	s := checksumPool.Get().(*checksumState)
	defer checksumPool.Put(s)
	s.crc32.Reset()
	s.crc32.Write(data)
	return uint64(s.crc32.Sum32())
}
func (c crc32Checksum) Verify(data []byte, expected uint64) bool { return c.Calculate(data) == expected }
func (crc32Checksum) Name() string                               { return "CRC32-IEEE" }

type crc32cChecksum struct{}

func (crc32cChecksum) Calculate(data []byte) uint64 {
	s := checksumPool.Get().(*checksumState)
	defer checksumPool.Put(s)
	s.crc32c.Reset()
	s.crc32c.Write(data)
	return uint64(s.crc32c.Sum32())
}
func (c crc32cChecksum) Verify(data []byte, expected uint64) bool {
	return c.Calculate(data) == expected
}
func (crc32cChecksum) Name() string { return "CRC32C" }

type crc64Checksum struct{}

func (crc64Checksum) Calculate(data []byte) uint64 {
	s := checksumPool.Get().(*checksumState)
	defer checksumPool.Put(s)
	s.crc64.Reset()
	s.crc64.Write(data)
	return s.crc64.Sum64()
}
func (c crc64Checksum) Verify(data []byte, expected uint64) bool { return c.Calculate(data) == expected }
func (crc64Checksum) Name() string                               { return "CRC64-ISO" }

type xxhashChecksum struct{}

func (xxhashChecksum) Calculate(data []byte) uint64 { return xxhash.Sum64(data) }
func (c xxhashChecksum) Verify(data []byte, expected uint64) bool {
	return c.Calculate(data) == expected
}
func (xxhashChecksum) Name() string { return "XXHash64" }

// NewChecksum constructs the Checksum implementation for alg.
func NewChecksum(alg Algorithm) Checksum {
	switch alg {
	case CRC32:
		return crc32Checksum{}
	case CRC64:
		return crc64Checksum{}
	case XXHash:
		return xxhashChecksum{}
	case CRC32C:
		return crc32cChecksum{}
	default:
		return crc32cChecksum{}
	}
}
