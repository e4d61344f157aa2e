package ring

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	r := New[int](8)

	n, first := r.Write([]int{1, 2, 3}, nil, nil)
	require.Equal(t, 3, n)
	require.Equal(t, uint64(0), first)

	dst := make([]int, 3)
	got := r.Read(dst, nil, nil, nil)
	assert.Equal(t, 3, got)
	assert.Equal(t, []int{1, 2, 3}, dst)
}

func TestWriteWrapsAroundStorage(t *testing.T) {
	r := New[int](4)

	r.Write([]int{1, 2, 3}, nil, nil)
	dst := make([]int, 3)
	r.Read(dst, nil, nil, nil)

	n, first := r.Write([]int{4, 5, 6}, nil, nil)
	require.Equal(t, 3, n)
	require.Equal(t, uint64(3), first)

	dst2 := make([]int, 3)
	got := r.Read(dst2, nil, nil, nil)
	assert.Equal(t, 3, got)
	assert.Equal(t, []int{4, 5, 6}, dst2)
}

func TestOverflowAccounting(t *testing.T) {
	size := 32
	r := New[int](size)

	src := make([]int, size)
	for i := range src {
		src[i] = i
	}

	// Write 4x the capacity with no reader draining.
	for i := 0; i < 4; i++ {
		n, _ := r.Write(src, nil, nil)
		require.Equal(t, size, n)
	}

	dst := make([]int, size)
	got := r.Read(dst, nil, nil, nil)
	// The reader skips to writer-size+1, so size-1 entries remain.
	assert.Equal(t, size-1, got)
	assert.Equal(t, uint64(4*size-size+1), r.Overflow())
}

func TestWritableReadableInvariant(t *testing.T) {
	size := 16
	r := New[int](size)

	for i := 0; i < 10; i++ {
		r.Write([]int{i}, nil, nil)
		readable := r.Readable(r.reader.Load())
		writable := r.Writable()
		assert.LessOrEqual(t, readable+writable+1, uint64(size))
	}
}

func TestConcurrentProducersSingleConsumer(t *testing.T) {
	const (
		size      = 1024
		producers = 16
		perWriter = 2000
	)
	r := New[int](size)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				for {
					if n, _ := r.Write([]int{id*perWriter + i}, spinBlock[int], spinBlock[int]); n == 1 {
						break
					}
				}
			}
		}(p)
	}

	total := producers * perWriter
	seen := make([]bool, total)
	var read int
	dst := make([]int, 1)
	done := make(chan struct{})
	go func() {
		for read < total {
			if n := r.Read(dst, nil, nil, func(*Ring[int], uint64) bool { return false }); n > 0 {
				seen[dst[0]] = true
				read++
			}
		}
		close(done)
	}()

	wg.Wait()
	<-done

	for i, ok := range seen {
		assert.Truef(t, ok, "missing value %d", i)
	}
	assert.Equal(t, uint64(0), r.Overflow())
}

func spinBlock[T any](r *Ring[T], lo, hi uint64) bool {
	return true
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := New[string](4)
	r.Write([]string{"a", "b"}, nil, nil)

	v, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", *v)

	v2, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", *v2)
}

func TestExternalCursor(t *testing.T) {
	r := New[int](8)
	r.Write([]int{1, 2, 3}, nil, nil)

	var cursor atomic.Uint64
	dst := make([]int, 2)
	n := r.Read(dst, &cursor, nil, nil)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, dst)

	// The ring's own reader is untouched by a private cursor.
	assert.Equal(t, uint64(3), r.Readable(0))
}
