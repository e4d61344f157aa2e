package recorder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsDuplicateName(t *testing.T) {
	reg := &Registry{}
	a := New("DUP", "", 4, WithRegistry(reg))
	b := New("DUP", "", 4, WithRegistry(reg))

	require.NoError(t, reg.Register(a))

	err := reg.Register(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRecorder)
	assert.Same(t, a, reg.Find("DUP"))
}

func TestRegisterIsIdempotentForSameRecorder(t *testing.T) {
	reg := &Registry{}
	a := New("SAME", "", 4, WithRegistry(reg))

	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(a))

	count := 0
	reg.Each(func(*Recorder) bool { count++; return true })
	assert.Equal(t, 1, count)
}

func TestEagerRegisterThenFirstWriteDoesNotDoubleLink(t *testing.T) {
	reg := &Registry{}
	a := New("EAGER", "", 4, WithRegistry(reg))
	require.NoError(t, reg.Register(a))

	Record(a, "r.go:1", "hello")

	count := 0
	reg.Each(func(*Recorder) bool { count++; return true })
	assert.Equal(t, 1, count)
}

func TestNewPanicsOnInvalidCapacity(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrInvalidCapacity))
	}()
	New("BAD", "", 0)
}
