package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowIsZeroRebasedAndMonotonic(t *testing.T) {
	c := New(Microsecond)

	first := c.Now()
	assert.Less(t, first, uint64(time.Second))

	time.Sleep(2 * time.Millisecond)
	second := c.Now()
	assert.Greater(t, second, first)
}

func TestSecondsFractionDigits(t *testing.T) {
	c := New(Microsecond)
	sec, frac, digits := c.SecondsFraction(1_500_250)
	assert.Equal(t, uint64(1), sec)
	assert.Equal(t, uint64(500250), frac)
	assert.Equal(t, 6, digits)

	c2 := New(Millisecond)
	sec2, frac2, digits2 := c2.SecondsFraction(1500)
	assert.Equal(t, uint64(1), sec2)
	assert.Equal(t, uint64(500), frac2)
	assert.Equal(t, 3, digits2)
}
