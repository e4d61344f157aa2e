package blockpolicy

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/flightrecorder/flightrecorder/monitoring"
	"github.com/flightrecorder/flightrecorder/ring"
)

func TestSpinAlwaysRetries(t *testing.T) {
	cb := Spin[int]()
	for i := 0; i < 100; i++ {
		assert.True(t, cb(nil, 0, 0))
	}
}

func TestYieldBackoffEventuallyGivesUp(t *testing.T) {
	cb := YieldBackoff[int](time.Microsecond)
	assert.False(t, cb(nil, 0, 0))
}

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	breaker := NewCircuitBreaker[int]("TEST_CB", 3, 20*time.Millisecond)
	cb := breaker.Callback()

	assert.True(t, cb(nil, 0, 0))
	assert.True(t, cb(nil, 0, 0))
	assert.False(t, cb(nil, 0, 0))
	assert.True(t, breaker.Tripped())
}

func TestCircuitBreakerProbesAfterResetWindow(t *testing.T) {
	breaker := NewCircuitBreaker[int]("TEST_CB", 1, 5*time.Millisecond)
	cb := breaker.Callback()

	assert.False(t, cb(nil, 0, 0))
	assert.True(t, breaker.Tripped())

	time.Sleep(10 * time.Millisecond)
	assert.True(t, cb(nil, 0, 0))
}

func TestCircuitBreakerReset(t *testing.T) {
	breaker := NewCircuitBreaker[int]("TEST_CB", 1, time.Second)
	cb := breaker.Callback()
	cb(nil, 0, 0)
	assert.True(t, breaker.Tripped())

	breaker.Reset()
	assert.False(t, breaker.Tripped())
}

func TestCircuitBreakerTripIncrementsMonitoringCounter(t *testing.T) {
	before := testutil.ToFloat64(monitoring.BlockPolicyTrips.WithLabelValues("TEST_CB_METRIC"))

	breaker := NewCircuitBreaker[int]("TEST_CB_METRIC", 2, time.Second)
	cb := breaker.Callback()
	cb(nil, 0, 0)
	cb(nil, 0, 0)

	assert.Equal(t, before+1, testutil.ToFloat64(monitoring.BlockPolicyTrips.WithLabelValues("TEST_CB_METRIC")))
}

var _ ring.BlockCallback[int] = Spin[int]()
