package signalhook

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightrecorder/flightrecorder/recorder"
)

func TestInstallAndStopWithoutSignalingIsSilent(t *testing.T) {
	reg := &recorder.Registry{}
	marker := recorder.New("SIGNAL_MARKER", "", 8, recorder.WithRegistry(reg))

	h := Install(syscall.SIGUSR1, marker, reg)
	h.Stop()

	assert.Equal(t, uint64(0), marker.Readable())
}

func TestInstallCommonRespectsRemoveMask(t *testing.T) {
	reg := &recorder.Registry{}
	marker := recorder.New("SIGNAL_MARKER2", "", 8, recorder.WithRegistry(reg))

	var remove Mask
	for i := range CommonSignals {
		if i%2 == 1 {
			remove |= 1 << uint(i)
		}
	}

	handles := InstallCommon(marker, reg, remove)
	defer StopAll(handles)

	expected := 0
	for i := range CommonSignals {
		if remove&(1<<uint(i)) == 0 {
			expected++
		}
	}
	require.Len(t, handles, expected)
}

func TestNameFallsBackToNumericForUnknownSignal(t *testing.T) {
	known := CommonSignals[0]
	assert.Equal(t, known.String(), Name(known))
	assert.Contains(t, Name(syscall.Signal(9999)), "9999")
}
