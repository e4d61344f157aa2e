package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDemoEmitsSixTimingMarkers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runDemo(&buf, 6))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	wantPhases := []string{
		"begin-print", "end-print",
		"begin-record", "end-record",
		"begin-fast-record", "end-fast-record",
	}
	for _, phase := range wantPhases {
		assert.Contains(t, buf.String(), phase)
	}
}
