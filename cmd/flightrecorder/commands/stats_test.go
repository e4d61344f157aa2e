package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatsPrintsBothRecorders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runStats(&buf))

	out := buf.String()
	assert.Contains(t, out, "STATS_DEMO_A")
	assert.Contains(t, out, "STATS_DEMO_B")
	assert.Contains(t, out, "CAPACITY")
}
