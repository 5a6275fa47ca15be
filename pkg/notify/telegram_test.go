package notify

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutTokenIsDisabled(t *testing.T) {
	n := New(&Config{}, WithLogger(log.New(io.Discard, "", 0)))
	require.NotNil(t, n)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send("dropped"))
	assert.NoError(t, n.SnapshotWritten("forecast", "2025-06-01", "snapshots/2025-06-01_forecast.json", false, true))
}

func TestNewWithNilConfigIsDisabled(t *testing.T) {
	n := New(nil, WithLogger(log.New(io.Discard, "", 0)))
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send("dropped"))
}

func TestSnapshotMessage(t *testing.T) {
	msg := SnapshotMessage("forecast", "2025-06-01", "snapshots/2025-06-01_forecast.json", false, false)
	assert.Equal(t, "snapshot forecast 2025-06-01: ok -> snapshots/2025-06-01_forecast.json", msg)

	msg = SnapshotMessage("review", "2025-06-01", "snapshots/2025-06-01_review.json", true, true)
	assert.True(t, strings.Contains(msg, "consistency check failed"))
	assert.True(t, strings.Contains(msg, "dry-run"))
}
