package chatgpt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
)

func TestMetricsRecordAndSnapshot(t *testing.T) {
	m := NewMetrics()

	m.Record("send_message", 10*time.Millisecond, nil)
	m.Record("send_message", 20*time.Millisecond, chaterr.WindowNotFound("gone"))
	m.Record("reset_conversation", 5*time.Millisecond, nil)

	snap := m.Snapshot()
	send := snap.Operations["send_message"]
	assert.Equal(t, 2, send.Count)
	assert.Equal(t, 1, send.Failures)
	assert.Equal(t, 1, send.FailuresByCategory["window"])
	assert.Equal(t, 30*time.Millisecond, send.TotalDuration)
	assert.Equal(t, 20*time.Millisecond, send.LastDuration)
	assert.Contains(t, send.LastError, "gone")

	assert.Equal(t, 1, snap.Operations["reset_conversation"].Count)
	assert.GreaterOrEqual(t, snap.Uptime, time.Duration(0))
}

func TestMetricsSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.Record("send_message", time.Millisecond, nil)

	snap := m.Snapshot()
	snap.Operations["send_message"] = OperationStats{Count: 99}
	snap.Operations["other"] = OperationStats{}

	fresh := m.Snapshot()
	assert.Equal(t, 1, fresh.Operations["send_message"].Count)
	assert.NotContains(t, fresh.Operations, "other")
}
