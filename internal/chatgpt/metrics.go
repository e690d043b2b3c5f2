package chatgpt

import (
	"sync"
	"time"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
)

// OperationStats aggregates outcomes for one named operation.
type OperationStats struct {
	Count              int            `json:"count" yaml:"count"`
	Failures           int            `json:"failures" yaml:"failures"`
	FailuresByCategory map[string]int `json:"failures_by_category,omitempty" yaml:"failures_by_category,omitempty"`
	TotalDuration      time.Duration  `json:"total_duration" yaml:"total_duration"`
	LastDuration       time.Duration  `json:"last_duration" yaml:"last_duration"`
	LastError          string         `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

// Metrics keeps in-process per-operation counters for the debug surface.
// Nothing is exported to an external system; this exists so a stuck
// automation session can be diagnosed over the same MCP connection.
type Metrics struct {
	mu      sync.Mutex
	started time.Time
	ops     map[string]*OperationStats
}

// NewMetrics returns an empty metrics set stamped with the current time.
func NewMetrics() *Metrics {
	return &Metrics{started: time.Now(), ops: make(map[string]*OperationStats)}
}

// Record notes one completed operation attempt.
func (m *Metrics) Record(operation string, d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.ops[operation]
	if st == nil {
		st = &OperationStats{FailuresByCategory: make(map[string]int)}
		m.ops[operation] = st
	}
	st.Count++
	st.TotalDuration += d
	st.LastDuration = d
	if err != nil {
		st.Failures++
		st.FailuresByCategory[string(chaterr.CategoryOf(err))]++
		st.LastError = err.Error()
	}
}

// Snapshot is a point-in-time copy of all counters, safe to serialize.
type Snapshot struct {
	Uptime     time.Duration             `json:"uptime" yaml:"uptime"`
	Operations map[string]OperationStats `json:"operations" yaml:"operations"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := Snapshot{
		Uptime:     time.Since(m.started),
		Operations: make(map[string]OperationStats, len(m.ops)),
	}
	for name, st := range m.ops {
		copied := *st
		copied.FailuresByCategory = make(map[string]int, len(st.FailuresByCategory))
		for k, v := range st.FailuresByCategory {
			copied.FailuresByCategory[k] = v
		}
		out.Operations[name] = copied
	}
	return out
}
