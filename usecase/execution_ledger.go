package usecase

import (
	"fmt"
	"sync"

	"postpilot/domain/model"
)

const defaultLedgerCapacity = 1000

// ExecutionLedger keeps the most recent publish attempts in memory, FIFO
// evicted at capacity. It is an observability aid only; the scheduled_posts
// row stays authoritative and the ledger may be lost on restart.
type ExecutionLedger struct {
	mu       sync.RWMutex
	entries  []*model.ExecutionLogEntry
	capacity int
}

func NewExecutionLedger() *ExecutionLedger {
	return &ExecutionLedger{capacity: defaultLedgerCapacity}
}

func (l *ExecutionLedger) Append(entry *model.ExecutionLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Recent returns the last limit entries in insertion order.
func (l *ExecutionLedger) Recent(limit int) []*model.ExecutionLogEntry {
	if limit <= 0 {
		limit = 100
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := len(l.entries) - limit
	if start < 0 {
		start = 0
	}
	out := make([]*model.ExecutionLogEntry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

func (l *ExecutionLedger) Stats() model.ExecutionStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := model.ExecutionStats{Total: len(l.entries), SuccessRate: "0"}
	for _, e := range l.entries {
		switch e.Status {
		case model.AttemptSuccess:
			stats.Successful++
		case model.AttemptFailed:
			stats.Failed++
		case model.AttemptPending:
			stats.Pending++
		}
	}
	if stats.Total > 0 {
		stats.SuccessRate = fmt.Sprintf("%.2f", float64(stats.Successful)/float64(stats.Total)*100)
	}
	return stats
}
