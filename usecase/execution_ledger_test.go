package usecase

import (
	"fmt"
	"testing"
	"time"

	"postpilot/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(postID int64, status model.AttemptStatus) *model.ExecutionLogEntry {
	return &model.ExecutionLogEntry{
		PostID:    postID,
		Platform:  model.PlatformInstagram,
		Status:    status,
		Message:   fmt.Sprintf("entry %d", postID),
		Timestamp: time.Now(),
	}
}

func TestExecutionLedgerEviction(t *testing.T) {
	ledger := NewExecutionLedger()

	for i := 1; i <= 1001; i++ {
		ledger.Append(entry(int64(i), model.AttemptSuccess))
	}

	all := ledger.Recent(2000)
	require.Len(t, all, 1000)
	// oldest evicted: entry 1 gone, 2..1001 remain in order
	assert.Equal(t, int64(2), all[0].PostID)
	assert.Equal(t, int64(1001), all[999].PostID)
}

func TestExecutionLedgerRecentLimit(t *testing.T) {
	ledger := NewExecutionLedger()
	for i := 1; i <= 10; i++ {
		ledger.Append(entry(int64(i), model.AttemptSuccess))
	}

	last3 := ledger.Recent(3)
	require.Len(t, last3, 3)
	assert.Equal(t, int64(8), last3[0].PostID)
	assert.Equal(t, int64(10), last3[2].PostID)
}

func TestExecutionLedgerStats(t *testing.T) {
	ledger := NewExecutionLedger()
	ledger.Append(entry(1, model.AttemptSuccess))
	ledger.Append(entry(2, model.AttemptSuccess))
	ledger.Append(entry(3, model.AttemptFailed))
	ledger.Append(entry(4, model.AttemptPending))

	stats := ledger.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, "50.00", stats.SuccessRate)
}

func TestExecutionLedgerStatsEmpty(t *testing.T) {
	stats := NewExecutionLedger().Stats()
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, "0", stats.SuccessRate)
}

func TestExecutionLedgerStatsRounding(t *testing.T) {
	ledger := NewExecutionLedger()
	ledger.Append(entry(1, model.AttemptSuccess))
	ledger.Append(entry(2, model.AttemptFailed))
	ledger.Append(entry(3, model.AttemptFailed))

	assert.Equal(t, "33.33", ledger.Stats().SuccessRate)
}
