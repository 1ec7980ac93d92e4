package model

import "time"

// AttemptStatus is the outcome class of one per-platform publish attempt.
type AttemptStatus string

const (
	AttemptSuccess AttemptStatus = "success"
	AttemptFailed  AttemptStatus = "failed"
	AttemptPending AttemptStatus = "pending"
)

// PublishResult is the transient per-platform outcome of one execution pass.
type PublishResult struct {
	Platform     Platform      `json:"platform"`
	Status       AttemptStatus `json:"status"`
	PostID       string        `json:"post_id,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// ExecutionLogEntry is one record in the bounded in-memory execution ledger.
// The ledger is an observability aid only; the scheduled_posts row stays
// authoritative.
type ExecutionLogEntry struct {
	PostID     int64         `json:"post_id"`
	Platform   Platform      `json:"platform"`
	Status     AttemptStatus `json:"status"`
	Message    string        `json:"message"`
	Timestamp  time.Time     `json:"timestamp"`
	RetryCount int           `json:"retry_count"`
}

// ExecutionStats aggregates ledger entries by status. SuccessRate is
// successful/total*100 formatted with two decimals, "0" when the ledger is
// empty.
type ExecutionStats struct {
	Total       int    `json:"total"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	Pending     int    `json:"pending"`
	SuccessRate string `json:"successRate"`
}
