package domain

import "time"

// ExecutionEvent is the audit record appended for every terminal
// execution outcome.
type ExecutionEvent struct {
	Timestamp  time.Time `json:"ts"`
	DecisionID string    `json:"decision_id"`
	OrgID      string    `json:"org_id"`
	Platform   Platform  `json:"platform"`
	Tool       string    `json:"tool"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Success    bool      `json:"success"`
	ErrorCode  ErrorCode `json:"error_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	Result     Payload   `json:"result,omitempty"`
}

// ExecutionEventRecord bundles an audit event with its log index.
type ExecutionEventRecord struct {
	Index uint64
	Event ExecutionEvent
}
