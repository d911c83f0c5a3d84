package domain

import (
	"time"

	"github.com/pkg/errors"
)

// DecisionStatus is the lifecycle state of a Decision.
//
// Transitions: pending -> {approved -> executed|failed, rejected, expired}.
// Executed, failed and rejected are terminal. Decisions carrying the
// accumulated_insight tool instead move pending -> acknowledged.
type DecisionStatus string

const (
	StatusPending      DecisionStatus = "pending"
	StatusApproved     DecisionStatus = "approved"
	StatusExecuted     DecisionStatus = "executed"
	StatusFailed       DecisionStatus = "failed"
	StatusRejected     DecisionStatus = "rejected"
	StatusExpired      DecisionStatus = "expired"
	StatusAcknowledged DecisionStatus = "acknowledged"
)

// Params is the opaque parameter bag attached to a Decision. Its shape
// depends on the tool; legacy producers use inconsistent field names, so
// the bag is resolved into a typed form once, at the dispatcher boundary.
type Params map[string]any

// Payload is an opaque structured execution result produced by an
// adapter or coordinator and persisted verbatim.
type Payload map[string]any

// Decision is a persisted unit of proposed-then-executed platform mutation.
type Decision struct {
	ID              string         `json:"id"`
	OrgID           string         `json:"org_id"`
	Platform        Platform       `json:"platform"`
	EntityType      string         `json:"entity_type"`
	EntityID        string         `json:"entity_id"`
	EntityName      string         `json:"entity_name,omitempty"`
	Tool            string         `json:"tool"`
	Params          Params         `json:"parameters,omitempty"`
	CurrentState    Params         `json:"current_state,omitempty"`
	Status          DecisionStatus `json:"status"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	ReviewedBy      string         `json:"reviewed_by,omitempty"`
	ExecutedAt      *time.Time     `json:"executed_at,omitempty"`
	ExecutionResult Payload        `json:"execution_result,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Validate checks the fields a Decision needs before it can be stored.
func (d *Decision) Validate() error {
	if d.OrgID == "" {
		return errors.New("org_id is required")
	}
	if _, err := ParsePlatform(string(d.Platform)); err != nil {
		return err
	}
	if _, err := ParseEntityType(d.EntityType); err != nil {
		return err
	}
	if d.EntityID == "" {
		return errors.New("entity_id is required")
	}
	if _, ok := CanonicalTool(d.Tool); !ok {
		return errors.Errorf("unknown tool: %q", d.Tool)
	}
	return nil
}

// SubAction is an ephemeral step inside a compound_action decision.
// It is constructed in memory, dispatched like a Decision, and discarded;
// only the parent Decision's aggregate result is persisted.
type SubAction struct {
	Tool       string `json:"tool"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	EntityName string `json:"entity_name,omitempty"`
	Label      string `json:"label,omitempty"`
	Params     Params `json:"parameters,omitempty"`
}

// Connection is a read-only view of a platform connection. The engine
// refuses to execute against an inactive or missing connection.
type Connection struct {
	ID        string   `json:"id"`
	OrgID     string   `json:"org_id"`
	Platform  Platform `json:"platform"`
	AccountID string   `json:"account_id"`
	Active    bool     `json:"active"`
}
