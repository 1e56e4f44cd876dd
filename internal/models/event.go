package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the terminal status of one published event. It is
// written once at publish time and never updated afterward.
type ExecutionStatus string

const (
	// StatusSuccess means an automation ran and succeeded. Not produced by
	// the default pipeline until rule execution is implemented.
	StatusSuccess ExecutionStatus = "SUCCESS"
	// StatusFailed means forwarding or execution errored.
	StatusFailed ExecutionStatus = "FAILED"
	// StatusSkipped means rule conditions evaluated false. Not produced by
	// the default pipeline until rule execution is implemented.
	StatusSkipped ExecutionStatus = "SKIPPED"
	// StatusNoRulesMatched is the default no-op path: the event was
	// recorded (and possibly forwarded) but no automation executed.
	StatusNoRulesMatched ExecutionStatus = "NO_RULES_MATCHED"
)

// EventLog is the durable audit record for one published domain event.
// Exactly one row is persisted per Publish call, whatever the forwarding
// outcome.
type EventLog struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	TenantID            uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	AutomationRuleID    *uuid.UUID      `json:"automation_rule_id,omitempty" db:"automation_rule_id"`
	EventType           string          `json:"event_type" db:"event_type"`
	ActionType          string          `json:"action_type,omitempty" db:"action_type"`
	Status              ExecutionStatus `json:"status" db:"status"`
	EventPayload        map[string]any  `json:"event_payload,omitempty" db:"event_payload"`
	ActionResult        map[string]any  `json:"action_result,omitempty" db:"action_result"`
	ErrorMessage        string          `json:"error_message,omitempty" db:"error_message"`
	ErrorStackTrace     string          `json:"error_stack_trace,omitempty" db:"error_stack_trace"`
	ExecutionDurationMs int64           `json:"execution_duration_ms" db:"execution_duration_ms"`
	ResourceID          uuid.UUID       `json:"resource_id" db:"resource_id"`
	ResourceType        string          `json:"resource_type" db:"resource_type"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
}
