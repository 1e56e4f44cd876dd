package models

import (
	"time"

	"github.com/google/uuid"
)

// AutomationRule maps a domain event type to an action for one tenant.
// Conditions are stored but not evaluated by the lookup path; see
// events.AutomationLookup.
type AutomationRule struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	TenantID       uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	Name           string         `json:"name" db:"name"`
	Description    string         `json:"description,omitempty" db:"description"`
	EventType      string         `json:"event_type" db:"event_type"`
	ActionType     string         `json:"action_type" db:"action_type"`
	Conditions     map[string]any `json:"conditions,omitempty" db:"conditions"`
	ActionConfig   map[string]any `json:"action_config" db:"action_config"`
	IsActive       bool           `json:"is_active" db:"is_active"`
	CreatedBy      *uuid.UUID     `json:"created_by,omitempty" db:"created_by"`
	ExecutionCount int64          `json:"execution_count" db:"execution_count"`
	LastExecutedAt *time.Time     `json:"last_executed_at,omitempty" db:"last_executed_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

type CreateAutomationRuleRequest struct {
	Name         string         `json:"name" binding:"required"`
	Description  string         `json:"description,omitempty"`
	EventType    string         `json:"event_type" binding:"required"`
	ActionType   string         `json:"action_type" binding:"required"`
	Conditions   map[string]any `json:"conditions,omitempty"`
	ActionConfig map[string]any `json:"action_config" binding:"required"`
	IsActive     *bool          `json:"is_active,omitempty"`
}

type UpdateAutomationRuleRequest struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	EventType    *string        `json:"event_type,omitempty"`
	ActionType   *string        `json:"action_type,omitempty"`
	Conditions   map[string]any `json:"conditions,omitempty"`
	ActionConfig map[string]any `json:"action_config,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
}
