package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

type Project struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	TenantID           uuid.UUID     `json:"tenant_id" db:"tenant_id"`
	Name               string        `json:"name" db:"name"`
	Description        string        `json:"description,omitempty" db:"description"`
	Status             ProjectStatus `json:"status" db:"status"`
	Priority           Priority      `json:"priority" db:"priority"`
	OwnerID            uuid.UUID     `json:"owner_id" db:"owner_id"`
	DueDate            *time.Time    `json:"due_date,omitempty" db:"due_date"`
	ProgressPercentage int           `json:"progress_percentage" db:"progress_percentage"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

type CreateProjectRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
	Priority    Priority      `json:"priority,omitempty"`
	OwnerID     uuid.UUID     `json:"owner_id" binding:"required"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// UpdateProjectRequest carries partial updates; nil fields are left untouched.
type UpdateProjectRequest struct {
	Name               *string        `json:"name,omitempty"`
	Description        *string        `json:"description,omitempty"`
	Status             *ProjectStatus `json:"status,omitempty"`
	Priority           *Priority      `json:"priority,omitempty"`
	OwnerID            *uuid.UUID     `json:"owner_id,omitempty"`
	DueDate            *time.Time     `json:"due_date,omitempty"`
	ProgressPercentage *int           `json:"progress_percentage,omitempty"`
}
