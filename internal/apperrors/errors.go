// Package apperrors defines the typed domain errors callers are expected to
// branch on with errors.Is / errors.As. Everything else is wrapped with
// fmt.Errorf and treated as internal.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrTenantContextMissing indicates tenant-scoped code ran without a tenant
// installed on the request context. This is a programming error, not a
// client-recoverable condition.
var ErrTenantContextMissing = errors.New("tenant context not set")

type TenantNotFoundError struct {
	TenantID  uuid.UUID
	Subdomain string
}

func (e *TenantNotFoundError) Error() string {
	if e.Subdomain != "" {
		return fmt.Sprintf("tenant not found: subdomain %q", e.Subdomain)
	}
	return fmt.Sprintf("tenant not found: %s", e.TenantID)
}

type TenantInactiveError struct {
	TenantID  uuid.UUID
	Subdomain string
}

func (e *TenantInactiveError) Error() string {
	return fmt.Sprintf("tenant account is inactive: %q", e.Subdomain)
}

// QuotaExceededError reports a rejected create. Current and Limit are the
// values observed at check time so the API layer can surface them.
type QuotaExceededError struct {
	TenantID uuid.UUID
	Kind     string
	Current  int64
	Limit    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for tenant %s: %d/%d %s used, upgrade your subscription to add more",
		e.TenantID, e.Current, e.Limit, e.Kind)
}

// ValidationError rejects client input before it reaches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type SubdomainTakenError struct {
	Subdomain string
}

func (e *SubdomainTakenError) Error() string {
	return fmt.Sprintf("subdomain %q is already taken", e.Subdomain)
}

type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
