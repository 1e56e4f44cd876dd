package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "FREE"
	TierPro        SubscriptionTier = "PRO"
	TierEnterprise SubscriptionTier = "ENTERPRISE"
)

// DefaultQuota returns the default combined project+task limit for a tier.
// A nil result means unlimited.
func (t SubscriptionTier) DefaultQuota() *int {
	switch t {
	case TierFree:
		q := 50
		return &q
	case TierPro:
		q := 1000
		return &q
	default:
		return nil
	}
}

func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}

type Tenant struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Subdomain        string           `json:"subdomain" db:"subdomain"`
	Name             string           `json:"name" db:"name"`
	Description      string           `json:"description,omitempty" db:"description"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier" db:"subscription_tier"`
	QuotaLimit       *int             `json:"quota_limit" db:"quota_limit"`
	IsActive         bool             `json:"is_active" db:"is_active"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// QuotaExceeded reports whether the given combined usage has reached the
// tenant's limit. Admission requires usage < limit; a nil limit is unlimited.
func (t *Tenant) QuotaExceeded(currentUsage int64) bool {
	if t.QuotaLimit == nil {
		return false
	}
	return currentUsage >= int64(*t.QuotaLimit)
}

var subdomainPattern = regexp.MustCompile(`^[a-z0-9-]{3,63}$`)

var reservedSubdomains = map[string]struct{}{
	"www": {}, "api": {}, "admin": {}, "app": {}, "mail": {}, "email": {},
	"support": {}, "help": {}, "docs": {}, "blog": {}, "status": {},
	"cdn": {}, "assets": {}, "static": {}, "ftp": {}, "smtp": {}, "pop": {},
	"imap": {}, "webmail": {}, "portal": {}, "dashboard": {},
}

// ValidateSubdomain checks a candidate subdomain against registration rules:
// 3-63 characters, lowercase alphanumeric plus hyphens, no leading or
// trailing hyphen, not a reserved word.
func ValidateSubdomain(subdomain string) error {
	normalized := strings.ToLower(strings.TrimSpace(subdomain))
	if normalized == "" {
		return fmt.Errorf("subdomain cannot be empty")
	}
	if len(normalized) < 3 || len(normalized) > 63 {
		return fmt.Errorf("subdomain %q must be between 3 and 63 characters", subdomain)
	}
	if !subdomainPattern.MatchString(normalized) {
		return fmt.Errorf("subdomain %q must contain only lowercase letters, numbers, and hyphens", subdomain)
	}
	if strings.HasPrefix(normalized, "-") || strings.HasSuffix(normalized, "-") {
		return fmt.Errorf("subdomain %q cannot start or end with a hyphen", subdomain)
	}
	if _, reserved := reservedSubdomains[normalized]; reserved {
		return fmt.Errorf("subdomain %q is reserved and cannot be used", subdomain)
	}
	return nil
}

type RegisterTenantRequest struct {
	Subdomain        string           `json:"subdomain" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description,omitempty"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier,omitempty"`
	OwnerEmail       string           `json:"owner_email" binding:"required,email"`
	OwnerName        string           `json:"owner_name,omitempty"`
}

type TenantUsageResponse struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	QuotaLimit   *int      `json:"quota_limit"`
	CurrentUsage int64     `json:"current_usage"`
	ProjectCount int64     `json:"project_count"`
	TaskCount    int64     `json:"task_count"`
}
