// Package quota gates mutating creates behind per-tenant resource limits.
package quota

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/metrics"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type TenantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type ResourceCounter interface {
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// Gate decides admit/reject before a create. Usage is the combined count of
// the tenant's projects and tasks; a nil quota limit always admits.
//
// The check and the subsequent insert are not atomic: two concurrent
// creators for the same tenant can both pass and push usage past the limit
// by the degree of concurrency. This is best-effort admission control, kept
// deliberately lock-free. Exact enforcement would take a per-tenant
// advisory lock or a compare-and-swap usage counter around check+insert.
type Gate struct {
	tenants  TenantStore
	projects ResourceCounter
	tasks    ResourceCounter
	logger   *zap.Logger
}

func NewGate(tenants TenantStore, projects, tasks ResourceCounter, logger *zap.Logger) *Gate {
	return &Gate{
		tenants:  tenants,
		projects: projects,
		tasks:    tasks,
		logger:   logger,
	}
}

// CheckAndAdmit returns nil when the tenant may create one more resource.
// It returns *apperrors.TenantNotFoundError when the tenant does not exist
// and *apperrors.QuotaExceededError when usage has reached the limit; the
// two must stay distinguishable so the API layer can map them separately.
func (g *Gate) CheckAndAdmit(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := g.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}

	if tenant.QuotaLimit == nil {
		g.logger.Debug("Unlimited tier, quota check skipped", zap.String("tenant_id", tenantID.String()))
		return nil
	}

	usage, err := g.currentUsage(ctx, tenantID)
	if err != nil {
		return err
	}

	if tenant.QuotaExceeded(usage) {
		g.logger.Warn("Quota exceeded",
			zap.String("tenant_id", tenantID.String()),
			zap.Int64("current", usage),
			zap.Int("limit", *tenant.QuotaLimit))
		metrics.IncrementQuotaRejections(tenantID.String())
		return &apperrors.QuotaExceededError{
			TenantID: tenantID,
			Kind:     "projects and tasks",
			Current:  usage,
			Limit:    *tenant.QuotaLimit,
		}
	}

	g.logger.Debug("Quota check passed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("current", usage),
		zap.Int("limit", *tenant.QuotaLimit))
	return nil
}

// Usage returns the per-kind and combined resource counts for a tenant.
func (g *Gate) Usage(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageResponse, error) {
	tenant, err := g.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	projectCount, err := g.projects.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	taskCount, err := g.tasks.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &models.TenantUsageResponse{
		TenantID:     tenantID,
		QuotaLimit:   tenant.QuotaLimit,
		CurrentUsage: projectCount + taskCount,
		ProjectCount: projectCount,
		TaskCount:    taskCount,
	}, nil
}

func (g *Gate) currentUsage(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	projectCount, err := g.projects.CountByTenant(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	taskCount, err := g.tasks.CountByTenant(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return projectCount + taskCount, nil
}
