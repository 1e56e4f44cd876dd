// Package tenant implements tenant registration and lifecycle management.
package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/metrics"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type Repository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error)
	GetAll(ctx context.Context) ([]models.Tenant, error)
	CountActive(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type UsageReporter interface {
	Usage(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageResponse, error)
}

type EventSink interface {
	Publish(ctx context.Context, tenantID uuid.UUID, eventType string, resourceID uuid.UUID, resourceType string, payload map[string]any)
}

type Service struct {
	repo   Repository
	usage  UsageReporter
	events EventSink
	logger *zap.Logger
}

func NewService(repo Repository, usage UsageReporter, events EventSink, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		usage:  usage,
		events: events,
		logger: logger,
	}
}

// Register provisions a new tenant. The subdomain is normalized to lowercase
// and validated before the uniqueness check; the quota limit comes from the
// subscription tier and new tenants start active.
func (s *Service) Register(ctx context.Context, req *models.RegisterTenantRequest) (*models.Tenant, error) {
	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))

	if err := models.ValidateSubdomain(subdomain); err != nil {
		return nil, &apperrors.ValidationError{Field: "subdomain", Reason: err.Error()}
	}

	tier := req.SubscriptionTier
	if tier == "" {
		tier = models.TierFree
	}
	if !tier.Valid() {
		return nil, &apperrors.ValidationError{Field: "subscription_tier", Reason: fmt.Sprintf("unknown tier %q", req.SubscriptionTier)}
	}

	taken, err := s.repo.ExistsBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, fmt.Errorf("failed to check subdomain availability: %w", err)
	}
	if taken {
		return nil, &apperrors.SubdomainTakenError{Subdomain: subdomain}
	}

	tenant := &models.Tenant{
		ID:               uuid.New(),
		Subdomain:        subdomain,
		Name:             req.Name,
		Description:      req.Description,
		SubscriptionTier: tier,
		QuotaLimit:       tier.DefaultQuota(),
		IsActive:         true,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subdomain", tenant.Subdomain),
		zap.String("tier", string(tenant.SubscriptionTier)))

	s.refreshActiveGauge(ctx)
	s.events.Publish(ctx, tenant.ID, "tenant.registered", tenant.ID, "tenant", map[string]any{
		"subdomain":         tenant.Subdomain,
		"name":              tenant.Name,
		"subscription_tier": string(tenant.SubscriptionTier),
	})

	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	return s.repo.GetBySubdomain(ctx, strings.ToLower(strings.TrimSpace(subdomain)))
}

func (s *Service) List(ctx context.Context) ([]models.Tenant, error) {
	return s.repo.GetAll(ctx)
}

// Usage reports the tenant's combined resource usage against its quota.
func (s *Service) Usage(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageResponse, error) {
	return s.usage.Usage(ctx, tenantID)
}

// Deactivate flips the tenant to inactive. Tenants are never deleted; an
// inactive tenant keeps its data but every request through the resolver is
// rejected with 403 until reactivation.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.logger.Info("Tenant deactivated", zap.String("tenant_id", id.String()))
	s.refreshActiveGauge(ctx)
	s.events.Publish(ctx, id, "tenant.deactivated", id, "tenant", nil)
	return nil
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.logger.Info("Tenant reactivated", zap.String("tenant_id", id.String()))
	s.refreshActiveGauge(ctx)
	s.events.Publish(ctx, id, "tenant.reactivated", id, "tenant", nil)
	return nil
}

func (s *Service) refreshActiveGauge(ctx context.Context) {
	count, err := s.repo.CountActive(ctx)
	if err != nil {
		s.logger.Warn("Failed to count active tenants", zap.Error(err))
		return
	}
	metrics.UpdateActiveTenants(float64(count))
}
