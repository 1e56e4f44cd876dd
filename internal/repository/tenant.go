package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type TenantRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTenantRepository(db *pgxpool.Pool, logger *zap.Logger) *TenantRepository {
	return &TenantRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, subdomain, name, description, subscription_tier, quota_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(ctx, query,
		tenant.ID, tenant.Subdomain, tenant.Name, tenant.Description,
		tenant.SubscriptionTier, tenant.QuotaLimit, tenant.IsActive)

	if err := row.Scan(&tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
		r.logger.Error("Failed to create tenant", zap.Error(err), zap.String("subdomain", tenant.Subdomain))
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	r.logger.Info("Tenant created successfully",
		zap.String("id", tenant.ID.String()),
		zap.String("subdomain", tenant.Subdomain))
	return nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT id, subdomain, name, description, subscription_tier, quota_limit, is_active, created_at, updated_at
		FROM tenants WHERE id = $1`

	tenant, err := r.scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.TenantNotFoundError{TenantID: id}
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	query := `
		SELECT id, subdomain, name, description, subscription_tier, quota_limit, is_active, created_at, updated_at
		FROM tenants WHERE subdomain = $1`

	tenant, err := r.scanTenant(r.db.QueryRow(ctx, query, strings.ToLower(subdomain)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.TenantNotFoundError{Subdomain: subdomain}
		}
		return nil, fmt.Errorf("failed to get tenant by subdomain: %w", err)
	}

	return tenant, nil
}

func (r *TenantRepository) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tenants WHERE subdomain = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, strings.ToLower(subdomain)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subdomain existence: %w", err)
	}

	return exists, nil
}

func (r *TenantRepository) GetAll(ctx context.Context) ([]models.Tenant, error) {
	query := `
		SELECT id, subdomain, name, description, subscription_tier, quota_limit, is_active, created_at, updated_at
		FROM tenants ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		tenant, err := r.scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, *tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tenants, nil
}

func (r *TenantRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants WHERE is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active tenants: %w", err)
	}
	return count, nil
}

// SetActive flips the soft deactivation flag. Tenants are never deleted.
func (r *TenantRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE tenants SET is_active = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to update tenant active flag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &apperrors.TenantNotFoundError{TenantID: id}
	}

	r.logger.Info("Tenant active flag updated", zap.String("id", id.String()), zap.Bool("active", active))
	return nil
}

func (r *TenantRepository) scanTenant(row pgx.Row) (*models.Tenant, error) {
	var tenant models.Tenant
	err := row.Scan(
		&tenant.ID, &tenant.Subdomain, &tenant.Name, &tenant.Description,
		&tenant.SubscriptionTier, &tenant.QuotaLimit, &tenant.IsActive,
		&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
