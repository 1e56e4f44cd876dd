package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type AutomationRuleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAutomationRuleRepository(db *pgxpool.Pool, logger *zap.Logger) *AutomationRuleRepository {
	return &AutomationRuleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AutomationRuleRepository) Create(ctx context.Context, rule *models.AutomationRule) error {
	conditions, err := marshalJSONB(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}
	actionConfig, err := marshalJSONB(rule.ActionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}

	query := `
		INSERT INTO automation_rules (id, tenant_id, name, description, event_type, action_type,
			conditions, action_config, is_active, created_by, execution_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(ctx, query,
		rule.ID, rule.TenantID, rule.Name, rule.Description, rule.EventType, rule.ActionType,
		conditions, actionConfig, rule.IsActive, rule.CreatedBy, rule.ExecutionCount)

	if err := row.Scan(&rule.CreatedAt, &rule.UpdatedAt); err != nil {
		r.logger.Error("Failed to create automation rule", zap.Error(err), zap.String("name", rule.Name))
		return fmt.Errorf("failed to create automation rule: %w", err)
	}

	r.logger.Info("Automation rule created",
		zap.String("id", rule.ID.String()),
		zap.String("event_type", rule.EventType),
		zap.String("tenant_id", rule.TenantID.String()))
	return nil
}

func (r *AutomationRuleRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AutomationRule, error) {
	query := `
		SELECT id, tenant_id, name, description, event_type, action_type, conditions, action_config,
			is_active, created_by, execution_count, last_executed_at, created_at, updated_at
		FROM automation_rules WHERE id = $1 AND tenant_id = $2`

	rule, err := r.scanRule(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Resource: "automation rule", ID: id}
		}
		return nil, fmt.Errorf("failed to get automation rule: %w", err)
	}

	return rule, nil
}

func (r *AutomationRuleRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.AutomationRule, error) {
	query := `
		SELECT id, tenant_id, name, description, event_type, action_type, conditions, action_config,
			is_active, created_by, execution_count, last_executed_at, created_at, updated_at
		FROM automation_rules WHERE tenant_id = $1 ORDER BY created_at DESC`

	return r.queryRules(ctx, query, tenantID)
}

// ListActiveByEventType is the lookup used when an event is published:
// active rules for the tenant whose event_type matches exactly. No ordering
// is guaranteed; callers must not depend on execution order.
func (r *AutomationRuleRepository) ListActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]models.AutomationRule, error) {
	query := `
		SELECT id, tenant_id, name, description, event_type, action_type, conditions, action_config,
			is_active, created_by, execution_count, last_executed_at, created_at, updated_at
		FROM automation_rules WHERE tenant_id = $1 AND event_type = $2 AND is_active`

	return r.queryRules(ctx, query, tenantID, eventType)
}

func (r *AutomationRuleRepository) Update(ctx context.Context, rule *models.AutomationRule) error {
	conditions, err := marshalJSONB(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}
	actionConfig, err := marshalJSONB(rule.ActionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}

	query := `
		UPDATE automation_rules
		SET name = $1, description = $2, event_type = $3, action_type = $4, conditions = $5,
		    action_config = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9
		RETURNING updated_at`

	row := r.db.QueryRow(ctx, query,
		rule.Name, rule.Description, rule.EventType, rule.ActionType, conditions,
		actionConfig, rule.IsActive, rule.ID, rule.TenantID)

	if err := row.Scan(&rule.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperrors.NotFoundError{Resource: "automation rule", ID: rule.ID}
		}
		return fmt.Errorf("failed to update automation rule: %w", err)
	}

	return nil
}

func (r *AutomationRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM automation_rules WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete automation rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &apperrors.NotFoundError{Resource: "automation rule", ID: id}
	}

	r.logger.Info("Automation rule deleted", zap.String("id", id.String()))
	return nil
}

// RecordExecution bumps the execution counter and timestamp. Called from
// the internal write-back endpoint when the execution engine has run a rule.
func (r *AutomationRuleRepository) RecordExecution(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE automation_rules
		SET execution_count = execution_count + 1, last_executed_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	result, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to record rule execution: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &apperrors.NotFoundError{Resource: "automation rule", ID: id}
	}

	return nil
}

func (r *AutomationRuleRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM automation_rules WHERE tenant_id = $1`, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count automation rules: %w", err)
	}
	return count, nil
}

func (r *AutomationRuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]models.AutomationRule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query automation rules: %w", err)
	}
	defer rows.Close()

	var rules []models.AutomationRule
	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return rules, nil
}

func (r *AutomationRuleRepository) scanRule(row pgx.Row) (*models.AutomationRule, error) {
	var rule models.AutomationRule
	var conditions, actionConfig []byte

	err := row.Scan(
		&rule.ID, &rule.TenantID, &rule.Name, &rule.Description, &rule.EventType, &rule.ActionType,
		&conditions, &actionConfig, &rule.IsActive, &rule.CreatedBy, &rule.ExecutionCount,
		&rule.LastExecutedAt, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(conditions, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
	}
	if err := unmarshalJSONB(actionConfig, &rule.ActionConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action config: %w", err)
	}

	return &rule, nil
}
