// Package automation manages per-tenant automation rules and the event audit
// trail they hang off of. Rules are configuration only at this layer; nothing
// here executes actions or evaluates conditions.
package automation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/tenantctx"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *models.AutomationRule) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AutomationRule, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.AutomationRule, error)
	Update(ctx context.Context, rule *models.AutomationRule) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	RecordExecution(ctx context.Context, tenantID, id uuid.UUID) error
}

// RuleMatcher is the event-type lookup; satisfied by events.AutomationLookup.
type RuleMatcher interface {
	MatchingRules(ctx context.Context, tenantID uuid.UUID, eventType string) ([]models.AutomationRule, error)
}

type EventLogReader interface {
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.EventLog, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.ExecutionStatus) ([]models.EventLog, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status models.ExecutionStatus) (int64, error)
}

type Service struct {
	rules   RuleRepository
	logs    EventLogReader
	matcher RuleMatcher
	logger  *zap.Logger
}

func NewService(rules RuleRepository, logs EventLogReader, matcher RuleMatcher, logger *zap.Logger) *Service {
	return &Service{
		rules:   rules,
		logs:    logs,
		matcher: matcher,
		logger:  logger,
	}
}

func (s *Service) CreateRule(ctx context.Context, req *models.CreateAutomationRuleRequest) (*models.AutomationRule, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	rule := &models.AutomationRule{
		ID:           uuid.New(),
		TenantID:     t.ID,
		Name:         req.Name,
		Description:  req.Description,
		EventType:    req.EventType,
		ActionType:   req.ActionType,
		Conditions:   req.Conditions,
		ActionConfig: req.ActionConfig,
		IsActive:     active,
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create automation rule: %w", err)
	}

	s.logger.Info("Automation rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("tenant_id", t.ID.String()),
		zap.String("event_type", rule.EventType))

	return rule, nil
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*models.AutomationRule, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.rules.GetByID(ctx, t.ID, id)
}

func (s *Service) ListRules(ctx context.Context) ([]models.AutomationRule, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.rules.ListByTenant(ctx, t.ID)
}

func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req *models.UpdateAutomationRuleRequest) (*models.AutomationRule, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}

	rule, err := s.rules.GetByID(ctx, t.ID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.EventType != nil {
		rule.EventType = *req.EventType
	}
	if req.ActionType != nil {
		rule.ActionType = *req.ActionType
	}
	if req.Conditions != nil {
		rule.Conditions = req.Conditions
	}
	if req.ActionConfig != nil {
		rule.ActionConfig = req.ActionConfig
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("Automation rule updated",
		zap.String("rule_id", rule.ID.String()),
		zap.String("tenant_id", t.ID.String()))

	return rule, nil
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return err
	}

	if err := s.rules.Delete(ctx, t.ID, id); err != nil {
		return err
	}

	s.logger.Info("Automation rule deleted",
		zap.String("rule_id", id.String()),
		zap.String("tenant_id", t.ID.String()))
	return nil
}

// RulesForEventType returns the tenant's active rules whose event type
// matches exactly. Conditions are not evaluated; a returned rule only means
// it is configured for the event type.
func (s *Service) RulesForEventType(ctx context.Context, eventType string) ([]models.AutomationRule, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.matcher.MatchingRules(ctx, t.ID, eventType)
}

// RecordExecution is the write-back for the external execution engine: it
// bumps the rule's execution counter after the engine has run an action.
func (s *Service) RecordExecution(ctx context.Context, tenantID, ruleID uuid.UUID) error {
	if err := s.rules.RecordExecution(ctx, tenantID, ruleID); err != nil {
		return err
	}

	s.logger.Info("Automation rule execution recorded",
		zap.String("rule_id", ruleID.String()),
		zap.String("tenant_id", tenantID.String()))
	return nil
}

// ToggleRule flips the active flag. Inactive rules are invisible to the
// event-type lookup.
func (s *Service) ToggleRule(ctx context.Context, id uuid.UUID, active bool) (*models.AutomationRule, error) {
	return s.UpdateRule(ctx, id, &models.UpdateAutomationRuleRequest{IsActive: &active})
}

func (s *Service) RecentEvents(ctx context.Context, limit int) ([]models.EventLog, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.logs.ListRecent(ctx, t.ID, limit)
}

func (s *Service) EventsByStatus(ctx context.Context, status models.ExecutionStatus) ([]models.EventLog, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.logs.ListByStatus(ctx, t.ID, status)
}

// EventStatusCounts returns the audit-trail breakdown across all terminal
// statuses.
func (s *Service) EventStatusCounts(ctx context.Context) (map[models.ExecutionStatus]int64, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ExecutionStatus]int64, 4)
	for _, status := range []models.ExecutionStatus{
		models.StatusSuccess,
		models.StatusFailed,
		models.StatusSkipped,
		models.StatusNoRulesMatched,
	} {
		count, err := s.logs.CountByStatus(ctx, t.ID, status)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s events: %w", status, err)
		}
		counts[status] = count
	}
	return counts, nil
}
