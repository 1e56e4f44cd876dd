package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type RuleSource interface {
	ListActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]models.AutomationRule, error)
}

// AutomationLookup finds the active rules configured for an event type.
// It matches on (tenant, event type) only: rule conditions are stored but
// NOT evaluated against the event payload. Until an execution engine plugs
// in here, every published event terminates as NO_RULES_MATCHED, and a
// matching rule must not be treated as a rule whose conditions passed.
type AutomationLookup struct {
	rules  RuleSource
	logger *zap.Logger
}

func NewAutomationLookup(rules RuleSource, logger *zap.Logger) *AutomationLookup {
	return &AutomationLookup{
		rules:  rules,
		logger: logger,
	}
}

// MatchingRules returns the tenant's active rules whose event type matches
// exactly. Order is unspecified; callers must not depend on it.
func (l *AutomationLookup) MatchingRules(ctx context.Context, tenantID uuid.UUID, eventType string) ([]models.AutomationRule, error) {
	rules, err := l.rules.ListActiveByEventType(ctx, tenantID, eventType)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Automation rule lookup",
		zap.String("tenant_id", tenantID.String()),
		zap.String("event_type", eventType),
		zap.Int("matched", len(rules)))

	return rules, nil
}
