package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type MockRuleSource struct {
	rules map[string][]models.AutomationRule
	err   error
}

func (m *MockRuleSource) ListActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]models.AutomationRule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rules[tenantID.String()+"/"+eventType], nil
}

func TestMatchingRules(t *testing.T) {
	tenantID := uuid.New()
	rule := models.AutomationRule{
		ID:        uuid.New(),
		TenantID:  tenantID,
		EventType: "task.completed",
		IsActive:  true,
		Conditions: map[string]any{
			"priority": "HIGH", // stored, never evaluated
		},
	}

	source := &MockRuleSource{rules: map[string][]models.AutomationRule{
		tenantID.String() + "/task.completed": {rule},
	}}
	lookup := NewAutomationLookup(source, zap.NewNop())

	rules, err := lookup.MatchingRules(context.Background(), tenantID, "task.completed")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.ID, rules[0].ID)
}

func TestMatchingRules_ExactTypeOnly(t *testing.T) {
	tenantID := uuid.New()
	source := &MockRuleSource{rules: map[string][]models.AutomationRule{
		tenantID.String() + "/task.completed": {{ID: uuid.New()}},
	}}
	lookup := NewAutomationLookup(source, zap.NewNop())

	rules, err := lookup.MatchingRules(context.Background(), tenantID, "task.created")
	require.NoError(t, err)
	assert.Empty(t, rules, "no prefix or wildcard matching")
}

func TestMatchingRules_TenantScoped(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	source := &MockRuleSource{rules: map[string][]models.AutomationRule{
		owner.String() + "/task.completed": {{ID: uuid.New()}},
	}}
	lookup := NewAutomationLookup(source, zap.NewNop())

	rules, err := lookup.MatchingRules(context.Background(), other, "task.completed")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestMatchingRules_SourceError(t *testing.T) {
	source := &MockRuleSource{err: fmt.Errorf("db down")}
	lookup := NewAutomationLookup(source, zap.NewNop())

	_, err := lookup.MatchingRules(context.Background(), uuid.New(), "task.completed")
	assert.Error(t, err)
}
