package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type MockTenantStore struct {
	tenants map[uuid.UUID]*models.Tenant
	errors  map[string]error
	mutex   sync.RWMutex
}

func NewMockTenantStore() *MockTenantStore {
	return &MockTenantStore{
		tenants: make(map[uuid.UUID]*models.Tenant),
		errors:  make(map[string]error),
	}
}

func (m *MockTenantStore) AddTenant(tenant *models.Tenant) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tenants[tenant.ID] = tenant
}

func (m *MockTenantStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if err := m.errors["GetByID"]; err != nil {
		return nil, err
	}

	tenant, exists := m.tenants[id]
	if !exists {
		return nil, &apperrors.TenantNotFoundError{TenantID: id}
	}
	return tenant, nil
}

type MockCounter struct {
	counts map[uuid.UUID]int64
	err    error
	mutex  sync.RWMutex
}

func NewMockCounter() *MockCounter {
	return &MockCounter{counts: make(map[uuid.UUID]int64)}
}

func (m *MockCounter) SetCount(tenantID uuid.UUID, count int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.counts[tenantID] = count
}

func (m *MockCounter) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.err != nil {
		return 0, m.err
	}
	return m.counts[tenantID], nil
}

type GateTestSuite struct {
	suite.Suite
	tenants  *MockTenantStore
	projects *MockCounter
	tasks    *MockCounter
	gate     *Gate
}

func (s *GateTestSuite) SetupTest() {
	s.tenants = NewMockTenantStore()
	s.projects = NewMockCounter()
	s.tasks = NewMockCounter()
	s.gate = NewGate(s.tenants, s.projects, s.tasks, zap.NewNop())
}

func (s *GateTestSuite) addTenant(limit *int) uuid.UUID {
	id := uuid.New()
	s.tenants.AddTenant(&models.Tenant{
		ID:         id,
		Subdomain:  "acme",
		QuotaLimit: limit,
		IsActive:   true,
	})
	return id
}

func (s *GateTestSuite) TestAdmitBelowLimit() {
	limit := 50
	id := s.addTenant(&limit)
	s.projects.SetCount(id, 30)
	s.tasks.SetCount(id, 19) // combined 49, one below the limit

	s.NoError(s.gate.CheckAndAdmit(context.Background(), id))
}

func (s *GateTestSuite) TestRejectAtLimit() {
	limit := 50
	id := s.addTenant(&limit)
	s.projects.SetCount(id, 30)
	s.tasks.SetCount(id, 20) // combined 50, exactly at the limit

	err := s.gate.CheckAndAdmit(context.Background(), id)
	s.Require().Error(err)

	var quotaErr *apperrors.QuotaExceededError
	s.Require().True(errors.As(err, &quotaErr))
	s.Equal(int64(50), quotaErr.Current)
	s.Equal(50, quotaErr.Limit)
	s.Contains(quotaErr.Error(), "upgrade your subscription")
}

func (s *GateTestSuite) TestRejectAboveLimit() {
	limit := 50
	id := s.addTenant(&limit)
	s.projects.SetCount(id, 60)

	var quotaErr *apperrors.QuotaExceededError
	s.True(errors.As(s.gate.CheckAndAdmit(context.Background(), id), &quotaErr))
}

func (s *GateTestSuite) TestUnlimitedTierAlwaysAdmits() {
	id := s.addTenant(nil)
	s.projects.SetCount(id, 500_000)
	s.tasks.SetCount(id, 500_000)

	s.NoError(s.gate.CheckAndAdmit(context.Background(), id))
}

func (s *GateTestSuite) TestUnlimitedTierSkipsCounting() {
	id := s.addTenant(nil)
	s.projects.err = fmt.Errorf("counter should not be called")
	s.tasks.err = fmt.Errorf("counter should not be called")

	s.NoError(s.gate.CheckAndAdmit(context.Background(), id))
}

func (s *GateTestSuite) TestUnknownTenant() {
	err := s.gate.CheckAndAdmit(context.Background(), uuid.New())
	s.Require().Error(err)

	var notFound *apperrors.TenantNotFoundError
	s.True(errors.As(err, &notFound))

	var quotaErr *apperrors.QuotaExceededError
	s.False(errors.As(err, &quotaErr), "not-found must stay distinguishable from quota rejection")
}

func (s *GateTestSuite) TestCounterErrorPropagates() {
	limit := 50
	id := s.addTenant(&limit)
	s.projects.err = fmt.Errorf("db down")

	err := s.gate.CheckAndAdmit(context.Background(), id)
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to count projects")
}

func (s *GateTestSuite) TestUsage() {
	limit := 50
	id := s.addTenant(&limit)
	s.projects.SetCount(id, 12)
	s.tasks.SetCount(id, 30)

	usage, err := s.gate.Usage(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(id, usage.TenantID)
	s.Equal(int64(42), usage.CurrentUsage)
	s.Equal(int64(12), usage.ProjectCount)
	s.Equal(int64(30), usage.TaskCount)
	s.Require().NotNil(usage.QuotaLimit)
	s.Equal(50, *usage.QuotaLimit)
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func TestNewGate(t *testing.T) {
	gate := NewGate(NewMockTenantStore(), NewMockCounter(), NewMockCounter(), zap.NewNop())
	require.NotNil(t, gate)
	assert.NotNil(t, gate.tenants)
}
