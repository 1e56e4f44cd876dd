package project

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/tenantctx"
)

type MockRepository struct {
	projects map[uuid.UUID]*models.Project
	errors   map[string]error
	mutex    sync.RWMutex
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		projects: make(map[uuid.UUID]*models.Project),
		errors:   make(map[string]error),
	}
}

func (m *MockRepository) Create(ctx context.Context, project *models.Project) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.errors["Create"]; err != nil {
		return err
	}
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	project, exists := m.projects[id]
	if !exists || project.TenantID != tenantID {
		return nil, &apperrors.NotFoundError{Resource: "project", ID: id}
	}
	cp := *project
	return &cp, nil
}

func (m *MockRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Project, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var out []models.Project
	for _, p := range m.projects {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockRepository) Update(ctx context.Context, project *models.Project) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.projects[project.ID]; !exists {
		return &apperrors.NotFoundError{Resource: "project", ID: project.ID}
	}
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	project, exists := m.projects[id]
	if !exists || project.TenantID != tenantID {
		return &apperrors.NotFoundError{Resource: "project", ID: id}
	}
	delete(m.projects, id)
	return nil
}

func (m *MockRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var count int64
	for _, p := range m.projects {
		if p.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

type MockGate struct {
	err   error
	calls int
	mutex sync.Mutex
}

func (m *MockGate) CheckAndAdmit(ctx context.Context, tenantID uuid.UUID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++
	return m.err
}

type publishedEvent struct {
	TenantID     uuid.UUID
	EventType    string
	ResourceID   uuid.UUID
	ResourceType string
	Payload      map[string]any
}

type MockEventSink struct {
	events []publishedEvent
	mutex  sync.Mutex
}

func (m *MockEventSink) Publish(ctx context.Context, tenantID uuid.UUID, eventType string, resourceID uuid.UUID, resourceType string, payload map[string]any) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.events = append(m.events, publishedEvent{tenantID, eventType, resourceID, resourceType, payload})
}

func (m *MockEventSink) Events() []publishedEvent {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]publishedEvent(nil), m.events...)
}

type ProjectServiceTestSuite struct {
	suite.Suite
	repo     *MockRepository
	gate     *MockGate
	events   *MockEventSink
	service  *Service
	tenantID uuid.UUID
	ctx      context.Context
}

func (s *ProjectServiceTestSuite) SetupTest() {
	s.repo = NewMockRepository()
	s.gate = &MockGate{}
	s.events = &MockEventSink{}
	s.service = NewService(s.repo, s.gate, s.events, zap.NewNop())
	s.tenantID = uuid.New()
	s.ctx = tenantctx.With(context.Background(), s.tenantID, "acme")
}

func (s *ProjectServiceTestSuite) TestCreate() {
	project, err := s.service.Create(s.ctx, &models.CreateProjectRequest{
		Name:    "Launch",
		OwnerID: uuid.New(),
	})
	s.Require().NoError(err)
	s.Equal(s.tenantID, project.TenantID)
	s.Equal(models.ProjectPlanning, project.Status)
	s.Equal(models.PriorityMedium, project.Priority)
	s.Equal(1, s.gate.calls)

	events := s.events.Events()
	s.Require().Len(events, 1)
	s.Equal("project.created", events[0].EventType)
	s.Equal(project.ID, events[0].ResourceID)
	s.Equal("project", events[0].ResourceType)
}

func (s *ProjectServiceTestSuite) TestCreate_QuotaRejected() {
	s.gate.err = &apperrors.QuotaExceededError{TenantID: s.tenantID, Current: 50, Limit: 50}

	_, err := s.service.Create(s.ctx, &models.CreateProjectRequest{Name: "Over", OwnerID: uuid.New()})
	s.Require().Error(err)

	var quotaErr *apperrors.QuotaExceededError
	s.True(errors.As(err, &quotaErr))
	s.Empty(s.events.Events(), "no event for a rejected create")
	s.Empty(s.repo.projects, "nothing persisted")
}

func (s *ProjectServiceTestSuite) TestCreate_NoTenantContext() {
	_, err := s.service.Create(context.Background(), &models.CreateProjectRequest{Name: "X", OwnerID: uuid.New()})
	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrTenantContextMissing))
	s.Equal(0, s.gate.calls, "no work without a tenant binding")
}

func (s *ProjectServiceTestSuite) TestGet_TenantScoped() {
	project, err := s.service.Create(s.ctx, &models.CreateProjectRequest{Name: "Mine", OwnerID: uuid.New()})
	s.Require().NoError(err)

	otherCtx := tenantctx.With(context.Background(), uuid.New(), "globex")
	_, err = s.service.Get(otherCtx, project.ID)

	var notFound *apperrors.NotFoundError
	s.True(errors.As(err, &notFound), "foreign tenant sees not-found, not forbidden")
}

func (s *ProjectServiceTestSuite) TestUpdate_TracksChanges() {
	project, err := s.service.Create(s.ctx, &models.CreateProjectRequest{Name: "Before", OwnerID: uuid.New()})
	s.Require().NoError(err)

	newName := "After"
	newStatus := models.ProjectActive
	updated, err := s.service.Update(s.ctx, project.ID, &models.UpdateProjectRequest{
		Name:   &newName,
		Status: &newStatus,
	})
	s.Require().NoError(err)
	s.Equal("After", updated.Name)
	s.Equal(models.ProjectActive, updated.Status)

	events := s.events.Events()
	s.Require().Len(events, 2) // created + updated
	s.Equal("project.updated", events[1].EventType)

	changes, ok := events[1].Payload["changes"].(map[string]any)
	s.Require().True(ok)
	s.Contains(changes, "name")
	s.Contains(changes, "status")
	s.NotContains(changes, "priority")

	nameChange := changes["name"].(map[string]any)
	s.Equal("Before", nameChange["old"])
	s.Equal("After", nameChange["new"])
}

func (s *ProjectServiceTestSuite) TestUpdate_NoChangeNoEvent() {
	project, err := s.service.Create(s.ctx, &models.CreateProjectRequest{Name: "Same", OwnerID: uuid.New()})
	s.Require().NoError(err)

	sameName := "Same"
	_, err = s.service.Update(s.ctx, project.ID, &models.UpdateProjectRequest{Name: &sameName})
	s.Require().NoError(err)

	s.Len(s.events.Events(), 1, "only the create event")
}

func (s *ProjectServiceTestSuite) TestDelete_PublishesAfterDelete() {
	project, err := s.service.Create(s.ctx, &models.CreateProjectRequest{Name: "Doomed", OwnerID: uuid.New()})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, project.ID))

	_, err = s.service.Get(s.ctx, project.ID)
	s.Error(err)

	events := s.events.Events()
	s.Require().Len(events, 2)
	s.Equal("project.deleted", events[1].EventType)
	s.Equal("Doomed", events[1].Payload["name"])
}

func (s *ProjectServiceTestSuite) TestDelete_NotFound() {
	err := s.service.Delete(s.ctx, uuid.New())
	s.Require().Error(err)
	s.Len(s.events.Events(), 0)
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
