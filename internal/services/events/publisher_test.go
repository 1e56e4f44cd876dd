package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/config"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type MockStore struct {
	entries []*models.EventLog
	err     error
	mutex   sync.Mutex
}

func (m *MockStore) Create(ctx context.Context, entry *models.EventLog) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockStore) Entries() []*models.EventLog {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*models.EventLog(nil), m.entries...)
}

type MockForwarder struct {
	envelopes []Envelope
	err       error
	mutex     sync.Mutex
}

func (m *MockForwarder) Forward(ctx context.Context, envelope Envelope) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return m.err
	}
	m.envelopes = append(m.envelopes, envelope)
	return nil
}

func (m *MockForwarder) Envelopes() []Envelope {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]Envelope(nil), m.envelopes...)
}

type PublisherTestSuite struct {
	suite.Suite
	store     *MockStore
	forwarder *MockForwarder
}

func (s *PublisherTestSuite) SetupTest() {
	s.store = &MockStore{}
	s.forwarder = &MockForwarder{}
}

func (s *PublisherTestSuite) newPublisher(enabled bool) *Publisher {
	return NewPublisher(s.store, s.forwarder, config.EventBus{
		Enabled:        enabled,
		Queue:          "domain-events",
		Source:         "test-platform",
		PublishTimeout: time.Second,
	}, zap.NewNop())
}

func (s *PublisherTestSuite) TestPublish_ForwardingDisabled() {
	p := s.newPublisher(false)
	tenantID := uuid.New()
	resourceID := uuid.New()

	p.Publish(context.Background(), tenantID, "project.created", resourceID, "project", map[string]any{"name": "alpha"})

	s.Empty(s.forwarder.Envelopes())

	entries := s.store.Entries()
	s.Require().Len(entries, 1)
	entry := entries[0]
	s.Equal(models.StatusNoRulesMatched, entry.Status)
	s.Equal(tenantID, entry.TenantID)
	s.Equal("project.created", entry.EventType)
	s.Equal(resourceID, entry.ResourceID)
	s.Equal("project", entry.ResourceType)
	s.Empty(entry.ErrorMessage)
	s.GreaterOrEqual(entry.ExecutionDurationMs, int64(0))
}

func (s *PublisherTestSuite) TestPublish_ForwardingSucceeds() {
	p := s.newPublisher(true)
	tenantID := uuid.New()

	p.Publish(context.Background(), tenantID, "task.created", uuid.New(), "task", map[string]any{"title": "do it"})

	envelopes := s.forwarder.Envelopes()
	s.Require().Len(envelopes, 1)
	s.Equal("task.created", envelopes[0].EventType)
	s.Equal(tenantID, envelopes[0].TenantID)
	s.Equal("test-platform", envelopes[0].Source)

	entries := s.store.Entries()
	s.Require().Len(entries, 1)
	s.Equal(models.StatusNoRulesMatched, entries[0].Status)
}

func (s *PublisherTestSuite) TestPublish_ForwardingFails() {
	s.forwarder.err = fmt.Errorf("broker unreachable")
	p := s.newPublisher(true)
	tenantID := uuid.New()

	p.Publish(context.Background(), tenantID, "task.created", uuid.New(), "task", nil)

	entries := s.store.Entries()
	s.Require().Len(entries, 1, "exactly one audit row per publish")

	entry := entries[0]
	s.Equal(models.StatusFailed, entry.Status)
	s.NotEmpty(entry.ErrorMessage)
	s.Contains(entry.ErrorMessage, "broker unreachable")
	s.NotEmpty(entry.ErrorStackTrace)
	s.LessOrEqual(len(entry.ErrorStackTrace), maxErrorTraceLen+len("\n... (truncated)"))
}

func (s *PublisherTestSuite) TestPublish_StoreErrorSwallowed() {
	s.store.err = fmt.Errorf("insert failed")
	p := s.newPublisher(false)

	// Must not panic or surface the error in any way
	p.Publish(context.Background(), uuid.New(), "project.created", uuid.New(), "project", nil)
}

func (s *PublisherTestSuite) TestPublish_CancelledCallerContext() {
	p := s.newPublisher(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.Publish(ctx, uuid.New(), "project.deleted", uuid.New(), "project", nil)

	s.Len(s.store.Entries(), 1, "audit write survives caller cancellation")
}

func (s *PublisherTestSuite) TestPublish_NilForwarderWhileEnabled() {
	p := NewPublisher(s.store, nil, config.EventBus{
		Enabled:        true,
		PublishTimeout: time.Second,
	}, zap.NewNop())

	p.Publish(context.Background(), uuid.New(), "task.deleted", uuid.New(), "task", nil)

	entries := s.store.Entries()
	s.Require().Len(entries, 1)
	s.Equal(models.StatusNoRulesMatched, entries[0].Status)
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherTestSuite))
}

func TestTruncate(t *testing.T) {
	short := "short trace"
	if got := truncate(short, 2000); got != short {
		t.Errorf("short input must pass through, got %q", got)
	}

	long := strings.Repeat("x", 5000)
	got := truncate(long, 2000)
	if !strings.HasPrefix(got, strings.Repeat("x", 2000)) {
		t.Error("truncated output must keep the leading bytes")
	}
	if !strings.HasSuffix(got, "(truncated)") {
		t.Error("truncated output must be marked")
	}
}
