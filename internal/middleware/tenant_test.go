package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/config"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/tenantctx"
)

type MockTenantLookup struct {
	tenants map[string]*models.Tenant
	calls   map[string]int
	errors  map[string]error
	mutex   sync.RWMutex
}

func NewMockTenantLookup() *MockTenantLookup {
	return &MockTenantLookup{
		tenants: make(map[string]*models.Tenant),
		calls:   make(map[string]int),
		errors:  make(map[string]error),
	}
}

func (m *MockTenantLookup) AddTenant(tenant *models.Tenant) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tenants[tenant.Subdomain] = tenant
}

func (m *MockTenantLookup) SetError(method string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.errors[method] = err
}

func (m *MockTenantLookup) GetCallCount(method string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[method]
}

func (m *MockTenantLookup) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.calls["GetBySubdomain"]++

	if err := m.errors["GetBySubdomain"]; err != nil {
		return nil, err
	}

	tenant, exists := m.tenants[subdomain]
	if !exists {
		return nil, &apperrors.TenantNotFoundError{Subdomain: subdomain}
	}
	return tenant, nil
}

type TenantResolverTestSuite struct {
	suite.Suite
	lookup   *MockTenantLookup
	router   *gin.Engine
	resolved *tenantctx.Tenant
	hadCtx   bool
}

func (s *TenantResolverTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.lookup = NewMockTenantLookup()
	s.resolved = nil
	s.hadCtx = false

	cfg := config.Tenancy{
		SubdomainHeader:    "X-Tenant-Subdomain",
		ExcludedHosts:      []string{"localhost", "127.0.0.1", ".local"},
		PublicPathPrefixes: []string{"/health", "/api/v1/auth", "/api/internal", "/metrics", "/swagger"},
	}

	s.router = gin.New()
	s.router.Use(TenantResolver(cfg, s.lookup, zap.NewNop()))

	record := func(c *gin.Context) {
		if t, ok := tenantctx.From(c.Request.Context()); ok {
			s.resolved = &t
			s.hadCtx = true
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
	s.router.GET("/api/v1/projects", record)
	s.router.GET("/health", record)
	s.router.POST("/api/v1/auth/register", record)
}

func (s *TenantResolverTestSuite) request(method, path, host, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if host != "" {
		req.Host = host
	}
	if header != "" {
		req.Header.Set("X-Tenant-Subdomain", header)
	}
	s.router.ServeHTTP(w, req)
	return w
}

func (s *TenantResolverTestSuite) TestResolveFromHostSubdomain() {
	tenant := &models.Tenant{ID: uuid.New(), Subdomain: "acme", IsActive: true}
	s.lookup.AddTenant(tenant)

	w := s.request("GET", "/api/v1/projects", "acme.taskplatform.io", "")

	s.Equal(http.StatusOK, w.Code)
	s.Require().True(s.hadCtx)
	s.Equal(tenant.ID, s.resolved.ID)
	s.Equal("acme", s.resolved.Subdomain)
}

func (s *TenantResolverTestSuite) TestHeaderOverridesHost() {
	acme := &models.Tenant{ID: uuid.New(), Subdomain: "acme", IsActive: true}
	globex := &models.Tenant{ID: uuid.New(), Subdomain: "globex", IsActive: true}
	s.lookup.AddTenant(acme)
	s.lookup.AddTenant(globex)

	w := s.request("GET", "/api/v1/projects", "acme.taskplatform.io", "globex")

	s.Equal(http.StatusOK, w.Code)
	s.Require().True(s.hadCtx)
	s.Equal(globex.ID, s.resolved.ID)
}

func (s *TenantResolverTestSuite) TestHeaderNormalized() {
	tenant := &models.Tenant{ID: uuid.New(), Subdomain: "acme", IsActive: true}
	s.lookup.AddTenant(tenant)

	w := s.request("GET", "/api/v1/projects", "localhost:8080", "  ACME  ")

	s.Equal(http.StatusOK, w.Code)
	s.Require().True(s.hadCtx)
	s.Equal(tenant.ID, s.resolved.ID)
}

func (s *TenantResolverTestSuite) TestExcludedHostNoSubdomain() {
	w := s.request("GET", "/api/v1/projects", "localhost:8080", "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.False(s.hadCtx)
	s.Equal(0, s.lookup.GetCallCount("GetBySubdomain"))
}

func (s *TenantResolverTestSuite) TestExcludedSuffixHost() {
	w := s.request("GET", "/api/v1/projects", "dev.local", "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.False(s.hadCtx)
}

func (s *TenantResolverTestSuite) TestPublicPathWithoutSubdomain() {
	w := s.request("GET", "/health", "localhost:8080", "")

	s.Equal(http.StatusOK, w.Code)
	s.False(s.hadCtx, "public path proceeds without tenant context")
}

func (s *TenantResolverTestSuite) TestPublicPathUnknownTenant() {
	w := s.request("POST", "/api/v1/auth/register", "unknown.taskplatform.io", "")

	s.Equal(http.StatusOK, w.Code)
	s.False(s.hadCtx)
}

func (s *TenantResolverTestSuite) TestUnknownTenantRejected() {
	w := s.request("GET", "/api/v1/projects", "unknown.taskplatform.io", "")

	s.Equal(http.StatusNotFound, w.Code)
	s.False(s.hadCtx)
	s.Contains(w.Body.String(), "tenant not found")
}

func (s *TenantResolverTestSuite) TestInactiveTenantRejected() {
	tenant := &models.Tenant{ID: uuid.New(), Subdomain: "acme", IsActive: false}
	s.lookup.AddTenant(tenant)

	w := s.request("GET", "/api/v1/projects", "acme.taskplatform.io", "")

	s.Equal(http.StatusForbidden, w.Code)
	s.False(s.hadCtx)
	s.Contains(w.Body.String(), "tenant account is inactive")
}

func (s *TenantResolverTestSuite) TestLookupErrorIs500() {
	s.lookup.SetError("GetBySubdomain", fmt.Errorf("connection refused"))

	w := s.request("GET", "/api/v1/projects", "acme.taskplatform.io", "")

	s.Equal(http.StatusInternalServerError, w.Code)
	s.False(s.hadCtx)
}

func TestTenantResolverSuite(t *testing.T) {
	suite.Run(t, new(TenantResolverTestSuite))
}

func TestExtractSubdomain(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Tenancy{
		SubdomainHeader: "X-Tenant-Subdomain",
		ExcludedHosts:   []string{"localhost", "127.0.0.1", ".local"},
	}

	tests := []struct {
		name     string
		host     string
		header   string
		expected string
	}{
		{"host subdomain", "acme.taskplatform.io", "", "acme"},
		{"host with port", "acme.taskplatform.io:8080", "", "acme"},
		{"header wins", "acme.taskplatform.io", "globex", "globex"},
		{"header trimmed and lowered", "", " Globex ", "globex"},
		{"localhost excluded", "localhost:8080", "", ""},
		{"loopback excluded", "127.0.0.1:8080", "", ""},
		{"dot-local suffix excluded", "myapp.local", "", ""},
		{"single label host", "taskplatform", "", ""},
		{"empty host", "", "", ""},
		{"uppercase host", "ACME.taskplatform.io", "", "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			req, err := http.NewRequest("GET", "/api/v1/projects", nil)
			require.NoError(t, err)
			req.Host = tt.host
			if tt.header != "" {
				req.Header.Set("X-Tenant-Subdomain", tt.header)
			}
			c.Request = req

			assert.Equal(t, tt.expected, extractSubdomain(c, cfg))
		})
	}
}

func TestIsExcludedHost(t *testing.T) {
	excluded := []string{"localhost", ".local"}

	assert.True(t, isExcludedHost("localhost", excluded))
	assert.True(t, isExcludedHost("dev.local", excluded))
	assert.False(t, isExcludedHost("acme.taskplatform.io", excluded))
	assert.False(t, isExcludedHost("locallost", excluded))
}

func TestIsPublicPath(t *testing.T) {
	prefixes := []string{"/health", "/api/v1/auth"}

	assert.True(t, isPublicPath("/health", prefixes))
	assert.True(t, isPublicPath("/api/v1/auth/login", prefixes))
	assert.False(t, isPublicPath("/api/v1/projects", prefixes))
}
