package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/arisetyawan/multi-tenant-task-platform/docs"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/config"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/middleware"
)

type Server struct {
	router            *gin.Engine
	config            *config.Config
	tokens            *middleware.TokenManager
	tenantHandler     *TenantHandler
	projectHandler    *ProjectHandler
	taskHandler       *TaskHandler
	automationHandler *AutomationHandler
	authHandler       *AuthHandler
	logger            *zap.Logger
}

func NewServer(
	cfg *config.Config,
	tenantSvc TenantServiceInterface,
	projectSvc ProjectServiceInterface,
	taskSvc TaskServiceInterface,
	automationSvc AutomationServiceInterface,
	tenantLookup middleware.TenantLookup,
	logger *zap.Logger,
) *Server {
	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())

	if cfg.Metrics.Enabled {
		router.Use(middleware.PrometheusMiddleware())
	}

	// Tenant resolution runs for every request; public path prefixes pass
	// through without a tenant, everything else requires one.
	router.Use(middleware.TenantResolver(cfg.Tenancy, tenantLookup, logger))

	tokens := middleware.NewTokenManager(cfg.Auth)

	return &Server{
		router:            router,
		config:            cfg,
		tokens:            tokens,
		tenantHandler:     NewTenantHandler(tenantSvc, logger),
		projectHandler:    NewProjectHandler(projectSvc, logger),
		taskHandler:       NewTaskHandler(taskSvc, logger),
		automationHandler: NewAutomationHandler(automationSvc, logger),
		authHandler:       NewAuthHandler(tokens, logger),
		logger:            logger,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	// Prometheus metrics endpoint (if enabled)
	if s.config.Metrics.Enabled {
		s.router.GET(s.config.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Swagger documentation
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes: registration and login need no tenant context
	auth := s.router.Group("/api/v1/auth")
	{
		auth.POST("/register", s.tenantHandler.Register)
		auth.POST("/login", s.authHandler.Login)
	}

	// Internal service-to-service routes, no tenant context
	internalTenants := s.router.Group("/api/internal/tenants")
	{
		internalTenants.GET("", s.tenantHandler.ListTenants)
		internalTenants.GET("/:id", s.tenantHandler.GetTenant)
		internalTenants.GET("/:id/usage", s.tenantHandler.GetTenantUsage)
		internalTenants.POST("/:id/deactivate", s.tenantHandler.DeactivateTenant)
		internalTenants.POST("/:id/reactivate", s.tenantHandler.ReactivateTenant)
	}

	internalRules := s.router.Group("/api/internal/automation-rules")
	{
		internalRules.POST("/:id/executions", s.automationHandler.RecordExecution)
	}

	// Tenant-scoped API: the resolver has installed the tenant context by
	// the time these handlers run.
	v1 := s.router.Group("/api/v1")

	if s.config.Auth.RequireAuth {
		v1.Use(s.tokens.JWTAuth())
	}

	{
		tenant := v1.Group("/tenant")
		{
			tenant.GET("", s.tenantHandler.CurrentTenant)
			tenant.GET("/usage", s.tenantHandler.CurrentUsage)
		}

		projects := v1.Group("/projects")
		{
			projects.POST("", s.projectHandler.CreateProject)
			projects.GET("", s.projectHandler.ListProjects)
			projects.GET("/:id", s.projectHandler.GetProject)
			projects.PUT("/:id", s.projectHandler.UpdateProject)
			projects.DELETE("/:id", s.projectHandler.DeleteProject)
			projects.GET("/:id/tasks", s.taskHandler.ListProjectTasks)
		}

		tasks := v1.Group("/tasks")
		{
			tasks.POST("", s.taskHandler.CreateTask)
			tasks.GET("", s.taskHandler.ListTasks)
			tasks.GET("/:id", s.taskHandler.GetTask)
			tasks.PUT("/:id", s.taskHandler.UpdateTask)
			tasks.DELETE("/:id", s.taskHandler.DeleteTask)
		}

		rules := v1.Group("/automation-rules")
		{
			rules.POST("", s.automationHandler.CreateRule)
			rules.GET("", s.automationHandler.ListRules)
			rules.GET("/:id", s.automationHandler.GetRule)
			rules.PUT("/:id", s.automationHandler.UpdateRule)
			rules.DELETE("/:id", s.automationHandler.DeleteRule)
			rules.POST("/:id/toggle", s.automationHandler.ToggleRule)
		}

		events := v1.Group("/events")
		{
			events.GET("", s.automationHandler.ListEvents)
			events.GET("/stats", s.automationHandler.EventStats)
		}
	}
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "multi-tenant-task-platform",
	})
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Tenant-Subdomain")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
