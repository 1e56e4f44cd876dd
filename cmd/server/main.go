//	@title			Multi-Tenant Task Platform API
//	@version		1.0
//	@description	A multi-tenant project and task management backend with subdomain-based tenant isolation, per-tier quota enforcement, and an audited domain event pipeline backed by PostgreSQL and RabbitMQ.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@example.com

//	@license.name	MIT
//	@license.url	http://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/api"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/config"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/repository"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/services/automation"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/services/events"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/services/project"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/services/quota"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/services/task"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/services/tenant"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("Starting multi-tenant task platform")

	// Initialize database
	db, err := repository.NewDatabase(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db.Pool(), logger)
	projectRepo := repository.NewProjectRepository(db.Pool(), logger)
	taskRepo := repository.NewTaskRepository(db.Pool(), logger)
	eventLogRepo := repository.NewEventLogRepository(db.Pool(), logger)
	ruleRepo := repository.NewAutomationRuleRepository(db.Pool(), logger)

	// Initialize event bus forwarder when enabled
	var forwarder events.Forwarder
	if cfg.EventBus.Enabled {
		bus := events.NewBusForwarder(cfg.EventBus.URL, cfg.EventBus.Queue, logger)
		if err := bus.Connect(); err != nil {
			logger.Fatal("Failed to connect to event bus", zap.Error(err))
		}
		defer bus.Close()
		forwarder = bus
	}

	// Initialize services
	publisher := events.NewPublisher(eventLogRepo, forwarder, cfg.EventBus, logger)
	gate := quota.NewGate(tenantRepo, projectRepo, taskRepo, logger)
	tenantSvc := tenant.NewService(tenantRepo, gate, publisher, logger)
	projectSvc := project.NewService(projectRepo, gate, publisher, logger)
	taskSvc := task.NewService(taskRepo, projectRepo, gate, publisher, logger)
	ruleLookup := events.NewAutomationLookup(ruleRepo, logger)
	automationSvc := automation.NewService(ruleRepo, eventLogRepo, ruleLookup, logger)

	// Initialize API server
	server := api.NewServer(cfg, tenantSvc, projectSvc, taskSvc, automationSvc, tenantRepo, logger)
	server.SetupRoutes()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.GetRouter(),
	}

	go func() {
		logger.Info("Server starting", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func initLogger(level string) (*zap.Logger, error) {
	var zapConfig zap.Config

	if gin.Mode() == gin.DebugMode {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	switch level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapConfig.Build()
}
