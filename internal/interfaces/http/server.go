// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traveldesk/reisekosten/internal/application/service"
	"github.com/traveldesk/reisekosten/internal/export"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config          ServerConfig
	httpServer      *http.Server
	router          *gin.Engine
	rateService     service.RateService
	claimService    service.ClaimService
	approvalService service.ApprovalService
	reportService   service.ReportService
	exporter        *export.SettlementExporter
	logger          Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	rateService service.RateService,
	claimService service.ClaimService,
	approvalService service.ApprovalService,
	reportService service.ReportService,
	exporter *export.SettlementExporter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:          config,
		router:          router,
		rateService:     rateService,
		claimService:    claimService,
		approvalService: approvalService,
		reportService:   reportService,
		exporter:        exporter,
		logger:          logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.rateService, s.claimService, s.approvalService,
		s.reportService, s.exporter, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// API routes
	api := s.router.Group("/api")
	{
		// Rate catalog
		api.GET("/rates/per-diem", handlers.ListPerDiemRates)
		api.POST("/rates/per-diem", handlers.CreatePerDiemRate)
		api.GET("/rates/vehicle", handlers.ListVehicleRates)
		api.POST("/rates/vehicle", handlers.CreateVehicleRate)
		api.POST("/rates/vehicle/:id/deactivate", handlers.DeactivateVehicleRate)

		// Claims
		api.POST("/claims/per-diem/quote", handlers.QuotePerDiem)
		api.POST("/claims/per-diem", handlers.CreatePerDiemClaim)
		api.POST("/claims/mileage/quote", handlers.QuoteMileage)
		api.POST("/claims/mileage", handlers.CreateMileageClaim)
		api.GET("/claims", handlers.ListClaims)
		api.GET("/claims/:id", handlers.GetClaim)

		// Approval requests
		api.POST("/approvals", handlers.SubmitRequest)
		api.GET("/approvals", handlers.ListRequests)
		api.GET("/approvals/overdue", handlers.ListOverdueRequests)
		api.GET("/approvals/:id", handlers.GetRequest)
		api.POST("/approvals/:id/steps/:index/approve", handlers.ApproveStep)
		api.POST("/approvals/:id/steps/:index/reject", handlers.RejectStep)
		api.POST("/approvals/:id/reject", handlers.RejectRequest)

		// Reporting and export
		api.GET("/reports/summary", handlers.ReportSummary)
		api.POST("/exports/settlement", handlers.ExportSettlement)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
