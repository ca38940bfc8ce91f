package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/traveldesk/reisekosten/internal/application/service"
	"github.com/traveldesk/reisekosten/internal/config"
	"github.com/traveldesk/reisekosten/internal/export"
	"github.com/traveldesk/reisekosten/internal/infrastructure/persistence/repository"
	"github.com/traveldesk/reisekosten/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/traveldesk/reisekosten/internal/interfaces/http"
	"github.com/traveldesk/reisekosten/pkg/database"
	"github.com/traveldesk/reisekosten/pkg/utils"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting travel expense service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create database directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create export directory", zap.Error(err))
	}

	// Initialize persistence
	txDB := sqlite.NewDB(db.DB, logger)
	rateRepo := repository.NewRateRepository(txDB, logger)
	claimRepo := repository.NewClaimRepository(txDB, logger)
	approvalRepo := repository.NewApprovalRepository(txDB, logger)

	financeThreshold, err := cfg.FinanceThreshold()
	if err != nil {
		logger.Fatal("Invalid finance threshold", zap.Error(err))
	}
	hrThreshold, err := cfg.HRThreshold()
	if err != nil {
		logger.Fatal("Invalid HR threshold", zap.Error(err))
	}

	// Initialize services
	serviceLogger := utils.NewSugarAdapter(logger)
	rateService := service.NewRateService(rateRepo, serviceLogger)
	claimService := service.NewClaimService(rateRepo, claimRepo, serviceLogger)
	approvalService := service.NewApprovalService(approvalRepo, claimRepo, txDB,
		service.ChainPolicy{
			FinanceThreshold: financeThreshold,
			HRThreshold:      hrThreshold,
		}, serviceLogger)
	reportService := service.NewReportService(claimRepo, approvalRepo, serviceLogger)

	exporter := export.NewSettlementExporter(approvalRepo, claimRepo,
		cfg.Export.OutputDir, cfg.Export.CompanyName, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, rateService, claimService, approvalService, reportService, exporter, serviceLogger)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
