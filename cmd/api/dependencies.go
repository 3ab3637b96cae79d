package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/extractor"
	ingesthandler "github.com/FACorreiaa/loan-ledger/internal/domain/ingest/handler"
	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/parsers"
	ingestrepo "github.com/FACorreiaa/loan-ledger/internal/domain/ingest/repository"
	ingestservice "github.com/FACorreiaa/loan-ledger/internal/domain/ingest/service"

	"github.com/FACorreiaa/loan-ledger/pkg/config"
	"github.com/FACorreiaa/loan-ledger/pkg/cron"
	"github.com/FACorreiaa/loan-ledger/pkg/db"
	"github.com/FACorreiaa/loan-ledger/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	IngestRepo ingestrepo.IngestRepository

	// Services
	OCREngine     *extractor.TesseractEngine
	Extractor     *extractor.Extractor
	Registry      *parsers.Registry
	IngestService *ingestservice.Service
	FileStorage   storage.Storage
	Scheduler     *cron.Scheduler

	// Handlers
	IngestHandler *ingesthandler.IngestHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize repositories
	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
	})
	if err != nil {
		return err
	}

	d.DB = database
	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	d.IngestRepo = ingestrepo.NewPostgresIngestRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	engine, err := extractor.NewTesseractEngine(d.Config.Ingest.OCRLanguages...)
	if err != nil {
		return fmt.Errorf("failed to init OCR engine: %w", err)
	}
	d.OCREngine = engine
	d.Extractor = extractor.New(engine, d.Logger)

	registry, err := parsers.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to init parser registry: %w", err)
	}
	d.Registry = registry

	d.IngestService = ingestservice.New(d.IngestRepo, d.Extractor, d.Registry, d.Logger)

	// File storage for uploads (defaults to local storage)
	storageCfg := &storage.Config{
		Type:      storage.StorageTypeLocal,
		LocalPath: d.Config.Ingest.UploadDir,
	}
	fileStorage, err := storage.New(storageCfg)
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	// Nightly ingest health sweep
	d.Scheduler = cron.NewScheduler(d.IngestRepo, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.IngestHandler = ingesthandler.NewIngestHandler(d.IngestService, d.IngestRepo, d.FileStorage, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.OCREngine != nil {
		if err := d.OCREngine.Close(); err != nil {
			d.Logger.Warn("failed to close OCR engine", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
