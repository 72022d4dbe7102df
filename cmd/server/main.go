package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/ingestion"
	admission "github.com/storefront/backend/internal/application/quality"
	"github.com/storefront/backend/internal/application/taxonomy"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const (
	serviceVersion        = "1.0.0"
	metricsExportInterval = 30 * time.Second
	shutdownTimeout       = 30 * time.Second
)

// mappingStore is the mapping repository seen by the normalizer and the
// taxonomy handler, cached or not
type mappingStore interface {
	catalog.CategoryMappingRepository
	handler.MappingDeactivator
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, metricsExportInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	admissionMetrics, err := telemetry.NewAdmissionMetrics(meterProvider)
	if err != nil {
		log.Fatal("Failed to create admission metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.DBName = cfg.Database.DBName
		if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}

	if err := runMigrations(db, cfg, log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	sessionRepo := persistence.NewGormImportSessionRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	metricsRepo := persistence.NewGormQualityMetricsRepository(db.DB)
	settingsRepo := persistence.NewGormQualitySettingsRepository(db.DB)

	mappingCache, releaseCache, err := cache.NewMappingCacheFactory(cfg.Taxonomy, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create()
	if err != nil {
		log.Fatal("Failed to create category mapping cache", zap.Error(err))
	}
	defer releaseCache()

	var mappings mappingStore = persistence.NewGormCategoryMappingRepository(db.DB)
	if mappingCache != nil {
		mappings = cache.NewCachedMappingRepository(mappings, mappingCache, cfg.Taxonomy.MappingCacheTTL, log)
	}

	if err := taxonomy.EnsureCategories(ctx, categoryRepo, taxonomy.DefaultKeywordRules, cfg.Taxonomy.DefaultCategorySlug, log); err != nil {
		log.Fatal("Failed to seed categories", zap.Error(err))
	}

	// Services
	defaults := quality.DefaultSettings()
	defaults.Duplicate.Strategy = cfg.Ingestion.DuplicateStrategy
	settingsService := admission.NewSettingsService(settingsRepo, defaults, log)
	admissionService := admission.NewAdmissionService(settingsService, productRepo, metricsRepo, syncLogRepo, log,
		admission.WithWorkers(cfg.Ingestion.Workers),
		admission.WithObserver(admissionMetrics),
	)
	normalizer := taxonomy.NewNormalizer(categoryRepo, mappings,
		taxonomy.NewTableMatcher(taxonomy.DefaultKeywordRules),
		cfg.Taxonomy.DefaultCategorySlug, log)
	ingestionService := ingestion.NewService(
		ingestion.NewSessionManager(sessionRepo, log),
		normalizer,
		admissionService,
		productRepo,
		syncLogRepo,
		log,
		ingestion.Options{
			Workers:          cfg.Ingestion.Workers,
			DefaultBatchSize: cfg.Ingestion.DefaultBatchSize,
			DefaultCurrency:  cfg.Ingestion.DefaultCurrency,
		},
	)

	// HTTP
	engine := router.NewEngine(router.EngineOptions{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           middleware.DefaultCORSConfig(),
	})

	checks := map[string]handler.Pinger{"database": db}
	if p, ok := mappingCache.(handler.Pinger); ok {
		checks["redis"] = p
	}
	handler.NewHealthHandler(checks).RegisterRoutes(engine)

	router.NewRouter(engine).Register(
		handler.NewAdmissionHandler(settingsService, admissionService),
		handler.NewIngestionHandler(ingestionService),
		handler.NewTaxonomyHandler(categoryRepo, mappings),
	).Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies pending migrations from the configured directory,
// or from the set embedded in the binary when none is configured
func runMigrations(db *persistence.Database, cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	var m *migration.Migrator
	if cfg.Database.MigrationsPath != "" {
		m, err = migration.NewFromPath(sqlDB, cfg.Database.MigrationsPath, log)
	} else {
		m, err = migration.New(sqlDB, log)
	}
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared sql.DB
	return m.Up()
}
