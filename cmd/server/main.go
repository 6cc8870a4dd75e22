package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	partnerapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/partner"
	tradeapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/trade"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/cache"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/config"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/event"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/lock"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/logger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/persistence"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/scheduler"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/telemetry"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/handler"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/middleware"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const slowQueryThreshold = 200 * time.Millisecond

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting party ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("lock_mode", cfg.Ledger.LockMode),
		zap.Bool("strict_party_check", cfg.Ledger.StrictPartyCheck),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Tracing must be installed before the database plugin and otelgin pick up the global provider
	tracerProvider, err := telemetry.NewTracerProvider(startCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: slowQueryThreshold,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Redis is only needed for the distributed party lock
	var redisClient *redis.Client
	if cfg.Ledger.LockMode == config.LockModeRedis {
		redisClient, err = cache.NewRedisClient(startCtx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	locker, err := lock.NewFromConfig(cfg.Ledger, redisClient, log)
	if err != nil {
		log.Fatal("Failed to create party locker", zap.Error(err))
	}

	// Initialize repositories
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	entryRepo := persistence.NewGormBalanceEntryRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	summaryRepo := persistence.NewGormSalesSummaryRepository(db.DB)

	// Event bus; the mirror runs synchronously inside SaleCreated publication
	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Mirror.Enabled {
		mirror := tradeapp.NewTransactionMirror(summaryRepo, trade.SummaryDefaults{
			CounterpartyName: cfg.Mirror.DefaultCounterparty,
			ItemName:         cfg.Mirror.PlaceholderItemName,
		}, log)
		eventBus.Subscribe(mirror)
		log.Info("Sales transaction mirror enabled")
	}

	balanceLedger := ledger.NewBalanceLedger(partyRepo, documentRepo,
		ledger.WithEntryRepository(entryRepo),
		ledger.WithLocker(locker),
		ledger.WithPublisher(eventBus),
		ledger.WithLogger(log),
	)

	// Initialize application services
	documentService := financeapp.NewDocumentService(documentRepo, partyRepo, balanceLedger, cfg.Ledger.StrictPartyCheck, log)
	partyService := partnerapp.NewPartyService(partyRepo, documentRepo, entryRepo, balanceLedger, log)
	salesService := tradeapp.NewSalesService(saleRepo, summaryRepo, partyRepo, eventBus, log)

	// Background balance audit
	var (
		auditScheduler *scheduler.Scheduler
		auditTrigger   *scheduler.AuditTrigger
	)
	if cfg.Audit.Enabled {
		auditScheduler = scheduler.NewScheduler(cfg.Audit, scheduler.NewAuditExecutor(balanceLedger, log), log)
		auditTrigger = scheduler.NewAuditTrigger(cfg.Audit, auditScheduler, partyRepo, log)
		if err := auditScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start balance audit scheduler", zap.Error(err))
		}
		if err := auditTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start balance audit trigger", zap.Error(err))
		}
	}

	// Initialize handlers
	documentHandler := handler.NewDocumentHandler(documentService)
	partyHandler := handler.NewPartyHandler(partyService)
	saleHandler := handler.NewSaleHandler(salesService)

	healthChecks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return db.DB.WithContext(ctx).Exec("SELECT 1").Error },
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthHandler := handler.NewHealthHandler(healthChecks)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Server span for every request
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning and tenant scoping)
	engine.GET("/health", healthHandler.Check)

	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Policy = shared.TenantKeyPolicy{
		DefaultRegion: cfg.Tenant.DefaultRegion,
		RequirePhone:  cfg.Tenant.StrictPhone,
	}
	tenantConfig.Logger = log

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))
	r.Register(handler.PartyRoutes(partyHandler))
	r.Register(handler.DocumentRoutes(documentHandler))
	r.Register(handler.SaleRoutes(saleHandler))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if auditTrigger != nil {
		if err := auditTrigger.Stop(ctx); err != nil {
			log.Error("Error stopping balance audit trigger", zap.Error(err))
		}
		if err := auditScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping balance audit scheduler", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
