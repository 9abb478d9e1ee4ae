package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/cache"
	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/erp/inventory/internal/infrastructure/event"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/erp/inventory/internal/infrastructure/persistence"
	"github.com/erp/inventory/internal/infrastructure/scheduler"
	"github.com/erp/inventory/internal/interfaces/http/handler"
	"github.com/erp/inventory/internal/interfaces/http/middleware"
	"github.com/erp/inventory/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const logTimeLayout = "2006-01-02T15:04:05.000Z07:00"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("configuration error: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logTimeLayout,
	})
	if err != nil {
		panic("logger setup error: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting inventory engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Event bus
	eventBus := event.NewInMemoryEventBus(log.Named("eventbus"))

	// Idempotency store for event handlers
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log.Named("idempotency")))
	idempotencyStore, err := storeFactory.CreateStore(cfg.Event.Store)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Application services share one transactional scope over the database
	scope := persistence.NewGormTransactionScope(db.DB)

	ledgerService := inventoryapp.NewLedgerService(scope, log.Named("ledger"))
	ledgerService.SetEventPublisher(eventBus)

	transactionService := inventoryapp.NewTransactionService(scope, log.Named("transactions"))
	transactionService.SetEventPublisher(eventBus)

	transferService := inventoryapp.NewTransferService(scope, transactionService, log.Named("transfers"))
	transferService.SetEventPublisher(eventBus)

	expirationService := inventoryapp.NewReservationExpirationService(scope, log.Named("expiry"))
	expirationService.SetBatchSize(cfg.Reservation.SweepBatchSize)
	expirationService.SetEventPublisher(eventBus)

	// Low-stock alerting with idempotent delivery
	lowStockHandler := inventoryapp.NewLowStockHandler(log.Named("lowstock"), nil)
	eventBus.Subscribe(inventoryapp.NewIdempotentHandler(
		lowStockHandler,
		idempotencyStore,
		shared.IdempotencyConfig{Enabled: true, TTL: cfg.Event.IdempotencyTTL},
		log.Named("idempotent"),
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Reservation expiry sweep
	var sweeper *scheduler.ReservationSweeper
	if cfg.Reservation.SweepEnabled {
		sweeper = scheduler.NewReservationSweeper(
			scheduler.SweeperConfig{Interval: cfg.Reservation.SweepInterval},
			expirationService,
			log.Named("sweeper"),
		)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start reservation sweeper", zap.Error(err))
		}
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log.Named("http")),
		logger.Recovery(log.Named("http")),
		middleware.CORS(),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)
	if cfg.HTTP.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	r := router.NewRouter(engine)
	r.Register(handler.NewLedgerHandler(ledgerService)).
		Register(handler.NewTransactionHandler(transactionService)).
		Register(handler.NewTransferHandler(transferService)).
		Register(handler.NewSystemHandler(db, expirationService))
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
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Block until a termination signal arrives, then drain in order:
	// sweeper, event bus, HTTP server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Error("Sweeper shutdown failed", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
