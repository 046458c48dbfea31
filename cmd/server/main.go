package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	accountapp "github.com/xgrltd/storefront/internal/application/account"
	cartapp "github.com/xgrltd/storefront/internal/application/cart"
	catalogapp "github.com/xgrltd/storefront/internal/application/catalog"
	eventapp "github.com/xgrltd/storefront/internal/application/event"
	identityapp "github.com/xgrltd/storefront/internal/application/identity"
	"github.com/xgrltd/storefront/internal/application/session"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/infrastructure/config"
	"github.com/xgrltd/storefront/internal/infrastructure/event"
	"github.com/xgrltd/storefront/internal/infrastructure/fixtures"
	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/infrastructure/persistence"
	"github.com/xgrltd/storefront/internal/infrastructure/storage"
	"github.com/xgrltd/storefront/internal/infrastructure/telemetry"
	"github.com/xgrltd/storefront/internal/interfaces/http/handler"
	"github.com/xgrltd/storefront/internal/interfaces/http/middleware"
	"github.com/xgrltd/storefront/internal/interfaces/http/router"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The OTLP log provider needs a logger before the real one exists
	bootLog, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	providers, err := telemetry.Start(ctx, telemetry.Settings{
		Endpoint:       cfg.Telemetry.CollectorEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		Insecure:       cfg.Telemetry.Insecure,
		Traces:         cfg.Telemetry.Enabled,
		SamplingRatio:  cfg.Telemetry.SamplingRatio,
		Metrics:        cfg.Telemetry.MetricsEnabled,
		MetricInterval: cfg.Telemetry.MetricsExportInterval,
		Logs:           cfg.Telemetry.LogsEnabled,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to start telemetry", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, providers.LogCore(logger.ParseLevel(cfg.Telemetry.LogsLevel)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(ctx, cfg, log, providers); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, providers *telemetry.Providers) error {
	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	meter := providers.Meter(cfg.Telemetry.ServiceName)
	storeMetrics, err := telemetry.NewStorefrontMetrics(meter)
	if err != nil {
		return fmt.Errorf("storefront metrics: %w", err)
	}

	// The database only backs identity storage
	var db *persistence.Database
	if cfg.Storage.Backend == config.StorageBackendDatabase {
		if db, err = openDatabase(cfg, log); err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
	}

	kv, err := storage.NewKeyValueStore(ctx, cfg, storage.Backends{Database: db}, log)
	if err != nil {
		return fmt.Errorf("identity storage: %w", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error("Error closing identity storage", zap.Error(err))
		}
	}()

	store, err := fixtures.Load()
	if err != nil {
		return fmt.Errorf("fixtures: %w", err)
	}

	// Domain events: every event is audited, cart events feed the metrics
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(eventapp.NewAuditHandler(log))
	bus.Subscribe(eventapp.NewMetricsHandler(storeMetrics, log))
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = bus.Stop(stopCtx)
	}()

	// Services
	products := catalogapp.NewProductService(store)
	accounts := accountapp.NewAccountService(store)
	carts := cartapp.NewCartService(store, cartapp.Config{
		CheckoutDelay: cfg.Store.CheckoutDelay,
		TaxRate:       decimal.NewFromFloat(cfg.Store.TaxRate),
	}, log)
	carts.SetEventPublisher(bus)

	sessions := session.NewManager(session.Config{
		TTL:           cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
		Auth: identityapp.Config{
			LoginDelay:  cfg.Store.LoginDelay,
			SignupDelay: cfg.Store.SignupDelay,
		},
	}, func(id string) identity.Storage {
		return storage.NewIdentityStorage(kv, cfg.Storage.KeyPrefix, id)
	}, log)
	sessions.SetEventPublisher(bus)
	sessions.SetMetrics(storeMetrics)
	defer sessions.Close(context.Background())

	// Handlers
	checks := []handler.HealthChecker{
		handler.HealthCheckFunc{Label: "storage", Fn: func(ctx context.Context) error {
			_, err := kv.Keys(ctx, cfg.Storage.KeyPrefix+":__health__")
			return err
		}},
	}
	if db != nil {
		checks = append(checks, handler.HealthCheckFunc{Label: "database", Fn: db.Ping})
	}
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(),
		Cart:    handler.NewCartHandler(carts),
		Catalog: handler.NewCatalogHandler(products),
		Account: handler.NewAccountHandler(accounts),
		Page:    handler.NewPageHandler(products, carts, accounts),
		System:  handler.NewSystemHandler(cfg.App.Name, version, sessions, checks...),
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
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
	// tracing, request id, recovery, request log, headers, limits.
	// Sessions open per route group, after the limits.
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		SkipPaths:   []string{"/health"},
	}))
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		g.Go(func() error { return limiter.Run(ctx) })
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	opts := router.StorefrontOptions{
		Session: middleware.Session(sessions, middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			MaxAge:     cfg.Session.TTL,
			Domain:     cfg.Cookie.Domain,
			Path:       cfg.Cookie.Path,
			Secure:     cfg.Cookie.Secure,
			SameSite:   middleware.ParseSameSite(cfg.Cookie.SameSite),
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		opts.AuthLimit = middleware.RateLimit(authLimiter)
		g.Go(func() error { return authLimiter.Run(ctx) })
	}

	router.Storefront(router.NewRouter(engine, router.WithAPIVersion("v1")), handlers, opts).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g.Go(func() error { return sessions.Run(ctx) })
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.ParseGormLevel(cfg.Log.Level),
		logger.SlowQueries(cfg.Database.SlowQuery))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:   cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQuery: cfg.Database.SlowQuery,
		DBSystem:  telemetry.DBSystemForDriver(db.Driver()),
	}, log)
	if err := plugin.Register(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database tracing: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))
	return db, nil
}
