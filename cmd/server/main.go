package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/cart"
	checkoutapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/checkout"
	paymentapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/payment"
	walletapp "github.com/chidoskyi/ecommerce-app-sub001/internal/application/wallet"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/auth"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/cache"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/logger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/notification"
	paymentinfra "github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/persistence"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/storage"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/telemetry"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/handler"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/middleware"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Checkout API
//	@version		1.0
//	@description	Cart, checkout, payment webhooks and wallet ledger

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the identity service. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OpenTelemetry providers. Each one is a no-op when telemetry is disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log := telemetry.BridgeLogger(baseLog, loggerProvider, cfg.Telemetry.ServiceName, logLevel(cfg.Log.Level))
	defer func() {
		_ = log.Sync()
	}()

	// Continuous profiling. Span profiles need both the profiler and tracing.
	profiling := cfg.Telemetry.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           profiling.Enabled,
		ServerAddress:     profiling.ServerAddress,
		ApplicationName:   profiling.ApplicationName,
		BasicAuthUser:     profiling.BasicAuthUser,
		BasicAuthPassword: profiling.BasicAuthPassword,
		ProfileTypes:      profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Profiler stop failed", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting checkout service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction()),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	dbMetrics, err := telemetry.InstrumentDB(db.DB, telemetry.DBInstrumentationConfig{
		TraceEnabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		MetricsEnabled:  cfg.Telemetry.Enabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction(),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, meterProvider.Meter("checkout-service/db"), log)
	if err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("checkout-service/business"),
			Logger:          log,
			PendingProvider: telemetry.NewGormPendingPaymentsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(ctx, time.Minute)
		defer businessMetrics.Stop()
	}

	// Idempotency store and checkout locker: Redis when enabled, in-memory otherwise
	backends, err := cache.NewBackendFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache backends", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Error closing cache backends", zap.Error(err))
		}
	}()

	var revocations auth.RevocationList = auth.NewMemoryRevocationList()
	if backends.Distributed() {
		revocations = auth.NewRedisRevocationList(backends.Client())
	}

	// Payment gateways, each behind a circuit breaker
	gateways, err := paymentinfra.NewRegistryFromConfig(cfg, log)
	if err != nil {
		log.Fatal("Failed to configure payment gateways", zap.Error(err))
	}
	providerNames := make([]string, 0)
	for _, p := range gateways.Providers() {
		providerNames = append(providerNames, p.String())
	}
	log.Info("Payment gateways configured", zap.Strings("providers", providerNames))

	// Raw webhook archive
	var archive payment.WebhookArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3WebhookArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure webhook archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare webhook archive bucket", zap.Error(err))
		}
		archive = s3Archive
		log.Info("Archiving webhook bodies to S3", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Application services
	txScope := persistence.NewGormTransactionScope(db.DB)
	repos := persistence.NewGormRepositories(db.DB)
	catalog := persistence.NewGormProductCatalog(db.DB)

	cartService := cartapp.NewCartService(txScope, repos.CartItems(), catalog, log)

	webhookService := paymentapp.NewWebhookService(txScope, gateways, paymentapp.Config{
		IdempotencyTTL: cfg.Webhook.IdempotencyTTL,
		NotifyTimeout:  paymentapp.DefaultConfig().NotifyTimeout,
	}, log)
	webhookService.SetIdempotencyStore(backends.Idempotency)
	if archive != nil {
		webhookService.SetArchive(archive)
	}
	webhookService.SetNotifier(notification.NewLogNotifier(log))
	webhookService.SetBusinessMetrics(businessMetrics)
	defer webhookService.Close()

	checkoutService := checkoutapp.NewCheckoutService(txScope, repos, catalog, gateways, backends.Locker, checkoutConfig(cfg), log)
	checkoutService.SetReconciler(webhookService)
	checkoutService.SetBusinessMetrics(businessMetrics)

	walletService := walletapp.NewWalletService(txScope, repos, gateways, walletConfig(cfg), log)
	walletService.SetBusinessMetrics(businessMetrics)

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", func(context.Context) error { return db.Ping() })
	if backends.Distributed() {
		redisClient := backends.Client()
		systemHandler.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	handlers := router.Handlers{
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Wallet:   handler.NewWalletHandler(walletService),
		Webhook:  handler.NewWebhookHandler(webhookService, gateways),
		System:   systemHandler,
	}

	verifier := auth.NewVerifier(cfg.JWT)
	guards := router.Guards{
		RequireUser:        middleware.JWTAuth(verifier, revocations, log),
		IdentifyUser:       middleware.OptionalJWTAuth(verifier, revocations, log),
		MaxBodySize:        cfg.HTTP.MaxBodySize,
		MaxWebhookBodySize: cfg.Webhook.MaxBodySize,
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		guards.RateLimit = middleware.RateLimit(limiter)
	}

	// Gin engine
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(meterProvider))
	engine.Use(middleware.Secure(cfg.IsProduction()))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	router.Setup(engine, handlers, guards)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry provider shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

func checkoutConfig(cfg *config.Config) checkoutapp.Config {
	c := checkoutapp.DefaultConfig()
	c.ExpiryWindow = cfg.Checkout.ExpiryWindow
	c.InvoiceDueIn = cfg.Checkout.InvoiceDueIn
	c.Currency = cfg.Checkout.Currency
	c.TaxRate = cfg.Checkout.TaxRate
	c.FlatShipping = cfg.Checkout.FlatShipping
	c.CallbackURL = cfg.Checkout.CallbackURL
	if p, ok := payment.ParseProviderName(cfg.Checkout.DefaultGateway); ok {
		c.DefaultGateway = p
	}
	if cfg.Checkout.LockTTL > 0 {
		c.LockTTL = cfg.Checkout.LockTTL
	}
	if cfg.Checkout.GatewayTimeout > 0 {
		c.GatewayTimeout = cfg.Checkout.GatewayTimeout
	}
	return c
}

func walletConfig(cfg *config.Config) walletapp.Config {
	c := walletapp.DefaultConfig()
	c.Currency = cfg.Wallet.Currency
	c.MinDeposit = cfg.Wallet.MinDeposit
	c.CallbackURL = cfg.Wallet.CallbackURL
	if p, ok := payment.ParseProviderName(cfg.Wallet.Gateway); ok {
		c.Gateway = p
	}
	if cfg.Checkout.GatewayTimeout > 0 {
		c.GatewayTimeout = cfg.Checkout.GatewayTimeout
	}
	return c
}

func logLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
