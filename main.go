// Package main provides the main entry point for the Getaround rental pricing API
//
// @title Getaround Pricing API
// @version 1.0
// @description Rental price estimation and dataset exploration for Getaround listings.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin access token.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/getaround-pricing/app/handlers"
	"github.com/amirphl/getaround-pricing/app/middleware"
	"github.com/amirphl/getaround-pricing/app/router"
	"github.com/amirphl/getaround-pricing/app/scheduler"
	"github.com/amirphl/getaround-pricing/app/services"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
	"github.com/amirphl/getaround-pricing/config"
	"github.com/amirphl/getaround-pricing/dataset"
	"github.com/amirphl/getaround-pricing/pricing"
	"github.com/amirphl/getaround-pricing/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const usage = `usage:
  getaround-pricing [serve]              start the HTTP API
  getaround-pricing admin-token SUBJECT  print an admin access token
  getaround-pricing predict FILE         estimate the price of the car described in FILE (- for stdin)
`

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	logger    *slog.Logger
	scheduler *scheduler.DatasetScheduler
	stopFuncs []func()
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
		case "admin-token":
			os.Exit(runAdminToken(os.Args[2:]))
		case "predict":
			os.Exit(runPredict(os.Args[2:], os.Stdin, os.Stdout))
		case "-h", "--help", "help":
			fmt.Print(usage)
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n%s", os.Args[1], usage)
			os.Exit(2)
		}
	}
	serve()
}

func serve() {
	log.Println("Starting Getaround pricing API...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging, err := config.NewLogging(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()
	slog.SetDefault(logging.Logger)

	app, err := initializeApplication(cfg, logging)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := cfg.Server.Addr()
		listenConfig := fiber.ListenConfig{DisableStartupMessage: true}
		if cfg.Security.TLSEnabled {
			listenConfig.CertFile = cfg.Security.TLSCertFile
			listenConfig.CertKeyFile = cfg.Security.TLSKeyFile
		}
		app.logger.Info("server starting", "address", address, "tls", cfg.Security.TLSEnabled)

		if err := app.server.Listen(address, listenConfig); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stopScheduler := func() {}
	if app.scheduler.Enabled() {
		stopScheduler = app.scheduler.Start(ctx)
	}

	// Wait for shutdown signal
	<-sigChan
	app.logger.Info("shutting down gracefully")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		app.logger.Error("error during shutdown", "error", err)
	}

	// Stop background workers and close connections
	stopScheduler()
	for _, fn := range app.stopFuncs {
		fn()
	}

	app.logger.Info("server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logWriter io.Writer) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Discard,
	}
	if cfg.SlowQueryLog {
		gormConfig.Logger = gormlogger.New(log.New(logWriter, "", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, logger *slog.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					logger.Warn("redis healthcheck failed", "error", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig, logging *config.Logging) (*Application, error) {
	var stopFuncs []func()
	logger := logging.Logger

	db, err := initializeDatabase(cfg.Database, logging.Writer)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		stopFuncs = append(stopFuncs, func() { _ = sqlDB.Close() })
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopMonitor := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.HealthCheckInterval, logger)
		stopFuncs = append(stopFuncs, stopMonitor, func() { _ = rc.Close() })
	}

	// Pricing artifacts
	loader := pricing.NewArtifactLoader(cfg.Pricing.EncoderPath, cfg.Pricing.RegressorPath)
	if cfg.Pricing.EagerLoad {
		if p, err := loader.Load(); err != nil {
			// the API stays up and answers 503 on pricing routes
			logger.Error("failed to load pricing artifacts", "error", err)
		} else {
			logger.Info("pricing artifacts loaded",
				"encoder_version", p.EncoderVersion(),
				"regressor_version", p.RegressorVersion(),
				"features", len(p.FeatureNames()))
		}
	}

	// Initialize repositories
	listingRepo := repository.NewCarListingRepository(db)
	importRepo := repository.NewDatasetImportRepository(db)
	predictionRepo := repository.NewPricePredictionRepository(db)

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize business flows
	pricingFlow := businessflow.NewPricingFlow(loader, predictionRepo, cfg.Pricing, logger)
	explorationFlow := businessflow.NewExplorationFlow(listingRepo, importRepo, rc, &cfg.Cache, logger)
	datasetFlow := businessflow.NewDatasetFlow(
		dataset.NewLoader(cfg.Dataset.FetchTimeout, cfg.Dataset.MaxBytes),
		db,
		listingRepo,
		importRepo,
		rc,
		cfg.Dataset,
		&cfg.Cache,
		logger,
	)

	// Initialize handlers
	timeout := cfg.Server.RequestTimeout
	routeHandlers := router.Handlers{
		System:      handlers.NewSystemHandler(pricingFlow, cfg.Deployment, logger),
		Pricing:     handlers.NewPricingHandler(pricingFlow, logger, timeout),
		Exploration: handlers.NewExplorationHandler(explorationFlow, logger, timeout),
		Admin:       handlers.NewAdminHandler(datasetFlow, pricingFlow, logger, timeout),
	}

	appRouter := router.NewFiberRouter(cfg, logging.Writer, routeHandlers, middleware.NewAuthMiddleware(tokenService))

	datasetScheduler := scheduler.NewDatasetScheduler(
		datasetFlow,
		cfg.Dataset.RefreshInterval,
		cfg.Dataset.FetchTimeout+time.Minute,
		cfg.Dataset.ImportOnStartup,
		logger,
	)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		logger:    logger,
		scheduler: datasetScheduler,
		stopFuncs: stopFuncs,
	}, nil
}

// runAdminToken prints a signed admin access token for the given subject.
func runAdminToken(args []string) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg, err := config.LoadCommandConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(cfg.JWT.SecretKey) < 32 {
		fmt.Fprintln(os.Stderr, "JWT_SECRET_KEY must be at least 32 characters long")
		return 1
	}

	tokens, err := services.NewTokenService(cfg.JWT.AccessTokenTTL, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.SecretKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	token, err := tokens.GenerateAdminToken(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(token)
	return 0
}

// runPredict estimates the price of one car description read from a JSON file.
func runPredict(args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg, err := config.LoadCommandConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read car description: %v\n", err)
		return 1
	}

	est, err := predict(cfg.Pricing, data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if pricing.IsValidationError(err) {
			return 2
		}
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(est); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func predict(cfg config.PricingConfig, data []byte) (*pricing.PriceEstimate, error) {
	car, err := pricing.DecodeCarDescription(data)
	if err != nil {
		return nil, err
	}
	return pricing.NewArtifactLoader(cfg.EncoderPath, cfg.RegressorPath).EstimatePrice(car)
}
