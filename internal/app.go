// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	router "fairsplit/internal/api"
	"fairsplit/internal/api/handler"
	"fairsplit/internal/cache"
	"fairsplit/internal/config"
	"fairsplit/internal/metrics"
	"fairsplit/internal/repository"
	"fairsplit/internal/repository/postgres"
	"fairsplit/internal/service"
	"fairsplit/internal/util"
	"fairsplit/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config   *config.AppConfig
	Logger   *slog.Logger
	DB       *sqlx.DB
	Redis    *redis.Client // nil when caching is disabled
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Repositories
	UserRepository         repository.UserRepository
	GroupRepository        repository.GroupRepository
	MembershipRepository   repository.MembershipRepository
	BalanceEntryRepository repository.BalanceEntryRepository
	PaymentRepository      repository.PaymentRepository

	// Services
	UserDirectory  service.UserDirectory
	GroupService   service.GroupService
	BalanceService service.BalanceService
	PaymentService service.PaymentService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.Open(ctx, cfg.DSN(), cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if cfg.MigrateOnStart {
		if err := db.RunMigrations(ctx, app.DB.DB); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Logger.Info("Database migrations applied.")
	}

	// 4. Connect to Redis (optional)
	var groupCache cache.GroupCache = cache.Noop{}
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if rdb != nil {
		app.Redis = rdb
		groupCache = cache.NewRedisGroupCache(rdb, cfg.Redis.TTL)
		app.Logger.Info("Redis group cache enabled.", "ttl", cfg.Redis.TTL)
	}

	// 5. Metrics
	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(app.DB.DB, cfg.DB.DBName),
	)
	app.Metrics = metrics.New(app.Registry)

	// 6. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.GroupRepository = postgres.NewGroupRepository()
	app.MembershipRepository = postgres.NewMembershipRepository()
	app.BalanceEntryRepository = postgres.NewBalanceEntryRepository()
	app.PaymentRepository = postgres.NewPaymentRepository()
	app.Logger.Info("Repositories initialized.")

	// 7. Initialize Services
	txManager := db.NewTxManager(app.DB)
	app.UserDirectory = service.NewUserDirectory(app.DB, app.UserRepository)
	app.GroupService = service.NewGroupService(
		txManager,
		app.DB,
		app.UserDirectory,
		app.GroupRepository,
		app.MembershipRepository,
		app.Metrics,
	)
	app.BalanceService = service.NewBalanceService(
		txManager,
		app.DB,
		app.UserDirectory,
		app.UserRepository,
		app.BalanceEntryRepository,
		app.Metrics,
	)
	app.PaymentService = service.NewPaymentService(
		txManager,
		app.DB,
		app.UserRepository,
		app.GroupRepository,
		app.MembershipRepository,
		app.PaymentRepository,
		app.BalanceEntryRepository,
		app.Metrics,
	)
	app.Logger.Info("Services initialized.")

	// 8. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Groups:   handler.NewGroupHandler(app.GroupService, groupCache, app.Logger),
		Balances: handler.NewBalanceHandler(app.BalanceService, app.Logger),
		Users:    handler.NewUserHandler(app.UserDirectory, app.Logger),
		Payments: handler.NewPaymentHandler(app.PaymentService, app.Logger),
	}, router.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		Gatherer:  app.Registry,
	})
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
