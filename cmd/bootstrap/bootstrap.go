package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hivcare-booking/config"
	deliveryHttp "hivcare-booking/internal/delivery/http"
	"hivcare-booking/internal/delivery/http/handler"
	"hivcare-booking/internal/delivery/http/middleware"
	"hivcare-booking/internal/infrastructure/cache"
	"hivcare-booking/internal/infrastructure/database"
	"hivcare-booking/internal/infrastructure/metrics"
	"hivcare-booking/internal/repository"
	"hivcare-booking/internal/service"
	"hivcare-booking/internal/usecase"
	"hivcare-booking/pkg/jwt"
	"hivcare-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const syncTimeout = 30 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Log         *logrus.Logger
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	log := setupLogger()
	app.Log = log

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	if !cfg.App.IsProduction() {
		log.SetLevel(logrus.DebugLevel)
	}
	log.Info("Configuration loaded successfully")

	if cfg.DB.MigrateOnBoot {
		if err := database.MigrateUp(database.URL(cfg.DB)); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.Booking.Timezone, cfg.App.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize all layers
	server, err := initializeServer(cfg, db, redisClient, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (*http.Server, error) {
	loc := cfg.Booking.Location()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	serviceRepo := repository.NewServiceRepository()
	categoryRepo := repository.NewServiceCategoryRepository()
	bookingRepo := repository.NewBookingRepository()
	regimenRepo := repository.NewArvRegimenRepository()
	resultRepo := repository.NewClinicalResultRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	dedupService := service.NewRequestDedupService(redisClient, log, cfg.Booking.IdempotencyTTL)
	slotService := service.NewSlotReservationService(db, redisClient, bookingRepo, log, loc)

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	if err := slotService.SyncOnStartup(ctx); err != nil {
		return nil, fmt.Errorf("failed to sync slot reservations: %w", err)
	}

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(tx, log, userRepo, roleRepo, jwtService, redisClient, auditService)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(tx, log, userRepo, doctorProfileRepo, auditService)
	catalogUsecase := usecase.NewServiceCatalogUsecase(tx, log, serviceRepo, categoryRepo, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(tx, log, doctorProfileRepo, bookingRepo, cfg.Booking.SlotInterval, loc)
	bookingUsecase := usecase.NewBookingUsecase(tx, log, bookingRepo, serviceRepo, doctorProfileRepo, userRepo,
		slotService, auditService, bookingMetrics, cfg.Booking.SlotInterval, loc)
	resultUsecase := usecase.NewResultUsecase(tx, log, resultRepo, bookingRepo, regimenRepo, userRepo, auditService, bookingMetrics)
	regimenUsecase := usecase.NewRegimenUsecase(tx, log, regimenRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(tx, log, auditLogRepo)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:         handler.NewAuthHandler(authUsecase, customValidator, jwtService),
		Doctor:       handler.NewDoctorHandler(doctorProfileUsecase, customValidator),
		Service:      handler.NewServiceHandler(catalogUsecase, customValidator),
		Availability: handler.NewAvailabilityHandler(availabilityUsecase),
		Booking:      handler.NewBookingHandler(bookingUsecase, customValidator),
		Result:       handler.NewResultHandler(resultUsecase, customValidator),
		Regimen:      handler.NewRegimenHandler(regimenUsecase, customValidator),
		AuditLog:     handler.NewAuditLogHandler(auditLogUsecase),
	}

	// Initialize middleware
	middlewares := deliveryHttp.Middlewares{
		Auth:        middleware.NewAuthMiddleware(jwtService, redisClient, log),
		CORS:        middleware.NewCORSMiddleware(),
		Idempotency: middleware.NewIdempotencyMiddleware(dedupService, log),
		Logging:     middleware.NewLoggingMiddleware(log),
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = registry
	}

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, middlewares, gatherer, cfg.Metrics.Path)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
