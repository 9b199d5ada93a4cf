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
	"go.uber.org/zap"

	"github.com/stagehand-bookings/service-booking/internal/application"
	"github.com/stagehand-bookings/service-booking/internal/config"
	bookingDomain "github.com/stagehand-bookings/service-booking/internal/domain/booking"
	bookingEvents "github.com/stagehand-bookings/service-booking/internal/events"
	"github.com/stagehand-bookings/service-booking/internal/handler"
	"github.com/stagehand-bookings/service-booking/internal/repository"
	"github.com/stagehand-bookings/service-booking/pkg/database"
	"github.com/stagehand-bookings/service-booking/pkg/health"
	"github.com/stagehand-bookings/service-booking/pkg/kafka"
	"github.com/stagehand-bookings/service-booking/pkg/logger"
	"github.com/stagehand-bookings/service-booking/pkg/middleware"
)

const serviceName = "service-booking"

type eventPublisher interface {
	application.EventPublisher
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.Store),
		zap.Bool("kafka_enabled", cfg.KafkaConfig.Enabled),
	)

	bookingRepo, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open booking store", zap.Error(err))
	}

	// Initialize Kafka producer
	var producer eventPublisher
	if cfg.KafkaConfig.Enabled {
		producer = kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	} else {
		producer = kafka.NewNopProducer(log)
	}
	defer func() { _ = producer.Close() }()

	// Initialize application service
	bookingService := application.NewBookingService(
		bookingRepo,
		producer,
		application.Options{
			AllocationAttempts: cfg.Allocation.MaxAttempts,
			TransitionAttempts: cfg.Lifecycle.MaxAttempts,
		},
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Payment events drive confirmation and cancellation
	if cfg.KafkaConfig.Enabled {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		paymentConsumer := bookingEvents.NewPaymentEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer")
			if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	trackingHandler := handler.NewTrackingHandler(bookingService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(bookingRepo, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes; tracking is the only public surface
	if cfg.APIKey == "" {
		log.Warn("BOOKING_API_KEY is not set; booking and admin routes will reject every request")
	}
	apiKeyMW := middleware.APIKeyMiddleware(cfg.APIKey)
	bookingHandler.RegisterRoutes(&router.RouterGroup, apiKeyMW)
	trackingHandler.RegisterRoutes(&router.RouterGroup)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, apiKeyMW)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

// openStore returns the configured booking repository, migrating Postgres first.
func openStore(cfg *config.ServiceConfig, log *zap.Logger) (bookingDomain.BookingRepository, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory booking store; data is lost on restart")
		return repository.NewMemoryBookingRepository(), nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		err := database.RunMigrations(dbConfig.DatabaseURL(), repository.Migrations, repository.MigrationsDir, log)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return repository.NewGormBookingRepository(db), nil
}
