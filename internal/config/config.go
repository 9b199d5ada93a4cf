package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/stagehand-bookings/service-booking/pkg/config"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	Store           string
	DBConfig        config.DatabaseConfig
	KafkaConfig     config.KafkaConfig
	Allocation      RetryConfig
	Lifecycle       RetryConfig
	ShutdownTimeout time.Duration
	CORS            CORSConfig
	// APIKey guards the booking and admin routes. Empty disables them.
	APIKey string
}

// RetryConfig bounds a retry loop.
type RetryConfig struct {
	MaxAttempts int
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowOrigins []string
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("DB_NAME", "bookings")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	store := strings.ToLower(strings.TrimSpace(v.GetString("STORE")))
	if store != StorePostgres && store != StoreMemory {
		return nil, fmt.Errorf("unsupported BOOKING_STORE %q", store)
	}

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		Store:       store,
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		KafkaConfig: config.LoadKafkaConfig(v),
		Allocation: RetryConfig{
			MaxAttempts: config.GetPositiveInt(v, "ALLOCATION_MAX_ATTEMPTS", 5),
		},
		Lifecycle: RetryConfig{
			MaxAttempts: config.GetPositiveInt(v, "LIFECYCLE_MAX_ATTEMPTS", 3),
		},
		ShutdownTimeout: config.GetDuration(v, "SHUTDOWN_TIMEOUT", 10*time.Second),
		CORS: CORSConfig{
			AllowOrigins: config.SplitList(v.GetString("CORS_ALLOW_ORIGINS")),
		},
		APIKey: strings.TrimSpace(v.GetString("API_KEY")),
	}, nil
}
