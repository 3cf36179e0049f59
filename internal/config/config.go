package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	// Database
	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath     string `env:"DB_PATH" envDefault:"cakebook.db"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"cakebook"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"cakebook"`
	DBName     string `env:"DB_NAME" envDefault:"cakebook"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	// MigrationsDir holds one subdirectory of SQL migrations per driver.
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// Durable state
	StorageKey       string `env:"STORAGE_KEY" envDefault:"cake-recipe-app"`
	SeedFile         string `env:"SEED_FILE"`
	PlaceholderImage string `env:"PLACEHOLDER_IMAGE" envDefault:"/placeholder.svg"`

	// Editor mode
	EditorSecret     string        `env:"EDITOR_SECRET" envDefault:"admin123"`
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"fallback-secret-key-for-dev-only"`
	JWTExpirationDur time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`

	// Offline cache
	CacheName       string        `env:"CACHE_NAME" envDefault:"receitas-bolo-v1"`
	OfflinePage     string        `env:"OFFLINE_PAGE" envDefault:"/"`
	Precache        []string      `env:"PRECACHE" envSeparator:"," envDefault:"/,/manifest.json,/icons/icon-192x192.png,/icons/icon-512x512.png"`
	ShellOrigin     string        `env:"SHELL_ORIGIN" envDefault:"http://localhost:5173"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"0s"`

	// Telemetry
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if config.JWTExpirationDur <= 0 {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", config.JWTExpirationDur)
		config.JWTExpirationDur = 24 * time.Hour
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}
