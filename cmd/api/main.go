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

	"cakebook/internal/app"
	"cakebook/internal/config"
	"cakebook/internal/database"
	"cakebook/internal/logger"
	"cakebook/internal/seed"
	"cakebook/internal/telemetry"
	"cakebook/internal/validator"

	_ "cakebook/internal/docs" // Import swagger docs
)

// @title           Cakebook API
// @version         1.0
// @description     Cakebook is an offline-capable cake recipe book. The API owns the recipe catalog, favorites and view state, and serves the app shell from an offline cache.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the editor token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	shutdownTracing, err := telemetry.Setup(ctx, "cakebook-api", appConfig.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warnf("tracing shutdown error: %v", err)
		}
	}()

	// Initialize database
	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if appConfig.Env == "development" {
		err = dbManager.AutoMigrate()
	} else {
		err = dbManager.RunMigrations()
	}
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	var dataset *seed.Dataset
	if appConfig.SeedFile != "" {
		dataset, err = seed.LoadFile(appConfig.SeedFile, time.Now())
		if err != nil {
			return err
		}
	}

	validator.Register()

	application, err := app.New(app.Options{
		Config: appConfig,
		DB:     dbManager.DB(),
		Seed:   dataset,
	})
	if err != nil {
		return err
	}
	defer application.Shutdown()

	if err := application.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Cakebook backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
