package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cdr.dev/slog/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/prudhvinik1/devicetrack/internal/config"
	"github.com/prudhvinik1/devicetrack/internal/database"
	"github.com/prudhvinik1/devicetrack/internal/handlers"
	"github.com/prudhvinik1/devicetrack/internal/logging"
	"github.com/prudhvinik1/devicetrack/internal/metrics"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer closeLog()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal(ctx, "server exited", slog.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger slog.Logger) error {
	if cfg.RunMigrations {
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info(ctx, "migrations applied")
	}

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, logger, cfg.DatabaseURL, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer postgresPool.Close()

	redisClient, err := database.NewRedisClient(ctx, logger, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := repositories.NewPostgresStore(postgresPool)
	cache := repositories.NewRedisTokenCache(redisClient)
	auth := services.NewAuthService(store.Repos().Tokens, cache, cfg.TokenCacheTTL, logger, m)

	api := &handlers.API{
		Logger:   logger,
		Auth:     auth,
		Users:    services.NewUserService(store),
		Projects: services.NewProjectService(store),
		Tokens:   services.NewTokenService(store, auth),
		Devices:  services.NewDeviceService(store, logger, m),
		Logs:     services.NewLogService(store),
		Tags:     services.NewDeviceTagService(store),
		Reports:  services.NewReportService(store),
		Deploy:   services.NewDeployService(cfg.WebhookSecret, cfg.DeployDir, services.ExecRunner{}, logger),
	}
	router := handlers.NewRouter(api, handlers.RouterOptions{
		Metrics:            m,
		Gatherer:           reg,
		AllowedOrigins:     cfg.AllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	// graceful shutdown
	shutdownErr := make(chan error, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "starting server", slog.F("port", cfg.ServerPort))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info(ctx, "server stopped gracefully")
	return nil
}
