package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"salestats/internal/cli"
	apphttp "salestats/internal/http"
	"salestats/internal/log"
	"salestats/internal/seed"
	"salestats/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(nil))
	logger := cli.SetupLogger(cfg)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close SQLite repository", log.FieldError, err)
		}
	}()

	opts := []seed.Option{seed.WithLogger(logger)}
	if amqpClient := cli.InitAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		opts = append(opts, seed.WithPublisher(amqpClient))
	}

	loader := seed.NewLoader(repo, cfg.SeedURL, cfg.SeedTimeout, opts...)
	stats := services.NewStatsService(repo, logger)

	srv := apphttp.NewServer(":"+cfg.Port, stats, loader, repo, apphttp.Options{
		DefaultPerPage: cfg.DefaultPerPage,
		SeedRateLimit:  cfg.SeedRateLimit,
		Logger:         logger,
	})
	srv.ReadTimeout = 10 * time.Second
	// Seeding downloads the whole feed inside the request.
	srv.WriteTimeout = cfg.SeedTimeout + 30*time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting salestats server",
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath,
		log.FieldSourceURL, cfg.SeedURL,
		log.FieldOperation, log.OpStartup)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
