package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/StudioUsers/internal/config"
	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/database"
	"github.com/JonMunkholm/StudioUsers/internal/events"
	"github.com/JonMunkholm/StudioUsers/internal/logging"
	"github.com/JonMunkholm/StudioUsers/internal/metrics"
	"github.com/JonMunkholm/StudioUsers/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Overload lets .env win over variables already set in the shell.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"events_enabled", cfg.Events.AMQPURL != "",
	)

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL); err != nil {
			return err
		}
		slog.Info("migrations applied")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	publisher, err := events.Connect(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	service := core.NewService(core.NewPostgresStore(pool), cfg,
		core.WithRecorder(collector),
		core.WithPublisher(publisher),
	)
	defer service.Close()

	if cfg.Auth.BootstrapUsername != "" && cfg.Auth.BootstrapPassword != "" {
		created, err := service.EnsureAdmin(ctx, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword)
		if err != nil {
			return err
		}
		if created {
			slog.Info("bootstrap admin created", "username", cfg.Auth.BootstrapUsername)
		}
	}

	var opts []web.Option
	if cfg.Metrics.Enabled {
		opts = append(opts, web.WithMetrics(collector, metrics.Handler(registry)))
	}
	server := web.NewServer(service, cfg, opts...)
	defer server.Close()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.ImportLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Start returns as soon as Shutdown begins; wait for in-flight requests.
	<-shutdownDone
	slog.Info("server stopped")
	return nil
}
