package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lysyi3m/rss-canon/app/api"
	"github.com/lysyi3m/rss-canon/app/cache"
	"github.com/lysyi3m/rss-canon/app/cfg"
	"github.com/lysyi3m/rss-canon/app/database"
	"github.com/lysyi3m/rss-canon/app/feed"
	"github.com/lysyi3m/rss-canon/app/metrics"
	"github.com/lysyi3m/rss-canon/app/tasks"
	"github.com/lysyi3m/rss-canon/app/xmlns"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.LogFormat, appCfg.Debug)

	slog.Info("Starting RSS Canon server", "version", appCfg.Version, "cache_backend", appCfg.CacheBackend)

	settings, err := feed.LoadSettings(appCfg.SettingsFile)
	if err != nil {
		slog.Error("Failed to load engine settings", "path", appCfg.SettingsFile, "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(appCfg)
	if err != nil {
		slog.Error("Failed to open cache store", "backend", appCfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	engine, err := feed.NewEngine(settings, xmlns.Default(), store, collector)
	if err != nil {
		slog.Error("Failed to create feed engine", "error", err)
		os.Exit(1)
	}

	scheduler := tasks.NewScheduler(store, collector, appCfg.WorkerCount, appCfg.ExpiryIntervalDuration(), appCfg.CacheRetentionDuration())
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "expiry_interval", appCfg.ExpiryIntervalDuration())
	scheduler.Start()

	var pinger api.Pinger
	if p, ok := store.(cache.Pinger); ok {
		pinger = p
	}

	handler := api.NewHandler(engine, scheduler, pinger, appCfg.CacheBackend, appCfg.Version)
	router := api.NewServer(handler, appCfg.APIAccessKey, metrics.Handler(registry))

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	scheduler.Stop()
	slog.Info("Background scheduler stopped")

	slog.Info("RSS Canon server shutdown complete")
}

func setupLogger(format string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore returns the configured cache store and its closer. The none
// backend yields a nil store, which disables caching.
func openStore(c *cfg.Cfg) (cache.Store, func(), error) {
	switch c.CacheBackend {
	case cfg.CacheBackendSQLite:
		db, err := database.NewConnection(c.DBPath)
		if err != nil {
			return nil, nil, err
		}
		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("Database migrations applied", "version", version, "dirty", dirty)
		return database.NewCacheRepository(db), closer(db), nil

	case cfg.CacheBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := cache.NewRedisStore(ctx, c.RedisAddr, c.CacheRetentionDuration())
		if err != nil {
			return nil, nil, err
		}
		return store, closer(store), nil

	case cfg.CacheBackendMemory:
		return cache.NewMemoryStore(), func() {}, nil

	default:
		slog.Warn("Caching disabled; feeds are normalized but not stored")
		return nil, func() {}, nil
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Error("Failed to close cache store", "error", err)
		}
	}
}
