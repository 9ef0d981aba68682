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

	"github.com/makersnr-dev/qr-order-nr-admin-v2/config"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/api"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/db"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/proxy"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/reconcile"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/store"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/upstream"
)

func main() {
	logger := log.New(os.Stdout, "qr-admin ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mirror := store.NewGormStore(gormDB)
	client := upstream.NewClient(&cfg.Upstream)

	policy := reconcile.OverwriteAll
	if cfg.Sync.PreserveCleared {
		policy = reconcile.PreserveCleared
	}
	reconciler := reconcile.New(client, mirror, policy)
	if cfg.Sync.Enabled {
		go reconciler.Run(ctx, cfg.Sync.Interval)
	}

	writeProxy := proxy.New(client, mirror)

	router := api.NewRouter(cfg, mirror, reconciler, writeProxy)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Println("Server gracefully stopped")
}
