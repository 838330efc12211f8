package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"paydash.app/cloud/handlers"
	"paydash.app/cloud/internal/config"
	"paydash.app/cloud/internal/email"
	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/internal/refresh"
	"paydash.app/cloud/internal/stripeapi"
	"paydash.app/cloud/storage"
)

var version = "dev"

func main() {
	if versionBytes, err := os.ReadFile("VERSION"); err == nil {
		version = strings.TrimSpace(string(versionBytes))
	}

	godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := storage.NewSQLiteStorage(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close storage", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	stripeClient := stripeapi.New(cfg.StripeSecret, cfg.BaseURL)

	server := handlers.NewHttpServer(db, stripeClient)
	server.Version = version
	server.Receipts = &email.Sender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.ReceiptFrom,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresher := &refresh.Refresher{
		Source:   stripeClient,
		Storage:  db,
		Interval: cfg.CatalogRefresh,
	}
	go refresher.Run(ctx)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	logger.Info("Paydash starting", map[string]interface{}{
		"version":  version,
		"port":     cfg.Port,
		"base_url": cfg.BaseURL,
		"receipts": server.Receipts.Enabled(),
	})

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}

	logger.Info("Paydash stopped")
}
