package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"kakeibo/internal/amqp"
	"kakeibo/internal/backend"
	"kakeibo/internal/cli"
	apphttp "kakeibo/internal/http"
	"kakeibo/internal/log"
	mailgunnotify "kakeibo/internal/notify/mailgun"
	"kakeibo/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}
	store := result.Backend

	// Mailgun reporting is optional; without it income entries are recorded
	// like any other.
	var reporter *services.Reporter
	summarizer := services.NewSummarizer(store)
	if cfg.ReportingConfigured() {
		notifier := mailgunnotify.New(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender)
		reporter = services.NewReporter(summarizer, notifier, store, cfg.MailRecipient, cfg.LedgerURL)
		logger.Info("Mailgun reporting enabled", log.FieldRecipient, cfg.MailRecipient)
	} else {
		logger.Info("Mailgun reporting disabled - mail settings incomplete")
	}

	// The sync queue mirrors locally stored entries to the spreadsheet. Only
	// the sqlite backend produces numeric entry IDs worth mirroring.
	var publisher services.SyncPublisher
	if cfg.DataBackend == "sqlite" && cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Sync queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	recorder := services.NewRecorder(store, reporter, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, recorder, summarizer, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting kakeibo server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
