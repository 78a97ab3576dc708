package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/novaapay/banking-core/internal/config"
	"github.com/novaapay/banking-core/internal/data/mongo"
	"github.com/novaapay/banking-core/internal/data/postgres"
	"github.com/novaapay/banking-core/internal/ledger"
	"github.com/novaapay/banking-core/internal/logger"
	"github.com/novaapay/banking-core/internal/otp"
	"github.com/novaapay/banking-core/internal/pin"
	"github.com/novaapay/banking-core/internal/platform/email"
	"github.com/novaapay/banking-core/internal/platform/messaging/consumers"
	"github.com/novaapay/banking-core/internal/platform/messaging/producers"
	"github.com/novaapay/banking-core/internal/platform/persistence"
	"github.com/novaapay/banking-core/internal/savings"
	"github.com/novaapay/banking-core/internal/server"
	"github.com/novaapay/banking-core/internal/server/handler"
	"github.com/novaapay/banking-core/internal/transfer"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting banking core",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer and consumer for the transaction event stream
	eventProducer, err := producers.NewTransactionEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	otpRepo := postgres.NewOTPRepository(log, postgresDB)
	savingsRepo := postgres.NewSavingsRepository(log, postgresDB)
	feedRepo := mongo.NewFeedRepository(log, mongoDB.Database())

	// Initialize worker pool scheduler for deferred jobs
	scheduler, err := transfer.NewPoolScheduler(cfg.WorkerPool.Size, log)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize services
	admission := ledger.NewService(log, postgresDB, accountRepo, transactionRepo, outboxRepo)
	accountService := ledger.NewAccountService(accountRepo)
	mailSender := email.NewSender(&cfg.SMTP, log)
	challenge := otp.NewChallenge(&cfg.OTP, otpRepo, mailSender, otp.NewCodeGenerator(cfg.OTP.CodeLength), log)
	vault := pin.NewVault(&cfg.PIN, accountRepo, log)
	tracker := savings.NewTracker(savingsRepo, log)

	// Initialize the outbox poller and feed projector
	eventPublisher := ledger.NewEventPublisher(outboxRepo, eventProducer, log)
	poller := ledger.NewPoller(&cfg.Outbox, outboxRepo, eventPublisher, log)
	projector := ledger.NewProjector(kafkaConsumer, feedRepo, &cfg.Kafka, log)

	// Initialize REST server
	handlers := server.Handlers{
		Account:     handler.NewAccountHandler(log, accountService),
		Transaction: handler.NewTransactionHandler(log, feedRepo),
		Auth:        handler.NewAuthHandler(log, challenge, cfg.OTP.ResendCooldown),
		Pin:         handler.NewPinHandler(log, vault),
		Transfer:    handler.NewTransferHandler(log, admission, vault, accountRepo, scheduler, &cfg.Transfer),
		Savings:     handler.NewSavingsHandler(log, tracker),
	}
	srv := server.NewServer(log, cfg, handlers)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start feed projector
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := projector.Start(appCtx); err != nil {
			errChan <- fmt.Errorf("feed projector error: %w", err)
		}
	}()

	// Start outbox poller
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Start HTTP server
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new work arrives
	if err = srv.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for the poller and projector to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Background services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Release the worker pool
	scheduler.Release()

	// Close Kafka producer and consumer
	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("Server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
