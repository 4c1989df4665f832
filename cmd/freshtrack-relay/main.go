package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/freshtrackdev/freshtrack/internal/alert"
	"github.com/freshtrackdev/freshtrack/internal/config"
	"github.com/freshtrackdev/freshtrack/internal/log"
	"github.com/freshtrackdev/freshtrack/internal/relay"
	"github.com/freshtrackdev/freshtrack/internal/repository"
	"github.com/freshtrackdev/freshtrack/internal/storage/db"
	"github.com/freshtrackdev/freshtrack/internal/storage/mq"
	"github.com/freshtrackdev/freshtrack/internal/telemetry"
	"github.com/freshtrackdev/freshtrack/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running relay application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Relay    config.Relay
		Alert    config.Alert
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	productRepository := repository.NewProductRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Go(func() {
		scanner := alert.NewScanner(cfg.Alert, logger, dbClient, productRepository, outboxMsgRepository)
		cleanup := scanner.Run(ctx)
		logger.InfoContext(ctx, "alert scanner started")

		<-interruptChan

		logger.InfoContext(ctx, "alert scanner is shutting down")
		cleanup()

		logger.InfoContext(ctx, "alert scanner is stopped")
	})

	wg.Wait()

	return nil
}
