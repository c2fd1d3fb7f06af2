// Command worker keeps the lead spreadsheet in step with the lead store.
// It runs a periodic full sync and, when Kafka is enabled, syncs each lead
// as soon as its lead.captured event arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/netellus-advisor/internal/bootstrap"
	"github.com/turtacn/netellus-advisor/internal/config"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/database/redis"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
)

const lockName = "lead-sync"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFromFileOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker stopped with error", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(cfg *config.Config, logger logging.Logger) error {
	if !cfg.Sheets.Enabled {
		return fmt.Errorf("sheets.enabled is false; the worker has nothing to sync")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	syncer := &leadSyncer{
		svc:        app.Leads,
		lock:       redis.NewMutex(app.Redis, lockName, 2*cfg.Worker.SyncInterval, logger.Named("lock")),
		interval:   cfg.Worker.SyncInterval,
		runOnStart: cfg.Worker.RunOnStart,
		logger:     logger.Named("sync"),
	}

	logger.Info("starting worker",
		logging.Duration("sync_interval", cfg.Worker.SyncInterval),
		logging.Int("health_port", cfg.Worker.HealthPort),
		logging.Bool("kafka", cfg.Kafka.Enabled),
	)

	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		consumer, err = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topics:  []string{cfg.Kafka.LeadTopic},
			RetryConfig: kafka.RetryConfig{
				MaxRetries:   3,
				RetryBackoff: time.Second,
			},
		}, logger.Named("consumer"))
		if err != nil {
			return err
		}
		defer consumer.Close()
		if err := consumer.Subscribe(cfg.Kafka.LeadTopic, syncer.HandleLeadCaptured); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.ServeHealth(gctx, cfg.Worker.HealthPort) })
	g.Go(func() error { return syncer.Run(gctx) })
	if consumer != nil {
		if err := consumer.Start(gctx); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
	}

	return g.Wait()
}
