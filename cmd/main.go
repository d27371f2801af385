package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"site-analytics-service/internal/config"
	"site-analytics-service/internal/controller"
	"site-analytics-service/internal/db"
	httpserver "site-analytics-service/internal/http"
	"site-analytics-service/internal/metrics"
	"site-analytics-service/internal/repository"
	"site-analytics-service/internal/rollup"
	"site-analytics-service/internal/service"
	"site-analytics-service/internal/store"
	"site-analytics-service/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	visits := store.New(cfg.StoreCapacity)
	aggregator := metrics.New(visits)

	// The ClickHouse sink is optional; without it the service runs on
	// the in-memory store alone.
	var repo repository.VisitRepository
	var worker service.VisitWorker
	if cfg.ClickHouseAddr != "" {
		conn, err := db.NewClickHouse(ctx, cfg)
		if err != nil {
			log.Fatalf("connect clickhouse: %v", err)
		}
		defer conn.Close()

		if err := db.RunMigrations(ctx, conn); err != nil {
			log.Fatalf("migrate clickhouse: %v", err)
		}

		repo = repository.NewVisitRepository(conn)
		worker = service.NewBatchVisitWorker(repo, cfg.WorkerBufferSize, cfg.WorkerBatchSize, cfg.WorkerFlushEvery, log)
	} else {
		log.Warn("CLICKHOUSE_ADDR not set, visits will not be persisted")
	}

	// Rollups need both stores: ClickHouse for the aggregates and
	// Postgres to hold the daily buckets.
	var rollupSvc rollup.Service
	var scheduler *cron.Cron
	if cfg.DatabaseURL != "" && repo != nil {
		pg, err := db.NewPostgres(ctx, cfg)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pg.Close()

		if err := db.EnsureRollupSchema(ctx, pg); err != nil {
			log.Fatalf("ensure rollup schema: %v", err)
		}

		rollupSvc = rollup.NewService(repo, pg, log)

		c, err := rollup.NewScheduler(rollupSvc, cfg.RollupSchedule, log)
		if err != nil {
			log.Fatalf("rollup scheduler: %v", err)
		}
		c.Start()
		scheduler = c
	} else if cfg.DatabaseURL != "" {
		log.Warn("DATABASE_URL set without CLICKHOUSE_ADDR, rollups disabled")
	}

	registry := webhook.NewRegistry(cfg.WebhookFailureThreshold)
	dispatcher := webhook.NewDispatcher(registry, webhook.Options{
		Timeout:    cfg.WebhookTimeout,
		MaxRetries: cfg.WebhookMaxRetries,
		BaseDelay:  cfg.WebhookBaseDelay,
	}, log)

	analyticsService := service.NewAnalyticsService(visits, aggregator, worker)
	analyticsController := controller.NewAnalyticsController(analyticsService, repo, rollupSvc)
	webhookController := controller.NewWebhookController(registry, dispatcher, analyticsService, log)

	server := httpserver.NewServer(cfg, analyticsController, webhookController)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", cfg.HTTPPort)
		errCh <- server.Listen(cfg.HTTPPort)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
	}

	if scheduler != nil {
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(30 * time.Second):
			log.Warn("rollup job did not finish in time")
		}
	}
	if worker != nil {
		worker.Shutdown()
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppMode == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
