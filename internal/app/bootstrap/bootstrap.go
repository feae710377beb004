package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	approvalengine "quorum/contexts/governance/approval-engine"
	postgresadapter "quorum/contexts/governance/approval-engine/adapters/postgres"
	"quorum/contexts/governance/approval-engine/adapters/schedule"
	workerapp "quorum/contexts/governance/approval-engine/application/workers"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
	"quorum/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server    *httpserver.Server
	postgres  *db.Postgres
	scheduler *schedule.TimerScheduler
	engine    approvalengine.Module
	logger    *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	sweeper      workerapp.DeadlineSweeper
	relayEnabled bool
	sweepEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	scheduler := schedule.NewTimerScheduler()
	module := approvalengine.NewModule(approvalengine.Dependencies{
		Sessions:               repo,
		Outcomes:               repo,
		Idempotency:            repo,
		Outbox:                 repo,
		Publisher:              bus,
		Scheduler:              scheduler,
		Clock:                  postgresadapter.SystemClock{},
		IDGen:                  postgresadapter.UUIDGenerator{},
		SessionDeadline:        cfg.SessionDeadline,
		TimeoutApprovalRatio:   cfg.TimeoutApprovalRatio,
		ConditionalEnergyRatio: cfg.ConditionalEnergyRatio,
		IdempotencyTTL:         7 * 24 * time.Hour,
		Logger:                 logger,
	})
	scheduler.Bind(func(sessionID string) {
		_ = module.Engine.HandleDeadline(context.Background(), sessionID)
	})

	// Rearm timers for sessions that were in flight when the process last
	// stopped; the worker sweeper covers the same gap on a slower cadence.
	sweeper := workerapp.DeadlineSweeper{
		Sessions:  repo,
		Engine:    module.Engine,
		Scheduler: scheduler,
		Clock:     postgresadapter.SystemClock{},
		Logger:    logger,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		logger.Warn("deadline rearm on startup failed",
			"event", "bootstrap_deadline_rearm_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
	}

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:    server,
		postgres:  pg,
		scheduler: scheduler,
		engine:    module,
		logger:    logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	scheduler := schedule.NewTimerScheduler()
	module := approvalengine.NewModule(approvalengine.Dependencies{
		Sessions:               repo,
		Outcomes:               repo,
		Idempotency:            repo,
		Outbox:                 repo,
		Publisher:              kafka,
		Scheduler:              scheduler,
		Clock:                  postgresadapter.SystemClock{},
		IDGen:                  postgresadapter.UUIDGenerator{},
		SessionDeadline:        cfg.SessionDeadline,
		TimeoutApprovalRatio:   cfg.TimeoutApprovalRatio,
		ConditionalEnergyRatio: cfg.ConditionalEnergyRatio,
		IdempotencyTTL:         7 * 24 * time.Hour,
		Logger:                 logger,
	})
	scheduler.Bind(func(sessionID string) {
		_ = module.Engine.HandleDeadline(context.Background(), sessionID)
	})

	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		sweeper: workerapp.DeadlineSweeper{
			Sessions:  repo,
			Engine:    module.Engine,
			Scheduler: scheduler,
			Clock:     postgresadapter.SystemClock{},
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		sweepEnabled: cfg.EnableDeadlineSweeper,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	a.engine.Engine.Drain()
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"outbox_relay", w.relayEnabled,
		"deadline_sweeper", w.sweepEnabled,
	)

	for {
		if w.sweepEnabled {
			if err := w.sweeper.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
