package approvalengine

import (
	"context"
	"log/slog"
	"time"

	httpadapter "quorum/contexts/governance/approval-engine/adapters/http"
	"quorum/contexts/governance/approval-engine/adapters/memory"
	"quorum/contexts/governance/approval-engine/adapters/schedule"
	"quorum/contexts/governance/approval-engine/application/commands"
	"quorum/contexts/governance/approval-engine/application/queries"
	"quorum/contexts/governance/approval-engine/domain/catalog"
	"quorum/contexts/governance/approval-engine/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Engine    *commands.SessionUseCase
	Store     *memory.Store
	Scheduler *schedule.TimerScheduler
}

type Dependencies struct {
	Sessions    ports.SessionRepository
	Outcomes    ports.OutcomeRepository
	Idempotency ports.IdempotencyStore
	Outbox      ports.OutboxWriter
	Publisher   ports.EventPublisher
	Scheduler   ports.DeadlineScheduler
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Catalog     *catalog.Catalog

	SessionDeadline        time.Duration
	TimeoutApprovalRatio   float64
	ConditionalEnergyRatio float64
	IdempotencyTTL         time.Duration

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	signalCatalog := deps.Catalog
	if signalCatalog == nil {
		signalCatalog = catalog.Default()
	}
	engine := &commands.SessionUseCase{
		Sessions:    deps.Sessions,
		Idempotency: deps.Idempotency,
		Outbox:      deps.Outbox,
		Recorder: commands.OutcomeRecorder{
			Outcomes:  deps.Outcomes,
			Publisher: deps.Publisher,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		Scheduler:              deps.Scheduler,
		Clock:                  deps.Clock,
		IDGen:                  deps.IDGen,
		Catalog:                signalCatalog,
		SessionDeadline:        deps.SessionDeadline,
		TimeoutApprovalRatio:   deps.TimeoutApprovalRatio,
		ConditionalEnergyRatio: deps.ConditionalEnergyRatio,
		IdempotencyTTL:         deps.IdempotencyTTL,
		Logger:                 deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Engine:   engine,
			Sessions: queries.SessionQueryUseCase{Sessions: deps.Sessions},
			Outcomes: queries.OutcomeQueryUseCase{Sessions: deps.Sessions, Outcomes: deps.Outcomes},
			Logger:   deps.Logger,
		},
		Engine: engine,
	}
}

// NewInMemoryModule wires the engine onto the in-memory store with live
// per-session timers. Used by tests and local runs without postgres.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	scheduler := schedule.NewTimerScheduler()
	module := NewModule(Dependencies{
		Sessions:    store,
		Outcomes:    store,
		Idempotency: store,
		Outbox:      store,
		Scheduler:   scheduler,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	scheduler.Bind(func(sessionID string) {
		_ = module.Engine.HandleDeadline(context.Background(), sessionID)
	})
	module.Store = store
	module.Scheduler = scheduler
	return module
}
