package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	application "quorum/contexts/governance/approval-engine/application"
	"quorum/contexts/governance/approval-engine/domain/entities"
	"quorum/contexts/governance/approval-engine/ports"
)

// OutcomeRecorder durably persists terminal outcomes and the running aggregate
// counters. Persistence is retried with exponential backoff; exhausting the
// retries surfaces a resolution_unpersisted warning on the event stream
// instead of silently losing the decision.
type OutcomeRecorder struct {
	Outcomes   ports.OutcomeRepository
	Publisher  ports.EventPublisher
	IDGen      ports.IDGenerator
	MaxRetries uint64 // default 5
	Logger     *slog.Logger
}

// Record writes one outcome. Safe to call repeatedly for the same session:
// the repository contract keeps outcome and counters idempotent per session
// id. The resolution decision never waits on this path.
func (r OutcomeRecorder) Record(ctx context.Context, outcome entities.Outcome) {
	logger := application.ResolveLogger(r.Logger)
	if r.Outcomes == nil {
		return
	}

	retries := r.MaxRetries
	if retries == 0 {
		retries = 5
	}
	operation := func() error {
		return r.Outcomes.SaveOutcome(ctx, outcome)
	}
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx))
	if err == nil {
		logger.Info("outcome recorded",
			"event", "approval_outcome_recorded",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", outcome.SessionID,
			"status", string(outcome.Status),
		)
		return
	}

	logger.Error("outcome persistence exhausted retries",
		"event", "approval_outcome_unpersisted",
		"module", "governance/approval-engine",
		"layer", "application",
		"session_id", outcome.SessionID,
		"status", string(outcome.Status),
		"error", err.Error(),
	)
	r.warnUnpersisted(ctx, outcome, err)
}

// warnUnpersisted publishes the resolution_unpersisted warning directly on the
// bus. The outbox is skipped on purpose: the same store that rejected the
// outcome write would back it.
func (r OutcomeRecorder) warnUnpersisted(ctx context.Context, outcome entities.Outcome, cause error) {
	if r.Publisher == nil {
		return
	}
	eventID := outcome.SessionID
	if r.IDGen != nil {
		if id, err := r.IDGen.NewID(ctx); err == nil {
			eventID = id
		}
	}
	logger := application.ResolveLogger(r.Logger)
	envelope, err := newApprovalEnvelope(eventID, EventResolutionUnpersisted, outcome.SessionID, time.Now().UTC(), map[string]any{
		"session_id": outcome.SessionID,
		"status":     string(outcome.Status),
		"error":      cause.Error(),
	})
	if err != nil {
		logger.Error("unpersisted warning envelope build failed",
			"event", "approval_unpersisted_warning_dropped",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", outcome.SessionID,
			"error", err.Error(),
		)
		return
	}
	if err := r.Publisher.Publish(ctx, EventResolutionUnpersisted, envelope); err != nil {
		logger.Error("unpersisted warning publish failed",
			"event", "approval_unpersisted_warning_dropped",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", outcome.SessionID,
			"error", err.Error(),
		)
	}
}
