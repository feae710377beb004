package workers

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/governance/approval-engine/application"
	"quorum/contexts/governance/approval-engine/application/commands"
	"quorum/contexts/governance/approval-engine/domain/entities"
	"quorum/contexts/governance/approval-engine/ports"
)

// DeadlineSweeper is the restart safety net for session deadlines: sessions
// are durable but armed timers are not. Each sweep resolves overdue
// accumulating sessions and re-arms timers for the rest.
type DeadlineSweeper struct {
	Sessions  ports.SessionRepository
	Engine    *commands.SessionUseCase
	Scheduler ports.DeadlineScheduler
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (s DeadlineSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	sessions, err := s.Sessions.ListUnresolvedSessions(ctx)
	if err != nil {
		logger.Error("deadline sweep list failed",
			"event", "approval_deadline_sweep_list_failed",
			"module", "governance/approval-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	var resolved, rearmed int
	for _, session := range sessions {
		if !session.DeadlineAt.After(now) {
			// Deferred sessions only re-enter deadline evaluation via resume,
			// so an overdue deferred deadline is stale, not actionable.
			if session.Status == entities.StatusAccumulating {
				if err := s.Engine.HandleDeadline(ctx, session.SessionID); err != nil {
					logger.Error("deadline sweep resolution failed",
						"event", "approval_deadline_sweep_resolve_failed",
						"module", "governance/approval-engine",
						"layer", "worker",
						"session_id", session.SessionID,
						"error", err.Error(),
					)
					return err
				}
				resolved++
			}
			continue
		}
		if s.Scheduler != nil {
			s.Scheduler.Schedule(session.SessionID, session.DeadlineAt)
			rearmed++
		}
	}

	logger.Info("deadline sweep completed",
		"event", "approval_deadline_sweep_completed",
		"module", "governance/approval-engine",
		"layer", "worker",
		"scanned", len(sessions),
		"resolved", resolved,
		"rearmed", rearmed,
	)
	return nil
}
