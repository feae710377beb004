package queries

import (
	"context"
	"errors"
	"strings"

	"quorum/contexts/governance/approval-engine/domain/entities"
	domainerrors "quorum/contexts/governance/approval-engine/domain/errors"
	"quorum/contexts/governance/approval-engine/ports"
)

type OutcomeQueryUseCase struct {
	Sessions ports.SessionRepository
	Outcomes ports.OutcomeRepository
}

// Outcome returns the recorded outcome for a resolved session. An existing but
// still accumulating session maps to ErrOutcomeNotReady so callers can
// distinguish "not yet" from "never existed".
func (uc OutcomeQueryUseCase) Outcome(ctx context.Context, sessionID string) (entities.Outcome, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entities.Outcome{}, domainerrors.ErrSessionNotFound
	}
	outcome, err := uc.Outcomes.GetOutcome(ctx, sessionID)
	if err == nil {
		return outcome, nil
	}
	if !errors.Is(err, domainerrors.ErrOutcomeNotReady) {
		return entities.Outcome{}, err
	}
	if _, sessionErr := uc.Sessions.GetSession(ctx, sessionID); sessionErr != nil {
		return entities.Outcome{}, sessionErr
	}
	return entities.Outcome{}, domainerrors.ErrOutcomeNotReady
}

func (uc OutcomeQueryUseCase) AggregateStats(ctx context.Context) (entities.AggregateStats, error) {
	return uc.Outcomes.GetAggregateStats(ctx)
}
