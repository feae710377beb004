package queries

import (
	"context"
	"strings"
	"time"

	"quorum/contexts/governance/approval-engine/domain/entities"
	domainerrors "quorum/contexts/governance/approval-engine/domain/errors"
	"quorum/contexts/governance/approval-engine/ports"
)

// SessionSnapshot is the read model for one session's current state.
type SessionSnapshot struct {
	SessionID        string
	ProposalID       string
	Title            string
	Status           entities.SessionStatus
	Threshold        int
	CumulativeEnergy float64
	ProgressRatio    float64
	VoteCount        int
	ParticipantCount int
	VetoApplied      bool
	CreatedAt        time.Time
	DeadlineAt       time.Time
	ResolvedAt       *time.Time
}

type SessionQueryUseCase struct {
	Sessions ports.SessionRepository
}

func (uc SessionQueryUseCase) Snapshot(ctx context.Context, sessionID string) (SessionSnapshot, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return SessionSnapshot{}, domainerrors.ErrSessionNotFound
	}
	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	return SessionSnapshot{
		SessionID:        session.SessionID,
		ProposalID:       session.Proposal.ProposalID,
		Title:            session.Proposal.Title,
		Status:           session.Status,
		Threshold:        session.Threshold,
		CumulativeEnergy: session.CumulativeEnergy,
		ProgressRatio:    session.ProgressRatio(),
		VoteCount:        len(session.Votes),
		ParticipantCount: len(session.Participants),
		VetoApplied:      session.VetoApplied,
		CreatedAt:        session.CreatedAt,
		DeadlineAt:       session.DeadlineAt,
		ResolvedAt:       session.ResolvedAt,
	}, nil
}
