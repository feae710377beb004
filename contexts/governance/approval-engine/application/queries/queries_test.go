package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"quorum/contexts/governance/approval-engine/adapters/memory"
	"quorum/contexts/governance/approval-engine/domain/entities"
	domainerrors "quorum/contexts/governance/approval-engine/domain/errors"
)

func TestSnapshotReflectsSessionState(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	session := entities.NewSession("session-1", entities.Proposal{
		ProposalID:  "proposal-1",
		Title:       "raise replica count",
		Scope:       entities.ScopeNormal,
		Risk:        entities.RiskLow,
		SubmitterID: "user-1",
	}, 80, now, now.Add(5*time.Minute))
	session.AppendVote(entities.VoteRecord{
		VoteID:        "vote-1",
		SessionID:     "session-1",
		ParticipantID: "user-a",
		Energy:        40,
	})
	if err := store.SaveSession(context.Background(), session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	uc := SessionQueryUseCase{Sessions: store}
	snapshot, err := uc.Snapshot(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if snapshot.Status != entities.StatusAccumulating || snapshot.CumulativeEnergy != 40 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	if snapshot.ProgressRatio != 0.5 {
		t.Fatalf("expected progress 0.5, got %f", snapshot.ProgressRatio)
	}
	if snapshot.VoteCount != 1 || snapshot.ParticipantCount != 1 {
		t.Fatalf("unexpected counts in %+v", snapshot)
	}
}

func TestSnapshotMissingSession(t *testing.T) {
	uc := SessionQueryUseCase{Sessions: memory.NewStore()}
	if _, err := uc.Snapshot(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := uc.Snapshot(context.Background(), "  "); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for blank id, got %v", err)
	}
}

func TestOutcomeDistinguishesNotReadyFromMissing(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	session := entities.NewSession("session-1", entities.Proposal{ProposalID: "proposal-1"}, 80, now, now.Add(time.Minute))
	if err := store.SaveSession(context.Background(), session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	uc := OutcomeQueryUseCase{Sessions: store, Outcomes: store}
	if _, err := uc.Outcome(context.Background(), "session-1"); !errors.Is(err, domainerrors.ErrOutcomeNotReady) {
		t.Fatalf("expected ErrOutcomeNotReady for unresolved session, got %v", err)
	}
	if _, err := uc.Outcome(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown session, got %v", err)
	}

	if err := store.SaveOutcome(context.Background(), entities.Outcome{
		SessionID: "session-1",
		Status:    entities.StatusApproved,
	}); err != nil {
		t.Fatalf("outcome save failed: %v", err)
	}
	outcome, err := uc.Outcome(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("outcome lookup failed: %v", err)
	}
	if outcome.Status != entities.StatusApproved {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}
