package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quorum/contexts/governance/approval-engine/domain/entities"
	domainerrors "quorum/contexts/governance/approval-engine/domain/errors"
	"quorum/contexts/governance/approval-engine/ports"
)

func testOutcome(sessionID string, status entities.SessionStatus, latency time.Duration) entities.Outcome {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return entities.Outcome{
		SessionID:        sessionID,
		ProposalID:       "proposal-" + sessionID,
		Status:           status,
		SessionCreatedAt: created,
		ResolvedAt:       created.Add(latency),
	}
}

func TestSaveOutcomeReplaySameStatusIsNoOp(t *testing.T) {
	store := NewStore()
	outcome := testOutcome("session-1", entities.StatusApproved, time.Minute)

	if err := store.SaveOutcome(context.Background(), outcome); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SaveOutcome(context.Background(), outcome); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	stats, err := store.GetAggregateStats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalProposals != 1 || stats.Approved != 1 {
		t.Fatalf("replay must not double-count: %+v", stats)
	}
	if stats.AverageResolutionLatency != time.Minute {
		t.Fatalf("expected average latency 1m, got %v", stats.AverageResolutionLatency)
	}
}

func TestSaveOutcomeSupersedesDeferred(t *testing.T) {
	store := NewStore()
	if err := store.SaveOutcome(context.Background(), testOutcome("session-1", entities.StatusDeferred, time.Minute)); err != nil {
		t.Fatalf("deferred save failed: %v", err)
	}
	if err := store.SaveOutcome(context.Background(), testOutcome("session-1", entities.StatusRejected, 3*time.Minute)); err != nil {
		t.Fatalf("rejected save failed: %v", err)
	}

	stats, err := store.GetAggregateStats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalProposals != 1 || stats.Deferred != 0 || stats.Rejected != 1 {
		t.Fatalf("expected counters shifted deferred->rejected, got %+v", stats)
	}
	if stats.AverageResolutionLatency != 3*time.Minute {
		t.Fatalf("expected superseding latency, got %v", stats.AverageResolutionLatency)
	}

	outcome, err := store.GetOutcome(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("outcome lookup failed: %v", err)
	}
	if outcome.Status != entities.StatusRejected {
		t.Fatalf("expected rejected outcome, got %s", outcome.Status)
	}
}

func TestVetoCountTracked(t *testing.T) {
	store := NewStore()
	outcome := testOutcome("session-1", entities.StatusRejected, time.Minute)
	outcome.VetoApplied = true
	if err := store.SaveOutcome(context.Background(), outcome); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	stats, _ := store.GetAggregateStats(context.Background())
	if stats.VetoCount != 1 {
		t.Fatalf("expected veto count 1, got %d", stats.VetoCount)
	}
}

func TestGetOutcomeMissing(t *testing.T) {
	store := NewStore()
	if _, err := store.GetOutcome(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrOutcomeNotReady) {
		t.Fatalf("expected ErrOutcomeNotReady, got %v", err)
	}
}

func TestSetOutcomeSaveFailures(t *testing.T) {
	store := NewStore()
	store.SetOutcomeSaveFailures(2)
	outcome := testOutcome("session-1", entities.StatusApproved, time.Minute)

	for i := 0; i < 2; i++ {
		if err := store.SaveOutcome(context.Background(), outcome); !errors.Is(err, domainerrors.ErrPersistenceFailure) {
			t.Fatalf("attempt %d: expected ErrPersistenceFailure, got %v", i, err)
		}
	}
	if err := store.SaveOutcome(context.Background(), outcome); err != nil {
		t.Fatalf("expected save to recover after configured failures: %v", err)
	}
}

func TestIdempotencyExpiry(t *testing.T) {
	store := NewStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	record := ports.IdempotencyRecord{
		Key:         "idem-1",
		RequestHash: "hash",
		SessionID:   "session-1",
		ExpiresAt:   now.Add(time.Hour),
	}
	if err := store.Put(context.Background(), record); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, found, err := store.Get(context.Background(), "idem-1", now)
	if err != nil || !found || got.SessionID != "session-1" {
		t.Fatalf("expected live record, got %+v found=%v err=%v", got, found, err)
	}

	_, found, err = store.Get(context.Background(), "idem-1", now.Add(2*time.Hour))
	if err != nil || found {
		t.Fatalf("expected expired record to be invisible, found=%v err=%v", found, err)
	}
}

func TestOutboxOrderingAndPublish(t *testing.T) {
	store := NewStore()
	for _, eventType := range []string{"approval.session.deferred", "approval.session.approved"} {
		if err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:    eventType,
			EventType:  eventType,
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending rows, got %d", len(pending))
	}
	if pending[0].EventType != "approval.session.deferred" {
		t.Fatalf("expected insertion order preserved, got %s first", pending[0].EventType)
	}

	if err := store.MarkOutboxPublished(context.Background(), pending[0].OutboxID, time.Now().UTC()); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, err = store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "approval.session.approved" {
		t.Fatalf("expected only the approved row pending, got %+v", pending)
	}
}

func TestListUnresolvedSessionsSkipsTerminal(t *testing.T) {
	store := NewStore()
	for id, status := range map[string]entities.SessionStatus{
		"session-a": entities.StatusAccumulating,
		"session-b": entities.StatusDeferred,
		"session-c": entities.StatusApproved,
		"session-d": entities.StatusRejected,
	} {
		if err := store.SaveSession(context.Background(), entities.ApprovalSession{SessionID: id, Status: status}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	unresolved, err := store.ListUnresolvedSessions(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(unresolved) != 2 {
		t.Fatalf("expected accumulating+deferred only, got %d", len(unresolved))
	}
}
