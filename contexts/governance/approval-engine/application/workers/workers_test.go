package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quorum/contexts/governance/approval-engine/adapters/memory"
	"quorum/contexts/governance/approval-engine/application/commands"
	"quorum/contexts/governance/approval-engine/domain/catalog"
	"quorum/contexts/governance/approval-engine/domain/entities"
	"quorum/contexts/governance/approval-engine/ports"
)

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{scheduled: make(map[string]time.Time)}
}

func (r *recordingScheduler) Schedule(sessionID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled[sessionID] = at
}

func (r *recordingScheduler) Cancel(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scheduled, sessionID)
}

type stubPublisher struct {
	mu       sync.Mutex
	events   []ports.EventEnvelope
	failures int
}

func (p *stubPublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func newWorkerFixture() (*memory.Store, *commands.SessionUseCase, *recordingScheduler) {
	store := memory.NewStore()
	scheduler := newRecordingScheduler()
	engine := &commands.SessionUseCase{
		Sessions:  store,
		Outbox:    store,
		Recorder:  commands.OutcomeRecorder{Outcomes: store},
		Scheduler: scheduler,
		Clock:     store,
		IDGen:     store,
		Catalog:   catalog.Default(),
	}
	return store, engine, scheduler
}

func seedSession(t *testing.T, store *memory.Store, sessionID string, status entities.SessionStatus, energy float64, deadline time.Time) {
	t.Helper()
	now := time.Now().UTC().Add(-10 * time.Minute)
	proposal := entities.Proposal{
		ProposalID:  "proposal-" + sessionID,
		Title:       "seeded",
		Scope:       entities.ScopeNormal,
		Risk:        entities.RiskMedium,
		SubmitterID: "user-1",
		SubmittedAt: now,
	}
	session := entities.NewSession(sessionID, proposal, 100, now, deadline)
	session.Status = status
	if energy != 0 {
		session.AppendVote(entities.VoteRecord{
			VoteID:        "vote-" + sessionID,
			SessionID:     sessionID,
			ParticipantID: "user-1",
			Role:          catalog.RoleStandard,
			Signal:        catalog.SignalApprove,
			Intensity:     1.0,
			Energy:        energy,
			CastAt:        now,
		})
	}
	if err := store.SaveSession(context.Background(), session); err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
}

func TestDeadlineSweeperResolvesOverdueSessions(t *testing.T) {
	store, engine, scheduler := newWorkerFixture()
	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)

	seedSession(t, store, "session-overdue", entities.StatusAccumulating, 70, past)
	seedSession(t, store, "session-live", entities.StatusAccumulating, 10, future)

	sweeper := DeadlineSweeper{
		Sessions:  store,
		Engine:    engine,
		Scheduler: scheduler,
		Clock:     store,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	engine.Drain()

	overdue, err := store.GetSession(context.Background(), "session-overdue")
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if overdue.Status != entities.StatusApproved || !overdue.Conditional {
		t.Fatalf("expected overdue session conditionally approved at 70/100, got %+v", overdue.Status)
	}

	live, err := store.GetSession(context.Background(), "session-live")
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if live.Status != entities.StatusAccumulating {
		t.Fatalf("live session must stay accumulating, got %s", live.Status)
	}
	scheduler.mu.Lock()
	_, rearmed := scheduler.scheduled["session-live"]
	scheduler.mu.Unlock()
	if !rearmed {
		t.Fatalf("expected live session timer re-armed")
	}
}

func TestDeadlineSweeperSkipsStaleDeferred(t *testing.T) {
	store, engine, scheduler := newWorkerFixture()
	past := time.Now().UTC().Add(-time.Minute)
	seedSession(t, store, "session-deferred", entities.StatusDeferred, 10, past)

	sweeper := DeadlineSweeper{
		Sessions:  store,
		Engine:    engine,
		Scheduler: scheduler,
		Clock:     store,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	deferred, err := store.GetSession(context.Background(), "session-deferred")
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if deferred.Status != entities.StatusDeferred {
		t.Fatalf("stale deferred session must stay deferred, got %s", deferred.Status)
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	publisher := &stubPublisher{}

	for _, eventType := range []string{"approval.session.approved", "approval.session.deferred"} {
		if err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:    "event-" + eventType,
			EventType:  eventType,
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}

	publisher.mu.Lock()
	published := len(publisher.events)
	publisher.mu.Unlock()
	if published != 2 {
		t.Fatalf("expected 2 published events, got %d", published)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows after relay, got %d", len(pending))
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	publisher := &stubPublisher{failures: 1}

	for _, id := range []string{"first", "second"} {
		if err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:    id,
			EventType:  "approval.session.approved",
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay to surface publish failure")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected both rows still pending after failure, got %d", len(pending))
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry relay failed: %v", err)
	}
	pending, _ = store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected retry to drain the outbox, got %d pending", len(pending))
	}
}
