package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"quorum/contexts/governance/approval-engine/domain/entities"
	domainerrors "quorum/contexts/governance/approval-engine/domain/errors"
	"quorum/contexts/governance/approval-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter backing tests and local wiring. It implements
// the session, outcome, idempotency, and outbox ports plus clock and id
// generation.
type Store struct {
	mu sync.RWMutex

	sessions    map[string]entities.ApprovalSession
	outcomes    map[string]entities.Outcome
	idempotency map[string]ports.IdempotencyRecord
	outbox      map[string]outboxRecord
	outboxOrder []string

	stats        entities.AggregateStats
	totalLatency time.Duration
	latencyCount int

	outcomeFailures int
}

func NewStore() *Store {
	return &Store{
		sessions:    make(map[string]entities.ApprovalSession),
		outcomes:    make(map[string]entities.Outcome),
		idempotency: make(map[string]ports.IdempotencyRecord),
		outbox:      make(map[string]outboxRecord),
	}
}

// SetOutcomeSaveFailures makes the next count SaveOutcome calls fail. Test
// hook for the recorder's retry and unpersisted-warning paths.
func (s *Store) SetOutcomeSaveFailures(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomeFailures = count
}

func (s *Store) SaveSession(_ context.Context, session entities.ApprovalSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[strings.TrimSpace(session.SessionID)] = session
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.ApprovalSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.ApprovalSession{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) ListUnresolvedSessions(_ context.Context) ([]entities.ApprovalSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var unresolved []entities.ApprovalSession
	for _, session := range s.sessions {
		if !session.Terminal() {
			unresolved = append(unresolved, session)
		}
	}
	return unresolved, nil
}

// SaveOutcome keeps one outcome per session id. Replaying the same resolution
// is a no-op; a deferred outcome superseded by a later resolution shifts the
// aggregate counters instead of double-counting the session.
func (s *Store) SaveOutcome(_ context.Context, outcome entities.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcomeFailures > 0 {
		s.outcomeFailures--
		return domainerrors.ErrPersistenceFailure
	}

	sessionID := strings.TrimSpace(outcome.SessionID)
	existing, found := s.outcomes[sessionID]
	if found && existing.Status == outcome.Status {
		return nil
	}

	if found {
		s.applyStatsDelta(existing, -1)
		s.totalLatency -= existing.ResolutionLatency()
		s.latencyCount--
	} else {
		s.stats.TotalProposals++
	}
	s.applyStatsDelta(outcome, 1)
	s.totalLatency += outcome.ResolutionLatency()
	s.latencyCount++

	s.outcomes[sessionID] = outcome
	return nil
}

func (s *Store) applyStatsDelta(outcome entities.Outcome, delta int) {
	switch outcome.Status {
	case entities.StatusApproved:
		s.stats.Approved += delta
	case entities.StatusRejected:
		s.stats.Rejected += delta
	case entities.StatusDeferred:
		s.stats.Deferred += delta
	}
	if outcome.VetoApplied {
		s.stats.VetoCount += delta
	}
}

func (s *Store) GetOutcome(_ context.Context, sessionID string) (entities.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	outcome, ok := s.outcomes[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.Outcome{}, domainerrors.ErrOutcomeNotReady
	}
	return outcome, nil
}

func (s *Store) GetAggregateStats(_ context.Context) (entities.AggregateStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := s.stats
	if s.latencyCount > 0 {
		stats.AverageResolutionLatency = s.totalLatency / time.Duration(s.latencyCount)
	}
	return stats, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.idempotency[strings.TrimSpace(key)]
	if !ok || record.ExpiresAt.Before(now) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[strings.TrimSpace(record.Key)] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	outboxID := uuid.NewString()
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  outboxID,
			EventType: event.EventType,
			Payload:   payload,
			Status:    "pending",
			CreatedAt: event.OccurredAt,
		},
	}
	s.outboxOrder = append(s.outboxOrder, outboxID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []ports.OutboxMessage
	for _, outboxID := range s.outboxOrder {
		record := s.outbox[outboxID]
		if record.published {
			continue
		}
		pending = append(pending, record.message)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return nil
	}
	record.published = true
	record.message.Status = "published"
	record.message.PublishedAt = &publishedAt
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
