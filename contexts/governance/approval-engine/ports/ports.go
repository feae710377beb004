package ports

import (
	"context"
	"encoding/json"
	"time"

	"quorum/contexts/governance/approval-engine/domain/entities"
)

type SessionRepository interface {
	SaveSession(ctx context.Context, session entities.ApprovalSession) error
	GetSession(ctx context.Context, sessionID string) (entities.ApprovalSession, error)
	// ListUnresolvedSessions returns accumulating and deferred sessions so the
	// deadline sweeper can re-arm timers after a restart.
	ListUnresolvedSessions(ctx context.Context) ([]entities.ApprovalSession, error)
}

type OutcomeRepository interface {
	// SaveOutcome is idempotent per session id: replaying the same resolution
	// must not duplicate the outcome or double-count aggregate stats. A
	// deferred outcome superseded by a later resolution shifts the counters.
	SaveOutcome(ctx context.Context, outcome entities.Outcome) error
	GetOutcome(ctx context.Context, sessionID string) (entities.Outcome, error)
	GetAggregateStats(ctx context.Context) (entities.AggregateStats, error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	SessionID   string
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type OutboxMessage struct {
	OutboxID    string
	EventType   string
	Payload     []byte
	Status      string // pending, published
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

type OutboxRepository interface {
	OutboxWriter
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// DeadlineScheduler arms one cancellable deadline task per active session.
// Implementations must tolerate Cancel for unknown ids and Schedule replacing
// an existing timer for the same session.
type DeadlineScheduler interface {
	Schedule(sessionID string, at time.Time)
	Cancel(sessionID string)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
