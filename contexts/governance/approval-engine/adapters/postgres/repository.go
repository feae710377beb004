package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/governance/approval-engine/domain/entities"
	domainerrors "quorum/contexts/governance/approval-engine/domain/errors"
	"quorum/contexts/governance/approval-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	statsRowID = 1
)

// Repository is the durable adapter for sessions, votes, outcomes, aggregate
// counters, submit idempotency, and the outbox.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// SaveSession upserts the session row and inserts any vote rows not yet
// persisted. Vote rows are immutable, so conflicts on their ids are ignored.
func (r *Repository) SaveSession(ctx context.Context, session entities.ApprovalSession) error {
	row, err := sessionModelFromEntity(session)
	if err != nil {
		return r.logError("approval_repo_encode_session_failed", err, "session_id", session.SessionID)
	}
	votes := voteModelsFromEntity(session)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":            row.Status,
				"cumulative_energy": row.CumulativeEnergy,
				"participants":      row.Participants,
				"veto_applied":      row.VetoApplied,
				"conditional":       row.Conditional,
				"conditions":        row.Conditions,
				"deadline_at":       row.DeadlineAt,
				"resolved_at":       row.ResolvedAt,
				"updated_at":        row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		if len(votes) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&votes).Error
	})
	if err != nil {
		return r.logError("approval_repo_save_session_failed", err, "session_id", session.SessionID)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.ApprovalSession, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ApprovalSession{}, domainerrors.ErrSessionNotFound
		}
		return entities.ApprovalSession{}, r.logError("approval_repo_get_session_failed", err, "session_id", strings.TrimSpace(sessionID))
	}

	var voteRows []voteModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Order("cast_at ASC, id ASC").
		Find(&voteRows).Error; err != nil {
		return entities.ApprovalSession{}, r.logError("approval_repo_list_votes_failed", err, "session_id", strings.TrimSpace(sessionID))
	}

	session, err := row.toEntity(voteRows)
	if err != nil {
		return entities.ApprovalSession{}, r.logError("approval_repo_decode_session_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	return session, nil
}

func (r *Repository) ListUnresolvedSessions(ctx context.Context) ([]entities.ApprovalSession, error) {
	var rows []sessionModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(entities.StatusAccumulating), string(entities.StatusDeferred)}).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("approval_repo_list_unresolved_failed", err)
	}

	sessions := make([]entities.ApprovalSession, 0, len(rows))
	for _, row := range rows {
		var voteRows []voteModel
		if err := r.db.WithContext(ctx).
			Where("session_id = ?", row.ID).
			Order("cast_at ASC, id ASC").
			Find(&voteRows).Error; err != nil {
			return nil, r.logError("approval_repo_list_votes_failed", err, "session_id", row.ID)
		}
		session, err := row.toEntity(voteRows)
		if err != nil {
			return nil, r.logError("approval_repo_decode_session_failed", err, "session_id", row.ID)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// SaveOutcome persists the outcome and shifts the aggregate counters inside
// one transaction. Replaying an unchanged resolution is a no-op, so retries
// never double-count statistics.
func (r *Repository) SaveOutcome(ctx context.Context, outcome entities.Outcome) error {
	row, err := outcomeModelFromEntity(outcome)
	if err != nil {
		return r.logError("approval_repo_encode_outcome_failed", err, "session_id", outcome.SessionID)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats statsModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", statsRowID).
			First(&stats).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			stats = statsModel{ID: statsRowID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stats).Error; err != nil && !isUniqueViolation(err) {
				return err
			}
		}

		var existing outcomeModel
		found := true
		if err := tx.Where("session_id = ?", row.SessionID).First(&existing).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}
		if found && existing.Status == row.Status {
			return nil
		}

		if found {
			stats.apply(existing, -1)
		} else {
			stats.TotalProposals++
		}
		stats.apply(row, 1)

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":       row.Status,
				"final_energy": row.FinalEnergy,
				"conditional":  row.Conditional,
				"conditions":   row.Conditions,
				"veto_applied": row.VetoApplied,
				"resolved_at":  row.ResolvedAt,
				"latency_ms":   row.LatencyMS,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Save(&stats).Error
	})
	if err != nil {
		return r.logError("approval_repo_save_outcome_failed", err, "session_id", outcome.SessionID)
	}
	return nil
}

func (r *Repository) GetOutcome(ctx context.Context, sessionID string) (entities.Outcome, error) {
	var row outcomeModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Outcome{}, domainerrors.ErrOutcomeNotReady
		}
		return entities.Outcome{}, r.logError("approval_repo_get_outcome_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	outcome, err := row.toEntity()
	if err != nil {
		return entities.Outcome{}, r.logError("approval_repo_decode_outcome_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	return outcome, nil
}

func (r *Repository) GetAggregateStats(ctx context.Context) (entities.AggregateStats, error) {
	var stats statsModel
	err := r.db.WithContext(ctx).
		Where("id = ?", statsRowID).
		First(&stats).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AggregateStats{}, nil
		}
		return entities.AggregateStats{}, r.logError("approval_repo_get_stats_failed", err)
	}
	return stats.toEntity(), nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		Where("expires_at > ?", now).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("approval_repo_get_idempotency_failed", err, "key", strings.TrimSpace(key))
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		SessionID:   row.SessionID,
		ExpiresAt:   row.ExpiresAt,
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: record.RequestHash,
		SessionID:   record.SessionID,
		ExpiresAt:   record.ExpiresAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"request_hash": row.RequestHash,
			"session_id":   row.SessionID,
			"expires_at":   row.ExpiresAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("approval_repo_put_idempotency_failed", err, "key", row.Key)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:        uuid.NewString(),
		EventType: event.EventType,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: event.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("approval_repo_append_outbox_failed", err, "event_id", event.EventID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("approval_repo_list_outbox_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:    row.ID,
			EventType:   row.EventType,
			Payload:     row.Payload,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
			PublishedAt: row.PublishedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		}).Error
	if err != nil {
		return r.logError("approval_repo_mark_outbox_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/approval-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("approval repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock satisfies the clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator satisfies the id generator port with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
