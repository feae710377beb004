package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"quorum/contexts/governance/approval-engine/domain/catalog"
	"quorum/contexts/governance/approval-engine/domain/entities"
)

type sessionModel struct {
	ID               string     `gorm:"column:id;primaryKey"`
	ProposalID       string     `gorm:"column:proposal_id"`
	Title            string     `gorm:"column:title"`
	Scope            string     `gorm:"column:scope"`
	Risk             string     `gorm:"column:risk"`
	EstimatedCost    *float64   `gorm:"column:estimated_cost"`
	SubmitterID      string     `gorm:"column:submitter_id"`
	SubmittedAt      time.Time  `gorm:"column:submitted_at"`
	Status           string     `gorm:"column:status"`
	Threshold        int        `gorm:"column:threshold"`
	CumulativeEnergy float64    `gorm:"column:cumulative_energy"`
	Participants     []byte     `gorm:"column:participants;type:jsonb"`
	VetoApplied      bool       `gorm:"column:veto_applied"`
	Conditional      bool       `gorm:"column:conditional"`
	Conditions       []byte     `gorm:"column:conditions;type:jsonb"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	DeadlineAt       time.Time  `gorm:"column:deadline_at"`
	ResolvedAt       *time.Time `gorm:"column:resolved_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (sessionModel) TableName() string {
	return "approval_sessions"
}

type voteModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	SessionID     string    `gorm:"column:session_id"`
	ParticipantID string    `gorm:"column:participant_id"`
	Role          string    `gorm:"column:role"`
	Signal        string    `gorm:"column:signal"`
	Sentiment     string    `gorm:"column:sentiment"`
	SentimentBias float64   `gorm:"column:sentiment_bias"`
	Intensity     float64   `gorm:"column:intensity"`
	Energy        float64   `gorm:"column:energy"`
	CastAt        time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "approval_votes"
}

type outcomeModel struct {
	SessionID        string    `gorm:"column:session_id;primaryKey"`
	ProposalID       string    `gorm:"column:proposal_id"`
	Status           string    `gorm:"column:status"`
	FinalEnergy      float64   `gorm:"column:final_energy"`
	Threshold        int       `gorm:"column:threshold"`
	ParticipantCount int       `gorm:"column:participant_count"`
	VoteCount        int       `gorm:"column:vote_count"`
	DominantSignal   string    `gorm:"column:dominant_signal"`
	VetoApplied      bool      `gorm:"column:veto_applied"`
	Conditional      bool      `gorm:"column:conditional"`
	Conditions       []byte    `gorm:"column:conditions;type:jsonb"`
	SessionCreatedAt time.Time `gorm:"column:session_created_at"`
	ResolvedAt       time.Time `gorm:"column:resolved_at"`
	LatencyMS        int64     `gorm:"column:latency_ms"`
}

func (outcomeModel) TableName() string {
	return "approval_outcomes"
}

type statsModel struct {
	ID             int   `gorm:"column:id;primaryKey"`
	TotalProposals int   `gorm:"column:total_proposals"`
	Approved       int   `gorm:"column:approved"`
	Rejected       int   `gorm:"column:rejected"`
	Deferred       int   `gorm:"column:deferred"`
	VetoCount      int   `gorm:"column:veto_count"`
	TotalLatencyMS int64 `gorm:"column:total_latency_ms"`
	LatencyCount   int   `gorm:"column:latency_count"`
}

func (statsModel) TableName() string {
	return "approval_stats"
}

func (s *statsModel) apply(row outcomeModel, delta int) {
	switch entities.SessionStatus(row.Status) {
	case entities.StatusApproved:
		s.Approved += delta
	case entities.StatusRejected:
		s.Rejected += delta
	case entities.StatusDeferred:
		s.Deferred += delta
	}
	if row.VetoApplied {
		s.VetoCount += delta
	}
	s.TotalLatencyMS += int64(delta) * row.LatencyMS
	s.LatencyCount += delta
}

func (s statsModel) toEntity() entities.AggregateStats {
	stats := entities.AggregateStats{
		TotalProposals: s.TotalProposals,
		Approved:       s.Approved,
		Rejected:       s.Rejected,
		Deferred:       s.Deferred,
		VetoCount:      s.VetoCount,
	}
	if s.LatencyCount > 0 {
		stats.AverageResolutionLatency = time.Duration(s.TotalLatencyMS/int64(s.LatencyCount)) * time.Millisecond
	}
	return stats
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	SessionID   string    `gorm:"column:session_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "approval_idempotency"
}

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "approval_outbox"
}

func sessionModelFromEntity(session entities.ApprovalSession) (sessionModel, error) {
	participants, err := json.Marshal(session.Participants)
	if err != nil {
		return sessionModel{}, err
	}
	conditions, err := json.Marshal(session.Conditions)
	if err != nil {
		return sessionModel{}, err
	}
	return sessionModel{
		ID:               strings.TrimSpace(session.SessionID),
		ProposalID:       strings.TrimSpace(session.Proposal.ProposalID),
		Title:            session.Proposal.Title,
		Scope:            string(session.Proposal.Scope),
		Risk:             string(session.Proposal.Risk),
		EstimatedCost:    session.Proposal.EstimatedCost,
		SubmitterID:      strings.TrimSpace(session.Proposal.SubmitterID),
		SubmittedAt:      session.Proposal.SubmittedAt,
		Status:           string(session.Status),
		Threshold:        session.Threshold,
		CumulativeEnergy: session.CumulativeEnergy,
		Participants:     participants,
		VetoApplied:      session.VetoApplied,
		Conditional:      session.Conditional,
		Conditions:       conditions,
		CreatedAt:        session.CreatedAt,
		DeadlineAt:       session.DeadlineAt,
		ResolvedAt:       session.ResolvedAt,
		UpdatedAt:        time.Now().UTC(),
	}, nil
}

func voteModelsFromEntity(session entities.ApprovalSession) []voteModel {
	rows := make([]voteModel, 0, len(session.Votes))
	for _, vote := range session.Votes {
		rows = append(rows, voteModel{
			ID:            strings.TrimSpace(vote.VoteID),
			SessionID:     strings.TrimSpace(vote.SessionID),
			ParticipantID: strings.TrimSpace(vote.ParticipantID),
			Role:          string(vote.Role),
			Signal:        string(vote.Signal),
			Sentiment:     string(vote.Sentiment),
			SentimentBias: vote.SentimentBias,
			Intensity:     vote.Intensity,
			Energy:        vote.Energy,
			CastAt:        vote.CastAt,
		})
	}
	return rows
}

func (m sessionModel) toEntity(voteRows []voteModel) (entities.ApprovalSession, error) {
	var participants []string
	if len(m.Participants) > 0 {
		if err := json.Unmarshal(m.Participants, &participants); err != nil {
			return entities.ApprovalSession{}, err
		}
	}
	var conditions []entities.ApprovalCondition
	if len(m.Conditions) > 0 {
		if err := json.Unmarshal(m.Conditions, &conditions); err != nil {
			return entities.ApprovalSession{}, err
		}
	}

	votes := make([]entities.VoteRecord, 0, len(voteRows))
	for _, row := range voteRows {
		votes = append(votes, row.toEntity())
	}

	return entities.ApprovalSession{
		SessionID: m.ID,
		Proposal: entities.Proposal{
			ProposalID:    m.ProposalID,
			Title:         m.Title,
			Scope:         entities.ProposalScope(m.Scope),
			Risk:          entities.RiskLevel(m.Risk),
			EstimatedCost: m.EstimatedCost,
			SubmitterID:   m.SubmitterID,
			SubmittedAt:   m.SubmittedAt,
		},
		Status:           entities.SessionStatus(m.Status),
		Threshold:        m.Threshold,
		CumulativeEnergy: m.CumulativeEnergy,
		Votes:            votes,
		Participants:     participants,
		VetoApplied:      m.VetoApplied,
		Conditional:      m.Conditional,
		Conditions:       conditions,
		CreatedAt:        m.CreatedAt,
		DeadlineAt:       m.DeadlineAt,
		ResolvedAt:       m.ResolvedAt,
	}, nil
}

func (m voteModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		VoteID:        m.ID,
		SessionID:     m.SessionID,
		ParticipantID: m.ParticipantID,
		Role:          catalog.ParticipantRole(m.Role),
		Signal:        catalog.SignalKind(m.Signal),
		Sentiment:     catalog.SentimentTag(m.Sentiment),
		SentimentBias: m.SentimentBias,
		Intensity:     m.Intensity,
		Energy:        m.Energy,
		CastAt:        m.CastAt,
	}
}

func outcomeModelFromEntity(outcome entities.Outcome) (outcomeModel, error) {
	conditions, err := json.Marshal(outcome.Conditions)
	if err != nil {
		return outcomeModel{}, err
	}
	return outcomeModel{
		SessionID:        strings.TrimSpace(outcome.SessionID),
		ProposalID:       strings.TrimSpace(outcome.ProposalID),
		Status:           string(outcome.Status),
		FinalEnergy:      outcome.FinalEnergy,
		Threshold:        outcome.Threshold,
		ParticipantCount: outcome.ParticipantCount,
		VoteCount:        outcome.VoteCount,
		DominantSignal:   string(outcome.DominantSignal),
		VetoApplied:      outcome.VetoApplied,
		Conditional:      outcome.Conditional,
		Conditions:       conditions,
		SessionCreatedAt: outcome.SessionCreatedAt,
		ResolvedAt:       outcome.ResolvedAt,
		LatencyMS:        outcome.ResolutionLatency().Milliseconds(),
	}, nil
}

func (m outcomeModel) toEntity() (entities.Outcome, error) {
	var conditions []entities.ApprovalCondition
	if len(m.Conditions) > 0 {
		if err := json.Unmarshal(m.Conditions, &conditions); err != nil {
			return entities.Outcome{}, err
		}
	}
	return entities.Outcome{
		SessionID:        m.SessionID,
		ProposalID:       m.ProposalID,
		Status:           entities.SessionStatus(m.Status),
		FinalEnergy:      m.FinalEnergy,
		Threshold:        m.Threshold,
		ParticipantCount: m.ParticipantCount,
		VoteCount:        m.VoteCount,
		DominantSignal:   catalog.SignalKind(m.DominantSignal),
		VetoApplied:      m.VetoApplied,
		Conditional:      m.Conditional,
		Conditions:       conditions,
		SessionCreatedAt: m.SessionCreatedAt,
		ResolvedAt:       m.ResolvedAt,
	}, nil
}
