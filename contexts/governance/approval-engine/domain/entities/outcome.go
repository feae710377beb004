package entities

import (
	"time"

	"quorum/contexts/governance/approval-engine/domain/catalog"
)

// Outcome is the append-only record of a resolved session. Written once per
// resolution; a deferred outcome may later be superseded by the approved or
// rejected outcome of the same session.
type Outcome struct {
	SessionID        string
	ProposalID       string
	Status           SessionStatus
	FinalEnergy      float64
	Threshold        int
	ParticipantCount int
	VoteCount        int
	DominantSignal   catalog.SignalKind
	VetoApplied      bool
	Conditional      bool
	Conditions       []ApprovalCondition
	SessionCreatedAt time.Time
	ResolvedAt       time.Time
}

// BuildOutcome projects a resolved session into its outcome record. Pure
// function of the session; callers must only invoke it after resolution.
func BuildOutcome(s ApprovalSession) Outcome {
	resolvedAt := time.Time{}
	if s.ResolvedAt != nil {
		resolvedAt = *s.ResolvedAt
	}
	return Outcome{
		SessionID:        s.SessionID,
		ProposalID:       s.Proposal.ProposalID,
		Status:           s.Status,
		FinalEnergy:      s.CumulativeEnergy,
		Threshold:        s.Threshold,
		ParticipantCount: len(s.Participants),
		VoteCount:        len(s.Votes),
		DominantSignal:   DominantSignal(s.Votes),
		VetoApplied:      s.VetoApplied,
		Conditional:      s.Conditional,
		Conditions:       s.Conditions,
		SessionCreatedAt: s.CreatedAt,
		ResolvedAt:       resolvedAt,
	}
}

// ResolutionLatency is the wall-clock span from session creation to resolution.
func (o Outcome) ResolutionLatency() time.Duration {
	if o.ResolvedAt.IsZero() || o.SessionCreatedAt.IsZero() {
		return 0
	}
	return o.ResolvedAt.Sub(o.SessionCreatedAt)
}

// DominantSignal returns the modal vote-signal kind across records, breaking
// frequency ties by earliest first occurrence.
func DominantSignal(votes []VoteRecord) catalog.SignalKind {
	if len(votes) == 0 {
		return ""
	}
	counts := make(map[catalog.SignalKind]int, len(votes))
	firstSeen := make(map[catalog.SignalKind]int, len(votes))
	for index, vote := range votes {
		counts[vote.Signal]++
		if _, seen := firstSeen[vote.Signal]; !seen {
			firstSeen[vote.Signal] = index
		}
	}

	dominant := votes[0].Signal
	for kind, count := range counts {
		if count > counts[dominant] {
			dominant = kind
			continue
		}
		if count == counts[dominant] && firstSeen[kind] < firstSeen[dominant] {
			dominant = kind
		}
	}
	return dominant
}

// AggregateStats are the recorder's running counters across all outcomes.
type AggregateStats struct {
	TotalProposals           int
	Approved                 int
	Rejected                 int
	Deferred                 int
	VetoCount                int
	AverageResolutionLatency time.Duration
}
