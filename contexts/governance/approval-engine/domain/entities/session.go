package entities

import (
	"math"
	"time"

	"quorum/contexts/governance/approval-engine/domain/catalog"
)

type SessionStatus string

const (
	StatusAccumulating SessionStatus = "accumulating"
	StatusApproved     SessionStatus = "approved"
	StatusRejected     SessionStatus = "rejected"
	StatusDeferred     SessionStatus = "deferred"
)

const (
	MinIntensity = 0.1
	MaxIntensity = 2.0
)

// ClampIntensity bounds a declared conviction scalar to the accepted range.
func ClampIntensity(value float64) float64 {
	if value < MinIntensity {
		return MinIntensity
	}
	if value > MaxIntensity {
		return MaxIntensity
	}
	return value
}

// VoteRecord is one weighted vote inside a session. Immutable once appended.
type VoteRecord struct {
	VoteID        string
	SessionID     string
	ParticipantID string
	Role          catalog.ParticipantRole
	Signal        catalog.SignalKind
	Sentiment     catalog.SentimentTag // empty when the voter declared none
	SentimentBias float64
	Intensity     float64
	Energy        float64
	CastAt        time.Time
}

// ApprovalSession is the mutable aggregate root owning one proposal's approval
// lifecycle. Cumulative energy is only ever the sum of appended vote energies,
// and once the status reaches approved or rejected it never changes again.
type ApprovalSession struct {
	SessionID        string
	Proposal         Proposal
	Status           SessionStatus
	Threshold        int
	CumulativeEnergy float64
	Votes            []VoteRecord
	Participants     []string // distinct participant ids, first-appearance order
	VetoApplied      bool
	Conditional      bool
	Conditions       []ApprovalCondition
	CreatedAt        time.Time
	DeadlineAt       time.Time
	ResolvedAt       *time.Time
}

func NewSession(sessionID string, proposal Proposal, threshold int, now time.Time, deadline time.Time) ApprovalSession {
	return ApprovalSession{
		SessionID:  sessionID,
		Proposal:   proposal,
		Status:     StatusAccumulating,
		Threshold:  threshold,
		CreatedAt:  now,
		DeadlineAt: deadline,
	}
}

// Terminal reports whether the session can no longer change status. Deferred
// sessions are not terminal: they stay addressable and accept further votes.
func (s ApprovalSession) Terminal() bool {
	return s.Status == StatusApproved || s.Status == StatusRejected
}

// Resolved reports whether the session has produced an outcome, including the
// deferred quasi-terminal case.
func (s ApprovalSession) Resolved() bool {
	return s.Status != StatusAccumulating
}

func (s *ApprovalSession) AppendVote(record VoteRecord) {
	s.Votes = append(s.Votes, record)
	s.CumulativeEnergy += record.Energy
	for _, id := range s.Participants {
		if id == record.ParticipantID {
			return
		}
	}
	s.Participants = append(s.Participants, record.ParticipantID)
}

func (s ApprovalSession) HasPrivilegedVeto() bool {
	for _, vote := range s.Votes {
		if vote.Signal == catalog.SignalVeto && vote.Role == catalog.RolePrivileged {
			return true
		}
	}
	return false
}

func (s ApprovalSession) ProgressRatio() float64 {
	if s.Threshold <= 0 {
		return 0
	}
	return math.Abs(s.CumulativeEnergy) / float64(s.Threshold)
}

// Resolution is the result of a resolution check.
type Resolution struct {
	Status      SessionStatus
	VetoApplied bool
	Conditional bool
}

// EvaluateVote runs the vote-arrival resolution check: an authoritative veto
// wins outright, otherwise reaching the threshold magnitude resolves by energy
// sign. Equality counts as reaching the threshold.
func (s ApprovalSession) EvaluateVote() (Resolution, bool) {
	if s.HasPrivilegedVeto() {
		return Resolution{Status: StatusRejected, VetoApplied: true}, true
	}
	if math.Abs(s.CumulativeEnergy) >= float64(s.Threshold) {
		if s.CumulativeEnergy > 0 {
			return Resolution{Status: StatusApproved}, true
		}
		return Resolution{Status: StatusRejected}, true
	}
	return Resolution{}, false
}

// EvaluateDeadline runs the timer-expiry resolution check. The veto and
// threshold rules are evaluated first; the timeout rule then always decides:
// enough accumulated energy yields a conditional approval, anything else
// defers. Exactly zero energy always defers, never approves or rejects.
func (s ApprovalSession) EvaluateDeadline(timeoutApprovalRatio float64) Resolution {
	if res, done := s.EvaluateVote(); done {
		return res
	}
	if s.CumulativeEnergy > 0 && s.CumulativeEnergy >= timeoutApprovalRatio*float64(s.Threshold) {
		return Resolution{Status: StatusApproved, Conditional: true}
	}
	return Resolution{Status: StatusDeferred}
}

// ApplyResolution commits a resolution onto the session. Conditional approvals
// generate their follow-up conditions at this point so the outcome carries
// them.
func (s *ApprovalSession) ApplyResolution(res Resolution, conditionalEnergyRatio float64, now time.Time) {
	s.Status = res.Status
	s.VetoApplied = res.VetoApplied
	s.Conditional = res.Conditional
	if res.Conditional {
		s.Conditions = GenerateConditions(*s, conditionalEnergyRatio, now)
	}
	resolved := now
	s.ResolvedAt = &resolved
}
