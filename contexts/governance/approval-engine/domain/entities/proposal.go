package entities

import "time"

type ProposalScope string

const (
	ScopeNormal       ProposalScope = "normal"
	ScopePlatformWide ProposalScope = "platform-wide"
	ScopeExperimental ProposalScope = "experimental"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Proposal is the unit of work awaiting quorum approval. Immutable once a
// session has been created from it.
type Proposal struct {
	ProposalID    string
	Title         string
	Scope         ProposalScope
	Risk          RiskLevel
	EstimatedCost *float64
	SubmitterID   string
	SubmittedAt   time.Time
}

const thresholdBase = 100.0

func scopeFactor(scope ProposalScope) (float64, bool) {
	switch scope {
	case ScopeNormal:
		return 1.0, true
	case ScopePlatformWide:
		return 2.0, true
	case ScopeExperimental:
		return 1.5, true
	default:
		return 0, false
	}
}

func riskFactor(risk RiskLevel) (float64, bool) {
	switch risk {
	case RiskLow:
		return 0.8, true
	case RiskMedium:
		return 1.0, true
	case RiskHigh:
		return 1.5, true
	case RiskCritical:
		return 2.0, true
	default:
		return 0, false
	}
}

func (p Proposal) ValidScope() bool {
	_, ok := scopeFactor(p.Scope)
	return ok
}

func (p Proposal) ValidRisk() bool {
	_, ok := riskFactor(p.Risk)
	return ok
}

// ComputeThreshold derives the positive approval threshold for a proposal:
// base constant scaled by scope, widened by estimated cost, scaled by risk,
// floored to an integer. Missing cost defaults to a neutral zero addend.
func ComputeThreshold(p Proposal) int {
	scope, _ := scopeFactor(p.Scope)
	risk, _ := riskFactor(p.Risk)

	value := thresholdBase * scope
	if p.EstimatedCost != nil {
		value += 0.1 * *p.EstimatedCost
	}
	value *= risk
	return int(value)
}
