package entities

import "time"

type ConditionKind string

const (
	ConditionPerformanceReview ConditionKind = "performance-review"
	ConditionBroaderConsensus  ConditionKind = "broader-consensus"
	ConditionRiskMitigation    ConditionKind = "risk-mitigation"
)

const (
	performanceReviewWindow = 30 * 24 * time.Hour
	consensusFloor          = 3
)

// ApprovalCondition is a structured follow-up attached to a conditional
// approval. Exactly one of the payload fields is populated per kind.
type ApprovalCondition struct {
	Kind            ConditionKind
	Description     string
	ReviewDeadline  *time.Time
	AdditionalVotes int
	Mitigations     []string
}

// GenerateConditions derives post-approval conditions from the shape of a
// timeout-approved session. The three rules are independent and additive.
func GenerateConditions(s ApprovalSession, conditionalEnergyRatio float64, now time.Time) []ApprovalCondition {
	var conditions []ApprovalCondition

	if s.CumulativeEnergy < conditionalEnergyRatio*float64(s.Threshold) {
		deadline := now.Add(performanceReviewWindow)
		conditions = append(conditions, ApprovalCondition{
			Kind:           ConditionPerformanceReview,
			Description:    "approval energy landed below the comfortable margin; schedule a time-boxed performance review",
			ReviewDeadline: &deadline,
		})
	}

	if len(s.Participants) < consensusFloor {
		conditions = append(conditions, ApprovalCondition{
			Kind:            ConditionBroaderConsensus,
			Description:     "too few distinct participants voted; the approval stays conditional until broader consensus is gathered",
			AdditionalVotes: consensusFloor,
		})
	}

	var positive, negative int
	for _, vote := range s.Votes {
		switch {
		case vote.Energy > 0:
			positive++
		case vote.Energy < 0:
			negative++
		}
	}
	if negative*2 > positive {
		conditions = append(conditions, ApprovalCondition{
			Kind:        ConditionRiskMitigation,
			Description: "dissent volume is high relative to support; required mitigations must be in place before rollout",
			Mitigations: []string{"monitoring", "rollback plan", "scope limitation"},
		})
	}

	return conditions
}
