package entities

import (
	"testing"
	"time"

	"quorum/contexts/governance/approval-engine/domain/catalog"
)

func TestGenerateConditionsPerformanceReview(t *testing.T) {
	s := testSession(100)
	s.AppendVote(vote("user-a", catalog.RoleStandard, catalog.SignalApprove, 40))
	s.AppendVote(vote("user-b", catalog.RoleStandard, catalog.SignalApprove, 40))
	s.AppendVote(vote("user-c", catalog.RoleStandard, catalog.SignalApprove, 30))

	now := time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC)
	conditions := GenerateConditions(s, 1.2, now)
	if len(conditions) != 1 {
		t.Fatalf("expected only the performance-review condition, got %+v", conditions)
	}
	cond := conditions[0]
	if cond.Kind != ConditionPerformanceReview {
		t.Fatalf("expected performance-review, got %s", cond.Kind)
	}
	if cond.ReviewDeadline == nil || !cond.ReviewDeadline.Equal(now.Add(30*24*time.Hour)) {
		t.Fatalf("expected 30-day review deadline, got %v", cond.ReviewDeadline)
	}
}

func TestGenerateConditionsSkipsPerformanceReviewAboveMargin(t *testing.T) {
	s := testSession(100)
	s.AppendVote(vote("user-a", catalog.RoleStandard, catalog.SignalApprove, 60))
	s.AppendVote(vote("user-b", catalog.RoleStandard, catalog.SignalApprove, 60))
	s.AppendVote(vote("user-c", catalog.RoleStandard, catalog.SignalApprove, 10))

	conditions := GenerateConditions(s, 1.2, time.Now().UTC())
	for _, cond := range conditions {
		if cond.Kind == ConditionPerformanceReview {
			t.Fatalf("did not expect performance-review at 130/100 with ratio 1.2")
		}
	}
}

func TestGenerateConditionsBroaderConsensus(t *testing.T) {
	s := testSession(100)
	s.AppendVote(vote("user-a", catalog.RoleStandard, catalog.SignalApprove, 70))
	s.AppendVote(vote("user-b", catalog.RoleStandard, catalog.SignalApprove, 60))

	conditions := GenerateConditions(s, 1.2, time.Now().UTC())
	var found bool
	for _, cond := range conditions {
		if cond.Kind == ConditionBroaderConsensus {
			found = true
			if cond.AdditionalVotes != 3 {
				t.Fatalf("expected consensus floor 3, got %d", cond.AdditionalVotes)
			}
		}
	}
	if !found {
		t.Fatalf("expected broader-consensus with 2 participants, got %+v", conditions)
	}
}

func TestGenerateConditionsRiskMitigation(t *testing.T) {
	s := testSession(100)
	s.AppendVote(vote("user-a", catalog.RoleStandard, catalog.SignalApprove, 200))
	s.AppendVote(vote("user-b", catalog.RoleStandard, catalog.SignalReject, -30))
	s.AppendVote(vote("user-c", catalog.RoleStandard, catalog.SignalReject, -30))

	conditions := GenerateConditions(s, 1.2, time.Now().UTC())
	var mitigation *ApprovalCondition
	for i := range conditions {
		if conditions[i].Kind == ConditionRiskMitigation {
			mitigation = &conditions[i]
		}
	}
	if mitigation == nil {
		t.Fatalf("expected risk-mitigation with 2 negative vs 1 positive vote")
	}
	if len(mitigation.Mitigations) != 3 {
		t.Fatalf("expected 3 mitigations, got %v", mitigation.Mitigations)
	}
}

func TestGenerateConditionsAdditive(t *testing.T) {
	s := testSession(100)
	s.AppendVote(vote("user-a", catalog.RoleStandard, catalog.SignalApprove, 100))
	s.AppendVote(vote("user-b", catalog.RoleStandard, catalog.SignalReject, -30))

	conditions := GenerateConditions(s, 1.2, time.Now().UTC())
	kinds := make(map[ConditionKind]bool, len(conditions))
	for _, cond := range conditions {
		kinds[cond.Kind] = true
	}
	// 70/100 with ratio 1.2, 2 participants, 1 negative vs 1 positive.
	if !kinds[ConditionPerformanceReview] || !kinds[ConditionBroaderConsensus] || !kinds[ConditionRiskMitigation] {
		t.Fatalf("expected all three conditions, got %+v", conditions)
	}
}

func TestGenerateConditionsAbstainCountsNeither(t *testing.T) {
	s := testSession(100)
	s.AppendVote(vote("user-a", catalog.RoleStandard, catalog.SignalApprove, 200))
	s.AppendVote(vote("user-b", catalog.RoleStandard, catalog.SignalAbstainHold, 0))
	s.AppendVote(vote("user-c", catalog.RoleStandard, catalog.SignalApprove, 50))

	conditions := GenerateConditions(s, 1.2, time.Now().UTC())
	for _, cond := range conditions {
		if cond.Kind == ConditionRiskMitigation {
			t.Fatalf("zero-energy votes must not count as dissent")
		}
	}
}
