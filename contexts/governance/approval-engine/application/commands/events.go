package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"quorum/contexts/governance/approval-engine/domain/entities"
	"quorum/contexts/governance/approval-engine/ports"
)

const (
	EventSessionApproved       = "approval.session.approved"
	EventSessionRejected       = "approval.session.rejected"
	EventSessionDeferred       = "approval.session.deferred"
	EventResolutionUnpersisted = "approval.resolution_unpersisted"
)

func resolutionEventType(status entities.SessionStatus) string {
	switch status {
	case entities.StatusApproved:
		return EventSessionApproved
	case entities.StatusRejected:
		return EventSessionRejected
	default:
		return EventSessionDeferred
	}
}

// appendResolutionEvent writes the terminal event envelope into the outbox so
// the relay delivers it at-least-once; consumers dedupe by session id.
func (uc *SessionUseCase) appendResolutionEvent(ctx context.Context, outcome entities.Outcome, occurredAt time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newApprovalEnvelope(eventID, resolutionEventType(outcome.Status), outcome.SessionID, occurredAt, outcomeEventData(outcome))
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func outcomeEventData(outcome entities.Outcome) map[string]any {
	data := map[string]any{
		"session_id":        outcome.SessionID,
		"proposal_id":       outcome.ProposalID,
		"status":            string(outcome.Status),
		"final_energy":      outcome.FinalEnergy,
		"threshold":         outcome.Threshold,
		"participant_count": outcome.ParticipantCount,
		"vote_count":        outcome.VoteCount,
		"dominant_signal":   string(outcome.DominantSignal),
		"veto_applied":      outcome.VetoApplied,
		"conditional":       outcome.Conditional,
		"resolved_at":       outcome.ResolvedAt.Format(time.RFC3339),
	}
	if len(outcome.Conditions) > 0 {
		conditions := make([]map[string]any, 0, len(outcome.Conditions))
		for _, condition := range outcome.Conditions {
			item := map[string]any{
				"kind":        string(condition.Kind),
				"description": condition.Description,
			}
			if condition.ReviewDeadline != nil {
				item["review_deadline"] = condition.ReviewDeadline.Format(time.RFC3339)
			}
			if condition.AdditionalVotes > 0 {
				item["additional_votes"] = condition.AdditionalVotes
			}
			if len(condition.Mitigations) > 0 {
				item["mitigations"] = condition.Mitigations
			}
			conditions = append(conditions, item)
		}
		data["conditions"] = conditions
	}
	return data
}

// newApprovalEnvelope builds canonical envelopes partitioned by session id so
// session-scoped consumers observe stable ordering.
func newApprovalEnvelope(
	eventID string,
	eventType string,
	sessionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "approval-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "session_id",
		PartitionKey:     sessionID,
		Data:             payload,
	}, nil
}

func hashSubmitCommand(cmd SubmitProposalCommand) string {
	cost := ""
	if cmd.EstimatedCost != nil {
		cost = strconv.FormatFloat(*cmd.EstimatedCost, 'f', -1, 64)
	}
	payload := map[string]string{
		"title":          strings.TrimSpace(cmd.Title),
		"scope":          strings.TrimSpace(cmd.Scope),
		"risk":           strings.TrimSpace(cmd.Risk),
		"estimated_cost": cost,
		"submitter_id":   strings.TrimSpace(cmd.SubmitterID),
		"op":             "submit_proposal",
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
