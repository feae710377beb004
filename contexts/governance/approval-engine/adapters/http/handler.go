package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quorum/contexts/governance/approval-engine/application/commands"
	"quorum/contexts/governance/approval-engine/application/queries"
	"quorum/contexts/governance/approval-engine/domain/entities"
	httptransport "quorum/contexts/governance/approval-engine/transport/http"
)

type Handler struct {
	Engine   *commands.SessionUseCase
	Sessions queries.SessionQueryUseCase
	Outcomes queries.OutcomeQueryUseCase
	Logger   *slog.Logger
}

func (h Handler) SubmitProposalHandler(
	ctx context.Context,
	idempotencyKey string,
	req httptransport.SubmitProposalRequest,
) (httptransport.SubmitProposalResponse, error) {
	result, err := h.Engine.Submit(ctx, commands.SubmitProposalCommand{
		IdempotencyKey: idempotencyKey,
		Title:          req.Title,
		Scope:          req.Scope,
		Risk:           req.Risk,
		EstimatedCost:  req.EstimatedCost,
		SubmitterID:    req.SubmitterID,
	})
	if err != nil {
		return httptransport.SubmitProposalResponse{}, err
	}
	return httptransport.SubmitProposalResponse{
		SessionID:  result.SessionID,
		Threshold:  result.Threshold,
		DeadlineAt: result.DeadlineAt.Format(time.RFC3339),
		Replayed:   result.Replayed,
	}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Engine.CastVote(ctx, commands.CastVoteCommand{
		SessionID:     req.SessionID,
		ParticipantID: req.ParticipantID,
		Role:          req.ParticipantRole,
		Signal:        req.VoteSignal,
		Sentiment:     req.Sentiment,
		Intensity:     req.Intensity,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		VoteID:            result.VoteID,
		ContributedEnergy: result.ContributedEnergy,
		CumulativeEnergy:  result.CumulativeEnergy,
		ProgressRatio:     result.ProgressRatio,
		Status:            string(result.Status),
		VetoApplied:       result.VetoApplied,
	}, nil
}

func (h Handler) ResumeSessionHandler(ctx context.Context, sessionID string) (httptransport.ResumeSessionResponse, error) {
	result, err := h.Engine.Resume(ctx, sessionID)
	if err != nil {
		return httptransport.ResumeSessionResponse{}, err
	}
	return httptransport.ResumeSessionResponse{
		SessionID:  result.SessionID,
		Status:     string(result.Status),
		DeadlineAt: result.DeadlineAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) SessionSnapshotHandler(ctx context.Context, sessionID string) (httptransport.SessionSnapshotResponse, error) {
	snapshot, err := h.Sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return httptransport.SessionSnapshotResponse{}, err
	}
	resp := httptransport.SessionSnapshotResponse{
		SessionID:        snapshot.SessionID,
		ProposalID:       snapshot.ProposalID,
		Title:            snapshot.Title,
		Status:           string(snapshot.Status),
		Threshold:        snapshot.Threshold,
		CumulativeEnergy: snapshot.CumulativeEnergy,
		ProgressRatio:    snapshot.ProgressRatio,
		VoteCount:        snapshot.VoteCount,
		ParticipantCount: snapshot.ParticipantCount,
		VetoApplied:      snapshot.VetoApplied,
		CreatedAt:        snapshot.CreatedAt.Format(time.RFC3339),
		DeadlineAt:       snapshot.DeadlineAt.Format(time.RFC3339),
	}
	if snapshot.ResolvedAt != nil {
		resp.ResolvedAt = snapshot.ResolvedAt.Format(time.RFC3339)
	}
	return resp, nil
}

func (h Handler) OutcomeHandler(ctx context.Context, sessionID string) (httptransport.OutcomeResponse, error) {
	outcome, err := h.Outcomes.Outcome(ctx, sessionID)
	if err != nil {
		return httptransport.OutcomeResponse{}, err
	}
	return httptransport.OutcomeResponse{
		SessionID:        outcome.SessionID,
		ProposalID:       outcome.ProposalID,
		Status:           string(outcome.Status),
		FinalEnergy:      outcome.FinalEnergy,
		Threshold:        outcome.Threshold,
		ParticipantCount: outcome.ParticipantCount,
		VoteCount:        outcome.VoteCount,
		DominantSignal:   string(outcome.DominantSignal),
		VetoApplied:      outcome.VetoApplied,
		Conditional:      outcome.Conditional,
		Conditions:       mapConditions(outcome.Conditions),
		ResolvedAt:       outcome.ResolvedAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) AggregateStatsHandler(ctx context.Context) (httptransport.AggregateStatsResponse, error) {
	stats, err := h.Outcomes.AggregateStats(ctx)
	if err != nil {
		return httptransport.AggregateStatsResponse{}, err
	}
	return httptransport.AggregateStatsResponse{
		TotalProposals:             stats.TotalProposals,
		Approved:                   stats.Approved,
		Rejected:                   stats.Rejected,
		Deferred:                   stats.Deferred,
		VetoCount:                  stats.VetoCount,
		AverageResolutionLatencyMS: stats.AverageResolutionLatency.Milliseconds(),
	}, nil
}

func mapConditions(conditions []entities.ApprovalCondition) []httptransport.ConditionItem {
	if len(conditions) == 0 {
		return nil
	}
	items := make([]httptransport.ConditionItem, 0, len(conditions))
	for _, condition := range conditions {
		item := httptransport.ConditionItem{
			Kind:            string(condition.Kind),
			Description:     condition.Description,
			AdditionalVotes: condition.AdditionalVotes,
			Mitigations:     condition.Mitigations,
		}
		if condition.ReviewDeadline != nil {
			item.ReviewDeadline = condition.ReviewDeadline.Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items
}
