package commands

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	application "quorum/contexts/governance/approval-engine/application"
	"quorum/contexts/governance/approval-engine/domain/catalog"
	"quorum/contexts/governance/approval-engine/domain/entities"
	domainerrors "quorum/contexts/governance/approval-engine/domain/errors"
	"quorum/contexts/governance/approval-engine/ports"
)

// SubmitProposalCommand is the write-model input for session creation.
type SubmitProposalCommand struct {
	IdempotencyKey string
	Title          string
	Scope          string
	Risk           string
	EstimatedCost  *float64
	SubmitterID    string
}

// SubmitResult returns the created session identity plus replay markers that
// the transport layer maps to API semantics.
type SubmitResult struct {
	SessionID  string
	Threshold  int
	DeadlineAt time.Time
	Replayed   bool
}

// CastVoteCommand is the write-model input for one weighted vote.
type CastVoteCommand struct {
	SessionID     string
	ParticipantID string
	Role          string
	Signal        string
	Sentiment     string
	Intensity     *float64
}

// CastVoteResult carries the contribution and updated totals so callers can
// render progress without a follow-up read.
type CastVoteResult struct {
	VoteID            string
	ContributedEnergy float64
	CumulativeEnergy  float64
	ProgressRatio     float64
	Status            entities.SessionStatus
	VetoApplied       bool
}

// ResumeResult reports the fresh deadline of a resumed deferred session.
type ResumeResult struct {
	SessionID  string
	Status     entities.SessionStatus
	DeadlineAt time.Time
}

// sessionLocks serializes vote submission and timer-driven resolution per
// session. There is no global lock across sessions.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *sessionLocks) acquire(sessionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[sessionID] = lock
	}
	return lock
}

// SessionUseCase orchestrates the approval session state machine: weighted
// energy accumulation, the veto/threshold/timeout resolution checks, deadline
// timers, and outbox event emission. Use by pointer; it owns per-session
// serialization state.
type SessionUseCase struct {
	Sessions    ports.SessionRepository
	Idempotency ports.IdempotencyStore
	Outbox      ports.OutboxWriter
	Recorder    OutcomeRecorder
	Scheduler   ports.DeadlineScheduler
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Catalog     *catalog.Catalog

	// Engine tunables; zero values fall back to spec defaults.
	SessionDeadline        time.Duration // default 5m
	TimeoutApprovalRatio   float64       // default 0.7
	ConditionalEnergyRatio float64       // default 1.2
	IdempotencyTTL         time.Duration // default 7d

	Logger *slog.Logger

	locks     sessionLocks
	recording sync.WaitGroup
}

// Submit validates a proposal, creates its accumulating session with the
// computed threshold, and arms the session deadline timer. Replay-safe via an
// optional idempotency key.
func (uc *SessionUseCase) Submit(ctx context.Context, cmd SubmitProposalCommand) (SubmitResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	title := strings.TrimSpace(cmd.Title)
	submitter := strings.TrimSpace(cmd.SubmitterID)
	scope := entities.ProposalScope(strings.TrimSpace(cmd.Scope))
	risk := entities.RiskLevel(strings.TrimSpace(cmd.Risk))

	logger.Info("proposal submission started",
		"event", "approval_submit_started",
		"module", "governance/approval-engine",
		"layer", "application",
		"submitter_id", submitter,
		"scope", string(scope),
		"risk", string(risk),
	)

	proposal := entities.Proposal{
		Title:         title,
		Scope:         scope,
		Risk:          risk,
		EstimatedCost: cmd.EstimatedCost,
		SubmitterID:   submitter,
	}
	if title == "" || submitter == "" || !proposal.ValidScope() || !proposal.ValidRisk() {
		logger.Warn("proposal submission validation failed",
			"event", "approval_submit_validation_failed",
			"module", "governance/approval-engine",
			"layer", "application",
			"submitter_id", submitter,
			"scope", string(scope),
			"risk", string(risk),
		)
		return SubmitResult{}, domainerrors.ErrInvalidProposal
	}

	now := uc.now()
	idempotencyKey := strings.TrimSpace(cmd.IdempotencyKey)
	requestHash := hashSubmitCommand(cmd)
	if idempotencyKey != "" && uc.Idempotency != nil {
		record, found, err := uc.Idempotency.Get(ctx, idempotencyKey, now)
		if err != nil {
			return SubmitResult{}, err
		}
		if found {
			if record.RequestHash != requestHash {
				return SubmitResult{}, domainerrors.ErrIdempotencyConflict
			}
			session, err := uc.Sessions.GetSession(ctx, record.SessionID)
			if err != nil {
				return SubmitResult{}, err
			}
			logger.Info("proposal submission replayed",
				"event", "approval_submit_replayed",
				"module", "governance/approval-engine",
				"layer", "application",
				"session_id", session.SessionID,
			)
			return SubmitResult{
				SessionID:  session.SessionID,
				Threshold:  session.Threshold,
				DeadlineAt: session.DeadlineAt,
				Replayed:   true,
			}, nil
		}
	}

	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	proposalID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	proposal.ProposalID = proposalID
	proposal.SubmittedAt = now

	threshold := entities.ComputeThreshold(proposal)
	deadline := now.Add(uc.resolveSessionDeadline())
	session := entities.NewSession(sessionID, proposal, threshold, now, deadline)

	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return SubmitResult{}, err
	}
	if idempotencyKey != "" && uc.Idempotency != nil {
		if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         idempotencyKey,
			RequestHash: requestHash,
			SessionID:   sessionID,
			ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
		}); err != nil {
			return SubmitResult{}, err
		}
	}
	if uc.Scheduler != nil {
		uc.Scheduler.Schedule(sessionID, deadline)
	}

	logger.Info("approval session created",
		"event", "approval_session_created",
		"module", "governance/approval-engine",
		"layer", "application",
		"session_id", sessionID,
		"proposal_id", proposalID,
		"threshold", threshold,
		"deadline_at", deadline,
	)
	return SubmitResult{SessionID: sessionID, Threshold: threshold, DeadlineAt: deadline}, nil
}

// CastVote appends one weighted vote and runs the resolution check. Votes on
// approved/rejected sessions fail with ErrSessionAlreadyTerminal; deferred
// sessions keep accepting votes and may resolve from here.
func (uc *SessionUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID := strings.TrimSpace(cmd.SessionID)
	participantID := strings.TrimSpace(cmd.ParticipantID)
	role := catalog.ParticipantRole(strings.TrimSpace(cmd.Role))
	signal := catalog.SignalKind(strings.TrimSpace(cmd.Signal))
	sentiment := catalog.SentimentTag(strings.TrimSpace(cmd.Sentiment))

	if sessionID == "" || participantID == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}
	weight, ok := uc.Catalog.RoleWeight(role)
	if !ok {
		logger.Warn("vote rejected for invalid role",
			"event", "approval_vote_invalid_role",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", sessionID,
			"participant_id", participantID,
			"role", string(role),
		)
		return CastVoteResult{}, domainerrors.ErrInvalidParticipantRole
	}
	spec, ok := uc.Catalog.Signal(signal)
	if !ok {
		logger.Warn("vote rejected for unknown signal",
			"event", "approval_vote_unknown_signal",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", sessionID,
			"participant_id", participantID,
			"signal", string(signal),
		)
		return CastVoteResult{}, domainerrors.ErrUnknownVoteSignal
	}
	modifier := catalog.SentimentModifier{Multiplier: 1.0}
	if sentiment != "" {
		modifier, ok = uc.Catalog.Sentiment(sentiment)
		if !ok {
			return CastVoteResult{}, domainerrors.ErrUnknownSentiment
		}
	}
	intensity := 1.0
	if cmd.Intensity != nil {
		intensity = entities.ClampIntensity(*cmd.Intensity)
	}

	lock := uc.locks.acquire(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if session.Terminal() {
		logger.Warn("vote discarded on terminal session",
			"event", "approval_vote_session_terminal",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", sessionID,
			"participant_id", participantID,
			"status", string(session.Status),
		)
		return CastVoteResult{}, domainerrors.ErrSessionAlreadyTerminal
	}

	now := uc.now()
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	record := entities.VoteRecord{
		VoteID:        voteID,
		SessionID:     sessionID,
		ParticipantID: participantID,
		Role:          role,
		Signal:        signal,
		Sentiment:     sentiment,
		SentimentBias: modifier.Bias,
		Intensity:     intensity,
		Energy:        spec.BaseEnergy * modifier.Multiplier * intensity * weight,
		CastAt:        now,
	}
	session.AppendVote(record)

	resolution, resolved := session.EvaluateVote()
	if resolved {
		if err := uc.finalize(ctx, &session, resolution, now); err != nil {
			return CastVoteResult{}, err
		}
	} else if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote recorded",
		"event", "approval_vote_recorded",
		"module", "governance/approval-engine",
		"layer", "application",
		"session_id", sessionID,
		"vote_id", voteID,
		"participant_id", participantID,
		"signal", string(signal),
		"energy", record.Energy,
		"cumulative_energy", session.CumulativeEnergy,
		"status", string(session.Status),
	)
	return CastVoteResult{
		VoteID:            voteID,
		ContributedEnergy: record.Energy,
		CumulativeEnergy:  session.CumulativeEnergy,
		ProgressRatio:     session.ProgressRatio(),
		Status:            session.Status,
		VetoApplied:       session.VetoApplied,
	}, nil
}

// Resume re-arms the deadline timer of a deferred session without touching its
// accumulated energy or vote history.
func (uc *SessionUseCase) Resume(ctx context.Context, sessionID string) (ResumeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ResumeResult{}, domainerrors.ErrSessionNotFound
	}

	lock := uc.locks.acquire(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return ResumeResult{}, err
	}
	if session.Status != entities.StatusDeferred {
		return ResumeResult{}, domainerrors.ErrSessionNotDeferred
	}

	now := uc.now()
	session.DeadlineAt = now.Add(uc.resolveSessionDeadline())
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return ResumeResult{}, err
	}
	if uc.Scheduler != nil {
		uc.Scheduler.Schedule(sessionID, session.DeadlineAt)
	}

	logger.Info("deferred session resumed",
		"event", "approval_session_resumed",
		"module", "governance/approval-engine",
		"layer", "application",
		"session_id", sessionID,
		"deadline_at", session.DeadlineAt,
	)
	return ResumeResult{SessionID: sessionID, Status: session.Status, DeadlineAt: session.DeadlineAt}, nil
}

// HandleDeadline runs the timer-expiry resolution check. It is the single
// entry point for spontaneous state change and serializes against concurrent
// votes for the same session.
func (uc *SessionUseCase) HandleDeadline(ctx context.Context, sessionID string) error {
	logger := application.ResolveLogger(uc.Logger)
	sessionID = strings.TrimSpace(sessionID)

	lock := uc.locks.acquire(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		logger.Warn("deadline fired for unknown session",
			"event", "approval_deadline_unknown_session",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", sessionID,
			"error", err.Error(),
		)
		return nil
	}
	if session.Terminal() {
		return nil
	}

	resolution := session.EvaluateDeadline(uc.resolveTimeoutApprovalRatio())
	if resolution.Status == entities.StatusDeferred && session.Status == entities.StatusDeferred {
		// A resumed deferred session that timed out again stays deferred; the
		// deferred outcome was already recorded and emitted.
		logger.Info("deferred session timed out again",
			"event", "approval_deadline_still_deferred",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", sessionID,
		)
		return nil
	}
	return uc.finalize(ctx, &session, resolution, uc.now())
}

// finalize commits a resolution exactly once: saves the session, cancels the
// deadline timer, appends the terminal event to the outbox, and hands the
// outcome to the recorder off the caller's critical path. Callers must hold
// the session lock.
func (uc *SessionUseCase) finalize(ctx context.Context, session *entities.ApprovalSession, resolution entities.Resolution, now time.Time) error {
	logger := application.ResolveLogger(uc.Logger)
	session.ApplyResolution(resolution, uc.resolveConditionalEnergyRatio(), now)
	if err := uc.Sessions.SaveSession(ctx, *session); err != nil {
		return err
	}
	if uc.Scheduler != nil {
		uc.Scheduler.Cancel(session.SessionID)
	}

	outcome := entities.BuildOutcome(*session)
	if err := uc.appendResolutionEvent(ctx, outcome, now); err != nil {
		// The decision stands; the outbox relay misses one row and the
		// recorder path still surfaces the outcome.
		logger.Error("terminal event outbox append failed",
			"event", "approval_outbox_append_failed",
			"module", "governance/approval-engine",
			"layer", "application",
			"session_id", session.SessionID,
			"error", err.Error(),
		)
	}

	uc.recording.Add(1)
	go func() {
		defer uc.recording.Done()
		uc.Recorder.Record(context.Background(), outcome)
	}()

	logger.Info("approval session resolved",
		"event", "approval_session_resolved",
		"module", "governance/approval-engine",
		"layer", "application",
		"session_id", session.SessionID,
		"status", string(session.Status),
		"final_energy", session.CumulativeEnergy,
		"threshold", session.Threshold,
		"veto_applied", session.VetoApplied,
		"conditional", session.Conditional,
	)
	return nil
}

// Drain blocks until all in-flight outcome recordings have finished. Intended
// for shutdown and tests; live resolution paths never wait on it.
func (uc *SessionUseCase) Drain() {
	uc.recording.Wait()
}

func (uc *SessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc *SessionUseCase) resolveSessionDeadline() time.Duration {
	if uc.SessionDeadline <= 0 {
		return 5 * time.Minute
	}
	return uc.SessionDeadline
}

func (uc *SessionUseCase) resolveTimeoutApprovalRatio() float64 {
	if uc.TimeoutApprovalRatio <= 0 {
		return 0.7
	}
	return uc.TimeoutApprovalRatio
}

func (uc *SessionUseCase) resolveConditionalEnergyRatio() float64 {
	if uc.ConditionalEnergyRatio <= 0 {
		return 1.2
	}
	return uc.ConditionalEnergyRatio
}

func (uc *SessionUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}
