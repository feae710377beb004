package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	approvalengine "quorum/contexts/governance/approval-engine"
	approvalerrors "quorum/contexts/governance/approval-engine/domain/errors"
	approvalhttp "quorum/contexts/governance/approval-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	approval approvalengine.Module
}

func New(approval approvalengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		approval: approval,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Mux exposes the route table for tests using httptest.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/approvals/v1/proposals", s.handleSubmitProposal)
	s.mux.HandleFunc("POST /api/approvals/v1/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /api/approvals/v1/sessions/{session_id}/resume", s.handleResumeSession)
	s.mux.HandleFunc("GET /api/approvals/v1/sessions/{session_id}", s.handleSessionSnapshot)
	s.mux.HandleFunc("GET /api/approvals/v1/outcomes/{session_id}", s.handleOutcome)
	s.mux.HandleFunc("GET /api/approvals/v1/stats", s.handleAggregateStats)
}

func (s *Server) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	var req approvalhttp.SubmitProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApprovalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.approval.Handler.SubmitProposalHandler(
		r.Context(),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req approvalhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeApprovalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.approval.Handler.CastVoteHandler(r.Context(), req)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	resp, err := s.approval.Handler.ResumeSessionHandler(r.Context(), sessionID)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	resp, err := s.approval.Handler.SessionSnapshotHandler(r.Context(), sessionID)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	resp, err := s.approval.Handler.OutcomeHandler(r.Context(), sessionID)
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAggregateStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.approval.Handler.AggregateStatsHandler(r.Context())
	if err != nil {
		writeApprovalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeApprovalDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, approvalerrors.ErrInvalidProposal),
		errors.Is(err, approvalerrors.ErrInvalidVoteInput):
		writeApprovalError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, approvalerrors.ErrInvalidParticipantRole),
		errors.Is(err, approvalerrors.ErrUnknownVoteSignal),
		errors.Is(err, approvalerrors.ErrUnknownSentiment):
		writeApprovalError(w, http.StatusUnprocessableEntity, "invalid_vote", err.Error())
	case errors.Is(err, approvalerrors.ErrSessionNotFound):
		writeApprovalError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, approvalerrors.ErrOutcomeNotReady):
		writeApprovalError(w, http.StatusNotFound, "outcome_not_ready", err.Error())
	case errors.Is(err, approvalerrors.ErrSessionAlreadyTerminal):
		writeApprovalError(w, http.StatusConflict, "session_terminal", err.Error())
	case errors.Is(err, approvalerrors.ErrSessionNotDeferred):
		writeApprovalError(w, http.StatusConflict, "session_not_deferred", err.Error())
	case errors.Is(err, approvalerrors.ErrIdempotencyConflict):
		writeApprovalError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		writeApprovalError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeApprovalError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, approvalhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
