package errors

import "errors"

var (
	ErrInvalidProposal        = errors.New("invalid proposal")
	ErrInvalidVoteInput       = errors.New("invalid vote input")
	ErrInvalidParticipantRole = errors.New("invalid participant role")
	ErrUnknownVoteSignal      = errors.New("unknown vote signal")
	ErrUnknownSentiment       = errors.New("unknown sentiment tag")
	ErrSessionNotFound        = errors.New("approval session not found")
	ErrSessionAlreadyTerminal = errors.New("approval session is already terminal")
	ErrSessionNotDeferred     = errors.New("approval session is not deferred")
	ErrOutcomeNotReady        = errors.New("outcome is not resolved yet")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
	ErrPersistenceFailure     = errors.New("outcome persistence failed")
)
