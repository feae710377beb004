package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitProposalRequest struct {
	Title         string   `json:"title"`
	Scope         string   `json:"scope"`
	Risk          string   `json:"risk"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
	SubmitterID   string   `json:"submitter_id"`
}

type SubmitProposalResponse struct {
	SessionID  string `json:"session_id"`
	Threshold  int    `json:"threshold"`
	DeadlineAt string `json:"deadline_at"`
	Replayed   bool   `json:"replayed"`
}

type CastVoteRequest struct {
	SessionID       string   `json:"session_id"`
	ParticipantID   string   `json:"participant_id"`
	ParticipantRole string   `json:"participant_role"`
	VoteSignal      string   `json:"vote_signal"`
	Sentiment       string   `json:"sentiment,omitempty"`
	Intensity       *float64 `json:"intensity,omitempty"`
}

type CastVoteResponse struct {
	VoteID            string  `json:"vote_id"`
	ContributedEnergy float64 `json:"contributed_energy"`
	CumulativeEnergy  float64 `json:"cumulative_energy"`
	ProgressRatio     float64 `json:"progress_ratio"`
	Status            string  `json:"status"`
	VetoApplied       bool    `json:"veto_applied"`
}

type ResumeSessionResponse struct {
	SessionID  string `json:"session_id"`
	Status     string `json:"status"`
	DeadlineAt string `json:"deadline_at"`
}

type SessionSnapshotResponse struct {
	SessionID        string  `json:"session_id"`
	ProposalID       string  `json:"proposal_id"`
	Title            string  `json:"title"`
	Status           string  `json:"status"`
	Threshold        int     `json:"threshold"`
	CumulativeEnergy float64 `json:"cumulative_energy"`
	ProgressRatio    float64 `json:"progress_ratio"`
	VoteCount        int     `json:"vote_count"`
	ParticipantCount int     `json:"participant_count"`
	VetoApplied      bool    `json:"veto_applied"`
	CreatedAt        string  `json:"created_at"`
	DeadlineAt       string  `json:"deadline_at"`
	ResolvedAt       string  `json:"resolved_at,omitempty"`
}

type ConditionItem struct {
	Kind            string   `json:"kind"`
	Description     string   `json:"description"`
	ReviewDeadline  string   `json:"review_deadline,omitempty"`
	AdditionalVotes int      `json:"additional_votes,omitempty"`
	Mitigations     []string `json:"mitigations,omitempty"`
}

type OutcomeResponse struct {
	SessionID        string          `json:"session_id"`
	ProposalID       string          `json:"proposal_id"`
	Status           string          `json:"status"`
	FinalEnergy      float64         `json:"final_energy"`
	Threshold        int             `json:"threshold"`
	ParticipantCount int             `json:"participant_count"`
	VoteCount        int             `json:"vote_count"`
	DominantSignal   string          `json:"dominant_signal"`
	VetoApplied      bool            `json:"veto_applied"`
	Conditional      bool            `json:"conditional"`
	Conditions       []ConditionItem `json:"conditions,omitempty"`
	ResolvedAt       string          `json:"resolved_at"`
}

type AggregateStatsResponse struct {
	TotalProposals             int   `json:"total_proposals"`
	Approved                   int   `json:"approved"`
	Rejected                   int   `json:"rejected"`
	Deferred                   int   `json:"deferred"`
	VetoCount                  int   `json:"veto_count"`
	AverageResolutionLatencyMS int64 `json:"average_resolution_latency_ms"`
}
