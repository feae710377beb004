// Package approvalengine implements the Weighted Quorum Approval Engine inside
// the governance context.
//
// The module owns approval session lifecycle orchestration (submit/vote/resume),
// weighted energy accumulation, veto/threshold/timeout resolution, conditional
// approval generation, and outcome recording through outbox-backed workers. It
// keeps business rules in application/domain layers and isolates infrastructure
// concerns behind ports and adapters.
package approvalengine
