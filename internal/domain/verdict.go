package domain

import (
	"time"

	"github.com/google/uuid"
)

// Decision is the judge's final outcome for a session.
type Decision string

const (
	// DecisionDefenseWins acquits the subject under dispute.
	DecisionDefenseWins Decision = "defense_wins"
	// DecisionProsecutionWins rules against the subject under dispute.
	DecisionProsecutionWins Decision = "prosecution_wins"
	// DecisionRefusal declines to pick a winner because independent
	// verification was inconclusive or conflicting on a safety-critical
	// claim.
	DecisionRefusal Decision = "refusal"
)

// Consensus labels how well independent verification agreed with the
// winning side's account.
type Consensus string

const (
	ConsensusStrong   Consensus = "strong"
	ConsensusWeak     Consensus = "weak"
	ConsensusConflict Consensus = "conflict"
)

// Decision markers the judge's report must contain exactly one of.
// Automated extraction of the outcome pattern-matches these lines.
const (
	MarkerDefenseWins     = "VERDICT: DEFENSE WINS"
	MarkerProsecutionWins = "VERDICT: PROSECUTION WINS"
	MarkerRefusal         = "REFUSAL: NEW SESSION ORDERED"
)

// Verdict is the final structured output of a deliberation.
// The free-text report follows a fixed section template; the structured
// fields are parsed out of it and validated on receipt, so callers get
// a machine-checkable outcome in addition to the rendered report.
type Verdict struct {
	// ID uniquely identifies this verdict.
	ID string `json:"id" validate:"required"`

	// Decision is the parsed outcome.
	Decision Decision `json:"decision" validate:"required,oneof=defense_wins prosecution_wins refusal"`

	// Confidence is the judge's self-reported confidence, 0-100.
	Confidence int `json:"confidence" validate:"min=0,max=100"`

	// Consensus labels the agreement between verification and briefs.
	Consensus Consensus `json:"consensus" validate:"required,oneof=strong weak conflict"`

	// Claims are the disputed claims that were independently verified.
	Claims []DisputedClaim `json:"claims,omitempty"`

	// Report is the judge's full rendered report, including the
	// per-side summaries, verification summary, and reasoning.
	Report string `json:"report"`

	// Timestamp records when the verdict was rendered.
	Timestamp time.Time `json:"timestamp"`
}

// NewVerdict creates a verdict with a fresh ID and timestamp.
func NewVerdict(decision Decision, confidence int, consensus Consensus) Verdict {
	return Verdict{
		ID:         uuid.NewString(),
		Decision:   decision,
		Confidence: confidence,
		Consensus:  consensus,
		Timestamp:  time.Now().UTC(),
	}
}

// Marker returns the report line corresponding to the decision.
func (d Decision) Marker() string {
	switch d {
	case DecisionDefenseWins:
		return MarkerDefenseWins
	case DecisionProsecutionWins:
		return MarkerProsecutionWins
	case DecisionRefusal:
		return MarkerRefusal
	}
	return ""
}
