package domain

import "fmt"

// Role identifies the author of a statement within a debate session.
type Role string

// The five fixed debate roles. Two adversarial parties, each with an
// advocate (argues the case directly) and a strategist (attacks the
// opposing advocate's argument quality), plus the judge.
const (
	RoleProsecutionAdvocate   Role = "prosecution-advocate"
	RoleProsecutionStrategist Role = "prosecution-strategist"
	RoleDefenseAdvocate       Role = "defense-advocate"
	RoleDefenseStrategist     Role = "defense-strategist"
	RoleJudge                 Role = "judge"
)

// Valid reports whether r is one of the five debate roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProsecutionAdvocate, RoleProsecutionStrategist,
		RoleDefenseAdvocate, RoleDefenseStrategist, RoleJudge:
		return true
	}
	return false
}

// Prosecution reports whether the role argues for the prosecution side.
func (r Role) Prosecution() bool {
	return r == RoleProsecutionAdvocate || r == RoleProsecutionStrategist
}

// DegradedMarker prefixes the transcript text of a statement whose
// generation failed. It makes degraded output visible in the transcript
// without aborting the session.
const DegradedMarker = "[STATEMENT UNAVAILABLE]"

// Statement is the text produced by one agent in one turn.
// Statements are append-only: once created they are never mutated.
// A failed generation yields a degraded statement rather than an error,
// so a single agent failure never aborts the session.
type Statement struct {
	// Role identifies the statement's author.
	Role Role `json:"role"`

	// Round is the 1-based round in which the statement was produced.
	// Assigned by the orchestrator.
	Round int `json:"round"`

	// Content is the statement text. For degraded statements this is
	// the marker text, not model output.
	Content string `json:"content"`

	// Degraded marks a statement that stands in for a failed
	// generation. Downstream code can branch on this flag instead of
	// sniffing the content for an error prefix.
	Degraded bool `json:"degraded,omitempty"`

	// Cause carries the failure description for degraded statements.
	Cause string `json:"cause,omitempty"`
}

// NewStatement returns a successful statement for the given role.
func NewStatement(role Role, content string) Statement {
	return Statement{Role: role, Content: content}
}

// NewDegradedStatement returns a statement standing in for a failed
// generation. The content carries the failure marker so the degradation
// is visible in the rendered transcript.
func NewDegradedStatement(role Role, cause error) Statement {
	return Statement{
		Role:     role,
		Content:  fmt.Sprintf("%s %s: %v", DegradedMarker, role, cause),
		Degraded: true,
		Cause:    cause.Error(),
	}
}

// Briefs collects the four accumulated documents handed to the judge:
// each side's brief (advocate statements) and strategy document
// (strategist statements). All four grow monotonically over a session
// and are never truncated.
type Briefs struct {
	DefenseBrief        string `json:"defense_brief"`
	ProsecutionBrief    string `json:"prosecution_brief"`
	DefenseStrategy     string `json:"defense_strategy"`
	ProsecutionStrategy string `json:"prosecution_strategy"`
}

// AppendRound extends a brief with one round's statement, preserving
// the fixed transcript format. The format is part of the engine's
// contract with the judge prompt and must stay stable.
func AppendRound(brief string, round int, text string) string {
	return brief + fmt.Sprintf("\nRound %d: %s\n", round, text)
}
