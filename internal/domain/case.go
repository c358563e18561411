// Package domain defines the core entities of the debate engine:
// cases, statements, briefs, disputed claims, and verdicts.
// Types in this package are plain data with no external dependencies,
// keeping the domain layer independent of transport and provider concerns.
package domain

import "strings"

// Case describes the dispute under debate.
// The description is immutable once the case is opened; an optional
// normalized summary may be produced once by a clerk model and is the
// text all agents argue over.
type Case struct {
	// Description is the raw, user-provided account of the dispute.
	Description string `json:"description"`

	// Summary is the normalized form of the description, suitable for
	// inclusion in agent prompts. Falls back to Description when no
	// clerk summarization was performed.
	Summary string `json:"summary,omitempty"`
}

// Facts returns the text agents should argue over: the summary when one
// exists, otherwise the raw description.
func (c Case) Facts() string {
	if strings.TrimSpace(c.Summary) != "" {
		return c.Summary
	}
	return c.Description
}

// EvidenceSnippet is a short text fragment returned by the external
// search boundary. Snippets carry no provenance guarantee and are used
// as unverified supporting context only.
type EvidenceSnippet struct {
	// Title is the headline of the source document, if any.
	Title string `json:"title,omitempty"`

	// URL points at the source document, if the provider reported one.
	URL string `json:"url,omitempty"`

	// Content is the snippet text itself.
	Content string `json:"content"`

	// Score is the provider's relevance score for this snippet.
	Score float64 `json:"score,omitempty"`
}

// DisputedClaim is a short factual claim extracted from the briefs by
// the judge, paired with whatever independent evidence was gathered for
// it. A lookup failure is isolated to the claim it occurred on.
type DisputedClaim struct {
	// Claim is the disputed factual assertion being verified.
	Claim string `json:"claim"`

	// Evidence holds the snippets gathered during independent
	// verification. May be empty.
	Evidence []EvidenceSnippet `json:"evidence,omitempty"`

	// Err records a verification failure for this claim only.
	// Empty when verification succeeded.
	Err string `json:"error,omitempty"`
}
