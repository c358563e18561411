package ports

import (
	"context"

	"github.com/averros/go-moot/internal/domain"
)

// ArguingAgent produces one statement per turn for one of the four
// debating personas. Implementations are stateless between calls: all
// continuity is carried by the caller through the opponent statement
// and the externally accumulated briefs.
//
// ProduceStatement never returns an error. A failed generation yields a
// degraded statement so the session can continue with the failure
// visible in the transcript.
type ArguingAgent interface {
	// Role identifies the persona this agent argues as.
	Role() domain.Role

	// ProduceStatement argues over the case facts, responding to the
	// opposing party's prior statement. An empty opponent statement
	// means this is the opening turn.
	ProduceStatement(ctx context.Context, caseFacts, opponentStatement string) domain.Statement
}

// JudgeAgent renders the final verdict from the accumulated briefs and
// strategy documents. Unlike arguing agents, deliberation is hard-fail:
// a completion or verdict-validation failure propagates to the caller.
type JudgeAgent interface {
	Deliberate(ctx context.Context, briefs domain.Briefs) (*domain.Verdict, error)
}
