// Package courtroom orchestrates a debate session: it sequences agent
// turns across rounds, accumulates the briefs and strategy documents,
// and hands them to the judge on explicit request.
package courtroom

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/averros/go-moot/internal/domain"
	"github.com/averros/go-moot/internal/ports"
)

// Round-count bounds for a session.
const (
	MinRounds = 1
	MaxRounds = 3
)

// Opening sentinels passed as the opponent input on round one, when no
// opposing statement exists yet.
const (
	OpeningStrategySentinel  = "Initial Opening Strategy"
	OpeningStatementSentinel = "Opening Statement"
)

// Team pairs one side's strategist and advocate.
type Team struct {
	Strategist ports.ArguingAgent
	Advocate   ports.ArguingAgent
}

// Transcript is the complete record of a session's debate phase:
// every statement in production order plus the four accumulated
// documents. Briefs grow monotonically; nothing is ever truncated
// mid-session.
type Transcript struct {
	Statements []domain.Statement
	Briefs     domain.Briefs
}

// Session drives one case through a fixed number of debate rounds.
// Execution is strictly sequential: every external call blocks the
// session until it returns, and briefs are appended to by this single
// logical thread of control only.
//
// A session is single-use: open a case, run the rounds, then request
// deliberation. Nothing persists after the session ends.
type Session struct {
	rounds      int
	clerk       ports.LLMClient // optional case summarizer
	prosecution Team
	defense     Team
	judge       ports.JudgeAgent
	log         *slog.Logger

	kase       domain.Case
	transcript Transcript
	ran        bool
}

// NewSession assembles a session. The clerk client is optional; when
// nil the raw case description is argued over un-normalized.
func NewSession(rounds int, prosecution, defense Team, judge ports.JudgeAgent, clerk ports.LLMClient, log *slog.Logger) (*Session, error) {
	if rounds < MinRounds || rounds > MaxRounds {
		return nil, fmt.Errorf("rounds must be between %d and %d, got %d", MinRounds, MaxRounds, rounds)
	}
	if prosecution.Strategist == nil || prosecution.Advocate == nil {
		return nil, fmt.Errorf("prosecution team is incomplete")
	}
	if defense.Strategist == nil || defense.Advocate == nil {
		return nil, fmt.Errorf("defense team is incomplete")
	}
	if judge == nil {
		return nil, fmt.Errorf("judge cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		rounds:      rounds,
		clerk:       clerk,
		prosecution: prosecution,
		defense:     defense,
		judge:       judge,
		log:         log,
	}, nil
}

const summarizePrompt = `Analyze the following case description and extract the key facts.
Provide a structured summary suitable for an adversarial debate.

Case Description:
%s`

// OpenCase registers the dispute. When a clerk client is configured
// the description is normalized into a summary first; a clerk failure
// is not fatal, the raw description is argued over instead.
func (s *Session) OpenCase(ctx context.Context, description string) error {
	if description == "" {
		return fmt.Errorf("case description cannot be empty")
	}

	s.kase = domain.Case{Description: description}

	if s.clerk != nil {
		summary, err := s.clerk.Complete(ctx, fmt.Sprintf(summarizePrompt, description), map[string]any{
			"temperature": 0.0,
		})
		if err != nil {
			s.log.Warn("case summarization failed, arguing over raw description", slog.Any("error", err))
		} else {
			s.kase.Summary = summary
		}
	}

	return nil
}

// Case returns the case under debate.
func (s *Session) Case() domain.Case { return s.kase }

// Transcript returns the debate record accumulated so far.
func (s *Session) Transcript() Transcript { return s.transcript }

// Run drives all rounds of the debate. Within every round the
// prosecution acts first and the defense reacts to the prosecution
// advocate's just-produced statement. The prosecution side responds to
// the full accumulated defense brief from prior rounds; round one uses
// the opening sentinels instead.
//
// Run never fails on agent errors: degraded statements enter the
// transcript like any other.
func (s *Session) Run(ctx context.Context) (Transcript, error) {
	if s.kase.Description == "" {
		return Transcript{}, fmt.Errorf("no case opened")
	}
	if s.ran {
		return Transcript{}, fmt.Errorf("session already ran")
	}
	s.ran = true

	facts := s.kase.Facts()

	for round := 1; round <= s.rounds; round++ {
		s.log.Info("round starting", slog.Int("round", round))

		strategistInput := OpeningStrategySentinel
		advocateInput := OpeningStatementSentinel
		if round > 1 {
			strategistInput = s.transcript.Briefs.DefenseBrief
			advocateInput = s.transcript.Briefs.DefenseBrief
		}

		pStrat := s.turn(ctx, s.prosecution.Strategist, round, facts, strategistInput)
		s.transcript.Briefs.ProsecutionStrategy = domain.AppendRound(s.transcript.Briefs.ProsecutionStrategy, round, pStrat.Content)

		pArg := s.turn(ctx, s.prosecution.Advocate, round, facts, advocateInput)
		s.transcript.Briefs.ProsecutionBrief = domain.AppendRound(s.transcript.Briefs.ProsecutionBrief, round, pArg.Content)

		dStrat := s.turn(ctx, s.defense.Strategist, round, facts, pArg.Content)
		s.transcript.Briefs.DefenseStrategy = domain.AppendRound(s.transcript.Briefs.DefenseStrategy, round, dStrat.Content)

		dArg := s.turn(ctx, s.defense.Advocate, round, facts, pArg.Content)
		s.transcript.Briefs.DefenseBrief = domain.AppendRound(s.transcript.Briefs.DefenseBrief, round, dArg.Content)
	}

	return s.transcript, nil
}

// turn runs one agent turn and records the statement.
func (s *Session) turn(ctx context.Context, agent ports.ArguingAgent, round int, facts, opponent string) domain.Statement {
	stmt := agent.ProduceStatement(ctx, facts, opponent)
	stmt.Round = round
	s.transcript.Statements = append(s.transcript.Statements, stmt)

	if stmt.Degraded {
		s.log.Warn("degraded statement recorded",
			slog.String("role", string(stmt.Role)),
			slog.Int("round", round),
			slog.String("cause", stmt.Cause))
	}
	return stmt
}

// Deliberate hands the accumulated documents to the judge. It is an
// explicit, separate step: a verdict is only rendered on request.
// Judge failures propagate; the debate transcript remains available
// for a retried deliberation with a fresh judge.
func (s *Session) Deliberate(ctx context.Context) (*domain.Verdict, error) {
	if !s.ran {
		return nil, fmt.Errorf("cannot deliberate before the debate has run")
	}
	return s.judge.Deliberate(ctx, s.transcript.Briefs)
}
